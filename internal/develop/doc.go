// Package develop builds and runs the containerised development environment.
//
// The docker engine is driven through the docker command-line client so the
// tool works against any daemon the client is configured for.
package develop
