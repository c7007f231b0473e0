// Package utils exposes reusable helpers consumed by every devtools command.
//
// ConfigurationLoader layers the embedded defaults, an optional configuration
// file and DEVTOOLS_* environment variables through Viper. LoggerFactory builds
// zap loggers for the structured and console formats, and LineWriter splits
// streamed process output into lines for filtering.
package utils
