// Package execshell runs the external programs devtools depends on.
//
// ShellExecutor wraps a CommandRunner with lifecycle logging and typed errors
// so git, docker and the Python interpreter are invoked the same way
// everywhere. OSCommandRunner is the os/exec backed runner; tests substitute
// recording runners.
package execshell
