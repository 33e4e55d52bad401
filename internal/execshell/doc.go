// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and typed failures,
// and OSCommandRunner is the default os/exec backed runner. Brancho uses it
// to run git when checking out a resolved branch.
package execshell
