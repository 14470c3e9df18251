// Package execshell provides structured helpers for invoking the git binary.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions gitt uses to run git
// subcommands in a testable manner.
package execshell
