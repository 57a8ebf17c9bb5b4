// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner, reports every invocation to a
// CommandEventObserver and converts non-zero exits into typed errors.
// OSCommandRunner is the os/exec backed runner used outside of tests, and
// CommandMessageFormatter turns git clone, fetch, checkout, describe and
// rev-parse invocations into readable sentences.
package execshell
