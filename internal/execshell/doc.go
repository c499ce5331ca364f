// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with logging and lifecycle observers,
// OSCommandRunner executes processes through os/exec, and
// CommandMessageFormatter renders git invocations as short human-readable
// sentences for console output.
package execshell
