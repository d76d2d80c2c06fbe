// Package execshell runs external tools for replayrig.
//
// ShellExecutor logs every invocation and turns non-zero exit codes into
// typed errors, while OSCommandRunner performs the actual os/exec call. The
// GitHub CLI wrapper is what the issue command uses to file bug reports.
package execshell
