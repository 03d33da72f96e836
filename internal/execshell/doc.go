// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and context-aware termination via
// ShellExecutor, exposes OSCommandRunner for default process execution, and
// defines abstractions used throughout fleet to run git, docker-compose, and
// mvn in a testable manner.
package execshell
