// Package report renders dispatch outcomes for the terminal and maps the
// aggregate result onto a process exit code.
package report
