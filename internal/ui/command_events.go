// Package ui emits progress lines for shell commands as they run, keeping
// the terminal informative while the dispatcher works in the background.
package ui

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/fleetops/fleet/internal/execshell"
)

const (
	eventWriterNotConfiguredMessageConstant = "console event logger requires a writer"

	startedLinePrefixConstant = "-->"
	successLinePrefixConstant = "ok "
	failureLinePrefixConstant = "err"
)

// ErrEventWriterNotConfigured indicates the console event logger was built without a writer.
var ErrEventWriterNotConfigured = errors.New(eventWriterNotConfiguredMessageConstant)

// ConsoleCommandEventLogger prints one line per command lifecycle event.
// Lines from concurrent workers are serialized through a mutex so they
// never interleave mid-line.
type ConsoleCommandEventLogger struct {
	outputWriter     io.Writer
	messageFormatter execshell.CommandMessageFormatter
	failurePainter   func(format string, arguments ...interface{}) string
	writeMutex       sync.Mutex
}

// NewConsoleCommandEventLogger constructs a logger writing to the provided writer.
func NewConsoleCommandEventLogger(outputWriter io.Writer) (*ConsoleCommandEventLogger, error) {
	if outputWriter == nil {
		return nil, ErrEventWriterNotConfigured
	}
	return &ConsoleCommandEventLogger{
		outputWriter:   outputWriter,
		failurePainter: color.New(color.FgRed).Sprintf,
	}, nil
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	eventLogger.writeLine(startedLinePrefixConstant, eventLogger.messageFormatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if result.ExitCode == 0 {
		eventLogger.writeLine(successLinePrefixConstant, eventLogger.messageFormatter.BuildSuccessMessage(command))
		return
	}
	eventLogger.writeLine(failureLinePrefixConstant, eventLogger.failurePainter("%s", eventLogger.messageFormatter.BuildFailureMessage(command, result)))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	eventLogger.writeLine(failureLinePrefixConstant, eventLogger.failurePainter("%s", eventLogger.messageFormatter.BuildExecutionFailureMessage(command, failure)))
}

func (eventLogger *ConsoleCommandEventLogger) writeLine(linePrefix string, message string) {
	eventLogger.writeMutex.Lock()
	defer eventLogger.writeMutex.Unlock()
	fmt.Fprintf(eventLogger.outputWriter, "%s %s\n", linePrefix, message)
}
