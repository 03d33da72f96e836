package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/fleetops/fleet/internal/dispatch"
)

const (
	// ExitCodeSuccess signals that every repository completed successfully.
	ExitCodeSuccess = 0
	// ExitCodePartialFailure signals that some repositories failed.
	ExitCodePartialFailure = 1
	// ExitCodeTotalFailure signals that every executed repository failed.
	ExitCodeTotalFailure = 2
	// ExitCodeInterrupted signals that the run was interrupted before completion.
	ExitCodeInterrupted = 130

	writerNotConfiguredMessageConstant = "reporter requires an output writer"

	resultLineTemplateConstant      = "%s  %s (%s)\n"
	skipDetailTemplateConstant      = "      skipped: %s\n"
	failureDetailTemplateConstant   = "      exit code %d: %s\n"
	timeoutDetailMessageConstant    = "timed out"
	summaryLineTemplateConstant     = "%s: %d succeeded, %d failed, %d skipped\n"
	interruptedSummaryLineConstant  = "run interrupted before completion\n"
	partialFailureMessageTemplate   = "%s failed in %d of %d repositories"
	totalFailureMessageTemplate     = "%s failed in every repository"
	interruptedMessageTemplate      = "%s interrupted before completion"
	failureDetailMaximumLength      = 160
)

// ErrWriterNotConfigured indicates the reporter was built without a writer.
var ErrWriterNotConfigured = errors.New(writerNotConfiguredMessageConstant)

// ExitCodeError carries the process exit code a finished run maps to.
type ExitCodeError struct {
	exitCode int
	message  string
}

// NewExitCodeError builds an exit code error with a human readable message.
func NewExitCodeError(exitCode int, message string) ExitCodeError {
	return ExitCodeError{exitCode: exitCode, message: message}
}

// Code returns the process exit code.
func (exitError ExitCodeError) Code() int {
	return exitError.exitCode
}

// Message returns the human readable description.
func (exitError ExitCodeError) Message() string {
	return exitError.message
}

// Error implements the error interface.
func (exitError ExitCodeError) Error() string {
	return exitError.message
}

// Reporter renders dispatch reports to a writer with colored result states.
type Reporter struct {
	outputWriter io.Writer
	successLabel func(format string, arguments ...interface{}) string
	failureLabel func(format string, arguments ...interface{}) string
	skippedLabel func(format string, arguments ...interface{}) string
}

// NewReporter constructs a reporter writing to the provided writer.
func NewReporter(outputWriter io.Writer) (*Reporter, error) {
	if outputWriter == nil {
		return nil, ErrWriterNotConfigured
	}
	return &Reporter{
		outputWriter: outputWriter,
		successLabel: color.New(color.FgGreen).Sprintf,
		failureLabel: color.New(color.FgRed).Sprintf,
		skippedLabel: color.New(color.FgYellow).Sprintf,
	}, nil
}

// WriteReport prints one line per repository followed by a summary line.
func (reporter *Reporter) WriteReport(dispatchReport dispatch.DispatchReport) error {
	for _, result := range dispatchReport.Results {
		stateLabel := reporter.renderState(result.State)
		if _, writeError := fmt.Fprintf(reporter.outputWriter, resultLineTemplateConstant, stateLabel, result.Repository.Name, result.Duration.Round(10*time.Millisecond)); writeError != nil {
			return writeError
		}

		switch result.State {
		case dispatch.ResultStateSkipped:
			if _, writeError := fmt.Fprintf(reporter.outputWriter, skipDetailTemplateConstant, result.SkipReason); writeError != nil {
				return writeError
			}
		case dispatch.ResultStateFailure:
			if _, writeError := fmt.Fprintf(reporter.outputWriter, failureDetailTemplateConstant, result.ExitCode, failureDetail(result)); writeError != nil {
				return writeError
			}
		}
	}

	_, summaryError := fmt.Fprintf(reporter.outputWriter, summaryLineTemplateConstant,
		dispatchReport.OperationName,
		dispatchReport.SuccessCount(),
		dispatchReport.FailureCount(),
		dispatchReport.SkippedCount(),
	)
	if summaryError != nil {
		return summaryError
	}
	if dispatchReport.Interrupted {
		if _, writeError := io.WriteString(reporter.outputWriter, interruptedSummaryLineConstant); writeError != nil {
			return writeError
		}
	}
	return nil
}

// ResultError maps the report onto the error the command should return:
// nil on full success, an ExitCodeError otherwise.
func (reporter *Reporter) ResultError(dispatchReport dispatch.DispatchReport) error {
	switch exitCode := ExitCode(dispatchReport); exitCode {
	case ExitCodeSuccess:
		return nil
	case ExitCodeInterrupted:
		return NewExitCodeError(exitCode, fmt.Sprintf(interruptedMessageTemplate, dispatchReport.OperationName))
	case ExitCodeTotalFailure:
		return NewExitCodeError(exitCode, fmt.Sprintf(totalFailureMessageTemplate, dispatchReport.OperationName))
	default:
		return NewExitCodeError(exitCode, fmt.Sprintf(partialFailureMessageTemplate, dispatchReport.OperationName, dispatchReport.FailureCount(), len(dispatchReport.Results)))
	}
}

// ExitCode maps a finished report onto a process exit code.
func ExitCode(dispatchReport dispatch.DispatchReport) int {
	switch {
	case dispatchReport.Interrupted:
		return ExitCodeInterrupted
	case dispatchReport.FailureCount() == 0:
		return ExitCodeSuccess
	case dispatchReport.AllFailed():
		return ExitCodeTotalFailure
	default:
		return ExitCodePartialFailure
	}
}

func (reporter *Reporter) renderState(state dispatch.ResultState) string {
	switch state {
	case dispatch.ResultStateSuccess:
		return reporter.successLabel("%-7s", state)
	case dispatch.ResultStateFailure:
		return reporter.failureLabel("%-7s", state)
	default:
		return reporter.skippedLabel("%-7s", state)
	}
}

func failureDetail(result dispatch.ExecutionResult) string {
	if result.TimedOut {
		return timeoutDetailMessageConstant
	}
	detail := strings.TrimSpace(result.StandardError)
	if len(detail) == 0 && result.FailureCause != nil {
		detail = result.FailureCause.Error()
	}
	if firstLineEnd := strings.IndexByte(detail, '\n'); firstLineEnd >= 0 {
		detail = detail[:firstLineEnd]
	}
	if len(detail) > failureDetailMaximumLength {
		detail = detail[:failureDetailMaximumLength]
	}
	return detail
}
