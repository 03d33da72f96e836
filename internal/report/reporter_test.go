package report_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet/internal/dispatch"
	"github.com/fleetops/fleet/internal/registry"
	"github.com/fleetops/fleet/internal/report"
)

func plainReporter(testInstance *testing.T, buffer *bytes.Buffer) *report.Reporter {
	testInstance.Helper()
	previousNoColor := color.NoColor
	color.NoColor = true
	testInstance.Cleanup(func() { color.NoColor = previousNoColor })

	reporter, creationError := report.NewReporter(buffer)
	require.NoError(testInstance, creationError)
	return reporter
}

func sampleReport() dispatch.DispatchReport {
	return dispatch.DispatchReport{
		OperationName: "git-pull",
		Results: []dispatch.ExecutionResult{
			{
				Repository: registry.Repository{Name: "orders-service"},
				State:      dispatch.ResultStateSuccess,
				Duration:   1200 * time.Millisecond,
			},
			{
				Repository:    registry.Repository{Name: "billing-service"},
				State:         dispatch.ResultStateFailure,
				ExitCode:      1,
				StandardError: "error: cannot pull with rebase\nhint: commit your changes",
				Duration:      300 * time.Millisecond,
			},
			{
				Repository: registry.Repository{Name: "audit-service"},
				State:      dispatch.ResultStateSkipped,
				SkipReason: "worktree has uncommitted changes",
			},
		},
	}
}

func TestWriteReportRendersResultsAndSummary(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	reporter := plainReporter(testInstance, outputBuffer)

	require.NoError(testInstance, reporter.WriteReport(sampleReport()))

	renderedOutput := outputBuffer.String()
	require.Contains(testInstance, renderedOutput, "success")
	require.Contains(testInstance, renderedOutput, "orders-service")
	require.Contains(testInstance, renderedOutput, "exit code 1: error: cannot pull with rebase")
	require.NotContains(testInstance, renderedOutput, "hint: commit your changes")
	require.Contains(testInstance, renderedOutput, "skipped: worktree has uncommitted changes")
	require.Contains(testInstance, renderedOutput, "git-pull: 1 succeeded, 1 failed, 1 skipped")
	require.NotContains(testInstance, renderedOutput, "interrupted")
}

func TestWriteReportRendersTimeoutDetail(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	reporter := plainReporter(testInstance, outputBuffer)

	timedOutReport := dispatch.DispatchReport{
		OperationName: "mvn-build",
		Results: []dispatch.ExecutionResult{
			{
				Repository:   registry.Repository{Name: "orders-service"},
				State:        dispatch.ResultStateFailure,
				TimedOut:     true,
				FailureCause: errors.New("context deadline exceeded"),
			},
		},
	}
	require.NoError(testInstance, reporter.WriteReport(timedOutReport))
	require.Contains(testInstance, outputBuffer.String(), "timed out")
}

func TestWriteReportRendersInterruptionNotice(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	reporter := plainReporter(testInstance, outputBuffer)

	interruptedReport := sampleReport()
	interruptedReport.Interrupted = true
	require.NoError(testInstance, reporter.WriteReport(interruptedReport))
	require.Contains(testInstance, outputBuffer.String(), "run interrupted before completion")
}

func TestExitCodeMapping(testInstance *testing.T) {
	successResult := dispatch.ExecutionResult{State: dispatch.ResultStateSuccess}
	failureResult := dispatch.ExecutionResult{State: dispatch.ResultStateFailure}
	skippedResult := dispatch.ExecutionResult{State: dispatch.ResultStateSkipped}

	testCases := []struct {
		name             string
		dispatchReport   dispatch.DispatchReport
		expectedExitCode int
	}{
		{
			name:             "all_success",
			dispatchReport:   dispatch.DispatchReport{Results: []dispatch.ExecutionResult{successResult, successResult}},
			expectedExitCode: report.ExitCodeSuccess,
		},
		{
			name:             "skips_without_failures",
			dispatchReport:   dispatch.DispatchReport{Results: []dispatch.ExecutionResult{successResult, skippedResult}},
			expectedExitCode: report.ExitCodeSuccess,
		},
		{
			name:             "partial_failure",
			dispatchReport:   dispatch.DispatchReport{Results: []dispatch.ExecutionResult{successResult, failureResult}},
			expectedExitCode: report.ExitCodePartialFailure,
		},
		{
			name:             "all_failed",
			dispatchReport:   dispatch.DispatchReport{Results: []dispatch.ExecutionResult{failureResult, failureResult, skippedResult}},
			expectedExitCode: report.ExitCodeTotalFailure,
		},
		{
			name:             "interrupted",
			dispatchReport:   dispatch.DispatchReport{Interrupted: true, Results: []dispatch.ExecutionResult{successResult, skippedResult}},
			expectedExitCode: report.ExitCodeInterrupted,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedExitCode, report.ExitCode(testCase.dispatchReport))
		})
	}
}

func TestResultError(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	reporter := plainReporter(testInstance, outputBuffer)

	successReport := dispatch.DispatchReport{
		OperationName: "git-status",
		Results:       []dispatch.ExecutionResult{{State: dispatch.ResultStateSuccess}},
	}
	require.NoError(testInstance, reporter.ResultError(successReport))

	partialReport := dispatch.DispatchReport{
		OperationName: "git-pull",
		Results: []dispatch.ExecutionResult{
			{State: dispatch.ResultStateSuccess},
			{State: dispatch.ResultStateFailure},
		},
	}
	partialError := reporter.ResultError(partialReport)
	exitCodeError := report.ExitCodeError{}
	require.ErrorAs(testInstance, partialError, &exitCodeError)
	require.Equal(testInstance, report.ExitCodePartialFailure, exitCodeError.Code())
	require.Contains(testInstance, exitCodeError.Message(), "git-pull")
}

func TestNewReporterRequiresWriter(testInstance *testing.T) {
	_, creationError := report.NewReporter(nil)
	require.ErrorIs(testInstance, creationError, report.ErrWriterNotConfigured)
}
