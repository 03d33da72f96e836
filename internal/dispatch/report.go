package dispatch

import (
	"time"

	"github.com/fleetops/fleet/internal/registry"
)

// ResultState classifies the outcome of one repository's execution.
type ResultState string

const (
	// ResultStateSuccess marks a command that exited with code zero.
	ResultStateSuccess ResultState = "success"
	// ResultStateFailure marks a command that exited non-zero, timed out, or could not start.
	ResultStateFailure ResultState = "failure"
	// ResultStateSkipped marks a repository that was not executed, either because a
	// guard declined it or because the run was aborted or interrupted first.
	ResultStateSkipped ResultState = "skipped"
)

// ExecutionResult captures the outcome of one operation in one repository.
type ExecutionResult struct {
	Repository     registry.Repository
	State          ResultState
	ExitCode       int
	StandardOutput string
	StandardError  string
	Duration       time.Duration
	TimedOut       bool
	SkipReason     string
	FailureCause   error
}

// DispatchReport aggregates the outcomes of one dispatched operation.
type DispatchReport struct {
	OperationName string
	Results       []ExecutionResult
	Interrupted   bool
}

// SuccessCount returns the number of repositories that completed successfully.
func (report DispatchReport) SuccessCount() int {
	return report.countState(ResultStateSuccess)
}

// FailureCount returns the number of repositories that failed.
func (report DispatchReport) FailureCount() int {
	return report.countState(ResultStateFailure)
}

// SkippedCount returns the number of repositories that were skipped.
func (report DispatchReport) SkippedCount() int {
	return report.countState(ResultStateSkipped)
}

// AllSucceeded reports whether every repository completed successfully.
func (report DispatchReport) AllSucceeded() bool {
	return len(report.Results) > 0 && report.SuccessCount() == len(report.Results)
}

// AnyFailed reports whether at least one repository failed.
func (report DispatchReport) AnyFailed() bool {
	return report.FailureCount() > 0
}

// AllFailed reports whether every executed repository failed; skipped
// repositories do not count against the total.
func (report DispatchReport) AllFailed() bool {
	executedCount := len(report.Results) - report.SkippedCount()
	return executedCount > 0 && report.FailureCount() == executedCount
}

func (report DispatchReport) countState(state ResultState) int {
	stateCount := 0
	for _, result := range report.Results {
		if result.State == state {
			stateCount++
		}
	}
	return stateCount
}
