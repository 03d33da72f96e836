package dispatch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fleetops/fleet/internal/execshell"
	"github.com/fleetops/fleet/internal/operations"
	"github.com/fleetops/fleet/internal/registry"
)

// FailurePolicy controls how the dispatcher reacts to a repository failure.
type FailurePolicy string

const (
	// ContinueOnError keeps dispatching remaining repositories after a failure.
	ContinueOnError FailurePolicy = "continue"
	// AbortOnFailure stops dispatching new repositories after the first failure.
	AbortOnFailure FailurePolicy = "abort"

	// DefaultConcurrency bounds the worker pool when no explicit limit is given.
	DefaultConcurrency = 4

	executorNotConfiguredMessageConstant  = "dispatcher requires a command executor"
	inspectorNotConfiguredMessageConstant = "dispatcher requires a repository inspector"
	loggerNotConfiguredMessageConstant    = "dispatcher requires a logger"

	skipReasonDirtyWorktree      = "worktree has uncommitted changes"
	skipReasonDetachedHead       = "HEAD is detached"
	skipReasonMissingUpstream    = "no upstream configured"
	skipReasonAbortedAfterFailed = "aborted after earlier failure"
	skipReasonInterrupted        = "interrupted"

	repositoryFieldNameConstant = "repository"
	operationFieldNameConstant  = "operation"
	stateFieldNameConstant      = "state"
	durationFieldNameConstant   = "duration"
)

var (
	// ErrExecutorNotConfigured indicates the command executor dependency was missing.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrInspectorNotConfigured indicates the repository inspector dependency was missing.
	ErrInspectorNotConfigured = errors.New(inspectorNotConfiguredMessageConstant)
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

	errAbortRequested = errors.New("abort requested")
)

// CommandExecutor runs one shell command and reports its outcome.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// GuardInspector answers the repository state questions guards depend on.
type GuardInspector interface {
	IsWorktreeDirty(executionContext context.Context, repositoryPath string) (bool, error)
	IsHeadDetached(executionContext context.Context, repositoryPath string) (bool, error)
	HasUpstream(executionContext context.Context, repositoryPath string) (bool, error)
}

// Options tune one dispatch run.
type Options struct {
	Concurrency int
	Policy      FailurePolicy
	Timeout     time.Duration
}

// Dispatcher executes one operation across many repositories concurrently.
type Dispatcher struct {
	executor  CommandExecutor
	inspector GuardInspector
	logger    *zap.Logger
}

// NewDispatcher builds a dispatcher from its collaborators.
func NewDispatcher(executor CommandExecutor, inspector GuardInspector, logger *zap.Logger) (*Dispatcher, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if inspector == nil {
		return nil, ErrInspectorNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	return &Dispatcher{executor: executor, inspector: inspector, logger: logger}, nil
}

type indexedResult struct {
	index  int
	result ExecutionResult
}

// Dispatch runs the operation in every repository and returns per-repository
// outcomes in the same order the repositories were given.
func (dispatcher *Dispatcher) Dispatch(executionContext context.Context, operation operations.Operation, repositories []registry.Repository, options Options) DispatchReport {
	report := DispatchReport{
		OperationName: operation.Name,
		Results:       make([]ExecutionResult, len(repositories)),
	}
	if len(repositories) == 0 {
		return report
	}

	workerGroup, groupContext := errgroup.WithContext(executionContext)
	workerGroup.SetLimit(poolSize(len(repositories), options.Concurrency))

	resultsChannel := make(chan indexedResult)
	aggregationDone := make(chan struct{})
	go func() {
		defer close(aggregationDone)
		for collected := range resultsChannel {
			report.Results[collected.index] = collected.result
		}
	}()

	for repositoryIndex, repository := range repositories {
		repositoryIndex, repository := repositoryIndex, repository
		workerGroup.Go(func() error {
			result := dispatcher.runRepository(groupContext, executionContext, operation, repository, options)
			resultsChannel <- indexedResult{index: repositoryIndex, result: result}

			dispatcher.logger.Debug("repository dispatched",
				zap.String(operationFieldNameConstant, operation.Name),
				zap.String(repositoryFieldNameConstant, repository.Name),
				zap.String(stateFieldNameConstant, string(result.State)),
				zap.Duration(durationFieldNameConstant, result.Duration),
			)

			if result.State == ResultStateFailure && options.Policy == AbortOnFailure {
				return errAbortRequested
			}
			return nil
		})
	}

	waitError := workerGroup.Wait()
	close(resultsChannel)
	<-aggregationDone

	if waitError != nil && !errors.Is(waitError, errAbortRequested) {
		dispatcher.logger.Warn("dispatch finished with error", zap.Error(waitError))
	}
	report.Interrupted = executionContext.Err() != nil
	return report
}

// runRepository executes the operation in one repository and classifies the outcome.
// The group context is canceled on abort; the parent context only on interruption.
func (dispatcher *Dispatcher) runRepository(groupContext context.Context, parentContext context.Context, operation operations.Operation, repository registry.Repository, options Options) ExecutionResult {
	result := ExecutionResult{Repository: repository}

	if groupContext.Err() != nil {
		result.State = ResultStateSkipped
		result.SkipReason = cancellationSkipReason(parentContext)
		return result
	}

	if skipped, guardResult := dispatcher.evaluateGuards(groupContext, operation, repository); skipped {
		return guardResult
	}

	operationContext := groupContext
	operationTimeout := effectiveTimeout(operation, options)
	if operationTimeout > 0 {
		var cancelOperation context.CancelFunc
		operationContext, cancelOperation = context.WithTimeout(groupContext, operationTimeout)
		defer cancelOperation()
	}

	startedAt := time.Now()
	executionResult, executionError := dispatcher.executor.Execute(operationContext, execshell.ShellCommand{
		Name: execshell.CommandName(operation.Executable),
		Details: execshell.CommandDetails{
			Arguments:        operation.Arguments,
			WorkingDirectory: repository.Path,
		},
	})
	result.Duration = time.Since(startedAt)
	result.StandardOutput = executionResult.StandardOutput
	result.StandardError = executionResult.StandardError
	result.ExitCode = executionResult.ExitCode

	if executionError == nil {
		result.State = ResultStateSuccess
		return result
	}

	commandFailure := execshell.CommandFailedError{}
	if errors.As(executionError, &commandFailure) {
		result.State = ResultStateFailure
		result.StandardOutput = commandFailure.Result.StandardOutput
		result.StandardError = commandFailure.Result.StandardError
		result.ExitCode = commandFailure.Result.ExitCode
		result.FailureCause = executionError
		return result
	}

	if errors.Is(executionError, context.DeadlineExceeded) && groupContext.Err() == nil {
		result.State = ResultStateFailure
		result.TimedOut = true
		result.FailureCause = executionError
		return result
	}

	if groupContext.Err() != nil {
		result.State = ResultStateSkipped
		result.SkipReason = cancellationSkipReason(parentContext)
		return result
	}

	result.State = ResultStateFailure
	result.FailureCause = executionError
	return result
}

// evaluateGuards returns a skipped result when a guard declines the repository
// and a failed result when a guard check itself errors.
func (dispatcher *Dispatcher) evaluateGuards(executionContext context.Context, operation operations.Operation, repository registry.Repository) (bool, ExecutionResult) {
	guardChecks := []struct {
		guard      operations.GuardRequirement
		violated   func(context.Context, string) (bool, error)
		skipReason string
	}{
		{guard: operations.GuardCleanWorktree, violated: dispatcher.inspector.IsWorktreeDirty, skipReason: skipReasonDirtyWorktree},
		{guard: operations.GuardAttachedHead, violated: dispatcher.inspector.IsHeadDetached, skipReason: skipReasonDetachedHead},
		{guard: operations.GuardUpstreamConfigured, violated: dispatcher.missingUpstream, skipReason: skipReasonMissingUpstream},
	}

	for _, guardCheck := range guardChecks {
		if !operation.RequiresGuard(guardCheck.guard) {
			continue
		}
		violated, guardError := guardCheck.violated(executionContext, repository.Path)
		if guardError != nil {
			return true, ExecutionResult{
				Repository:   repository,
				State:        ResultStateFailure,
				FailureCause: guardError,
			}
		}
		if violated {
			return true, ExecutionResult{
				Repository: repository,
				State:      ResultStateSkipped,
				SkipReason: guardCheck.skipReason,
			}
		}
	}
	return false, ExecutionResult{}
}

func (dispatcher *Dispatcher) missingUpstream(executionContext context.Context, repositoryPath string) (bool, error) {
	hasUpstream, upstreamError := dispatcher.inspector.HasUpstream(executionContext, repositoryPath)
	if upstreamError != nil {
		return false, upstreamError
	}
	return !hasUpstream, nil
}

func cancellationSkipReason(parentContext context.Context) string {
	if parentContext.Err() != nil {
		return skipReasonInterrupted
	}
	return skipReasonAbortedAfterFailed
}

func effectiveTimeout(operation operations.Operation, options Options) time.Duration {
	if options.Timeout > 0 {
		return options.Timeout
	}
	return operation.Timeout
}

func poolSize(repositoryCount int, configuredConcurrency int) int {
	concurrencyLimit := configuredConcurrency
	if concurrencyLimit <= 0 {
		concurrencyLimit = DefaultConcurrency
	}
	if repositoryCount < concurrencyLimit {
		return repositoryCount
	}
	return concurrencyLimit
}
