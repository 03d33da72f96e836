package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fleetops/fleet/internal/execshell"
)

const (
	gitExecutorNotConfiguredMessageConstant = "repository inspector requires a git executor"
	detachedHeadReferenceNameConstant       = "HEAD"
	aheadBehindParseErrorTemplateConstant   = "unable to parse ahead/behind counts from %q"
)

var (
	currentBranchArguments  = []string{"rev-parse", "--abbrev-ref", detachedHeadReferenceNameConstant}
	worktreeStatusArguments = []string{"status", "--porcelain"}
	upstreamProbeArguments  = []string{"rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}"}
	aheadBehindArguments    = []string{"rev-list", "--left-right", "--count", "HEAD...@{upstream}"}
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorNotConfiguredMessageConstant)

// GitExecutor exposes the subset of shell execution used by the inspector.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryStatus summarizes one repository's local state relative to its upstream.
type RepositoryStatus struct {
	Branch       string
	HeadDetached bool
	Dirty        bool
	HasUpstream  bool
	AheadCount   int
	BehindCount  int
}

// RepositoryInspector answers repository state questions by shelling out to git.
type RepositoryInspector struct {
	gitExecutor GitExecutor
}

// NewRepositoryInspector constructs an inspector bound to the provided git executor.
func NewRepositoryInspector(gitExecutor GitExecutor) (*RepositoryInspector, error) {
	if gitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryInspector{gitExecutor: gitExecutor}, nil
}

// CurrentBranch resolves the active branch name; a detached HEAD yields "HEAD".
func (inspector *RepositoryInspector) CurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := inspector.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        currentBranchArguments,
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// IsHeadDetached reports whether the repository HEAD points at no branch.
func (inspector *RepositoryInspector) IsHeadDetached(executionContext context.Context, repositoryPath string) (bool, error) {
	branchName, branchError := inspector.CurrentBranch(executionContext, repositoryPath)
	if branchError != nil {
		return false, branchError
	}
	return branchName == detachedHeadReferenceNameConstant, nil
}

// IsWorktreeDirty reports whether the worktree carries uncommitted or untracked changes.
func (inspector *RepositoryInspector) IsWorktreeDirty(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := inspector.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        worktreeStatusArguments,
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) > 0, nil
}

// HasUpstream reports whether the current branch tracks a remote branch.
// A non-zero git exit means no upstream is configured, not an infrastructure failure.
func (inspector *RepositoryInspector) HasUpstream(executionContext context.Context, repositoryPath string) (bool, error) {
	_, executionError := inspector.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        upstreamProbeArguments,
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailure) {
			return false, nil
		}
		return false, executionError
	}
	return true, nil
}

// AheadBehind counts commits the local branch is ahead of and behind its upstream.
func (inspector *RepositoryInspector) AheadBehind(executionContext context.Context, repositoryPath string) (int, int, error) {
	executionResult, executionError := inspector.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        aheadBehindArguments,
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return 0, 0, executionError
	}

	countFields := strings.Fields(strings.TrimSpace(executionResult.StandardOutput))
	if len(countFields) != 2 {
		return 0, 0, fmt.Errorf(aheadBehindParseErrorTemplateConstant, executionResult.StandardOutput)
	}

	aheadCount, aheadParseError := strconv.Atoi(countFields[0])
	if aheadParseError != nil {
		return 0, 0, fmt.Errorf(aheadBehindParseErrorTemplateConstant, executionResult.StandardOutput)
	}
	behindCount, behindParseError := strconv.Atoi(countFields[1])
	if behindParseError != nil {
		return 0, 0, fmt.Errorf(aheadBehindParseErrorTemplateConstant, executionResult.StandardOutput)
	}

	return aheadCount, behindCount, nil
}

// Inspect gathers the full status summary for one repository.
func (inspector *RepositoryInspector) Inspect(executionContext context.Context, repositoryPath string) (RepositoryStatus, error) {
	branchName, branchError := inspector.CurrentBranch(executionContext, repositoryPath)
	if branchError != nil {
		return RepositoryStatus{}, branchError
	}

	status := RepositoryStatus{
		Branch:       branchName,
		HeadDetached: branchName == detachedHeadReferenceNameConstant,
	}

	dirtyState, dirtyError := inspector.IsWorktreeDirty(executionContext, repositoryPath)
	if dirtyError != nil {
		return RepositoryStatus{}, dirtyError
	}
	status.Dirty = dirtyState

	if status.HeadDetached {
		return status, nil
	}

	upstreamConfigured, upstreamError := inspector.HasUpstream(executionContext, repositoryPath)
	if upstreamError != nil {
		return RepositoryStatus{}, upstreamError
	}
	status.HasUpstream = upstreamConfigured

	if !upstreamConfigured {
		return status, nil
	}

	aheadCount, behindCount, countError := inspector.AheadBehind(executionContext, repositoryPath)
	if countError != nil {
		return RepositoryStatus{}, countError
	}
	status.AheadCount = aheadCount
	status.BehindCount = behindCount

	return status, nil
}
