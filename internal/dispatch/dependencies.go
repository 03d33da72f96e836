package dispatch

import (
	"go.uber.org/zap"

	"github.com/fleetops/fleet/internal/execshell"
	"github.com/fleetops/fleet/internal/gitrepo"
)

// Dependencies bundles the shared execution collaborators the command
// families build on: one shell executor, one repository inspector, and
// one dispatcher wired together.
type Dependencies struct {
	Executor   *execshell.ShellExecutor
	Inspector  *gitrepo.RepositoryInspector
	Dispatcher *Dispatcher
}

// BuildDependencies wires the operating system command runner into a shell
// executor, a repository inspector, and a dispatcher.
func BuildDependencies(logger *zap.Logger, humanReadableLogging bool) (Dependencies, error) {
	commandRunner := execshell.NewOSCommandRunner()

	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, humanReadableLogging)
	if executorError != nil {
		return Dependencies{}, executorError
	}

	repositoryInspector, inspectorError := gitrepo.NewRepositoryInspector(shellExecutor)
	if inspectorError != nil {
		return Dependencies{}, inspectorError
	}

	operationDispatcher, dispatcherError := NewDispatcher(shellExecutor, repositoryInspector, logger)
	if dispatcherError != nil {
		return Dependencies{}, dispatcherError
	}

	return Dependencies{
		Executor:   shellExecutor,
		Inspector:  repositoryInspector,
		Dispatcher: operationDispatcher,
	}, nil
}
