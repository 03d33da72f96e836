package repos

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetops/fleet/cmd/cli/shared"
	"github.com/fleetops/fleet/internal/dispatch"
	"github.com/fleetops/fleet/internal/operations"
	"github.com/fleetops/fleet/internal/registry"
	"github.com/fleetops/fleet/internal/report"
)

const (
	statusUseConstant      = "status"
	statusShortDescription = "Refresh remotes and summarize repository state"
	statusLongDescription  = "status runs git remote update in every selected repository, then prints each repository's branch, worktree state, and position relative to its upstream."

	statusRefreshFailedTemplateConstant = "%-30s remote update failed: %s\n"
)

// StatusCommandBuilder assembles the repos status command.
type StatusCommandBuilder struct {
	LoggerProvider               shared.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() ToolsConfiguration
	OperationsProvider           func() (*operations.Library, error)
	RepositoriesProvider         func() []registry.RepositoryConfiguration
}

// Build constructs the repos status command.
func (builder *StatusCommandBuilder) Build() (*cobra.Command, error) {
	settings := &shared.ExecutionSettings{}

	command := &cobra.Command{
		Use:   statusUseConstant,
		Short: statusShortDescription,
		Long:  statusLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, settings)
		},
	}
	shared.RegisterExecutionFlags(command, settings)

	return command, nil
}

func (builder *StatusCommandBuilder) run(command *cobra.Command, flagSettings *shared.ExecutionSettings) error {
	operationLibrary, libraryError := builder.resolveLibrary()
	if libraryError != nil {
		return libraryError
	}

	remoteUpdateOperation, lookupError := operationLibrary.Lookup(operations.OperationGitRemoteUpdate)
	if lookupError != nil {
		return lookupError
	}

	configuration := builder.resolveConfiguration()
	settings := shared.MergeSettings(command, *flagSettings, configuration.Settings)
	dispatchOptions, optionsError := settings.DispatchOptions()
	if optionsError != nil {
		return optionsError
	}

	repositories, resolveError := shared.ResolveRepositories(builder.resolveRepositories(), settings, remoteUpdateOperation.Marker)
	if resolveError != nil {
		return resolveError
	}

	logger := shared.ResolveLogger(builder.LoggerProvider)
	humanReadableLogging := builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
	executionDependencies, dependenciesError := dispatch.BuildDependencies(logger, humanReadableLogging)
	if dependenciesError != nil {
		return dependenciesError
	}

	dispatchReport := executionDependencies.Dispatcher.Dispatch(command.Context(), remoteUpdateOperation, repositories, dispatchOptions)

	for resultIndex, result := range dispatchReport.Results {
		repository := repositories[resultIndex]
		if result.State == dispatch.ResultStateFailure {
			failureDescription := result.StandardError
			if len(failureDescription) == 0 && result.FailureCause != nil {
				failureDescription = result.FailureCause.Error()
			}
			if _, writeError := fmt.Fprintf(command.OutOrStdout(), statusRefreshFailedTemplateConstant, repository.Name, failureDescription); writeError != nil {
				return writeError
			}
			continue
		}

		repositoryStatus, inspectError := executionDependencies.Inspector.Inspect(command.Context(), repository.Path)
		if inspectError != nil {
			if _, writeError := fmt.Fprintf(command.OutOrStdout(), listErrorTemplateConstant, repository.Name, inspectError); writeError != nil {
				return writeError
			}
			continue
		}
		if _, writeError := fmt.Fprintf(command.OutOrStdout(), listLineTemplateConstant, repository.Name, branchLabel(repositoryStatus), stateLabel(repositoryStatus)); writeError != nil {
			return writeError
		}
	}

	reporter, reporterError := report.NewReporter(command.OutOrStdout())
	if reporterError != nil {
		return reporterError
	}
	return reporter.ResultError(dispatchReport)
}

func (builder *StatusCommandBuilder) resolveLibrary() (*operations.Library, error) {
	if builder.OperationsProvider == nil {
		return operations.NewLibrary(), nil
	}
	return builder.OperationsProvider()
}

func (builder *StatusCommandBuilder) resolveConfiguration() ToolsConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultToolsConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *StatusCommandBuilder) resolveRepositories() []registry.RepositoryConfiguration {
	if builder.RepositoriesProvider == nil {
		return nil
	}
	return builder.RepositoriesProvider()
}
