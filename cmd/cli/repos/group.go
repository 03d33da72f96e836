// Package repos implements the git command family: pulling, fetching, and
// inspecting many repositories at once.
package repos

import (
	"github.com/spf13/cobra"

	"github.com/fleetops/fleet/cmd/cli/shared"
	"github.com/fleetops/fleet/internal/operations"
	"github.com/fleetops/fleet/internal/registry"
)

const (
	groupUseConstant      = "repos"
	groupShortDescription = "Operate on many git repositories at once"
	groupLongDescription  = "repos groups subcommands that pull, fetch, and inspect collections of local git repositories."

	pullUseConstant      = "pull"
	pullShortDescription = "Pull every selected repository"
	pullLongDescription  = "pull runs git pull in every selected repository, skipping those with dirty worktrees, detached heads, or no upstream."

	fetchUseConstant      = "fetch"
	fetchShortDescription = "Fetch every selected repository"
	fetchLongDescription  = "fetch runs git fetch in every selected repository, skipping those with detached heads."
)

// CommandGroupBuilder assembles the repos command group.
type CommandGroupBuilder struct {
	LoggerProvider               shared.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() ToolsConfiguration
	OperationsProvider           func() (*operations.Library, error)
	RepositoriesProvider         func() []registry.RepositoryConfiguration
}

// Build constructs the repos command hierarchy.
func (builder *CommandGroupBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescription,
		Long:  groupLongDescription,
	}

	pullBuilder := shared.OperationCommandBuilder{
		Use:                          pullUseConstant,
		Short:                        pullShortDescription,
		Long:                         pullLongDescription,
		OperationName:                operations.OperationGitPull,
		LoggerProvider:               builder.LoggerProvider,
		HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		SettingsProvider:             builder.settingsProvider,
		OperationsProvider:           builder.OperationsProvider,
		RepositoriesProvider:         builder.RepositoriesProvider,
	}
	pullCommand, pullError := pullBuilder.Build()
	if pullError != nil {
		return nil, pullError
	}
	command.AddCommand(pullCommand)

	fetchBuilder := shared.OperationCommandBuilder{
		Use:                          fetchUseConstant,
		Short:                        fetchShortDescription,
		Long:                         fetchLongDescription,
		OperationName:                operations.OperationGitFetch,
		LoggerProvider:               builder.LoggerProvider,
		HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		SettingsProvider:             builder.settingsProvider,
		OperationsProvider:           builder.OperationsProvider,
		RepositoriesProvider:         builder.RepositoriesProvider,
	}
	fetchCommand, fetchError := fetchBuilder.Build()
	if fetchError != nil {
		return nil, fetchError
	}
	command.AddCommand(fetchCommand)

	listBuilder := ListCommandBuilder{
		LoggerProvider:               builder.LoggerProvider,
		HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		ConfigurationProvider:        builder.ConfigurationProvider,
		RepositoriesProvider:         builder.RepositoriesProvider,
	}
	listCommand, listError := listBuilder.Build()
	if listError != nil {
		return nil, listError
	}
	command.AddCommand(listCommand)

	statusBuilder := StatusCommandBuilder{
		LoggerProvider:               builder.LoggerProvider,
		HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		ConfigurationProvider:        builder.ConfigurationProvider,
		OperationsProvider:           builder.OperationsProvider,
		RepositoriesProvider:         builder.RepositoriesProvider,
	}
	statusCommand, statusError := statusBuilder.Build()
	if statusError != nil {
		return nil, statusError
	}
	command.AddCommand(statusCommand)

	return command, nil
}

func (builder *CommandGroupBuilder) settingsProvider() shared.SettingsConfiguration {
	if builder.ConfigurationProvider == nil {
		return shared.DefaultSettingsConfiguration()
	}
	return builder.ConfigurationProvider().Settings
}
