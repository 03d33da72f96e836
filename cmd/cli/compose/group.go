// Package compose implements the docker-compose command family: starting,
// stopping, and restarting service containers across repositories.
package compose

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetops/fleet/cmd/cli/shared"
	"github.com/fleetops/fleet/internal/discovery"
	"github.com/fleetops/fleet/internal/operations"
	"github.com/fleetops/fleet/internal/registry"
)

const (
	groupUseConstant      = "compose"
	groupShortDescription = "Manage docker-compose services across repositories"
	groupLongDescription  = "compose groups subcommands that start, stop, and restart docker-compose services in every selected repository."

	upUseConstant      = "up"
	upShortDescription = "Start containers in every selected repository"
	upLongDescription  = "up runs docker-compose up -d in every selected repository carrying a compose file."

	downUseConstant      = "down"
	downShortDescription = "Stop containers in every selected repository"
	downLongDescription  = "down runs docker-compose down in every selected repository carrying a compose file."

	restartUseConstant      = "restart"
	restartShortDescription = "Restart containers in every selected repository"
	restartLongDescription  = "restart runs docker-compose restart in every selected repository carrying a compose file."

	listUseConstant        = "list"
	listShortDescription   = "List repositories carrying a compose file"
	listLongDescription    = "list prints every selected repository that carries a docker-compose file."
	listLineTemplate       = "%-30s %s\n"
	noComposeReposConstant = "no repositories with compose files matched the selection\n"
)

// CommandConfiguration stores persisted dispatch tuning for the compose command family.
type CommandConfiguration struct {
	Settings shared.SettingsConfiguration `mapstructure:",squash"`
}

// DefaultConfiguration returns baseline configuration for the compose commands.
func DefaultConfiguration() CommandConfiguration {
	return CommandConfiguration{Settings: shared.DefaultSettingsConfiguration()}
}

// DefaultConfigurationValues produces Viper defaults for the compose command section.
func DefaultConfigurationValues(rootKey string) map[string]any {
	return shared.DefaultSettingsValues(rootKey)
}

// CommandGroupBuilder assembles the compose command group.
type CommandGroupBuilder struct {
	LoggerProvider               shared.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	OperationsProvider           func() (*operations.Library, error)
	RepositoriesProvider         func() []registry.RepositoryConfiguration
}

// Build constructs the compose command hierarchy.
func (builder *CommandGroupBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescription,
		Long:  groupLongDescription,
	}

	subcommandDefinitions := []struct {
		use           string
		short         string
		long          string
		operationName string
	}{
		{use: upUseConstant, short: upShortDescription, long: upLongDescription, operationName: operations.OperationComposeUp},
		{use: downUseConstant, short: downShortDescription, long: downLongDescription, operationName: operations.OperationComposeDown},
		{use: restartUseConstant, short: restartShortDescription, long: restartLongDescription, operationName: operations.OperationComposeRestart},
	}

	for _, definition := range subcommandDefinitions {
		subcommandBuilder := shared.OperationCommandBuilder{
			Use:                          definition.use,
			Short:                        definition.short,
			Long:                         definition.long,
			OperationName:                definition.operationName,
			LoggerProvider:               builder.LoggerProvider,
			HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
			SettingsProvider:             builder.settingsProvider,
			OperationsProvider:           builder.OperationsProvider,
			RepositoriesProvider:         builder.RepositoriesProvider,
		}
		subcommand, buildError := subcommandBuilder.Build()
		if buildError != nil {
			return nil, buildError
		}
		command.AddCommand(subcommand)
	}

	listCommand, listBuildError := builder.buildListCommand()
	if listBuildError != nil {
		return nil, listBuildError
	}
	command.AddCommand(listCommand)

	return command, nil
}

func (builder *CommandGroupBuilder) buildListCommand() (*cobra.Command, error) {
	settings := &shared.ExecutionSettings{}

	command := &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescription,
		Long:  listLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.listRepositories(command, settings)
		},
	}
	shared.RegisterExecutionFlags(command, settings)

	return command, nil
}

func (builder *CommandGroupBuilder) listRepositories(command *cobra.Command, flagSettings *shared.ExecutionSettings) error {
	settings := shared.MergeSettings(command, *flagSettings, builder.settingsProvider())

	configuredRepositories := []registry.RepositoryConfiguration(nil)
	if builder.RepositoriesProvider != nil {
		configuredRepositories = builder.RepositoriesProvider()
	}

	repositories, resolveError := shared.ResolveRepositories(configuredRepositories, settings, discovery.MarkerComposeFile)
	if resolveError != nil {
		return resolveError
	}
	if len(repositories) == 0 {
		_, writeError := fmt.Fprint(command.OutOrStdout(), noComposeReposConstant)
		return writeError
	}

	for _, repository := range repositories {
		if _, writeError := fmt.Fprintf(command.OutOrStdout(), listLineTemplate, repository.Name, repository.Path); writeError != nil {
			return writeError
		}
	}
	return nil
}

func (builder *CommandGroupBuilder) settingsProvider() shared.SettingsConfiguration {
	if builder.ConfigurationProvider == nil {
		return shared.DefaultSettingsConfiguration()
	}
	return builder.ConfigurationProvider().Settings
}
