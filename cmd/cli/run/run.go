// Package run implements the generic operation dispatch command: any named
// operation, builtin or user-defined, fanned out across selected repositories.
package run

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetops/fleet/cmd/cli/shared"
	"github.com/fleetops/fleet/internal/operations"
	"github.com/fleetops/fleet/internal/registry"
	"github.com/fleetops/fleet/internal/utils"
)

const (
	runUseConstant       = "run [operation]"
	runShortDescription  = "Run an operation across selected repositories"
	runLongDescription   = "run dispatches a named operation across the selected repositories with a bounded worker pool. Without an operation name it lists the available operations."
	operationListHeading = "Available operations:\n"
	operationListItem    = "  %s\n"
	operationListFooter  = "\nOperations loaded from %s\n"
)

// CommandBuilder assembles the run command.
type CommandBuilder struct {
	LoggerProvider               shared.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	OperationsProvider           func() (*operations.Library, error)
	RepositoriesProvider         func() []registry.RepositoryConfiguration
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	settings := &shared.ExecutionSettings{}

	command := &cobra.Command{
		Use:   runUseConstant,
		Short: runShortDescription,
		Long:  runLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, settings)
		},
	}
	shared.RegisterExecutionFlags(command, settings)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagSettings *shared.ExecutionSettings) error {
	operationLibrary, libraryError := builder.resolveLibrary()
	if libraryError != nil {
		return libraryError
	}

	if len(arguments) == 0 {
		return builder.listOperations(command, operationLibrary)
	}

	operation, lookupError := operationLibrary.Lookup(arguments[0])
	if lookupError != nil {
		return lookupError
	}

	settings := shared.MergeSettings(command, *flagSettings, builder.resolveConfiguration().Settings)
	dispatchOptions, optionsError := settings.DispatchOptions()
	if optionsError != nil {
		return optionsError
	}

	repositories, resolveError := shared.ResolveRepositories(builder.resolveRepositories(), settings, operation.Marker)
	if resolveError != nil {
		return resolveError
	}

	logger := shared.ResolveLogger(builder.LoggerProvider)
	humanReadableLogging := builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
	return shared.RunOperation(command, logger, humanReadableLogging, operation, repositories, dispatchOptions)
}

func (builder *CommandBuilder) listOperations(command *cobra.Command, operationLibrary *operations.Library) error {
	if _, writeError := fmt.Fprint(command.OutOrStdout(), operationListHeading); writeError != nil {
		return writeError
	}
	for _, operationName := range operationLibrary.Names() {
		if _, writeError := fmt.Fprintf(command.OutOrStdout(), operationListItem, operationName); writeError != nil {
			return writeError
		}
	}

	contextAccessor := utils.NewCommandContextAccessor()
	if configurationFilePath, pathAvailable := contextAccessor.ConfigurationFilePath(command.Context()); pathAvailable {
		if _, writeError := fmt.Fprintf(command.OutOrStdout(), operationListFooter, configurationFilePath); writeError != nil {
			return writeError
		}
	}
	return nil
}

func (builder *CommandBuilder) resolveLibrary() (*operations.Library, error) {
	if builder.OperationsProvider == nil {
		return operations.NewLibrary(), nil
	}
	return builder.OperationsProvider()
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveRepositories() []registry.RepositoryConfiguration {
	if builder.RepositoriesProvider == nil {
		return nil
	}
	return builder.RepositoriesProvider()
}
