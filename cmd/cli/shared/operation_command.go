package shared

import (
	"github.com/spf13/cobra"

	"github.com/fleetops/fleet/internal/operations"
	"github.com/fleetops/fleet/internal/registry"
)

// ArgumentsDecorator lets a command append extra arguments to the operation
// template before dispatch, typically derived from its own flags.
type ArgumentsDecorator func(command *cobra.Command) ([]string, error)

// OperationCommandBuilder assembles a command that dispatches one named
// operation across the selected repositories.
type OperationCommandBuilder struct {
	Use                          string
	Short                        string
	Long                         string
	OperationName                string
	ArgumentsDecorator           ArgumentsDecorator
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	SettingsProvider             func() SettingsConfiguration
	OperationsProvider           func() (*operations.Library, error)
	RepositoriesProvider         func() []registry.RepositoryConfiguration
}

// Build constructs the operation command.
func (builder *OperationCommandBuilder) Build() (*cobra.Command, error) {
	settings := &ExecutionSettings{}

	command := &cobra.Command{
		Use:   builder.Use,
		Short: builder.Short,
		Long:  builder.Long,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, settings)
		},
	}
	RegisterExecutionFlags(command, settings)

	return command, nil
}

func (builder *OperationCommandBuilder) run(command *cobra.Command, flagSettings *ExecutionSettings) error {
	operationLibrary, libraryError := builder.resolveLibrary()
	if libraryError != nil {
		return libraryError
	}

	operation, lookupError := operationLibrary.Lookup(builder.OperationName)
	if lookupError != nil {
		return lookupError
	}

	if builder.ArgumentsDecorator != nil {
		additionalArguments, decorationError := builder.ArgumentsDecorator(command)
		if decorationError != nil {
			return decorationError
		}
		operation = operation.WithAdditionalArguments(additionalArguments...)
	}

	settings := MergeSettings(command, *flagSettings, builder.resolveSettings())
	dispatchOptions, optionsError := settings.DispatchOptions()
	if optionsError != nil {
		return optionsError
	}

	repositories, resolveError := ResolveRepositories(builder.resolveRepositories(), settings, operation.Marker)
	if resolveError != nil {
		return resolveError
	}

	logger := ResolveLogger(builder.LoggerProvider)
	humanReadableLogging := builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
	return RunOperation(command, logger, humanReadableLogging, operation, repositories, dispatchOptions)
}

func (builder *OperationCommandBuilder) resolveLibrary() (*operations.Library, error) {
	if builder.OperationsProvider == nil {
		return operations.NewLibrary(), nil
	}
	return builder.OperationsProvider()
}

func (builder *OperationCommandBuilder) resolveSettings() SettingsConfiguration {
	if builder.SettingsProvider == nil {
		return DefaultSettingsConfiguration()
	}
	return builder.SettingsProvider()
}

func (builder *OperationCommandBuilder) resolveRepositories() []registry.RepositoryConfiguration {
	if builder.RepositoriesProvider == nil {
		return nil
	}
	return builder.RepositoriesProvider()
}
