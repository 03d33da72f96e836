// Package maven implements the maven command family: building and installing
// service projects in bulk, and running a single Spring Boot service.
package maven

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fleetops/fleet/cmd/cli/shared"
	"github.com/fleetops/fleet/internal/operations"
	"github.com/fleetops/fleet/internal/registry"
)

const (
	groupUseConstant      = "maven"
	groupShortDescription = "Build and run maven projects across repositories"
	groupLongDescription  = "maven groups subcommands that compile, install, and run maven projects in the selected repositories."

	buildUseConstant      = "build"
	buildShortDescription = "Compile every selected maven project"
	buildLongDescription  = "build runs mvn clean compile in every selected repository carrying a pom.xml."

	installUseConstant      = "install"
	installShortDescription = "Install every selected maven project"
	installLongDescription  = "install runs mvn install in every selected repository carrying a pom.xml."

	profileFlagNameConstant     = "profile"
	profileFlagUsageConstant    = "Maven profile activated for the build."
	profileArgumentTemplate     = "-P%s"
)

// CommandConfiguration stores persisted configuration for the maven command family.
type CommandConfiguration struct {
	Settings shared.SettingsConfiguration `mapstructure:",squash"`
	Profile  string                       `mapstructure:"profile"`
}

// DefaultConfiguration returns baseline configuration for the maven commands.
func DefaultConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Settings: shared.DefaultSettingsConfiguration(),
		Profile:  defaultRunProfileConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for the maven command section.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := shared.DefaultSettingsValues(rootKey)
	defaults[rootKey+".profile"] = defaultRunProfileConstant
	return defaults
}

// CommandGroupBuilder assembles the maven command group.
type CommandGroupBuilder struct {
	LoggerProvider               shared.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	OperationsProvider           func() (*operations.Library, error)
	RepositoriesProvider         func() []registry.RepositoryConfiguration
}

// Build constructs the maven command hierarchy.
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
		{use: buildUseConstant, short: buildShortDescription, long: buildLongDescription, operationName: operations.OperationMavenBuild},
		{use: installUseConstant, short: installShortDescription, long: installLongDescription, operationName: operations.OperationMavenInstall},
	}

	for _, definition := range subcommandDefinitions {
		subcommandBuilder := shared.OperationCommandBuilder{
			Use:                          definition.use,
			Short:                        definition.short,
			Long:                         definition.long,
			OperationName:                definition.operationName,
			ArgumentsDecorator:           builder.profileArguments,
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
		subcommand.Flags().String(profileFlagNameConstant, "", profileFlagUsageConstant)
		command.AddCommand(subcommand)
	}

	runBuilder := RunCommandBuilder{
		LoggerProvider:               builder.LoggerProvider,
		HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		ConfigurationProvider:        builder.ConfigurationProvider,
		OperationsProvider:           builder.OperationsProvider,
		RepositoriesProvider:         builder.RepositoriesProvider,
	}
	runCommand, runError := runBuilder.Build()
	if runError != nil {
		return nil, runError
	}
	command.AddCommand(runCommand)

	return command, nil
}

// profileArguments activates the maven profile requested via flag, falling
// back to the configured profile when the flag is untouched.
func (builder *CommandGroupBuilder) profileArguments(command *cobra.Command) ([]string, error) {
	profileName := ""
	if command.Flags().Changed(profileFlagNameConstant) {
		flagValue, flagError := command.Flags().GetString(profileFlagNameConstant)
		if flagError != nil {
			return nil, flagError
		}
		profileName = flagValue
	}

	trimmedProfile := strings.TrimSpace(profileName)
	if len(trimmedProfile) == 0 {
		return nil, nil
	}
	return []string{fmt.Sprintf(profileArgumentTemplate, trimmedProfile)}, nil
}

func (builder *CommandGroupBuilder) settingsProvider() shared.SettingsConfiguration {
	if builder.ConfigurationProvider == nil {
		return shared.DefaultSettingsConfiguration()
	}
	return builder.ConfigurationProvider().Settings
}
