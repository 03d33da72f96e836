package maven

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fleetops/fleet/cmd/cli/shared"
	"github.com/fleetops/fleet/internal/dispatch"
	"github.com/fleetops/fleet/internal/operations"
	"github.com/fleetops/fleet/internal/registry"
)

const (
	runUseConstant      = "run <repository>"
	runShortDescription = "Run one Spring Boot service"
	runLongDescription  = "run starts mvn spring-boot:run in a single repository with the selected maven profile. JVM arguments are taken from the FLEET_JVMARGS environment variable."

	defaultRunProfileConstant        = "local-dev"
	jvmArgumentsEnvironmentVariable  = "FLEET_JVMARGS"
	jvmArgumentsTemplateConstant     = "-Dspring-boot.run.jvmArguments=%s"
	unknownRepositoryTemplateConstant = "no repository named %s"
)

// RunCommandBuilder assembles the maven run command.
type RunCommandBuilder struct {
	LoggerProvider               shared.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	OperationsProvider           func() (*operations.Library, error)
	RepositoriesProvider         func() []registry.RepositoryConfiguration
}

// Build constructs the maven run command.
func (builder *RunCommandBuilder) Build() (*cobra.Command, error) {
	settings := &shared.ExecutionSettings{}

	command := &cobra.Command{
		Use:   runUseConstant,
		Short: runShortDescription,
		Long:  runLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments[0], settings)
		},
	}
	shared.RegisterRootsFlag(command, settings)
	command.Flags().String(profileFlagNameConstant, "", profileFlagUsageConstant)

	return command, nil
}

func (builder *RunCommandBuilder) run(command *cobra.Command, repositoryName string, flagSettings *shared.ExecutionSettings) error {
	operationLibrary, libraryError := builder.resolveLibrary()
	if libraryError != nil {
		return libraryError
	}

	operation, lookupError := operationLibrary.Lookup(operations.OperationSpringBootRun)
	if lookupError != nil {
		return lookupError
	}

	configuration := builder.resolveConfiguration()
	operation = operation.WithAdditionalArguments(builder.runArguments(command, configuration)...)

	settings := shared.MergeSettings(command, *flagSettings, configuration.Settings)
	repositories, resolveError := shared.ResolveRepositories(builder.resolveRepositories(), settings, operation.Marker)
	if resolveError != nil {
		return resolveError
	}

	selectedRepository, selectionError := selectRepository(repositories, repositoryName)
	if selectionError != nil {
		return selectionError
	}

	logger := shared.ResolveLogger(builder.LoggerProvider)
	humanReadableLogging := builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()

	// A service run has no timeout; it keeps going until interrupted.
	runOptions := dispatch.Options{Concurrency: 1, Policy: dispatch.ContinueOnError}
	return shared.RunOperation(command, logger, humanReadableLogging, operation, []registry.Repository{selectedRepository}, runOptions)
}

// runArguments builds the profile and JVM argument flags for spring-boot:run.
func (builder *RunCommandBuilder) runArguments(command *cobra.Command, configuration CommandConfiguration) []string {
	profileName := strings.TrimSpace(configuration.Profile)
	if command.Flags().Changed(profileFlagNameConstant) {
		if flagValue, flagError := command.Flags().GetString(profileFlagNameConstant); flagError == nil {
			profileName = strings.TrimSpace(flagValue)
		}
	}
	if len(profileName) == 0 {
		profileName = defaultRunProfileConstant
	}

	runArguments := []string{fmt.Sprintf(profileArgumentTemplate, profileName)}
	if jvmArguments := strings.TrimSpace(os.Getenv(jvmArgumentsEnvironmentVariable)); len(jvmArguments) > 0 {
		runArguments = append(runArguments, fmt.Sprintf(jvmArgumentsTemplateConstant, jvmArguments))
	}
	return runArguments
}

func (builder *RunCommandBuilder) resolveLibrary() (*operations.Library, error) {
	if builder.OperationsProvider == nil {
		return operations.NewLibrary(), nil
	}
	return builder.OperationsProvider()
}

func (builder *RunCommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *RunCommandBuilder) resolveRepositories() []registry.RepositoryConfiguration {
	if builder.RepositoriesProvider == nil {
		return nil
	}
	return builder.RepositoriesProvider()
}

func selectRepository(repositories []registry.Repository, repositoryName string) (registry.Repository, error) {
	trimmedName := strings.TrimSpace(repositoryName)
	for _, repository := range repositories {
		if repository.Name == trimmedName {
			return repository, nil
		}
	}
	return registry.Repository{}, registry.ConfigurationError{Message: fmt.Sprintf(unknownRepositoryTemplateConstant, trimmedName)}
}
