package cli

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/fleetops/fleet/cmd/cli/compose"
	"github.com/fleetops/fleet/cmd/cli/maven"
	"github.com/fleetops/fleet/cmd/cli/repos"
	runcmd "github.com/fleetops/fleet/cmd/cli/run"
	"github.com/fleetops/fleet/internal/operations"
	"github.com/fleetops/fleet/internal/registry"
	"github.com/fleetops/fleet/internal/utils"
)

//go:embed default_config.yaml
var embeddedDefaultConfiguration []byte

const (
	applicationNameConstant             = "fleet"
	applicationShortDescriptionConstant = "Command-line dispatcher for multi-repository operations"
	applicationLongDescriptionConstant  = "fleet runs git, docker-compose, and maven operations across many service repositories at once, with a bounded worker pool and a per-repository result report."

	configFileFlagNameConstant  = "config"
	configFileFlagUsageConstant = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant    = "log-level"
	logLevelFlagUsageConstant   = "Override the configured log level."
	logFormatFlagNameConstant   = "log-format"
	logFormatFlagUsageConstant  = "Override the configured log format (structured or console)."

	environmentPrefixConstant              = "FLEET"
	configurationNameConstant              = "config"
	configurationTypeConstant              = "yaml"
	defaultConfigurationSearchPathConstant = "."
	embeddedConfigurationTypeConstant      = "yaml"

	commonLogLevelConfigKeyConstant  = "common.log_level"
	commonLogFormatConfigKeyConstant = "common.log_format"
	runConfigurationKeyConstant      = "tools.run"
	reposConfigurationKeyConstant    = "tools.repos"
	composeConfigurationKeyConstant  = "tools.compose"
	mavenConfigurationKeyConstant    = "tools.maven"

	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	subcommandBuildErrorTemplateConstant    = "unable to build subcommand: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	rootCommandInfoMessageConstant          = "fleet CLI executed"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common       ApplicationCommonConfiguration     `mapstructure:"common"`
	Repositories []registry.RepositoryConfiguration `mapstructure:"repositories"`
	Operations   OperationsConfiguration            `mapstructure:"operations"`
	Tools        ApplicationToolsConfiguration      `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// OperationsConfiguration points at user-defined operation templates.
type OperationsConfiguration struct {
	TemplatesPath string                             `mapstructure:"templates"`
	Definitions   []operations.TemplateConfiguration `mapstructure:"definitions"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	Run     runcmd.CommandConfiguration  `mapstructure:"run"`
	Repos   repos.ToolsConfiguration     `mapstructure:"repos"`
	Compose compose.CommandConfiguration `mapstructure:"compose"`
	Maven   maven.CommandConfiguration   `mapstructure:"maven"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	initializationError    error
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(embeddedDefaultConfiguration, embeddedConfigurationTypeConstant)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	runBuilder := runcmd.CommandBuilder{
		LoggerProvider:               application.loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() runcmd.CommandConfiguration {
			return application.configuration.Tools.Run
		},
		OperationsProvider:   application.operationsLibrary,
		RepositoriesProvider: application.configuredRepositories,
	}
	runCommand, runBuildError := runBuilder.Build()
	application.addSubcommand(cobraCommand, runCommand, runBuildError)

	reposBuilder := repos.CommandGroupBuilder{
		LoggerProvider:               application.loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() repos.ToolsConfiguration {
			return application.configuration.Tools.Repos
		},
		OperationsProvider:   application.operationsLibrary,
		RepositoriesProvider: application.configuredRepositories,
	}
	reposCommand, reposBuildError := reposBuilder.Build()
	application.addSubcommand(cobraCommand, reposCommand, reposBuildError)

	composeBuilder := compose.CommandGroupBuilder{
		LoggerProvider:               application.loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() compose.CommandConfiguration {
			return application.configuration.Tools.Compose
		},
		OperationsProvider:   application.operationsLibrary,
		RepositoriesProvider: application.configuredRepositories,
	}
	composeCommand, composeBuildError := composeBuilder.Build()
	application.addSubcommand(cobraCommand, composeCommand, composeBuildError)

	mavenBuilder := maven.CommandGroupBuilder{
		LoggerProvider:               application.loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() maven.CommandConfiguration {
			return application.configuration.Tools.Maven
		},
		OperationsProvider:   application.operationsLibrary,
		RepositoriesProvider: application.configuredRepositories,
	}
	mavenCommand, mavenBuildError := mavenBuilder.Build()
	application.addSubcommand(cobraCommand, mavenCommand, mavenBuildError)

	application.rootCommand = cobraCommand

	return application
}

// addSubcommand attaches a built subcommand, recording the first wiring failure.
func (application *Application) addSubcommand(rootCommand *cobra.Command, subcommand *cobra.Command, buildError error) {
	if buildError != nil {
		if application.initializationError == nil {
			application.initializationError = fmt.Errorf(subcommandBuildErrorTemplateConstant, buildError)
		}
		return
	}
	rootCommand.AddCommand(subcommand)
}

// Execute runs the command hierarchy under a signal-aware context and ensures logger flushing.
func (application *Application) Execute() error {
	if application.initializationError != nil {
		return application.initializationError
	}

	signalContext, stopSignalHandling := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignalHandling()
	application.rootCommand.SetContext(signalContext)

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range runcmd.DefaultConfigurationValues(runConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range repos.DefaultConfigurationValues(reposConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range compose.DefaultConfigurationValues(composeConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range maven.DefaultConfigurationValues(mavenConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) loggerProvider() *zap.Logger {
	return application.logger
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) configuredRepositories() []registry.RepositoryConfiguration {
	return application.configuration.Repositories
}

// operationsLibrary resolves the operation catalog: builtins first, then
// inline definitions, then the external templates file when configured.
func (application *Application) operationsLibrary() (*operations.Library, error) {
	operationLibrary := operations.NewLibrary()

	if len(application.configuration.Operations.Definitions) > 0 {
		inlineOperations, conversionError := operations.ConvertTemplates(application.configuration.Operations.Definitions)
		if conversionError != nil {
			return nil, conversionError
		}
		if registerError := operationLibrary.Register(inlineOperations); registerError != nil {
			return nil, registerError
		}
	}

	templatesPath := strings.TrimSpace(application.configuration.Operations.TemplatesPath)
	if len(templatesPath) > 0 {
		templateOperations, loadError := operations.LoadTemplates(templatesPath)
		if loadError != nil {
			return nil, loadError
		}
		if registerError := operationLibrary.Register(templateOperations); registerError != nil {
			return nil, registerError
		}
	}

	return operationLibrary, nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
