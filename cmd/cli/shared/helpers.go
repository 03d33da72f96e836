// Package shared carries the command-side plumbing every fleet command family
// uses: execution flags, repository resolution, and dispatch orchestration.
package shared

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fleetops/fleet/internal/discovery"
	"github.com/fleetops/fleet/internal/dispatch"
	"github.com/fleetops/fleet/internal/operations"
	"github.com/fleetops/fleet/internal/registry"
	"github.com/fleetops/fleet/internal/report"
	"github.com/fleetops/fleet/internal/ui"
	"github.com/fleetops/fleet/internal/utils"
	flagutils "github.com/fleetops/fleet/internal/utils/flags"
)

const (
	// ReposFlagName selects repositories by name.
	ReposFlagName = "repos"
	// GroupFlagName selects repositories by group tag.
	GroupFlagName = "group"
	// RootsFlagName overrides the discovery roots.
	RootsFlagName = "roots"
	// ConcurrencyFlagName bounds the worker pool.
	ConcurrencyFlagName = "concurrency"
	// TimeoutFlagName bounds each repository execution.
	TimeoutFlagName = "timeout"
	// OnFailureFlagName selects the failure policy.
	OnFailureFlagName = "on-failure"

	reposFlagUsageConstant       = "Comma-separated repository names, or \"all\"."
	groupFlagUsageConstant       = "Comma-separated group tags to select repositories by."
	rootsFlagUsageConstant       = "Directories whose subdirectories are scanned for repositories."
	concurrencyFlagUsageConstant = "Maximum number of repositories processed at once."
	timeoutFlagUsageConstant     = "Per-repository execution timeout (for example 90s or 5m)."
	onFailureFlagDescription     = "Whether to keep going or stop dispatching after the first failure."

	defaultRepositoryRootConstant        = "."
	unknownFailurePolicyTemplateConstant = "unknown failure policy %q; use continue or abort"
	noRepositoriesMatchedMessageConstant = "no repositories matched the selection"
)

// LoggerProvider supplies the logger configured by the root command.
type LoggerProvider func() *zap.Logger

// ResolveLogger unwraps the provider, falling back to a no-op logger.
func ResolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	if logger := provider(); logger != nil {
		return logger
	}
	return zap.NewNop()
}

// ExecutionSettings captures the per-invocation dispatch tuning shared by
// every command that fans out across repositories.
type ExecutionSettings struct {
	RepositorySelector string
	GroupSelector      string
	RepositoryRoots    []string
	Concurrency        int
	Timeout            time.Duration
	OnFailure          string
}

// SettingsConfiguration mirrors the persisted dispatch tuning for one command family.
type SettingsConfiguration struct {
	RepositoryRoots []string      `mapstructure:"roots"`
	Concurrency     int           `mapstructure:"concurrency"`
	Timeout         time.Duration `mapstructure:"timeout"`
	OnFailure       string        `mapstructure:"on_failure"`
}

// DefaultSettingsConfiguration returns the baseline dispatch tuning.
func DefaultSettingsConfiguration() SettingsConfiguration {
	return SettingsConfiguration{
		RepositoryRoots: []string{defaultRepositoryRootConstant},
		Concurrency:     dispatch.DefaultConcurrency,
		OnFailure:       string(dispatch.ContinueOnError),
	}
}

// DefaultSettingsValues produces Viper defaults for one command family section.
func DefaultSettingsValues(rootKey string) map[string]any {
	defaults := DefaultSettingsConfiguration()
	return map[string]any{
		rootKey + ".roots":       defaults.RepositoryRoots,
		rootKey + ".concurrency": defaults.Concurrency,
		rootKey + ".timeout":     defaults.Timeout,
		rootKey + ".on_failure":  defaults.OnFailure,
	}
}

// RegisterExecutionFlags attaches the shared dispatch flags to the command.
func RegisterExecutionFlags(command *cobra.Command, settings *ExecutionSettings) {
	flagSet := command.Flags()
	flagSet.StringVar(&settings.RepositorySelector, ReposFlagName, "", reposFlagUsageConstant)
	flagSet.StringVar(&settings.GroupSelector, GroupFlagName, "", groupFlagUsageConstant)
	flagSet.StringSliceVar(&settings.RepositoryRoots, RootsFlagName, nil, rootsFlagUsageConstant)
	flagSet.IntVar(&settings.Concurrency, ConcurrencyFlagName, 0, concurrencyFlagUsageConstant)
	flagSet.DurationVar(&settings.Timeout, TimeoutFlagName, 0, timeoutFlagUsageConstant)
	flagSet.StringVar(&settings.OnFailure, OnFailureFlagName, "",
		flagutils.FormatChoiceUsage(string(dispatch.ContinueOnError), []string{string(dispatch.ContinueOnError), string(dispatch.AbortOnFailure)}, onFailureFlagDescription))
}

// RegisterRootsFlag attaches only the discovery roots flag, for commands that
// target a single repository and carry no dispatch tuning.
func RegisterRootsFlag(command *cobra.Command, settings *ExecutionSettings) {
	command.Flags().StringSliceVar(&settings.RepositoryRoots, RootsFlagName, nil, rootsFlagUsageConstant)
}

// MergeSettings overlays changed flags onto the persisted configuration.
func MergeSettings(command *cobra.Command, flagSettings ExecutionSettings, configuration SettingsConfiguration) ExecutionSettings {
	merged := flagSettings
	flagSet := command.Flags()

	if !flagSet.Changed(RootsFlagName) {
		merged.RepositoryRoots = append([]string{}, configuration.RepositoryRoots...)
	}
	if !flagSet.Changed(ConcurrencyFlagName) {
		merged.Concurrency = configuration.Concurrency
	}
	if !flagSet.Changed(TimeoutFlagName) {
		merged.Timeout = configuration.Timeout
	}
	if !flagSet.Changed(OnFailureFlagName) {
		merged.OnFailure = configuration.OnFailure
	}
	return merged
}

// Selector merges the repository and group selectors into one registry selector.
func (settings ExecutionSettings) Selector() registry.Selector {
	return registry.ParseSelector(settings.RepositorySelector + "," + settings.GroupSelector)
}

// FailurePolicy parses the configured failure policy name.
func (settings ExecutionSettings) FailurePolicy() (dispatch.FailurePolicy, error) {
	switch settings.OnFailure {
	case "", string(dispatch.ContinueOnError):
		return dispatch.ContinueOnError, nil
	case string(dispatch.AbortOnFailure):
		return dispatch.AbortOnFailure, nil
	default:
		return "", registry.ConfigurationError{Message: fmt.Sprintf(unknownFailurePolicyTemplateConstant, settings.OnFailure)}
	}
}

// DispatchOptions converts the settings into dispatcher options.
func (settings ExecutionSettings) DispatchOptions() (dispatch.Options, error) {
	failurePolicy, policyError := settings.FailurePolicy()
	if policyError != nil {
		return dispatch.Options{}, policyError
	}
	return dispatch.Options{
		Concurrency: settings.Concurrency,
		Policy:      failurePolicy,
		Timeout:     settings.Timeout,
	}, nil
}

// ResolveRepositories selects the repositories a command operates on. When the
// configuration declares a registry the selector runs against it; otherwise
// repositories are discovered beneath the roots using the operation's marker.
func ResolveRepositories(configuredRepositories []registry.RepositoryConfiguration, settings ExecutionSettings, marker discovery.Marker) ([]registry.Repository, error) {
	selector := settings.Selector()

	if len(configuredRepositories) > 0 {
		repositoryRegistry, registryError := registry.BuildRegistry(configuredRepositories)
		if registryError != nil {
			return nil, registryError
		}
		return repositoryRegistry.Resolve(selector)
	}

	discoveryRoots := settings.RepositoryRoots
	if len(discoveryRoots) == 0 {
		discoveryRoots = []string{defaultRepositoryRootConstant}
	}

	discoverer := discovery.NewFilesystemRepositoryDiscoverer()
	repositoryPaths, discoveryError := discoverer.DiscoverRepositories(discoveryRoots, marker)
	if discoveryError != nil {
		return nil, discoveryError
	}

	discoveredRepositories := discovery.RepositoriesFromPaths(repositoryPaths)
	if selector.SelectsAll() {
		return discoveredRepositories, nil
	}

	discoveredRegistry, registryError := registry.NewRegistry(discoveredRepositories)
	if registryError != nil {
		return nil, registryError
	}
	return discoveredRegistry.Resolve(selector)
}

// RunOperation dispatches the operation across the repositories, renders the
// report, and maps the aggregate outcome onto the command's returned error.
func RunOperation(command *cobra.Command, logger *zap.Logger, humanReadableLogging bool, operation operations.Operation, repositories []registry.Repository, options dispatch.Options) error {
	if len(repositories) == 0 {
		return registry.ConfigurationError{Message: noRepositoriesMatchedMessageConstant}
	}

	executionDependencies, dependenciesError := dispatch.BuildDependencies(logger, humanReadableLogging)
	if dependenciesError != nil {
		return dependenciesError
	}

	if humanReadableLogging {
		eventLogger, eventLoggerError := ui.NewConsoleCommandEventLogger(utils.NewFlushingWriter(command.OutOrStdout()))
		if eventLoggerError != nil {
			return eventLoggerError
		}
		executionDependencies.Executor.SetEventObserver(eventLogger)
	}

	dispatchReport := executionDependencies.Dispatcher.Dispatch(command.Context(), operation, repositories, options)

	reporter, reporterError := report.NewReporter(command.OutOrStdout())
	if reporterError != nil {
		return reporterError
	}
	if writeError := reporter.WriteReport(dispatchReport); writeError != nil {
		return writeError
	}
	return reporter.ResultError(dispatchReport)
}
