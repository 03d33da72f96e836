package repos

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fleetops/fleet/cmd/cli/shared"
	"github.com/fleetops/fleet/internal/dispatch"
	"github.com/fleetops/fleet/internal/discovery"
	"github.com/fleetops/fleet/internal/gitrepo"
	"github.com/fleetops/fleet/internal/registry"
)

const (
	listUseConstant      = "list"
	listShortDescription = "List selected repositories and their state"
	listLongDescription  = "list prints every selected repository with its branch, worktree state, and position relative to its upstream."

	listLineTemplateConstant     = "%-30s %-20s %s\n"
	listDirtyMarkerConstant      = "dirty"
	listDetachedBranchConstant   = "(detached)"
	listNoUpstreamMarkerConstant = "no upstream"
	listAheadBehindTemplate      = "+%d/-%d"
	listCleanStateConstant       = "clean"
	listStateSeparatorConstant   = ", "
	listErrorTemplateConstant    = "%-30s error: %v\n"
)

// ListCommandBuilder assembles the repos list command.
type ListCommandBuilder struct {
	LoggerProvider               shared.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() ToolsConfiguration
	RepositoriesProvider         func() []registry.RepositoryConfiguration
}

// Build constructs the repos list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	settings := &shared.ExecutionSettings{}

	command := &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescription,
		Long:  listLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, settings)
		},
	}
	shared.RegisterExecutionFlags(command, settings)

	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, flagSettings *shared.ExecutionSettings) error {
	configuration := builder.resolveConfiguration()
	settings := shared.MergeSettings(command, *flagSettings, configuration.Settings)

	repositories, resolveError := shared.ResolveRepositories(builder.resolveRepositories(), settings, discovery.MarkerGitRepository)
	if resolveError != nil {
		return resolveError
	}

	logger := shared.ResolveLogger(builder.LoggerProvider)
	humanReadableLogging := builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
	executionDependencies, dependenciesError := dispatch.BuildDependencies(logger, humanReadableLogging)
	if dependenciesError != nil {
		return dependenciesError
	}

	for _, repository := range repositories {
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
	return nil
}

func (builder *ListCommandBuilder) resolveConfiguration() ToolsConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultToolsConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *ListCommandBuilder) resolveRepositories() []registry.RepositoryConfiguration {
	if builder.RepositoriesProvider == nil {
		return nil
	}
	return builder.RepositoriesProvider()
}

func branchLabel(repositoryStatus gitrepo.RepositoryStatus) string {
	if repositoryStatus.HeadDetached {
		return listDetachedBranchConstant
	}
	return repositoryStatus.Branch
}

func stateLabel(repositoryStatus gitrepo.RepositoryStatus) string {
	stateParts := make([]string, 0, 3)
	if repositoryStatus.Dirty {
		stateParts = append(stateParts, listDirtyMarkerConstant)
	}
	if !repositoryStatus.HeadDetached && !repositoryStatus.HasUpstream {
		stateParts = append(stateParts, listNoUpstreamMarkerConstant)
	}
	if repositoryStatus.HasUpstream && (repositoryStatus.AheadCount > 0 || repositoryStatus.BehindCount > 0) {
		stateParts = append(stateParts, fmt.Sprintf(listAheadBehindTemplate, repositoryStatus.AheadCount, repositoryStatus.BehindCount))
	}
	if len(stateParts) == 0 {
		return listCleanStateConstant
	}
	return strings.Join(stateParts, listStateSeparatorConstant)
}
