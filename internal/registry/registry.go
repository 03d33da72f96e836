package registry

import (
	"fmt"
	"strings"
)

const (
	repositoryNameMissingMessageConstant   = "repository name must be provided"
	repositoryPathMissingTemplateConstant  = "repository %s is missing a path"
	duplicateRepositoryTemplateConstant    = "repository name %s is defined more than once"
	unknownSelectorEntryTemplateConstant   = "no repository or group named %s"
	configurationErrorMessageTemplate      = "configuration error: %s"
	selectorEntrySeparatorConstant         = ","
	selectorWildcardAllConstant            = "all"
)

// Repository identifies one independently versioned working tree.
type Repository struct {
	Name   string
	Path   string
	Groups []string
}

// ConfigurationError reports malformed registry configuration or unknown selectors.
// It is fatal to the whole invocation and is surfaced before any dispatch begins.
type ConfigurationError struct {
	Message string
}

// Error describes the configuration problem.
func (configurationError ConfigurationError) Error() string {
	return fmt.Sprintf(configurationErrorMessageTemplate, configurationError.Message)
}

// Selector narrows the registry to a subset of repositories by name or group tag.
// The zero value selects every repository.
type Selector struct {
	Entries []string
}

// ParseSelector splits a comma-separated selector expression into entries.
func ParseSelector(rawSelector string) Selector {
	entries := make([]string, 0)
	for _, rawEntry := range strings.Split(rawSelector, selectorEntrySeparatorConstant) {
		trimmedEntry := strings.TrimSpace(rawEntry)
		if len(trimmedEntry) == 0 {
			continue
		}
		if strings.EqualFold(trimmedEntry, selectorWildcardAllConstant) {
			return Selector{}
		}
		entries = append(entries, trimmedEntry)
	}
	return Selector{Entries: entries}
}

// SelectsAll reports whether the selector matches every repository.
func (selector Selector) SelectsAll() bool {
	return len(selector.Entries) == 0
}

// Registry holds the immutable set of known repositories in configuration order.
type Registry struct {
	repositories []Repository
	nameIndex    map[string]int
	groupIndex   map[string][]int
}

// NewRegistry validates the provided repositories and builds lookup indexes.
// Repository names must be unique and paths non-empty; path existence is
// checked lazily at dispatch time.
func NewRegistry(repositories []Repository) (*Registry, error) {
	nameIndex := make(map[string]int, len(repositories))
	groupIndex := make(map[string][]int)
	orderedRepositories := make([]Repository, 0, len(repositories))

	for repositoryIndex, repository := range repositories {
		trimmedName := strings.TrimSpace(repository.Name)
		if len(trimmedName) == 0 {
			return nil, ConfigurationError{Message: repositoryNameMissingMessageConstant}
		}
		if len(strings.TrimSpace(repository.Path)) == 0 {
			return nil, ConfigurationError{Message: fmt.Sprintf(repositoryPathMissingTemplateConstant, trimmedName)}
		}
		if _, alreadyDefined := nameIndex[trimmedName]; alreadyDefined {
			return nil, ConfigurationError{Message: fmt.Sprintf(duplicateRepositoryTemplateConstant, trimmedName)}
		}

		repository.Name = trimmedName
		nameIndex[trimmedName] = repositoryIndex
		for _, groupTag := range repository.Groups {
			trimmedGroup := strings.TrimSpace(groupTag)
			if len(trimmedGroup) == 0 {
				continue
			}
			groupIndex[trimmedGroup] = append(groupIndex[trimmedGroup], repositoryIndex)
		}
		orderedRepositories = append(orderedRepositories, repository)
	}

	return &Registry{
		repositories: orderedRepositories,
		nameIndex:    nameIndex,
		groupIndex:   groupIndex,
	}, nil
}

// All returns every registered repository in configuration order.
func (registry *Registry) All() []Repository {
	return append([]Repository{}, registry.repositories...)
}

// Len reports the number of registered repositories.
func (registry *Registry) Len() int {
	return len(registry.repositories)
}

// Resolve returns the repositories matched by the selector in configuration
// order, collapsing duplicates. An entry matching neither a repository name
// nor a group tag yields a ConfigurationError.
func (registry *Registry) Resolve(selector Selector) ([]Repository, error) {
	if selector.SelectsAll() {
		return registry.All(), nil
	}

	selectedIndexes := make(map[int]struct{})
	for _, selectorEntry := range selector.Entries {
		repositoryIndex, nameMatched := registry.nameIndex[selectorEntry]
		if nameMatched {
			selectedIndexes[repositoryIndex] = struct{}{}
			continue
		}

		groupMembers, groupMatched := registry.groupIndex[selectorEntry]
		if !groupMatched {
			return nil, ConfigurationError{Message: fmt.Sprintf(unknownSelectorEntryTemplateConstant, selectorEntry)}
		}
		for _, memberIndex := range groupMembers {
			selectedIndexes[memberIndex] = struct{}{}
		}
	}

	resolvedRepositories := make([]Repository, 0, len(selectedIndexes))
	for repositoryIndex, repository := range registry.repositories {
		if _, selected := selectedIndexes[repositoryIndex]; selected {
			resolvedRepositories = append(resolvedRepositories, repository)
		}
	}
	return resolvedRepositories, nil
}
