package operations

import (
	"fmt"
	"time"

	"github.com/fleetops/fleet/internal/discovery"
)

const operationConfigurationErrorTemplate = "operation configuration error: %s"

// GuardRequirement names a repository precondition checked before an operation runs.
// A violated guard skips the repository instead of failing it.
type GuardRequirement string

// Supported guard requirements.
const (
	GuardCleanWorktree      GuardRequirement = GuardRequirement("clean-worktree")
	GuardAttachedHead       GuardRequirement = GuardRequirement("attached-head")
	GuardUpstreamConfigured GuardRequirement = GuardRequirement("upstream-configured")
)

// Operation maps a name to an external invocation template. Templates are pure
// data; the executable is launched with the repository path as working directory.
type Operation struct {
	Name       string
	Executable string
	Arguments  []string
	Timeout    time.Duration
	Marker     discovery.Marker
	Guards     []GuardRequirement
}

// ConfigurationError reports malformed operation templates.
type ConfigurationError struct {
	Message string
}

// Error describes the template problem.
func (configurationError ConfigurationError) Error() string {
	return fmt.Sprintf(operationConfigurationErrorTemplate, configurationError.Message)
}

// WithAdditionalArguments returns a copy of the operation with arguments appended.
func (operation Operation) WithAdditionalArguments(additionalArguments ...string) Operation {
	duplicated := operation
	duplicated.Arguments = append(append([]string{}, operation.Arguments...), additionalArguments...)
	return duplicated
}

// WithTimeout returns a copy of the operation carrying the provided timeout.
func (operation Operation) WithTimeout(timeout time.Duration) Operation {
	duplicated := operation
	duplicated.Timeout = timeout
	return duplicated
}

// RequiresGuard reports whether the operation declares the provided guard.
func (operation Operation) RequiresGuard(guard GuardRequirement) bool {
	for _, declaredGuard := range operation.Guards {
		if declaredGuard == guard {
			return true
		}
	}
	return false
}
