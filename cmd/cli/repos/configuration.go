package repos

import "github.com/fleetops/fleet/cmd/cli/shared"

// ToolsConfiguration stores persisted dispatch tuning for the repos command family.
type ToolsConfiguration struct {
	Settings shared.SettingsConfiguration `mapstructure:",squash"`
}

// DefaultToolsConfiguration returns baseline configuration for the repos commands.
func DefaultToolsConfiguration() ToolsConfiguration {
	return ToolsConfiguration{Settings: shared.DefaultSettingsConfiguration()}
}

// DefaultConfigurationValues produces Viper defaults for the repos command section.
func DefaultConfigurationValues(rootKey string) map[string]any {
	return shared.DefaultSettingsValues(rootKey)
}
