package run

import "github.com/fleetops/fleet/cmd/cli/shared"

// CommandConfiguration stores persisted dispatch tuning for the run command.
type CommandConfiguration struct {
	Settings shared.SettingsConfiguration `mapstructure:",squash"`
}

// DefaultConfiguration returns baseline configuration for the run command.
func DefaultConfiguration() CommandConfiguration {
	return CommandConfiguration{Settings: shared.DefaultSettingsConfiguration()}
}

// DefaultConfigurationValues produces Viper defaults for the run command section.
func DefaultConfigurationValues(rootKey string) map[string]any {
	return shared.DefaultSettingsValues(rootKey)
}
