package utils

import "context"

type commandContextKey string

// The resolved configuration file path travels on the command context so
// subcommands can tell the user which file their settings came from.
const configurationFilePathContextKeyConstant = commandContextKey("fleet.configuration_file_path")

// CommandContextAccessor reads and writes fleet values carried on command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath returns a context carrying the resolved configuration file path.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath reports the configuration file path carried by the context, when present.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, carried := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	return configurationFilePath, carried
}
