package operations

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fleetops/fleet/internal/discovery"
)

const (
	templatesLoadErrorTemplateConstant    = "failed to load operation templates: %w"
	templatesParseErrorTemplateConstant   = "failed to parse operation templates: %w"
	templatesPathRequiredMessageConstant  = "operation templates path must be provided"
	templateTimeoutInvalidTemplate        = "operation %s declares an invalid timeout: %s"
	templateGuardUnknownTemplateConstant  = "operation %s declares an unknown guard: %s"
)

// TemplateConfiguration mirrors one user-defined operation in the templates file.
type TemplateConfiguration struct {
	Name       string   `yaml:"name" mapstructure:"name"`
	Executable string   `yaml:"executable" mapstructure:"executable"`
	Arguments  []string `yaml:"arguments" mapstructure:"arguments"`
	Timeout    string   `yaml:"timeout" mapstructure:"timeout"`
	Marker     string   `yaml:"marker" mapstructure:"marker"`
	Guards     []string `yaml:"guards" mapstructure:"guards"`
}

// TemplatesDocument is the root of an operation templates file.
type TemplatesDocument struct {
	Operations []TemplateConfiguration `yaml:"operations"`
}

// LoadTemplates reads user-defined operation templates from a YAML file.
func LoadTemplates(filePath string) ([]Operation, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return nil, ConfigurationError{Message: templatesPathRequiredMessageConstant}
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return nil, fmt.Errorf(templatesLoadErrorTemplateConstant, readError)
	}

	var document TemplatesDocument
	if unmarshalError := yaml.Unmarshal(contentBytes, &document); unmarshalError != nil {
		return nil, fmt.Errorf(templatesParseErrorTemplateConstant, unmarshalError)
	}

	return ConvertTemplates(document.Operations)
}

// ConvertTemplates turns template configurations into typed operations.
func ConvertTemplates(templates []TemplateConfiguration) ([]Operation, error) {
	convertedOperations := make([]Operation, 0, len(templates))
	for _, template := range templates {
		operation := Operation{
			Name:       strings.TrimSpace(template.Name),
			Executable: strings.TrimSpace(template.Executable),
			Arguments:  append([]string{}, template.Arguments...),
			Marker:     discovery.Marker(strings.TrimSpace(template.Marker)),
		}

		trimmedTimeout := strings.TrimSpace(template.Timeout)
		if len(trimmedTimeout) > 0 {
			parsedTimeout, parseError := time.ParseDuration(trimmedTimeout)
			if parseError != nil {
				return nil, ConfigurationError{Message: fmt.Sprintf(templateTimeoutInvalidTemplate, operation.Name, trimmedTimeout)}
			}
			operation.Timeout = parsedTimeout
		}

		for _, rawGuard := range template.Guards {
			guard, guardError := parseGuardRequirement(operation.Name, rawGuard)
			if guardError != nil {
				return nil, guardError
			}
			operation.Guards = append(operation.Guards, guard)
		}

		convertedOperations = append(convertedOperations, operation)
	}
	return convertedOperations, nil
}

func parseGuardRequirement(operationName string, rawGuard string) (GuardRequirement, error) {
	trimmedGuard := GuardRequirement(strings.TrimSpace(rawGuard))
	switch trimmedGuard {
	case GuardCleanWorktree, GuardAttachedHead, GuardUpstreamConfigured:
		return trimmedGuard, nil
	default:
		return "", ConfigurationError{Message: fmt.Sprintf(templateGuardUnknownTemplateConstant, operationName, rawGuard)}
	}
}
