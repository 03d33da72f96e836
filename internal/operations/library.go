package operations

import (
	"fmt"
	"sort"
	"strings"
)

const (
	operationNameMissingMessageConstant       = "operation name must be provided"
	operationExecutableMissingTemplate        = "operation %s is missing an executable"
	duplicateOperationTemplateConstant        = "operation name %s is defined more than once"
	unknownOperationTemplateConstant          = "unknown operation %s; run with no arguments to list available operations"
)

// Library resolves operation names into templates. Builtin operations are
// registered first; user-defined templates may add new operations or override
// builtin ones.
type Library struct {
	operationIndex map[string]Operation
}

// NewLibrary constructs a library seeded with the builtin catalog.
func NewLibrary() *Library {
	library := &Library{operationIndex: make(map[string]Operation)}
	for _, operation := range BuiltinOperations() {
		library.operationIndex[operation.Name] = operation
	}
	return library
}

// Register validates and merges user-defined operations over the catalog.
// Duplicate names within the provided slice are rejected; overriding a builtin
// operation is allowed.
func (library *Library) Register(customOperations []Operation) error {
	registeredNames := make(map[string]struct{}, len(customOperations))
	for _, operation := range customOperations {
		trimmedName := strings.TrimSpace(operation.Name)
		if len(trimmedName) == 0 {
			return ConfigurationError{Message: operationNameMissingMessageConstant}
		}
		if len(strings.TrimSpace(operation.Executable)) == 0 {
			return ConfigurationError{Message: fmt.Sprintf(operationExecutableMissingTemplate, trimmedName)}
		}
		if _, alreadyRegistered := registeredNames[trimmedName]; alreadyRegistered {
			return ConfigurationError{Message: fmt.Sprintf(duplicateOperationTemplateConstant, trimmedName)}
		}

		registeredNames[trimmedName] = struct{}{}
		operation.Name = trimmedName
		library.operationIndex[trimmedName] = operation
	}
	return nil
}

// Lookup resolves an operation by name, yielding a ConfigurationError for
// unknown names so the failure surfaces before any dispatch begins.
func (library *Library) Lookup(operationName string) (Operation, error) {
	trimmedName := strings.TrimSpace(operationName)
	operation, operationKnown := library.operationIndex[trimmedName]
	if !operationKnown {
		return Operation{}, ConfigurationError{Message: fmt.Sprintf(unknownOperationTemplateConstant, trimmedName)}
	}
	return operation, nil
}

// Names lists registered operation names in lexical order.
func (library *Library) Names() []string {
	names := make([]string, 0, len(library.operationIndex))
	for operationName := range library.operationIndex {
		names = append(names, operationName)
	}
	sort.Strings(names)
	return names
}
