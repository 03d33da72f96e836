package tests

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationCommandTimeout             = 60 * time.Second
	integrationGoExecutableConstant       = "go"
	integrationRunSubcommandConstant      = "run"
	integrationModulePathConstant         = "."
	integrationConfigFlagTemplateConstant = "--config=%s"
	integrationRootsFlagTemplateConstant  = "--roots=%s"
	integrationHelpUsagePrefixConstant    = "Usage:"
	integrationHelpDescriptionSnippet     = "fleet runs git, docker-compose, and maven operations"
	integrationOperationListHeading       = "Available operations:"
	integrationBuiltinOperationConstant   = "git-pull"
	integrationConfigFileNameConstant     = "config.yaml"
	integrationMarkerDirectoryConstant    = ".git"
	integrationTouchedFileNameConstant    = "dispatched"

	integrationTouchConfigConstant = "operations:\n" +
		"  definitions:\n" +
		"    - name: touch-marker\n" +
		"      executable: sh\n" +
		"      arguments: [\"-c\", \"touch dispatched\"]\n" +
		"      marker: .git\n"
	integrationFailConfigConstant = "operations:\n" +
		"  definitions:\n" +
		"    - name: always-fail\n" +
		"      executable: sh\n" +
		"      arguments: [\"-c\", \"echo boom >&2; exit 7\"]\n" +
		"      marker: .git\n"
)

func repositoryRootDirectory(testInstance *testing.T) string {
	testInstance.Helper()
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	return filepath.Dir(workingDirectory)
}

func runFleetCommand(testInstance *testing.T, arguments []string) (string, int) {
	testInstance.Helper()

	executionContext, cancelExecution := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancelExecution()

	commandArguments := append([]string{integrationRunSubcommandConstant, integrationModulePathConstant}, arguments...)
	command := exec.CommandContext(executionContext, integrationGoExecutableConstant, commandArguments...)
	command.Dir = repositoryRootDirectory(testInstance)
	command.Env = append([]string{}, os.Environ()...)

	outputBytes, runError := command.CombinedOutput()
	if runError == nil {
		return string(outputBytes), 0
	}

	exitError := &exec.ExitError{}
	if errors.As(runError, &exitError) {
		return string(outputBytes), exitError.ExitCode()
	}

	testInstance.Fatalf("command failed to start: %v\n%s", runError, string(outputBytes))
	return "", 0
}

func createWorkspaceRepositories(testInstance *testing.T, repositoryNames ...string) string {
	testInstance.Helper()
	workspaceDirectory := testInstance.TempDir()
	for _, repositoryName := range repositoryNames {
		markerPath := filepath.Join(workspaceDirectory, repositoryName, integrationMarkerDirectoryConstant)
		require.NoError(testInstance, os.MkdirAll(markerPath, 0o755))
	}
	return workspaceDirectory
}

func writeConfigurationFile(testInstance *testing.T, content string) string {
	testInstance.Helper()
	configurationPath := filepath.Join(testInstance.TempDir(), integrationConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o644))
	return configurationPath
}

func TestCLIHelpOutput(testInstance *testing.T) {
	helpOutput, exitCode := runFleetCommand(testInstance, nil)
	require.Zero(testInstance, exitCode, helpOutput)
	require.Contains(testInstance, helpOutput, integrationHelpUsagePrefixConstant)
	require.Contains(testInstance, helpOutput, integrationHelpDescriptionSnippet)
}

func TestRunWithoutOperationListsCatalog(testInstance *testing.T) {
	listOutput, exitCode := runFleetCommand(testInstance, []string{"run"})
	require.Zero(testInstance, exitCode, listOutput)
	require.Contains(testInstance, listOutput, integrationOperationListHeading)
	require.Contains(testInstance, listOutput, integrationBuiltinOperationConstant)
}

func TestRunDispatchesCustomOperationAcrossRepositories(testInstance *testing.T) {
	workspaceDirectory := createWorkspaceRepositories(testInstance, "orders-service", "billing-service")
	configurationPath := writeConfigurationFile(testInstance, integrationTouchConfigConstant)

	dispatchOutput, exitCode := runFleetCommand(testInstance, []string{
		fmt.Sprintf(integrationConfigFlagTemplateConstant, configurationPath),
		"run", "touch-marker",
		fmt.Sprintf(integrationRootsFlagTemplateConstant, workspaceDirectory),
	})
	require.Zero(testInstance, exitCode, dispatchOutput)
	require.Contains(testInstance, dispatchOutput, "touch-marker: 2 succeeded, 0 failed, 0 skipped")

	for _, repositoryName := range []string{"orders-service", "billing-service"} {
		touchedPath := filepath.Join(workspaceDirectory, repositoryName, integrationTouchedFileNameConstant)
		_, statError := os.Stat(touchedPath)
		require.NoError(testInstance, statError)
	}
}

func TestRunPropagatesTotalFailureExitCode(testInstance *testing.T) {
	workspaceDirectory := createWorkspaceRepositories(testInstance, "orders-service", "billing-service")
	configurationPath := writeConfigurationFile(testInstance, integrationFailConfigConstant)

	failureOutput, exitCode := runFleetCommand(testInstance, []string{
		fmt.Sprintf(integrationConfigFlagTemplateConstant, configurationPath),
		"run", "always-fail",
		fmt.Sprintf(integrationRootsFlagTemplateConstant, workspaceDirectory),
	})
	require.Equal(testInstance, 2, exitCode, failureOutput)
	require.Contains(testInstance, failureOutput, "0 succeeded, 2 failed, 0 skipped")
	require.Contains(testInstance, failureOutput, "boom")
}

func TestRunRejectsUnknownOperation(testInstance *testing.T) {
	unknownOutput, exitCode := runFleetCommand(testInstance, []string{"run", "deploy-to-production"})
	require.NotZero(testInstance, exitCode)
	require.Contains(testInstance, unknownOutput, "unknown operation deploy-to-production")
}
