package execshell_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet/internal/execshell"
)

const (
	shellExecutableNameConstant  = "sh"
	shellCommandFlagConstant     = "-c"
	successfulShellScriptLiteral = "printf ready"
	failingShellScriptLiteral    = "printf broken >&2; exit 3"
	sleepingShellScriptLiteral   = "sleep 10"
)

func TestOSCommandRunnerCapturesOutputAndExitCodes(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()

	testInstance.Run("successful_command", func(testInstance *testing.T) {
		result, runError := runner.Run(context.Background(), execshell.ShellCommand{
			Name:    execshell.CommandName(shellExecutableNameConstant),
			Details: execshell.CommandDetails{Arguments: []string{shellCommandFlagConstant, successfulShellScriptLiteral}},
		})
		require.NoError(testInstance, runError)
		require.Equal(testInstance, 0, result.ExitCode)
		require.Equal(testInstance, "ready", result.StandardOutput)
	})

	testInstance.Run("failing_command", func(testInstance *testing.T) {
		result, runError := runner.Run(context.Background(), execshell.ShellCommand{
			Name:    execshell.CommandName(shellExecutableNameConstant),
			Details: execshell.CommandDetails{Arguments: []string{shellCommandFlagConstant, failingShellScriptLiteral}},
		})
		require.NoError(testInstance, runError)
		require.Equal(testInstance, 3, result.ExitCode)
		require.Equal(testInstance, "broken", result.StandardError)
	})

	testInstance.Run("missing_executable", func(testInstance *testing.T) {
		_, runError := runner.Run(context.Background(), execshell.ShellCommand{
			Name: execshell.CommandName("fleet-nonexistent-executable"),
		})
		require.Error(testInstance, runError)
	})
}

func TestOSCommandRunnerSurfacesContextExpiry(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()

	executionContext, cancelFunction := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancelFunction()

	startedAt := time.Now()
	_, runError := runner.Run(executionContext, execshell.ShellCommand{
		Name:    execshell.CommandName(shellExecutableNameConstant),
		Details: execshell.CommandDetails{Arguments: []string{shellCommandFlagConstant, sleepingShellScriptLiteral}},
	})
	elapsed := time.Since(startedAt)

	require.ErrorIs(testInstance, runError, context.DeadlineExceeded)
	require.Less(testInstance, elapsed, 5*time.Second)
}
