package execshell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet/internal/execshell"
)

func TestCommandMessageFormatterDescribesKnownCommands(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	testCases := []struct {
		name            string
		command         execshell.ShellCommand
		expectedStarted string
		expectedSuccess string
	}{
		{
			name: "git_pull",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"pull"}, WorkingDirectory: "/srv/service-a"},
			},
			expectedStarted: "Pulling in /srv/service-a",
			expectedSuccess: "Pulled in /srv/service-a",
		},
		{
			name: "compose_up",
			command: execshell.ShellCommand{
				Name:    execshell.CommandDockerCompose,
				Details: execshell.CommandDetails{Arguments: []string{"up", "-d"}, WorkingDirectory: "/srv/service-b"},
			},
			expectedStarted: "Starting containers in /srv/service-b",
			expectedSuccess: "Started containers in /srv/service-b",
		},
		{
			name: "maven_build",
			command: execshell.ShellCommand{
				Name:    execshell.CommandMaven,
				Details: execshell.CommandDetails{Arguments: []string{"clean", "compile", "-Plocal-dev"}, WorkingDirectory: "/srv/service-c"},
			},
			expectedStarted: "Running mvn clean compile in /srv/service-c",
			expectedSuccess: "Completed mvn clean compile in /srv/service-c",
		},
		{
			name: "spring_boot_run",
			command: execshell.ShellCommand{
				Name:    execshell.CommandMaven,
				Details: execshell.CommandDetails{Arguments: []string{"spring-boot:run"}, WorkingDirectory: "/srv/service-c"},
			},
			expectedStarted: "Starting Spring Boot in /srv/service-c",
			expectedSuccess: "Completed mvn spring-boot:run in /srv/service-c",
		},
		{
			name: "generic_command",
			command: execshell.ShellCommand{
				Name:    execshell.CommandName("make"),
				Details: execshell.CommandDetails{Arguments: []string{"test"}},
			},
			expectedStarted: "Running make test",
			expectedSuccess: "Completed make test",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedStarted, formatter.BuildStartedMessage(testCase.command))
			require.Equal(testInstance, testCase.expectedSuccess, formatter.BuildSuccessMessage(testCase.command))
		})
	}
}

func TestCommandMessageFormatterFailureIncludesStandardError(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}
	command := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"pull"}, WorkingDirectory: "/srv/service-a"},
	}
	result := execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: could not read from remote"}

	failureMessage := formatter.BuildFailureMessage(command, result)
	require.Contains(testInstance, failureMessage, "exit code 128")
	require.Contains(testInstance, failureMessage, "fatal: could not read from remote")
}
