package maven

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet/cmd/cli/shared"
	"github.com/fleetops/fleet/internal/registry"
)

func newProfileFlaggedCommand(testInstance *testing.T, arguments ...string) *cobra.Command {
	testInstance.Helper()
	command := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	command.Flags().String(profileFlagNameConstant, "", profileFlagUsageConstant)
	command.SetArgs(arguments)
	require.NoError(testInstance, command.Execute())
	return command
}

func TestRunArgumentsUsesConfiguredProfile(testInstance *testing.T) {
	builder := RunCommandBuilder{}
	command := newProfileFlaggedCommand(testInstance)

	runArguments := builder.runArguments(command, CommandConfiguration{Profile: "staging"})
	require.Equal(testInstance, []string{"-Pstaging"}, runArguments)
}

func TestRunArgumentsFlagOverridesConfiguration(testInstance *testing.T) {
	builder := RunCommandBuilder{}
	command := newProfileFlaggedCommand(testInstance, "--profile", "integration")

	runArguments := builder.runArguments(command, CommandConfiguration{Profile: "staging"})
	require.Equal(testInstance, []string{"-Pintegration"}, runArguments)
}

func TestRunArgumentsDefaultsProfileAndAppendsJVMArguments(testInstance *testing.T) {
	testInstance.Setenv(jvmArgumentsEnvironmentVariable, "-Xmx512m -Ddebug=true")

	builder := RunCommandBuilder{}
	command := newProfileFlaggedCommand(testInstance)

	runArguments := builder.runArguments(command, CommandConfiguration{})
	require.Equal(testInstance, []string{
		"-Plocal-dev",
		"-Dspring-boot.run.jvmArguments=-Xmx512m -Ddebug=true",
	}, runArguments)
}

func TestGroupProfileArgumentsOnlyAppliesChangedFlag(testInstance *testing.T) {
	builder := CommandGroupBuilder{}

	untouchedCommand := newProfileFlaggedCommand(testInstance)
	untouchedArguments, untouchedError := builder.profileArguments(untouchedCommand)
	require.NoError(testInstance, untouchedError)
	require.Empty(testInstance, untouchedArguments)

	flaggedCommand := newProfileFlaggedCommand(testInstance, "--profile", "ci")
	flaggedArguments, flaggedError := builder.profileArguments(flaggedCommand)
	require.NoError(testInstance, flaggedError)
	require.Equal(testInstance, []string{"-Pci"}, flaggedArguments)
}

func TestSelectRepository(testInstance *testing.T) {
	repositories := []registry.Repository{
		{Name: "orders-service", Path: "/workspace/orders-service"},
		{Name: "billing-service", Path: "/workspace/billing-service"},
	}

	selectedRepository, selectionError := selectRepository(repositories, "billing-service")
	require.NoError(testInstance, selectionError)
	require.Equal(testInstance, "/workspace/billing-service", selectedRepository.Path)

	_, unknownError := selectRepository(repositories, "audit-service")
	configurationError := registry.ConfigurationError{}
	require.ErrorAs(testInstance, unknownError, &configurationError)
}

func TestRunCommandCarriesNoDispatchTuningFlags(testInstance *testing.T) {
	builder := RunCommandBuilder{}
	runCommand, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	require.Nil(testInstance, runCommand.Flags().Lookup(shared.TimeoutFlagName))
	require.Nil(testInstance, runCommand.Flags().Lookup(shared.ConcurrencyFlagName))
	require.Nil(testInstance, runCommand.Flags().Lookup(shared.OnFailureFlagName))
	require.NotNil(testInstance, runCommand.Flags().Lookup(shared.RootsFlagName))
	require.NotNil(testInstance, runCommand.Flags().Lookup(profileFlagNameConstant))
}

func TestCommandGroupBuildsSubcommands(testInstance *testing.T) {
	builder := CommandGroupBuilder{}
	groupCommand, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	subcommandNames := make([]string, 0)
	for _, subcommand := range groupCommand.Commands() {
		subcommandNames = append(subcommandNames, subcommand.Name())
	}
	require.Contains(testInstance, subcommandNames, "build")
	require.Contains(testInstance, subcommandNames, "install")
	require.Contains(testInstance, subcommandNames, "run")
}
