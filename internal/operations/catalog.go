package operations

import "github.com/fleetops/fleet/internal/discovery"

// Builtin operation names.
const (
	OperationGitPull         = "git-pull"
	OperationGitFetch        = "git-fetch"
	OperationGitStatus       = "git-status"
	OperationGitRemoteUpdate = "git-remote-update"
	OperationComposeUp       = "compose-up"
	OperationComposeDown     = "compose-down"
	OperationComposeRestart  = "compose-restart"
	OperationMavenBuild      = "mvn-build"
	OperationMavenInstall    = "mvn-install"
	OperationSpringBootRun   = "spring-boot-run"
)

const (
	gitExecutableNameConstant           = "git"
	dockerComposeExecutableNameConstant = "docker-compose"
	mavenExecutableNameConstant         = "mvn"
)

// BuiltinOperations returns the catalog of operations shipped with the tool,
// mirroring the git, docker-compose, and maven actions the platform relies on.
func BuiltinOperations() []Operation {
	return []Operation{
		{
			Name:       OperationGitPull,
			Executable: gitExecutableNameConstant,
			Arguments:  []string{"pull"},
			Marker:     discovery.MarkerGitRepository,
			Guards:     []GuardRequirement{GuardCleanWorktree, GuardAttachedHead, GuardUpstreamConfigured},
		},
		{
			Name:       OperationGitFetch,
			Executable: gitExecutableNameConstant,
			Arguments:  []string{"fetch"},
			Marker:     discovery.MarkerGitRepository,
			Guards:     []GuardRequirement{GuardAttachedHead},
		},
		{
			Name:       OperationGitStatus,
			Executable: gitExecutableNameConstant,
			Arguments:  []string{"status", "--short", "--branch"},
			Marker:     discovery.MarkerGitRepository,
		},
		{
			Name:       OperationGitRemoteUpdate,
			Executable: gitExecutableNameConstant,
			Arguments:  []string{"remote", "update"},
			Marker:     discovery.MarkerGitRepository,
		},
		{
			Name:       OperationComposeUp,
			Executable: dockerComposeExecutableNameConstant,
			Arguments:  []string{"up", "-d"},
			Marker:     discovery.MarkerComposeFile,
		},
		{
			Name:       OperationComposeDown,
			Executable: dockerComposeExecutableNameConstant,
			Arguments:  []string{"down"},
			Marker:     discovery.MarkerComposeFile,
		},
		{
			Name:       OperationComposeRestart,
			Executable: dockerComposeExecutableNameConstant,
			Arguments:  []string{"restart"},
			Marker:     discovery.MarkerComposeFile,
		},
		{
			Name:       OperationMavenBuild,
			Executable: mavenExecutableNameConstant,
			Arguments:  []string{"clean", "compile"},
			Marker:     discovery.MarkerMavenProject,
		},
		{
			Name:       OperationMavenInstall,
			Executable: mavenExecutableNameConstant,
			Arguments:  []string{"install"},
			Marker:     discovery.MarkerMavenProject,
		},
		{
			Name:       OperationSpringBootRun,
			Executable: mavenExecutableNameConstant,
			Arguments:  []string{"spring-boot:run"},
			Marker:     discovery.MarkerMavenProject,
		},
	}
}
