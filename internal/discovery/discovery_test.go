package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet/internal/discovery"
)

const (
	accountServiceDirectoryName   = "account-service"
	billingServiceDirectoryName   = "billing-service"
	scratchDirectoryName          = "scratch"
	hiddenDirectoryName           = ".cache"
	gitMetadataDirectoryName      = ".git"
	composeFileName               = "docker-compose.yml"
	composeAlternateFileName      = "docker-compose.yaml"
	mavenProjectFileName          = "pom.xml"
	directoryPermissions          = 0o755
	markerFilePermissions         = 0o644
)

func createGitRepository(testInstance *testing.T, parentDirectory string, repositoryName string) string {
	testInstance.Helper()
	repositoryPath := filepath.Join(parentDirectory, repositoryName)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, gitMetadataDirectoryName), directoryPermissions))
	return repositoryPath
}

func createMarkerFile(testInstance *testing.T, repositoryPath string, markerFileName string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, markerFileName), []byte{}, markerFilePermissions))
}

func TestDiscoverRepositoriesByMarker(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()

	accountPath := createGitRepository(testInstance, rootDirectory, accountServiceDirectoryName)
	billingPath := createGitRepository(testInstance, rootDirectory, billingServiceDirectoryName)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, scratchDirectoryName), directoryPermissions))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, hiddenDirectoryName, gitMetadataDirectoryName), directoryPermissions))

	createMarkerFile(testInstance, accountPath, composeFileName)
	createMarkerFile(testInstance, billingPath, composeAlternateFileName)
	createMarkerFile(testInstance, billingPath, mavenProjectFileName)

	discoverer := discovery.NewFilesystemRepositoryDiscoverer()

	testCases := []struct {
		name          string
		marker        discovery.Marker
		expectedPaths []string
	}{
		{
			name:          "git_marker_skips_hidden_and_plain_directories",
			marker:        discovery.MarkerGitRepository,
			expectedPaths: []string{accountPath, billingPath},
		},
		{
			name:          "compose_marker_accepts_both_extensions",
			marker:        discovery.MarkerComposeFile,
			expectedPaths: []string{accountPath, billingPath},
		},
		{
			name:          "maven_marker",
			marker:        discovery.MarkerMavenProject,
			expectedPaths: []string{billingPath},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			discoveredPaths, discoveryError := discoverer.DiscoverRepositories([]string{rootDirectory}, testCase.marker)
			require.NoError(testInstance, discoveryError)
			require.Equal(testInstance, testCase.expectedPaths, discoveredPaths)
		})
	}
}

func TestDiscoverRepositoriesFallsBackToRootItself(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, gitMetadataDirectoryName), directoryPermissions))

	discoverer := discovery.NewFilesystemRepositoryDiscoverer()
	discoveredPaths, discoveryError := discoverer.DiscoverRepositories([]string{rootDirectory}, discovery.MarkerGitRepository)
	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []string{rootDirectory}, discoveredPaths)
}

func TestDiscoverRepositoriesDeduplicatesOverlappingRoots(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	repositoryPath := createGitRepository(testInstance, rootDirectory, accountServiceDirectoryName)

	discoverer := discovery.NewFilesystemRepositoryDiscoverer()
	discoveredPaths, discoveryError := discoverer.DiscoverRepositories([]string{rootDirectory, rootDirectory}, discovery.MarkerGitRepository)
	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []string{repositoryPath}, discoveredPaths)
}

func TestRepositoriesFromPathsNamesByBasename(testInstance *testing.T) {
	repositories := discovery.RepositoriesFromPaths([]string{"/srv/platform/account-service", "/srv/platform/gateway"})
	require.Len(testInstance, repositories, 2)
	require.Equal(testInstance, "account-service", repositories[0].Name)
	require.Equal(testInstance, "/srv/platform/account-service", repositories[0].Path)
	require.Equal(testInstance, "gateway", repositories[1].Name)
}
