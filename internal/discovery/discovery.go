package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fleetops/fleet/internal/registry"
)

const (
	gitMetadataDirectoryNameConstant = ".git"
	composeFileNameConstant          = "docker-compose.yml"
	composeFileAlternateNameConstant = "docker-compose.yaml"
	mavenProjectFileNameConstant     = "pom.xml"
	hiddenDirectoryPrefixConstant    = "."
)

// Marker identifies the filesystem entry that qualifies a directory as a repository
// for a given operation family.
type Marker string

// Supported repository markers.
const (
	MarkerGitRepository Marker = Marker(gitMetadataDirectoryNameConstant)
	MarkerComposeFile   Marker = Marker(composeFileNameConstant)
	MarkerMavenProject  Marker = Marker(mavenProjectFileNameConstant)
)

// FilesystemRepositoryDiscoverer locates repositories beneath configured roots.
type FilesystemRepositoryDiscoverer struct{}

// NewFilesystemRepositoryDiscoverer constructs a discoverer backed by direct directory listings.
func NewFilesystemRepositoryDiscoverer() *FilesystemRepositoryDiscoverer {
	return &FilesystemRepositoryDiscoverer{}
}

// DiscoverRepositories inspects the direct subdirectories of each root and
// returns those carrying the marker, sorted and deduplicated. A root whose
// subdirectories yield nothing but which carries the marker itself is returned
// as the sole repository, so the tool keeps working when invoked from inside a
// single service checkout.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(roots []string, marker Marker) ([]string, error) {
	seenPaths := make(map[string]struct{})
	var repositoryPaths []string

	for _, root := range roots {
		trimmedRoot := strings.TrimSpace(root)
		if len(trimmedRoot) == 0 {
			continue
		}

		directoryEntries, readError := os.ReadDir(trimmedRoot)
		if readError != nil {
			return nil, readError
		}

		rootMatches := 0
		for _, directoryEntry := range directoryEntries {
			if !directoryEntry.IsDir() {
				continue
			}
			if strings.HasPrefix(directoryEntry.Name(), hiddenDirectoryPrefixConstant) {
				continue
			}

			candidatePath := filepath.Join(trimmedRoot, directoryEntry.Name())
			if !directoryCarriesMarker(candidatePath, marker) {
				continue
			}
			if _, alreadySeen := seenPaths[candidatePath]; alreadySeen {
				continue
			}

			seenPaths[candidatePath] = struct{}{}
			repositoryPaths = append(repositoryPaths, candidatePath)
			rootMatches++
		}

		if rootMatches == 0 && directoryCarriesMarker(trimmedRoot, marker) {
			if _, alreadySeen := seenPaths[trimmedRoot]; !alreadySeen {
				seenPaths[trimmedRoot] = struct{}{}
				repositoryPaths = append(repositoryPaths, trimmedRoot)
			}
		}
	}

	sort.Strings(repositoryPaths)
	return repositoryPaths, nil
}

// RepositoriesFromPaths converts discovered paths into registry entries named
// after their directory basename.
func RepositoriesFromPaths(repositoryPaths []string) []registry.Repository {
	repositories := make([]registry.Repository, 0, len(repositoryPaths))
	for _, repositoryPath := range repositoryPaths {
		repositories = append(repositories, registry.Repository{
			Name: filepath.Base(repositoryPath),
			Path: repositoryPath,
		})
	}
	return repositories
}

func directoryCarriesMarker(directoryPath string, marker Marker) bool {
	switch marker {
	case MarkerGitRepository:
		markerInfo, statError := os.Stat(filepath.Join(directoryPath, gitMetadataDirectoryNameConstant))
		return statError == nil && markerInfo.IsDir()
	case MarkerComposeFile:
		return fileExists(filepath.Join(directoryPath, composeFileNameConstant)) ||
			fileExists(filepath.Join(directoryPath, composeFileAlternateNameConstant))
	case MarkerMavenProject:
		return fileExists(filepath.Join(directoryPath, mavenProjectFileNameConstant))
	default:
		return fileExists(filepath.Join(directoryPath, string(marker)))
	}
}

func fileExists(filePath string) bool {
	markerInfo, statError := os.Stat(filePath)
	return statError == nil && !markerInfo.IsDir()
}
