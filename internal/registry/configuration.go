package registry

// RepositoryConfiguration mirrors one repository entry in the configuration file.
type RepositoryConfiguration struct {
	Name   string   `mapstructure:"name" yaml:"name"`
	Path   string   `mapstructure:"path" yaml:"path"`
	Groups []string `mapstructure:"groups" yaml:"groups"`
}

// BuildRegistry converts configuration entries into a validated Registry.
func BuildRegistry(configurations []RepositoryConfiguration) (*Registry, error) {
	repositories := make([]Repository, 0, len(configurations))
	for _, configuration := range configurations {
		repositories = append(repositories, Repository{
			Name:   configuration.Name,
			Path:   configuration.Path,
			Groups: append([]string{}, configuration.Groups...),
		})
	}
	return NewRegistry(repositories)
}
