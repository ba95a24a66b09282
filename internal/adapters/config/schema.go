package config

// Caskfile represents the structure of the cask.yml project file.
type Caskfile struct {
	Project      ProjectDTO      `yaml:"project"`
	Dependencies []DependencyDTO `yaml:"dependencies"`
}

// ProjectDTO describes the package built from the project.
type ProjectDTO struct {
	Name            string  `yaml:"name"`
	Description     string  `yaml:"description"`
	Type            string  `yaml:"type"`
	Namespace       string  `yaml:"namespace"`
	Branch          string  `yaml:"branch"`
	SourceFormat    string  `yaml:"sourceFormat"`
	SourcePath      string  `yaml:"sourcePath"`
	VersionName     string  `yaml:"versionName"`
	VersionType     string  `yaml:"versionType"`
	PreDependencies string  `yaml:"preDependencies"`
	Repo            RepoDTO `yaml:"repo"`
}

// RepoDTO names the repository the project lives in.
type RepoDTO struct {
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
}

// DependencyDTO is one entry of the dependency list.
// Exactly one group of fields identifies the kind of dependency.
type DependencyDTO struct {
	VersionID string `yaml:"version_id"`

	Namespace string `yaml:"namespace"`
	Version   string `yaml:"version"`

	RepoOwner string `yaml:"repo_owner"`
	RepoName  string `yaml:"repo_name"`
	Subfolder string `yaml:"subfolder"`
	Ref       string `yaml:"ref"`

	LocalSubfolder string `yaml:"local_subfolder"`

	Dependencies []DependencyDTO `yaml:"dependencies"`
}
