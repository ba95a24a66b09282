package domain

import "path/filepath"

const (
	// DirPerm is the permission used for directories created by cask.
	DirPerm = 0o750
	// FilePerm is the permission used for state files written by cask.
	FilePerm = 0o600

	// DefaultConfigFile is the project file looked up in the working directory.
	DefaultConfigFile = "cask.yml"
	// DefaultPreDependencies holds local metadata built before the package.
	DefaultPreDependencies = "unpackaged/pre"
	// DefaultVersionName names versions when the project does not.
	DefaultVersionName = "Release"
)

// Repo identifies the repository the project lives in.
type Repo struct {
	Owner string
	Name  string
}

// Project is the loaded project configuration.
type Project struct {
	// Root is the directory the project file was loaded from.
	Root    string
	Package PackageConfig
	Repo    Repo
	// SourcePath is the package source directory relative to Root.
	SourcePath string
	// PreDependencies is the directory of local pre-dependency folders relative to Root.
	PreDependencies string
	Dependencies    []Dependency
}

// Abs resolves a project relative path.
func (p *Project) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Root, rel)
}

// CacheDir is where cask keeps local state for the project.
func (p *Project) CacheDir() string {
	return filepath.Join(p.Root, ".cask")
}
