// Package config loads the project file and runtime settings for cask.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Source formats and the package directory each one defaults to.
const (
	SourceFormatSFDX  = "sfdx"
	SourceFormatMDAPI = "mdapi"

	defaultSFDXPath  = "force-app"
	defaultMDAPIPath = "src"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{Logger: log}
}

// Load reads the project file from the given working directory.
func (l *Loader) Load(cwd, file string) (*domain.Project, error) {
	if file == "" {
		file = domain.DefaultConfigFile
	}
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, file)
	}

	project, err := Load(path)
	if err != nil {
		return nil, err
	}
	if l.Logger != nil {
		l.Logger.Info(fmt.Sprintf("loaded project %q from %s", project.Package.Name, path))
	}
	return project, nil
}

// Load reads a project file from the given path and returns a domain.Project.
// Relative paths in the file are kept relative to the file's directory.
func Load(path string) (*domain.Project, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}

	var caskfile Caskfile
	if err := yaml.Unmarshal(data, &caskfile); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", path)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}

	return buildProject(root, &caskfile)
}

func buildProject(root string, f *Caskfile) (*domain.Project, error) {
	p := f.Project
	if strings.TrimSpace(p.Name) == "" {
		return nil, domain.ErrMissingPackageName
	}

	pkgType, err := domain.ParsePackageType(p.Type)
	if err != nil {
		return nil, err
	}
	bump, err := domain.ParseVersionBump(p.VersionType)
	if err != nil {
		return nil, err
	}

	sourcePath, err := resolveSourcePath(p.SourcePath, p.SourceFormat)
	if err != nil {
		return nil, err
	}

	deps, err := convertDependencies(f.Dependencies, "dependencies")
	if err != nil {
		return nil, err
	}

	return &domain.Project{
		Root: root,
		Package: domain.PackageConfig{
			PackageIdentity: domain.PackageIdentity{
				Name:      p.Name,
				Type:      pkgType,
				Namespace: p.Namespace,
			},
			Description: p.Description,
			Branch:      p.Branch,
			VersionName: valueOr(p.VersionName, domain.DefaultVersionName),
			VersionBump: bump,
		},
		Repo:            domain.Repo{Owner: p.Repo.Owner, Name: p.Repo.Name},
		SourcePath:      sourcePath,
		PreDependencies: valueOr(p.PreDependencies, domain.DefaultPreDependencies),
		Dependencies:    deps,
	}, nil
}

func resolveSourcePath(sourcePath, format string) (string, error) {
	if sourcePath != "" {
		return filepath.Clean(sourcePath), nil
	}
	switch strings.ToLower(format) {
	case "", SourceFormatSFDX:
		return defaultSFDXPath, nil
	case SourceFormatMDAPI:
		return defaultMDAPIPath, nil
	default:
		return "", zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "unknown source format"), "source_format", format)
	}
}

// convertDependencies classifies each entry by the first field group it sets:
// version_id, namespace, repo_name, local_subfolder.
func convertDependencies(dtos []DependencyDTO, trail string) ([]domain.Dependency, error) {
	if len(dtos) == 0 {
		return nil, nil
	}

	deps := make([]domain.Dependency, 0, len(dtos))
	for i, dto := range dtos {
		position := fmt.Sprintf("%s[%d]", trail, i)

		children, err := convertDependencies(dto.Dependencies, position+".dependencies")
		if err != nil {
			return nil, err
		}

		switch {
		case dto.VersionID != "":
			deps = append(deps, domain.ResolvedDependency{
				VersionID:    dto.VersionID,
				Namespace:    dto.Namespace,
				Version:      dto.Version,
				Dependencies: children,
			})
		case dto.Namespace != "":
			deps = append(deps, domain.NamespacedDependency{
				Namespace:    dto.Namespace,
				Version:      dto.Version,
				Dependencies: children,
			})
		case dto.RepoName != "":
			deps = append(deps, domain.SourceDependency{
				RepoOwner:    dto.RepoOwner,
				RepoName:     dto.RepoName,
				Subfolder:    dto.Subfolder,
				Ref:          dto.Ref,
				Dependencies: children,
			})
		case dto.LocalSubfolder != "":
			deps = append(deps, domain.SourceDependency{
				LocalPath:    filepath.ToSlash(filepath.Clean(dto.LocalSubfolder)),
				Dependencies: children,
			})
		default:
			return nil, zerr.With(
				zerr.Wrap(domain.ErrUnclassifiableDependency, "dependency sets none of version_id, namespace, repo_name or local_subfolder"),
				"position", position,
			)
		}
	}
	return deps, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
