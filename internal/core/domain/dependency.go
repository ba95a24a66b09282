package domain

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// PostDeployPrefix marks source folders deployed after the package is installed.
// They are never built as package dependencies.
const PostDeployPrefix = "unpackaged/post"

// Dependency is a node of the declared dependency tree.
// It is one of ResolvedDependency, NamespacedDependency or SourceDependency.
type Dependency interface {
	// Children returns the dependencies this dependency declares itself.
	Children() []Dependency
	String() string

	isDependency()
}

// ResolvedDependency already names a concrete package version id.
type ResolvedDependency struct {
	VersionID string
	// Namespace and Version are kept for logging when the declaration had them.
	Namespace    string
	Version      string
	Dependencies []Dependency
}

// NamespacedDependency is identified by namespace and version and must be
// resolved to a version id through a helper environment.
type NamespacedDependency struct {
	Namespace    string
	Version      string
	Dependencies []Dependency
}

// SourceDependency is metadata that has to be built into a package first.
// Remote sources set RepoOwner, RepoName and Subfolder; local ones set LocalPath.
type SourceDependency struct {
	RepoOwner    string
	RepoName     string
	Subfolder    string
	Ref          string
	LocalPath    string
	Dependencies []Dependency
}

func (ResolvedDependency) isDependency()   {}
func (NamespacedDependency) isDependency() {}
func (SourceDependency) isDependency()     {}

// Children returns the nested dependency list.
func (d ResolvedDependency) Children() []Dependency { return d.Dependencies }

// Children returns the nested dependency list.
func (d NamespacedDependency) Children() []Dependency { return d.Dependencies }

// Children returns the nested dependency list.
func (d SourceDependency) Children() []Dependency { return d.Dependencies }

func (d ResolvedDependency) String() string {
	if d.Namespace != "" {
		return fmt.Sprintf("%s@%s (%s)", d.Namespace, d.Version, d.VersionID)
	}
	return d.VersionID
}

func (d NamespacedDependency) String() string {
	return d.Namespace + "@" + d.Version
}

func (d SourceDependency) String() string {
	if !d.IsRemote() {
		return d.LocalPath
	}
	s := fmt.Sprintf("%s/%s %s", d.RepoOwner, d.RepoName, d.Subfolder)
	if d.Ref != "" {
		s += "@" + d.Ref
	}
	return s
}

// IsRemote reports whether the source lives in a remote repository.
func (d SourceDependency) IsRemote() bool {
	return d.RepoName != ""
}

// IsPostDeploy reports whether the source folder holds post-deployment metadata.
func (d SourceDependency) IsPostDeploy() bool {
	folder := d.LocalPath
	if d.IsRemote() {
		folder = d.Subfolder
	}
	if folder == "" {
		return false
	}
	clean := path.Clean(filepath.ToSlash(folder))
	return strings.HasPrefix(clean, PostDeployPrefix)
}

// Flatten orders a dependency tree for building. Each node follows all of its
// transitive dependencies, siblings keep their declared order and
// post-deployment sources are dropped together with everything they declare.
// The returned nodes are the original values; their Children are not expanded again.
func Flatten(nodes []Dependency) ([]Dependency, error) {
	var out []Dependency
	if err := flattenInto(&out, nodes, "dependencies"); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(out *[]Dependency, nodes []Dependency, trail string) error {
	for i, node := range nodes {
		position := fmt.Sprintf("%s[%d]", trail, i)
		if node == nil {
			return zerr.With(zerr.Wrap(ErrUnclassifiableDependency, "empty dependency"), "position", position)
		}
		if src, ok := node.(SourceDependency); ok && src.IsPostDeploy() {
			continue
		}
		if err := flattenInto(out, node.Children(), position+".dependencies"); err != nil {
			return err
		}
		*out = append(*out, node)
	}
	return nil
}
