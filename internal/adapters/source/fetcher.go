// Package source makes source dependencies available on the local file system.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceFetcher = (*Fetcher)(nil)

const remoteNameOrigin = "origin"

// Fetcher clones remote sources with go-git and resolves local ones
// against a base directory.
type Fetcher struct {
	baseURL string
	baseDir string
	workDir string
	logger  ports.Logger
}

// New creates a Fetcher. Remote repositories are cloned from
// "{baseURL}/{owner}/{repo}.git" into temporary directories below workDir
// (os.TempDir when empty); relative local paths are resolved against baseDir.
func New(baseURL, baseDir, workDir string, logger ports.Logger) *Fetcher {
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		baseDir: baseDir,
		workDir: workDir,
		logger:  logger,
	}
}

// RepositoryURL returns the clone URL of a remote source.
func (f *Fetcher) RepositoryURL(dep domain.SourceDependency) string {
	return fmt.Sprintf("%s/%s/%s.git", f.baseURL, dep.RepoOwner, dep.RepoName)
}

// Fetch returns the directory holding the dependency's metadata.
func (f *Fetcher) Fetch(ctx context.Context, dep domain.SourceDependency) (string, func(), error) {
	noop := func() {}
	if !dep.IsRemote() {
		dir := dep.LocalPath
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(f.baseDir, dir)
		}
		if err := requireDir(dir); err != nil {
			return "", noop, zerr.With(zerr.Wrap(domain.ErrSourceFetchFailed, err.Error()), "path", dir)
		}
		return dir, noop, nil
	}

	if dep.RepoOwner == "" {
		return "", noop, zerr.With(zerr.Wrap(domain.ErrSourceFetchFailed, "missing repository owner"), "repo", dep.RepoName)
	}

	checkout, err := os.MkdirTemp(f.workDir, "cask-src-*")
	if err != nil {
		return "", noop, zerr.With(zerr.Wrap(domain.ErrSourceFetchFailed, err.Error()), "dependency", dep.String())
	}
	cleanup := func() { _ = os.RemoveAll(checkout) }

	dir, err := f.clone(ctx, dep, checkout)
	if err != nil {
		cleanup()
		return "", noop, err
	}
	return dir, cleanup, nil
}

func (f *Fetcher) clone(ctx context.Context, dep domain.SourceDependency, checkout string) (string, error) {
	url := f.RepositoryURL(dep)
	f.logger.Info(fmt.Sprintf("cloning %s", url))

	repo, err := git.PlainCloneContext(ctx, checkout, false, &git.CloneOptions{
		URL:        url,
		RemoteName: remoteNameOrigin,
		Tags:       git.AllTags,
	})
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrSourceFetchFailed, err.Error()), "url", url)
	}

	if dep.Ref != "" {
		hash, err := resolveRef(repo, dep.Ref)
		if err != nil {
			err = zerr.With(zerr.Wrap(domain.ErrSourceFetchFailed, err.Error()), "url", url)
			return "", zerr.With(err, "ref", dep.Ref)
		}

		worktree, err := repo.Worktree()
		if err != nil {
			return "", zerr.With(zerr.Wrap(domain.ErrSourceFetchFailed, err.Error()), "url", url)
		}
		if err := worktree.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
			err = zerr.With(zerr.Wrap(domain.ErrSourceFetchFailed, err.Error()), "url", url)
			return "", zerr.With(err, "ref", dep.Ref)
		}
		f.logger.Info(fmt.Sprintf("checked out %s at %s", dep.Ref, hash))
	}

	dir := filepath.Join(checkout, filepath.FromSlash(dep.Subfolder))
	if err := requireDir(dir); err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrSourceFetchFailed, "subfolder not found"), "subfolder", dep.Subfolder)
	}
	return dir, nil
}

// resolveRef finds the commit a branch, tag or commit hash points to.
// Branches other than the default one only exist as remote references after a clone.
func resolveRef(repo *git.Repository, ref string) (plumbing.Hash, error) {
	candidates := []plumbing.Revision{
		plumbing.Revision(ref),
		plumbing.Revision(remoteNameOrigin + "/" + ref),
	}

	var errs []error
	for _, rev := range candidates {
		hash, err := repo.ResolveRevision(rev)
		if err == nil {
			return *hash, nil
		}
		errs = append(errs, err)
	}
	return plumbing.ZeroHash, errors.Join(errs...)
}

func requireDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
