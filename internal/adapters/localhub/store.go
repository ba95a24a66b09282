// Package localhub implements a file-backed build service for local runs and tests.
package localhub

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/zerr"
)

// requestRecord is a build request together with what the service keeps about it.
type requestRecord struct {
	domain.BuildRequest

	Branch         string   `json:"branch,omitempty"`
	SkipValidation bool     `json:"skip_validation"`
	VersionNumber  string   `json:"version_number"`
	VersionName    string   `json:"version_name"`
	Dependencies   []string `json:"dependencies,omitempty"`
	Errors         []string `json:"errors,omitempty"`
	Reads          int      `json:"reads"`
}

// state is the persisted content of the hub.
type state struct {
	Packages     []domain.PackageRecord     `json:"packages"`
	Requests     []*requestRecord           `json:"requests"`
	Versions     []domain.VersionRecord     `json:"versions"`
	Environments []domain.EnvironmentRecord `json:"environments"`
	// Installed maps "namespace@version" to a subscriber version id.
	Installed map[string]string `json:"installed,omitempty"`
}

func load(path string) (*state, error) {
	s := &state{}

	data, err := os.ReadFile(path) //nolint:gosec // Path is cleaned and provided by trusted caller
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreReadFailed, err.Error()), "path", path)
	}
	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreReadFailed, err.Error()), "path", path)
	}
	return s, nil
}

func save(path string, s *state) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", path)
	}
	if err := atomicWriteFile(path, data); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", path)
	}
	return nil
}

// atomicWriteFile writes data to a file atomically by writing to a temp file and renaming it.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "localhub-*.json")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
