package ports

import (
	"context"

	"go.trai.ch/cask/internal/core/domain"
)

// SourceFetcher makes the metadata of a source dependency available on disk.
//
//go:generate go run go.uber.org/mock/mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks
type SourceFetcher interface {
	// Fetch returns the directory holding the dependency's metadata.
	// The cleanup func releases any temporary checkout and is never nil.
	Fetch(ctx context.Context, dep domain.SourceDependency) (dir string, cleanup func(), err error)
}
