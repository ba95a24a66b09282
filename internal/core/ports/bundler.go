package ports

import "context"

// Bundler packs a metadata source directory into a deterministic archive.
//
//go:generate go run go.uber.org/mock/mockgen -source=bundler.go -destination=mocks/mock_bundler.go -package=mocks
type Bundler interface {
	// Bundle archives the directory at path, naming the package name.
	// Identical trees produce identical bytes.
	Bundle(ctx context.Context, path, name string) ([]byte, error)
}
