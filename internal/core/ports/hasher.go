package ports

// Hasher computes content hashes used to deduplicate builds.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// ContentHash returns the hex encoded hash of data.
	ContentHash(data []byte) string
}
