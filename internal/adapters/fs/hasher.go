package fs

import (
	"encoding/hex"

	"go.trai.ch/cask/internal/core/ports"
	"golang.org/x/crypto/blake2b"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes the content hash of package bundles.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// ContentHash returns the hex encoded BLAKE2b-512 digest of data.
func (h *Hasher) ContentHash(data []byte) string {
	sum := blake2b.Sum512(data)
	return hex.EncodeToString(sum[:])
}
