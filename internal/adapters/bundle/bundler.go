// Package bundle packs metadata source trees into deterministic zip archives.
package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/cask/internal/adapters/fs"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Bundler = (*Bundler)(nil)

const (
	// ManifestName is the package manifest at the root of every bundle.
	ManifestName = "package.xml"
	// APIVersion is written into generated manifests.
	APIVersion = "58.0"
)

// epoch is the modification time of every archive entry.
var epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	packageVersionsRe = regexp.MustCompile(`(?s)\s*<packageVersions>.*?</packageVersions>`)
	fullNameRe        = regexp.MustCompile(`(?s)<fullName>.*?</fullName>`)
	packageOpenRe     = regexp.MustCompile(`<Package[^>]*>`)
)

type entry struct {
	name    string
	path    string
	content []byte
	digest  uint64
}

type entryKey struct {
	name   string
	digest uint64
}

// archive is a written bundle together with the entries it was written from.
type archive struct {
	entries []entryKey
	data    []byte
}

// Bundler implements ports.Bundler. Archives are kept by tree fingerprint,
// so a tree bundled again under the same name is not compressed twice.
type Bundler struct {
	walker  *fs.Walker
	logger  ports.Logger
	ignores []string

	mu       sync.Mutex
	archives map[uint64]archive
}

// New creates a Bundler. Files whose base name matches one of the ignore
// globs are left out of every bundle.
func New(walker *fs.Walker, logger ports.Logger, ignores ...string) *Bundler {
	return &Bundler{
		walker:   walker,
		logger:   logger,
		ignores:  ignores,
		archives: make(map[uint64]archive),
	}
}

// Bundle archives the tree at path. The archive holds the files in name order
// with fixed timestamps, a manifest naming the package, and meta-xml files
// without their packageVersions blocks.
func (b *Bundler) Bundle(ctx context.Context, path, name string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrMalformedContent, err.Error()), "path", path)
	}
	if !info.IsDir() {
		return nil, zerr.With(zerr.Wrap(domain.ErrMalformedContent, "not a directory"), "path", path)
	}

	entries, err := b.collect(path)
	if err != nil {
		return nil, err
	}

	if err := b.load(ctx, entries, name); err != nil {
		return nil, err
	}

	if !slices.ContainsFunc(entries, func(e *entry) bool { return e.name == ManifestName }) {
		manifest := generateManifest(name)
		entries = append(entries, &entry{name: ManifestName, content: manifest, digest: xxhash.Sum64(manifest)})
		slices.SortFunc(entries, func(a, b *entry) int { return strings.Compare(a.name, b.name) })
	}

	fp := fingerprint(entries)
	keys := entryKeys(entries)
	if data, ok := b.lookup(fp, keys); ok {
		if b.logger != nil {
			b.logger.Info(fmt.Sprintf("reusing bundle of %s (fingerprint %016x)", path, fp))
		}
		return data, nil
	}

	data, err := write(entries)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrMalformedContent, err.Error()), "path", path)
	}
	b.store(fp, keys, data)

	if b.logger != nil {
		b.logger.Info(fmt.Sprintf("bundled %d files from %s (fingerprint %016x, %d bytes)",
			len(entries), path, fp, len(data)))
	}
	return data, nil
}

func (b *Bundler) lookup(fp uint64, keys []entryKey) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.archives[fp]
	if !ok || !slices.Equal(a.entries, keys) {
		return nil, false
	}
	return slices.Clone(a.data), true
}

func (b *Bundler) store(fp uint64, keys []entryKey, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.archives[fp] = archive{entries: keys, data: slices.Clone(data)}
}

func entryKeys(entries []*entry) []entryKey {
	keys := make([]entryKey, len(entries))
	for i, e := range entries {
		keys[i] = entryKey{name: e.name, digest: e.digest}
	}
	return keys
}

// collect lists the files below root sorted by archive name.
func (b *Bundler) collect(root string) ([]*entry, error) {
	var entries []*entry
	for path, err := range b.walker.WalkFiles(root, b.ignores) {
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrMalformedContent, err.Error()), "path", root)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrMalformedContent, err.Error()), "path", path)
		}
		entries = append(entries, &entry{name: filepath.ToSlash(rel), path: path})
	}
	slices.SortFunc(entries, func(a, b *entry) int { return strings.Compare(a.name, b.name) })
	return entries, nil
}

// load reads and rewrites the entries concurrently.
func (b *Bundler) load(ctx context.Context, entries []*entry, name string) error {
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, e := range entries {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(e.path) //nolint:gosec // path comes from the walker
			if err != nil {
				return zerr.With(zerr.Wrap(domain.ErrMalformedContent, err.Error()), "path", e.path)
			}
			e.content = transform(e.name, content, name)
			e.digest = xxhash.Sum64(e.content)
			return nil
		})
	}

	return g.Wait()
}

// transform applies the content rewrites for a single archive entry.
func transform(entryName string, content []byte, packageName string) []byte {
	switch {
	case entryName == ManifestName:
		return rewriteManifest(content, packageName)
	case strings.HasSuffix(entryName, "-meta.xml"):
		return packageVersionsRe.ReplaceAll(content, nil)
	default:
		return content
	}
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func generateManifest(name string) []byte {
	return fmt.Appendf(nil, `<?xml version="1.0" encoding="UTF-8"?>
<Package xmlns="http://soap.sforce.com/2006/04/metadata">
    <fullName>%s</fullName>
    <version>%s</version>
</Package>
`, escape(name), APIVersion)
}

// rewriteManifest sets the manifest's fullName to name, adding the element when missing.
func rewriteManifest(content []byte, name string) []byte {
	fullName := []byte("<fullName>" + escape(name) + "</fullName>")
	if loc := fullNameRe.FindIndex(content); loc != nil {
		return slices.Concat(content[:loc[0]], fullName, content[loc[1]:])
	}
	if loc := packageOpenRe.FindIndex(content); loc != nil {
		return slices.Concat(content[:loc[1]], []byte("\n    "), fullName, content[loc[1]:])
	}
	return content
}

func write(entries []*entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: epoch,
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(e.content); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fingerprint combines the per-entry digests in archive order.
func fingerprint(entries []*entry) uint64 {
	h := xxhash.New()
	for _, e := range entries {
		_, _ = h.WriteString(e.name)
		_, _ = h.Write([]byte{0})
		_, _ = fmt.Fprintf(h, "%016x", e.digest)
	}
	return h.Sum64()
}
