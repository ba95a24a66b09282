package bundle_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/internal/adapters/bundle"
	"go.trai.ch/cask/internal/adapters/fs"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		files[f.Name] = string(content)
	}
	return files
}

func archiveNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func newBundler() *bundle.Bundler {
	return bundle.New(fs.NewWalker(), nil, ".DS_Store")
}

func TestBundle_GeneratesManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "classes", "Foo.cls"), "public class Foo {}")
	writeFile(t, filepath.Join(dir, ".DS_Store"), "junk")

	data, err := newBundler().Bundle(context.Background(), dir, "Widgets & Co")
	require.NoError(t, err)

	assert.Equal(t, []string{"classes/Foo.cls", "package.xml"}, archiveNames(t, data))

	files := readArchive(t, data)
	assert.Equal(t, "public class Foo {}", files["classes/Foo.cls"])
	assert.Contains(t, files["package.xml"], "<fullName>Widgets &amp; Co</fullName>")
	assert.Contains(t, files["package.xml"], "<version>"+bundle.APIVersion+"</version>")
}

func TestBundle_RewritesManifest(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{
			name:     "replaces fullName",
			manifest: `<Package xmlns="http://soap.sforce.com/2006/04/metadata"><fullName>Old</fullName><version>58.0</version></Package>`,
		},
		{
			name:     "inserts fullName",
			manifest: `<Package xmlns="http://soap.sforce.com/2006/04/metadata"><version>58.0</version></Package>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "package.xml"), tt.manifest)

			data, err := newBundler().Bundle(context.Background(), dir, "Widgets")
			require.NoError(t, err)

			manifest := readArchive(t, data)["package.xml"]
			assert.Contains(t, manifest, "<fullName>Widgets</fullName>")
			assert.NotContains(t, manifest, "Old")
			assert.Contains(t, manifest, "<version>58.0</version>")
		})
	}
}

func TestBundle_CleansMetaXML(t *testing.T) {
	dir := t.TempDir()
	meta := `<?xml version="1.0" encoding="UTF-8"?>
<ApexClass xmlns="http://soap.sforce.com/2006/04/metadata">
    <apiVersion>58.0</apiVersion>
    <packageVersions>
        <majorNumber>1</majorNumber>
        <namespace>base</namespace>
    </packageVersions>
    <status>Active</status>
</ApexClass>
`
	writeFile(t, filepath.Join(dir, "classes", "Foo.cls-meta.xml"), meta)
	writeFile(t, filepath.Join(dir, "classes", "Foo.cls"), "<packageVersions>kept</packageVersions>")

	data, err := newBundler().Bundle(context.Background(), dir, "Widgets")
	require.NoError(t, err)

	files := readArchive(t, data)
	assert.NotContains(t, files["classes/Foo.cls-meta.xml"], "packageVersions")
	assert.Contains(t, files["classes/Foo.cls-meta.xml"], "<status>Active</status>")
	assert.Contains(t, files["classes/Foo.cls"], "<packageVersions>kept</packageVersions>")
}

func TestBundle_Deterministic(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	for _, dir := range []string{first, second} {
		writeFile(t, filepath.Join(dir, "objects", "Bar__c.object-meta.xml"), "<CustomObject/>")
		writeFile(t, filepath.Join(dir, "classes", "Foo.cls"), "public class Foo {}")
	}
	touched := time.Date(2020, time.June, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(second, "classes", "Foo.cls"), touched, touched))

	a, err := newBundler().Bundle(context.Background(), first, "Widgets")
	require.NoError(t, err)
	b, err := newBundler().Bundle(context.Background(), second, "Widgets")
	require.NoError(t, err)

	assert.Equal(t, a, b)

	writeFile(t, filepath.Join(second, "classes", "Foo.cls"), "public class Foo { }")
	c, err := newBundler().Bundle(context.Background(), second, "Widgets")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestBundle_MalformedContent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	writeFile(t, file, "x")

	_, err := newBundler().Bundle(context.Background(), filepath.Join(dir, "missing"), "Widgets")
	require.ErrorIs(t, err, domain.ErrMalformedContent)

	_, err = newBundler().Bundle(context.Background(), file, "Widgets")
	require.ErrorIs(t, err, domain.ErrMalformedContent)
}

func TestBundle_ReusesArchiveForUnchangedTree(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	var messages []string
	log.EXPECT().Info(gomock.Any()).Do(func(msg string) { messages = append(messages, msg) }).AnyTimes()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "classes", "Foo.cls"), "public class Foo {}")
	b := bundle.New(fs.NewWalker(), log)

	first, err := b.Bundle(context.Background(), dir, "Widgets")
	require.NoError(t, err)
	second, err := b.Bundle(context.Background(), dir, "Widgets")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Another package name rewrites the manifest, so the archive differs.
	other, err := b.Bundle(context.Background(), dir, "Gadgets")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	writeFile(t, filepath.Join(dir, "classes", "Foo.cls"), "public class Foo { }")
	changed, err := b.Bundle(context.Background(), dir, "Widgets")
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)

	require.Len(t, messages, 4)
	assert.True(t, strings.HasPrefix(messages[0], "bundled "), messages[0])
	assert.True(t, strings.HasPrefix(messages[1], "reusing bundle of "), messages[1])
	assert.True(t, strings.HasPrefix(messages[2], "bundled "), messages[2])
	assert.True(t, strings.HasPrefix(messages[3], "bundled "), messages[3])

	// Callers may modify the returned bytes without affecting later bundles.
	second[0] ^= 0xff
	again, err := b.Bundle(context.Background(), dir, "Gadgets")
	require.NoError(t, err)
	assert.Equal(t, other, again)
}
