package submitter

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"time"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/zerr"
)

var epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// EncodeVersionInfo packs the bundle and its descriptor into the base64
// encoded archive a build request carries.
func EncodeVersionInfo(bundle []byte, descriptor domain.BuildDescriptor) (string, error) {
	desc, err := json.Marshal(descriptor)
	if err != nil {
		return "", zerr.Wrap(err, "failed to encode package descriptor")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range []struct {
		name    string
		content []byte
	}{
		{domain.VersionInfoPackageEntry, bundle},
		{domain.VersionInfoDescriptorEntry, desc},
	} {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, Modified: epoch})
		if err != nil {
			return "", zerr.Wrap(err, "failed to write version info")
		}
		if _, err := w.Write(e.content); err != nil {
			return "", zerr.Wrap(err, "failed to write version info")
		}
	}
	if err := zw.Close(); err != nil {
		return "", zerr.Wrap(err, "failed to write version info")
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
