// Package bundler writes the evidence bundle kept alongside a release: the
// catalog and gate a run was judged against, the run report, and a manifest
// of their digests.
package bundler

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ManifestName is always the first entry.
const ManifestName = "manifest.json"

// zipEpoch keeps entry timestamps fixed so identical inputs give identical bytes.
var zipEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Entry is one file in the bundle
type Entry struct {
	Name string
	Data []byte
}

// Write creates the zip at path: manifest.json first, then entries by name.
func Write(path string, manifest *Manifest, entries []Entry) (err error) {
	if manifest == nil {
		return errors.New("manifest is required")
	}
	manifestJSON, err := manifest.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(out)
	if err := addToZip(zw, ManifestName, manifestJSON); err != nil {
		return fmt.Errorf("failed to add manifest: %w", err)
	}
	for _, e := range sorted {
		if e.Name == ManifestName {
			return fmt.Errorf("entry name %q is reserved", ManifestName)
		}
		if err := addToZip(zw, e.Name, e.Data); err != nil {
			return fmt.Errorf("failed to add %s: %w", e.Name, err)
		}
	}
	return zw.Close()
}

func addToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: zipEpoch,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
