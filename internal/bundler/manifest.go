package bundler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/patuh/patuh/internal/version"
)

// Manifest describes an evidence bundle
type Manifest struct {
	ToolVersion    string         `json:"tool_version"`
	CatalogVersion string         `json:"catalog_version"`
	Gate           string         `json:"gate"`
	Outcome        string         `json:"outcome"`
	Files          []ManifestFile `json:"files"`
}

// ManifestFile desc
type ManifestFile struct {
	Name   string `json:"name"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// NewManifest hashes every entry. Files are listed by name.
func NewManifest(catalogVersion, gate, outcome string, entries []Entry) *Manifest {
	m := &Manifest{
		ToolVersion:    version.BuildVersion(),
		CatalogVersion: catalogVersion,
		Gate:           gate,
		Outcome:        outcome,
		Files:          make([]ManifestFile, 0, len(entries)),
	}
	for _, e := range entries {
		sum := sha256.Sum256(e.Data)
		m.Files = append(m.Files, ManifestFile{
			Name:   e.Name,
			SHA256: hex.EncodeToString(sum[:]),
			Size:   int64(len(e.Data)),
		})
	}
	sort.Slice(m.Files, func(i, j int) bool {
		return m.Files[i].Name < m.Files[j].Name
	})
	return m
}

// ToJSON deterministic
func (m *Manifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
