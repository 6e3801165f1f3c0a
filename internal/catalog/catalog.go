// Package catalog loads and validates the versioned rule catalog.
package catalog

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/normalize"
	"gopkg.in/yaml.v3"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

const defaultCatalogPath = "catalogs/default.yaml"

// RequiredSources must be present in every catalog.
var RequiredSources = []string{"quran", "hadith", "fatwa", "tafsir"}

var (
	defaultOnce sync.Once
	defaultCat  *models.Catalog
	defaultErr  error
)

// Default returns the embedded catalog. The returned value is shared and
// must not be modified.
func Default() (*models.Catalog, error) {
	defaultOnce.Do(func() {
		data, err := catalogFS.ReadFile(defaultCatalogPath)
		if err != nil {
			defaultErr = fmt.Errorf("failed to read embedded catalog: %w", err)
			return
		}
		defaultCat, defaultErr = Parse(data)
	})
	return defaultCat, defaultErr
}

// MustDefault returns the embedded catalog or panics (for tests)
func MustDefault() *models.Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

// LoadFile reads a catalog from disk, or the embedded default when path is empty.
func LoadFile(path string) (*models.Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*models.Catalog, error) {
	var c models.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every structural problem at once.
func Validate(c *models.Catalog) error {
	var problems []string

	if c.Version == "" {
		problems = append(problems, "version is required")
	}
	if c.ValidatorName == "" {
		problems = append(problems, "validator is required")
	}
	if len(c.Categories) == 0 {
		problems = append(problems, "at least one category is required")
	}

	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.ID == "" {
			problems = append(problems, fmt.Sprintf("categories[%d]: id is required", i))
			continue
		}
		if seen[cat.ID] {
			problems = append(problems, fmt.Sprintf("category %q: duplicate id", cat.ID))
		}
		seen[cat.ID] = true
		if !cat.Severity.Valid() {
			problems = append(problems, fmt.Sprintf("category %q: severity is required", cat.ID))
		}
		if len(cat.Terms) == 0 {
			problems = append(problems, fmt.Sprintf("category %q: at least one term is required", cat.ID))
		}
		problems = append(problems, blankTerms(fmt.Sprintf("category %q: terms", cat.ID), cat.Terms)...)
	}

	for _, name := range RequiredSources {
		if s, ok := c.Sources[name]; !ok || s.Text == "" {
			problems = append(problems, fmt.Sprintf("sources.%s is required", name))
		}
	}
	sourceRefs := []struct{ field, name string }{
		{"citation.source", c.Citation.Source},
		{"saying.source", c.Saying.Source},
		{"generated_text.fatwa_source", c.GeneratedText.FatwaSource},
	}
	for _, ref := range sourceRefs {
		if _, ok := c.Sources[ref.name]; !ok {
			problems = append(problems, fmt.Sprintf("%s references unknown source %q", ref.field, ref.name))
		}
	}

	g := c.GeneratedText
	if len(g.RulingTerms) == 0 {
		problems = append(problems, "generated_text.ruling_terms is required")
	}
	if len(g.RedirectionPhrases) == 0 {
		problems = append(problems, "generated_text.redirection_phrases is required")
	}
	if len(g.CitationMarkers) == 0 {
		problems = append(problems, "generated_text.citation_markers is required")
	}
	problems = append(problems, blankTerms("generated_text.ruling_terms", g.RulingTerms)...)
	problems = append(problems, blankTerms("generated_text.redirection_phrases", g.RedirectionPhrases)...)
	problems = append(problems, blankTerms("generated_text.authority_markers", g.AuthorityMarkers)...)
	problems = append(problems, blankTerms("generated_text.citation_markers", g.CitationMarkers)...)
	if g.RulingDisclaimer == "" || g.RequiredDisclaimer == "" {
		problems = append(problems, "generated_text disclaimers are required")
	}

	if len(c.Thematic.CanonMarkers) == 0 {
		problems = append(problems, "thematic.canon_markers is required")
	}
	problems = append(problems, blankTerms("thematic.deny_terms", c.Thematic.DenyTerms)...)
	problems = append(problems, blankTerms("thematic.canon_markers", c.Thematic.CanonMarkers)...)
	if c.Thematic.GuidelineRef == "" {
		problems = append(problems, "thematic.guideline_ref is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// blankTerms reports entries that fold to nothing. Such a term would be a
// substring of every text.
func blankTerms(field string, terms []string) []string {
	var problems []string
	for i, term := range terms {
		if normalize.Fold(term) == "" {
			problems = append(problems, fmt.Sprintf("%s[%d] is blank", field, i))
		}
	}
	return problems
}

// Marshal to YAML
func Marshal(c *models.Catalog) ([]byte, error) {
	return yaml.Marshal(c)
}
