// Package differ compares two catalog versions and explains the drift in
// plain language, rating how much each change weakens enforcement.
package differ

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/patuh/patuh/internal/models"
	"github.com/wI2L/jsondiff"
)

// DriftItem is one translated catalog change.
type DriftItem struct {
	Op       string        `json:"op"`
	Path     string        `json:"path"`
	Severity SeverityLevel `json:"severity"`
	Message  string        `json:"message"`
}

// Result of comparing two catalogs
type Result struct {
	OldVersion string         `json:"old_version"`
	NewVersion string         `json:"new_version"`
	Items      []DriftItem    `json:"items"`
	Patch      jsondiff.Patch `json:"-"`
}

// HasChanges reports whether anything differs
func (r *Result) HasChanges() bool {
	return len(r.Items) > 0
}

// Count items at the given level
func (r *Result) Count(level SeverityLevel) int {
	n := 0
	for _, it := range r.Items {
		if it.Severity == level {
			n++
		}
	}
	return n
}

// Compare diffs old against new. Term lists are compared as sets, so
// reordering a list is not drift.
func Compare(oldCat, newCat *models.Catalog) (*Result, error) {
	if oldCat == nil || newCat == nil {
		return nil, fmt.Errorf("both catalogs are required")
	}

	oldDoc := document(oldCat)
	newDoc := document(newCat)

	oldJSON, err := json.Marshal(oldDoc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal old catalog: %w", err)
	}
	newJSON, err := json.Marshal(newDoc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal new catalog: %w", err)
	}

	patch, err := jsondiff.CompareJSON(oldJSON, newJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to compute diff: %w", err)
	}

	res := &Result{
		OldVersion: oldCat.Version,
		NewVersion: newCat.Version,
		Items:      []DriftItem{},
		Patch:      patch,
	}
	for _, op := range patch {
		if item, ok := translate(op, oldDoc); ok {
			res.Items = append(res.Items, item)
		}
	}
	sort.SliceStable(res.Items, func(i, j int) bool {
		if res.Items[i].Severity != res.Items[j].Severity {
			return res.Items[i].Severity > res.Items[j].Severity
		}
		return res.Items[i].Path < res.Items[j].Path
	})
	return res, nil
}

// document is the diffable form of a catalog: categories keyed by id and
// every term list turned into a set.
func document(c *models.Catalog) map[string]any {
	cats := make(map[string]any, len(c.Categories))
	for _, cat := range c.Categories {
		cats[cat.ID] = map[string]any{
			"description":   cat.Description,
			"severity":      cat.Severity.String(),
			"guideline_ref": c.GuidelineFor(cat),
			"terms":         set(cat.Terms),
		}
	}

	sources := make(map[string]any, len(c.Sources))
	for name, s := range c.Sources {
		sources[name] = map[string]any{"text": s.Text, "url": s.URL}
	}

	g := c.GeneratedText
	t := c.Thematic
	return map[string]any{
		"version":    c.Version,
		"validator":  c.ValidatorName,
		"categories": cats,
		"sources":    sources,
		"citation":   map[string]any{"guideline_ref": c.Citation.GuidelineRef, "source": c.Citation.Source},
		"saying": map[string]any{
			"guideline_ref":    c.Saying.GuidelineRef,
			"source":           c.Saying.Source,
			"verification_url": c.Saying.VerificationURL,
		},
		"generated_text": map[string]any{
			"guideline_ref":       g.GuidelineRef,
			"ruling_terms":        set(g.RulingTerms),
			"redirection_phrases": set(g.RedirectionPhrases),
			"authority_markers":   set(g.AuthorityMarkers),
			"citation_markers":    set(g.CitationMarkers),
			"ruling_disclaimer":   g.RulingDisclaimer,
			"required_disclaimer": g.RequiredDisclaimer,
			"fatwa_source":        g.FatwaSource,
		},
		"thematic": map[string]any{
			"genre":         t.Genre,
			"guideline_ref": t.GuidelineRef,
			"deny_terms":    set(t.DenyTerms),
			"canon_markers": set(t.CanonMarkers),
		},
		"footer": map[string]any{
			"disclaimer":      strings.Join(c.Footer.Disclaimer, "\n"),
			"authority_links": set(c.Footer.AuthorityLinks),
			"compliance_note": c.Footer.ComplianceNote,
		},
	}
}

func set(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
