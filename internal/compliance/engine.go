// Package compliance evaluates content against the rule catalog.
//
// An Engine wraps one immutable catalog snapshot with its terms folded once
// up front. All validation methods are pure computations over their input and
// that snapshot: they perform no I/O, hold no mutable state and may be called
// from any number of goroutines.
package compliance

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/patuh/patuh/internal/catalog"
	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/normalize"
)

// Engine evaluates content against one catalog snapshot.
type Engine struct {
	catalog    *models.Catalog
	categories []compiledCategory
	generated  compiledGenerated
	thematic   compiledThematic
	now        func() time.Time
}

type compiledTerm struct {
	raw    string
	folded string
}

type compiledCategory struct {
	category     models.Category
	guidelineRef string
	terms        []compiledTerm
}

type compiledGenerated struct {
	rulingTerms  []string
	redirections []string
	authorities  []string
	citations    []string
}

type compiledThematic struct {
	denyTerms []compiledTerm
	canon     []string
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the timestamp source (for tests)
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New compiles an engine for the given catalog. The catalog must not be
// modified afterwards.
func New(c *models.Catalog, opts ...Option) (*Engine, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: catalog is nil", ErrInvalidInput)
	}
	if err := catalog.Validate(c); err != nil {
		return nil, err
	}

	e := &Engine{
		catalog: c,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.categories = make([]compiledCategory, 0, len(c.Categories))
	for _, cat := range c.Categories {
		e.categories = append(e.categories, compiledCategory{
			category:     cat,
			guidelineRef: c.GuidelineFor(cat),
			terms:        compileTerms(cat.Terms),
		})
	}

	g := c.GeneratedText
	e.generated = compiledGenerated{
		rulingTerms:  normalize.FoldAll(g.RulingTerms),
		redirections: normalize.FoldAll(g.RedirectionPhrases),
		authorities:  normalize.FoldAll(g.AuthorityMarkers),
		citations:    normalize.FoldAll(g.CitationMarkers),
	}

	e.thematic = compiledThematic{
		denyTerms: compileTerms(c.Thematic.DenyTerms),
		canon:     normalize.FoldAll(c.Thematic.CanonMarkers),
	}

	return e, nil
}

// NewDefault builds an engine over the embedded catalog.
func NewDefault(opts ...Option) (*Engine, error) {
	c, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	return New(c, opts...)
}

// Catalog returns the snapshot this engine evaluates against.
func (e *Engine) Catalog() *models.Catalog {
	return e.catalog
}

// Version of the underlying catalog
func (e *Engine) Version() string {
	return e.catalog.Version
}

func compileTerms(terms []string) []compiledTerm {
	out := make([]compiledTerm, 0, len(terms))
	for _, t := range terms {
		out = append(out, compiledTerm{raw: t, folded: normalize.Fold(t)})
	}
	return out
}

// newResult stamps metadata and derives the verdict through Aggregate.
func (e *Engine) newResult(validator string, findings []models.Finding, blocking SeveritySet) *models.ValidationResult {
	if findings == nil {
		findings = []models.Finding{}
	}
	return &models.ValidationResult{
		IsCompliant:      Aggregate(findings, blocking),
		Findings:         findings,
		ReviewedAt:       e.now().UTC(),
		Validator:        validator,
		ValidatorVersion: e.catalog.ValidatorName,
		CatalogVersion:   e.catalog.Version,
	}
}

func validText(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: text is not valid UTF-8", ErrInvalidInput)
	}
	return nil
}

func (e *Engine) source(name string) *models.Source {
	if s, ok := e.catalog.SourceFor(name); ok {
		return &s
	}
	return nil
}
