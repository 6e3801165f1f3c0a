package models

// Catalog is the versioned rule table. It is treated as immutable once loaded.
type Catalog struct {
	Version          string            `yaml:"version" json:"version"`
	ValidatorName    string            `yaml:"validator" json:"validator"`
	DefaultGuideline string            `yaml:"default_guideline" json:"default_guideline"`
	Categories       []Category        `yaml:"categories" json:"categories"`
	Sources          map[string]Source `yaml:"sources" json:"sources"`
	Citation         CitationPolicy    `yaml:"citation" json:"citation"`
	Saying           SayingPolicy      `yaml:"saying" json:"saying"`
	GeneratedText    GeneratedPolicy   `yaml:"generated_text" json:"generated_text"`
	Thematic         ThematicPolicy    `yaml:"thematic" json:"thematic"`
	Footer           FooterPolicy      `yaml:"footer" json:"footer"`
}

// Category of prohibited terms
type Category struct {
	ID           string   `yaml:"id" json:"id"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
	Severity     Severity `yaml:"severity" json:"severity"`
	GuidelineRef string   `yaml:"guideline_ref,omitempty" json:"guideline_ref,omitempty"`
	Terms        []string `yaml:"terms" json:"terms"`
}

// Source is a mandatory attribution target.
type Source struct {
	Text string `yaml:"text" json:"text"`
	URL  string `yaml:"url" json:"url"`
}

// CitationPolicy for scripture quotations
type CitationPolicy struct {
	GuidelineRef string `yaml:"guideline_ref" json:"guideline_ref"`
	Source       string `yaml:"source" json:"source"`
}

// SayingPolicy for attributed sayings
type SayingPolicy struct {
	GuidelineRef    string `yaml:"guideline_ref" json:"guideline_ref"`
	Source          string `yaml:"source" json:"source"`
	VerificationURL string `yaml:"verification_url" json:"verification_url"`
}

// GeneratedPolicy for automated responder output
type GeneratedPolicy struct {
	GuidelineRef       string   `yaml:"guideline_ref" json:"guideline_ref"`
	RulingTerms        []string `yaml:"ruling_terms" json:"ruling_terms"`
	RedirectionPhrases []string `yaml:"redirection_phrases" json:"redirection_phrases"`
	AuthorityMarkers   []string `yaml:"authority_markers" json:"authority_markers"`
	CitationMarkers    []string `yaml:"citation_markers" json:"citation_markers"`
	RulingDisclaimer   string   `yaml:"ruling_disclaimer" json:"ruling_disclaimer"`
	RequiredDisclaimer string   `yaml:"required_disclaimer" json:"required_disclaimer"`
	FatwaSource        string   `yaml:"fatwa_source" json:"fatwa_source"`
}

// ThematicPolicy for a specific content genre
type ThematicPolicy struct {
	Genre        string   `yaml:"genre" json:"genre"`
	GuidelineRef string   `yaml:"guideline_ref" json:"guideline_ref"`
	DenyTerms    []string `yaml:"deny_terms" json:"deny_terms"`
	CanonMarkers []string `yaml:"canon_markers" json:"canon_markers"`
}

// FooterPolicy drives the attribution footer template.
type FooterPolicy struct {
	Disclaimer     []string `yaml:"disclaimer" json:"disclaimer"`
	AuthorityLinks []string `yaml:"authority_links" json:"authority_links"`
	ComplianceNote string   `yaml:"compliance_note" json:"compliance_note"`
}

// GuidelineFor returns the category guideline, falling back to the default.
func (c *Catalog) GuidelineFor(cat Category) string {
	if cat.GuidelineRef != "" {
		return cat.GuidelineRef
	}
	return c.DefaultGuideline
}

// SourceFor returns the named source, if present.
func (c *Catalog) SourceFor(name string) (Source, bool) {
	s, ok := c.Sources[name]
	return s, ok
}
