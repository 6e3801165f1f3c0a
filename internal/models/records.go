package models

import (
	"fmt"
	"strings"
)

// ScriptureCitation is a quotation of scripture submitted for publication.
// Zero values mean the field was not provided.
type ScriptureCitation struct {
	SourceAttribution      string `json:"source_attribution,omitempty" yaml:"source_attribution,omitempty"`
	PrimaryReferenceID     *int   `json:"primary_reference_id,omitempty" yaml:"primary_reference_id,omitempty"`
	SecondaryReferenceID   *int   `json:"secondary_reference_id,omitempty" yaml:"secondary_reference_id,omitempty"`
	TranslationText        string `json:"translation_text,omitempty" yaml:"translation_text,omitempty"`
	TranslatorName         string `json:"translator_name,omitempty" yaml:"translator_name,omitempty"`
	IsCommercialUse        bool   `json:"is_commercial_use,omitempty" yaml:"is_commercial_use,omitempty"`
	HasPublisherPermission bool   `json:"has_publisher_permission,omitempty" yaml:"has_publisher_permission,omitempty"`
	IsOriginalTextModified bool   `json:"is_original_text_modified,omitempty" yaml:"is_original_text_modified,omitempty"`
}

// Grade of an attributed saying
type Grade string

const (
	GradeAuthentic  Grade = "Authentic"
	GradeGood       Grade = "Good"
	GradeWeak       Grade = "Weak"
	GradeFabricated Grade = "Fabricated"
)

// gradeAliases maps the traditional grading vocabulary onto Grade.
var gradeAliases = map[string]Grade{
	"authentic":  GradeAuthentic,
	"sahih":      GradeAuthentic,
	"good":       GradeGood,
	"hasan":      GradeGood,
	"weak":       GradeWeak,
	"daif":       GradeWeak,
	"dhaif":      GradeWeak,
	"fabricated": GradeFabricated,
	"maudhu":     GradeFabricated,
	"mawdu":      GradeFabricated,
}

// ParseGrade accepts canonical names and traditional aliases, case-insensitively.
func ParseGrade(s string) (Grade, error) {
	if g, ok := gradeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return g, nil
	}
	return "", fmt.Errorf("invalid grade: %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Grade) UnmarshalText(text []byte) error {
	parsed, err := ParseGrade(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// UsageContext of an attributed saying
type UsageContext string

const (
	UsageGeneralGuidance UsageContext = "generalGuidance"
	UsageRuling          UsageContext = "ruling"
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UsageContext) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "generalguidance", "general_guidance", "general", "fadilat":
		*u = UsageGeneralGuidance
	case "ruling", "hukm", "hukum":
		*u = UsageRuling
	default:
		return fmt.Errorf("invalid usage context: %q", string(text))
	}
	return nil
}

// AttributedSaying is a saying attributed to the Prophet, with its grading.
type AttributedSaying struct {
	Grade                Grade        `json:"grade" yaml:"grade"`
	IsExternallyVerified bool         `json:"is_externally_verified" yaml:"is_externally_verified"`
	ChainOfNarration     string       `json:"chain_of_narration,omitempty" yaml:"chain_of_narration,omitempty"`
	UsageContext         UsageContext `json:"usage_context" yaml:"usage_context"`
}

// GeneratedResponse is text produced by an automated responder, with flags
// derived during validation.
type GeneratedResponse struct {
	Text                   string `json:"text"`
	HasRulingLanguage      bool   `json:"has_ruling_language"`
	HasCitationMarkers     bool   `json:"has_citation_markers"`
	HasRedirection         bool   `json:"has_redirection"`
	HasAuthorityDisclaimer bool   `json:"has_authority_disclaimer"`
}
