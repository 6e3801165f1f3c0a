package compliance

import (
	"fmt"
	"strings"

	"github.com/patuh/patuh/internal/models"
)

// Citation check names
const (
	CheckMissingAttribution  = "missing_attribution"
	CheckMissingReference    = "missing_reference"
	CheckMissingTranslator   = "missing_translator"
	CheckCommercialViolation = "commercial_violation"
	CheckTextAlteration      = "text_alteration"
)

const (
	recommendationReview    = "Rujuk Garisan Panduan JAKIM sebelum menerbitkan"
	recommendationCompliant = "Compliant dengan garis panduan JAKIM"
)

// ValidateCitation checks a scripture quotation. Every check here is a
// mandatory disclosure, so any finding fails compliance.
func (e *Engine) ValidateCitation(rec *models.ScriptureCitation) (*models.ValidationResult, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: citation record is required", ErrInvalidInput)
	}

	guideline := e.catalog.Citation.GuidelineRef
	finding := func(check string, sev models.Severity, msg string, action models.Action) models.Finding {
		return models.Finding{
			Category:     models.ValidatorCitation,
			Term:         check,
			Severity:     sev,
			Message:      msg,
			Action:       action,
			GuidelineRef: guideline,
		}
	}

	findings := []models.Finding{}

	if strings.TrimSpace(rec.SourceAttribution) == "" {
		findings = append(findings, finding(CheckMissingAttribution, models.SeverityCritical,
			"WAJIB: Petikan ayat mesti ada sumber rujukan (Mushaf Malaysia / JAKIM)", models.ActionNone))
	}

	if !refPresent(rec.PrimaryReferenceID) || !refPresent(rec.SecondaryReferenceID) {
		findings = append(findings, finding(CheckMissingReference, models.SeverityCritical,
			"WAJIB: Mesti ada rujukan Surah dan Ayat yang lengkap", models.ActionNone))
	}

	if strings.TrimSpace(rec.TranslationText) != "" && strings.TrimSpace(rec.TranslatorName) == "" {
		findings = append(findings, finding(CheckMissingTranslator, models.SeverityHigh,
			"WAJIB: Terjemahan mesti nyatakan nama penterjemah", models.ActionNone))
	}

	if rec.IsCommercialUse && !rec.HasPublisherPermission {
		findings = append(findings, finding(CheckCommercialViolation, models.SeverityHigh,
			"Penggunaan komersial ayat Al-Quran memerlukan kebenaran JAKIM", models.ActionRequirePermission))
	}

	// Original-language text integrity overrides every other field.
	if rec.IsOriginalTextModified {
		findings = append(findings, finding(CheckTextAlteration, models.SeverityCritical,
			"HARAM: Mengubah teks Arab Al-Quran adalah dilarang", models.ActionBlockImmediately))
	}

	result := e.newResult(models.ValidatorCitation, findings, blockOnAny)
	result.RequiredAttribution = e.source(e.catalog.Citation.Source)
	result.GuidelineRef = guideline
	if result.IsCompliant {
		result.Recommendation = recommendationCompliant
	} else {
		result.Recommendation = recommendationReview
	}
	return result, nil
}

// chapters and verses are 1-based
func refPresent(id *int) bool {
	return id != nil && *id > 0
}
