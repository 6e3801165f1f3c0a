package compliance

import (
	"strings"

	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/normalize"
)

// CheckMissingCanonReference is reported when no canon marker is present.
const CheckMissingCanonReference = "missing_canon_reference"

// ValidateTheme checks genre content against the thematic deny-list and
// requires at least one canon marker. Only high findings block.
func (e *Engine) ValidateTheme(text string) (*models.ValidationResult, error) {
	if err := validText(text); err != nil {
		return nil, err
	}

	policy := e.catalog.Thematic
	folded := normalize.Fold(text)
	findings := []models.Finding{}

	for _, term := range e.thematic.denyTerms {
		if term.folded == "" || !strings.Contains(folded, term.folded) {
			continue
		}
		findings = append(findings, models.Finding{
			Category:     models.ValidatorThematic,
			Term:         term.raw,
			Severity:     models.SeverityHigh,
			Message:      "Kandungan motivasi tidak boleh promosi skim wang haram/MLM",
			Action:       models.ActionBlockOrReview,
			GuidelineRef: policy.GuidelineRef,
		})
	}

	if !normalize.ContainsAny(folded, e.thematic.canon) {
		findings = append(findings, models.Finding{
			Category:     models.ValidatorThematic,
			Term:         CheckMissingCanonReference,
			Severity:     models.SeverityMedium,
			Message:      "Motivasi berunsur Islam mesti ada rujukan Al-Quran/Hadith",
			GuidelineRef: policy.GuidelineRef,
		})
	}

	result := e.newResult(models.ValidatorThematic, findings, blockOnHigh)
	result.GuidelineRef = policy.GuidelineRef
	return result, nil
}
