package compliance

import (
	"strings"

	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/normalize"
)

// Scan matches text against every catalog category. Matching is substring
// based on folded forms: a term inside a larger word still matches, and each
// matched term yields its own finding.
func (e *Engine) Scan(text string) []models.Finding {
	findings := []models.Finding{}
	folded := normalize.Fold(text)
	if folded == "" {
		return findings
	}

	for _, cc := range e.categories {
		for _, term := range cc.terms {
			if term.folded == "" || !strings.Contains(folded, term.folded) {
				continue
			}
			findings = append(findings, models.Finding{
				Category:     cc.category.ID,
				Term:         term.raw,
				Severity:     cc.category.Severity,
				Message:      "Kandungan mengandungi unsur larangan: " + term.raw,
				Action:       models.ActionBlockOrReview,
				GuidelineRef: cc.guidelineRef,
			})
		}
	}

	return findings
}

// ValidateText scans free text. The content type hint is recorded on the
// result but does not narrow which categories are scanned.
func (e *Engine) ValidateText(text, contentTypeHint string) (*models.ValidationResult, error) {
	if err := validText(text); err != nil {
		return nil, err
	}

	result := e.newResult(models.ValidatorText, e.Scan(text), blockOnCritical)
	result.ContentType = contentTypeHint
	return result, nil
}
