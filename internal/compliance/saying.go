package compliance

import (
	"fmt"
	"strings"

	"github.com/patuh/patuh/internal/models"
)

// Authenticity check names
const (
	CheckFabricatedContent = "fabricated_content"
	CheckWeakSource        = "weak_source"
	CheckUnverified        = "unverified"
	CheckMissingChain      = "missing_chain"
)

// ValidateSaying grades an attributed saying. A fabricated grade short-circuits
// to a single critical finding; otherwise findings accumulate and only a
// critical one blocks.
func (e *Engine) ValidateSaying(rec *models.AttributedSaying) (*models.ValidationResult, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: saying record is required", ErrInvalidInput)
	}
	// An unset grade is neither fabricated nor weak; the remaining checks
	// still report what is missing.
	var grade models.Grade
	if strings.TrimSpace(string(rec.Grade)) != "" {
		parsed, err := models.ParseGrade(string(rec.Grade))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		grade = parsed
	}

	policy := e.catalog.Saying

	var findings []models.Finding
	if grade == models.GradeFabricated {
		findings = []models.Finding{{
			Category:     models.ValidatorAuthenticity,
			Term:         CheckFabricatedContent,
			Severity:     models.SeverityCritical,
			Message:      "HADITH MAUDHU (PALSU) - DILARANG SEBAR! Hadith palsu tidak boleh disebarkan walaupun untuk tujuan baik",
			Action:       models.ActionBlockImmediately,
			GuidelineRef: policy.GuidelineRef,
		}}
		return e.sayingResult(findings), nil
	}

	if grade == models.GradeWeak {
		findings = append(findings, models.Finding{
			Category:     models.ValidatorAuthenticity,
			Term:         CheckWeakSource,
			Severity:     models.SeverityMedium,
			Message:      "Hadith Daif - Gunakan dengan berhati-hati. Boleh untuk fadilat amalan, BUKAN untuk akidah/hukum",
			GuidelineRef: policy.GuidelineRef,
		})
	}

	if !rec.IsExternallyVerified {
		findings = append(findings, models.Finding{
			Category:     models.ValidatorAuthenticity,
			Term:         CheckUnverified,
			Severity:     models.SeverityHigh,
			Message:      "Hadith belum disahkan melalui myHadith",
			Action:       models.ActionRequireMyHadithCheck,
			GuidelineRef: policy.GuidelineRef,
			Link:         policy.VerificationURL,
		})
	}

	if rec.UsageContext == models.UsageRuling && strings.TrimSpace(rec.ChainOfNarration) == "" {
		findings = append(findings, models.Finding{
			Category:     models.ValidatorAuthenticity,
			Term:         CheckMissingChain,
			Severity:     models.SeverityHigh,
			Message:      "Untuk hukum, hadith mesti ada sanad yang jelas",
			GuidelineRef: policy.GuidelineRef,
		})
	}

	return e.sayingResult(findings), nil
}

func (e *Engine) sayingResult(findings []models.Finding) *models.ValidationResult {
	result := e.newResult(models.ValidatorAuthenticity, findings, blockOnCritical)
	result.VerificationURL = e.catalog.Saying.VerificationURL
	result.RequiredAttribution = e.source(e.catalog.Saying.Source)
	result.GuidelineRef = e.catalog.Saying.GuidelineRef
	return result
}
