package compliance

import (
	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/normalize"
)

// Generated-text check names
const (
	CheckAutomatedRuling   = "automated_ruling_violation"
	CheckNoCitation        = "no_supporting_citation"
	CheckMissingDisclaimer = "missing_disclaimer"
)

// AnalyzeResponse derives the policy flags of an automated response.
func (e *Engine) AnalyzeResponse(text string) models.GeneratedResponse {
	folded := normalize.Fold(text)
	g := e.generated
	return models.GeneratedResponse{
		Text:                   text,
		HasRulingLanguage:      normalize.ContainsAny(folded, g.rulingTerms),
		HasCitationMarkers:     normalize.ContainsAny(folded, g.citations),
		HasRedirection:         normalize.ContainsAny(folded, g.redirections),
		HasAuthorityDisclaimer: normalize.ContainsAny(folded, g.authorities),
	}
}

// ValidatePolicy checks text produced by an automated responder. Ruling
// language must come with a redirection to a human authority, answers must
// cite canon, and an authority disclaimer is mandatory.
func (e *Engine) ValidatePolicy(text string) (*models.ValidationResult, error) {
	if err := validText(text); err != nil {
		return nil, err
	}

	policy := e.catalog.GeneratedText
	resp := e.AnalyzeResponse(text)
	findings := []models.Finding{}

	rulingFlagged := resp.HasRulingLanguage && !resp.HasRedirection
	if rulingFlagged {
		findings = append(findings, models.Finding{
			Category:     models.ValidatorGenerated,
			Term:         CheckAutomatedRuling,
			Severity:     models.SeverityCritical,
			Message:      "Jawapan automatik TIDAK BOLEH mengeluarkan fatwa. Mesti arah pengguna rujuk ulama/JAKIM",
			GuidelineRef: policy.GuidelineRef,
			RequiredText: policy.RulingDisclaimer,
		})
	}

	if !resp.HasCitationMarkers {
		findings = append(findings, models.Finding{
			Category:     models.ValidatorGenerated,
			Term:         CheckNoCitation,
			Severity:     models.SeverityHigh,
			Message:      "Jawapan agama mesti ada dalil (Al-Quran/Hadith)",
			GuidelineRef: policy.GuidelineRef,
		})
	}

	// Not repeated after a flagged ruling: that finding already carries the
	// disclaimer as RequiredText, so an uncited ruling such as "Hukum solat
	// ini adalah wajib." reports exactly the ruling and citation findings.
	if !rulingFlagged && !resp.HasRedirection && !resp.HasAuthorityDisclaimer {
		findings = append(findings, models.Finding{
			Category:     models.ValidatorGenerated,
			Term:         CheckMissingDisclaimer,
			Severity:     models.SeverityCritical,
			Message:      "WAJIB: Jawapan automatik mesti ada penafian rujuk pihak berkuasa",
			GuidelineRef: policy.GuidelineRef,
			RequiredText: policy.RequiredDisclaimer,
		})
	}

	result := e.newResult(models.ValidatorGenerated, findings, blockOnCritical)
	result.RequiredDisclaimer = policy.RequiredDisclaimer
	result.AuditLogRequired = true
	result.GuidelineRef = policy.GuidelineRef
	if src := e.source(policy.FatwaSource); src != nil {
		result.FatwaURL = src.URL
	}
	return result, nil
}
