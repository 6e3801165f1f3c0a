package compliance

import (
	"testing"

	"github.com/patuh/patuh/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePolicy_AutomatedRuling(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.ValidatePolicy("Hukum solat ini adalah wajib.")
	require.NoError(t, err)

	assert.False(t, result.IsCompliant)
	require.Len(t, result.Findings, 2)

	assert.Equal(t, CheckAutomatedRuling, result.Findings[0].Term)
	assert.Equal(t, models.SeverityCritical, result.Findings[0].Severity)
	assert.Equal(t, "Untuk keputusan hukum yang mengikat, sila rujuk e-Fatwa atau mufti negeri anda", result.Findings[0].RequiredText)

	assert.Equal(t, CheckNoCitation, result.Findings[1].Term)
	assert.Equal(t, models.SeverityHigh, result.Findings[1].Severity)

	assert.True(t, result.AuditLogRequired)
	assert.Equal(t, "https://e-fatwa.gov.my", result.FatwaURL)
	assert.NotEmpty(t, result.RequiredDisclaimer)
	assert.Equal(t, models.ValidatorGenerated, result.Validator)
}

func TestValidatePolicy_Cases(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantChecks    []string
		wantCompliant bool
	}{
		{
			name:          "redirected ruling with citation",
			text:          "Menurut Surah Al-Baqarah, solat itu wajib. Sila rujuk ulama untuk keputusan.",
			wantCompliant: true,
		},
		{
			name:          "no ruling, no disclaimer",
			text:          "Solat membawa ketenangan menurut Hadith.",
			wantChecks:    []string{CheckMissingDisclaimer},
			wantCompliant: false,
		},
		{
			name:          "authority marker only",
			text:          "Ketenangan hati. Maklumat lanjut di portal JAKIM.",
			wantChecks:    []string{CheckNoCitation},
			wantCompliant: true,
		},
		{
			name:          "upper case redirection",
			text:          "HARAM. RUJUK MUFTI. Rujukan: QURAN.",
			wantCompliant: true,
		},
		{
			name:          "empty",
			text:          "",
			wantChecks:    []string{CheckNoCitation, CheckMissingDisclaimer},
			wantCompliant: false,
		},
	}

	e := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := e.ValidatePolicy(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCompliant, result.IsCompliant)
			if len(tt.wantChecks) == 0 {
				assert.Empty(t, result.Findings)
				return
			}
			assert.Equal(t, tt.wantChecks, terms(result.Findings))
		})
	}
}

func TestAnalyzeResponse(t *testing.T) {
	e := newTestEngine(t)

	resp := e.AnalyzeResponse("Perkara ini makruh. Sila consult a scholar dan baca Surah Yasin.")
	assert.True(t, resp.HasRulingLanguage)
	assert.True(t, resp.HasRedirection)
	assert.True(t, resp.HasCitationMarkers)
	assert.False(t, resp.HasAuthorityDisclaimer)
}

func TestValidatePolicy_InvalidUTF8(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.ValidatePolicy("\xc3\x28")
	require.ErrorIs(t, err, ErrInvalidInput)
}
