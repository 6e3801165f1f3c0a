package policy

import (
	"strings"
	"testing"

	"github.com/patuh/patuh/internal/models"
)

func finding(category, term string, sev models.Severity) models.Finding {
	return models.Finding{Category: category, Term: term, Severity: sev}
}

func cleanRun() *models.RunReport {
	return &models.RunReport{
		CatalogVersion: "2025.1",
		Submissions: []models.Submission{
			{Source: "posts/a.md", Kind: "text", Result: &models.ValidationResult{
				Validator: models.ValidatorText, IsCompliant: true, Findings: []models.Finding{},
			}},
			{Source: "quotes/baqarah.citation.yaml", Kind: "citation", Result: &models.ValidationResult{
				Validator: models.ValidatorCitation, IsCompliant: true, Findings: []models.Finding{},
			}},
		},
	}
}

func dirtyRun() *models.RunReport {
	r := cleanRun()
	r.Submissions = append(r.Submissions,
		models.Submission{Source: "bot/answer.txt", Kind: "policy", Result: &models.ValidationResult{
			Validator:   models.ValidatorGenerated,
			IsCompliant: false,
			Findings: []models.Finding{
				finding(models.ValidatorGenerated, "no_supporting_citation", models.SeverityHigh),
				finding(models.ValidatorGenerated, "missing_disclaimer", models.SeverityCritical),
			},
		}},
		models.Submission{Source: "broken.saying.yaml", Kind: "saying", Error: "invalid grade"},
	)
	return r
}

func TestEvaluate_InputShape(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	config := &models.PolicyConfig{
		Name: "shape",
		Rules: []models.PolicyRule{
			{Name: "version", Expr: `input.catalog_version == "2025.1"`},
			{Name: "total", Expr: `input.summary.total == 4`},
			{Name: "errors", Expr: `input.summary.errors == 1`},
			{Name: "critical", Expr: `input.summary.critical == 1 && input.summary.high == 1`},
			{Name: "error_row", Expr: `input.results.exists(r, r.kind == "saying" && r.error != "" && size(r.findings) == 0)`},
			{Name: "severity_strings", Expr: `input.results.exists(r, r.findings.exists(f, f.severity == "critical"))`},
			{Name: "sources", Expr: `input.results.map(r, r.source).exists(s, s.endsWith(".md"))`},
		},
	}

	results, err := engine.Evaluate(config, dirtyRun())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("rule %s failed: %s", r.RuleName, r.FailureMsg)
		}
	}
}

func TestEvaluate_ErrorsBecomeFailedResults(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	config := &models.PolicyConfig{
		Rules: []models.PolicyRule{
			{Name: "syntax", Expr: `input.summary.total ==`},
			{Name: "not_bool", Expr: `input.summary.total`},
			{Name: "missing_key", Expr: `input.nope == 1`},
		},
	}

	results, err := engine.Evaluate(config, cleanRun())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	wantPrefix := map[string]string{
		"syntax":      "CEL compile error",
		"not_bool":    "rule expression must return boolean",
		"missing_key": "CEL evaluation error",
	}
	for _, r := range results {
		if r.Passed {
			t.Errorf("rule %s should fail", r.RuleName)
		}
		if !strings.HasPrefix(r.FailureMsg, wantPrefix[r.RuleName]) {
			t.Errorf("rule %s: FailureMsg = %q, want prefix %q", r.RuleName, r.FailureMsg, wantPrefix[r.RuleName])
		}
		if r.Severity != models.PolicySeverityError {
			t.Errorf("rule %s: default severity = %q, want error", r.RuleName, r.Severity)
		}
	}
}

func TestEvaluate_NilArgs(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if _, err := engine.Evaluate(nil, cleanRun()); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestPresets_AgainstRuns(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	tests := []struct {
		preset string
		run    *models.RunReport
		want   string
	}{
		{"baseline", cleanRun(), StatusPass},
		{"strict", cleanRun(), StatusPass},
		{"baseline", dirtyRun(), StatusFail},
		{"strict", dirtyRun(), StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			config := MustGetPreset(tt.preset)
			if err := engine.CompileAndValidate(config); err != nil {
				t.Fatalf("preset does not compile: %v", err)
			}
			results, err := engine.Evaluate(config, tt.run)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if got := Outcome(config, results); got != tt.want {
				t.Errorf("Outcome = %s, want %s (%+v)", got, tt.want, results)
			}
		})
	}
}

func TestBaseline_WarnsOnHighOnlyRun(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	run := cleanRun()
	run.Submissions = append(run.Submissions, models.Submission{
		Source: "themes/rezeki.md", Kind: "theme",
		Result: &models.ValidationResult{
			Validator:   models.ValidatorThematic,
			IsCompliant: false,
			Findings:    []models.Finding{finding(models.ValidatorThematic, "passive income", models.SeverityHigh)},
		},
	})

	baseline := MustGetPreset("baseline")
	results, err := engine.Evaluate(baseline, run)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got := Outcome(baseline, results); got != StatusWarn {
		t.Errorf("baseline Outcome = %s, want warn", got)
	}

	strict := MustGetPreset("strict")
	results, err = engine.Evaluate(strict, run)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got := Outcome(strict, results); got != StatusFail {
		t.Errorf("strict Outcome = %s, want fail", got)
	}
}

func TestOutcome(t *testing.T) {
	warnFail := models.PolicyResult{RuleName: "w", Severity: models.PolicySeverityWarn}
	errFail := models.PolicyResult{RuleName: "e", Severity: models.PolicySeverityError}
	pass := models.PolicyResult{RuleName: "p", Passed: true}

	tests := []struct {
		name    string
		mode    models.PolicyMode
		results []models.PolicyResult
		want    string
	}{
		{"all pass", models.PolicyModeStrict, []models.PolicyResult{pass}, StatusPass},
		{"warn in warn mode", models.PolicyModeWarn, []models.PolicyResult{pass, warnFail}, StatusWarn},
		{"warn in strict mode", models.PolicyModeStrict, []models.PolicyResult{warnFail}, StatusFail},
		{"error in warn mode", models.PolicyModeWarn, []models.PolicyResult{errFail}, StatusFail},
		{"no rules", models.PolicyModeWarn, nil, StatusPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Outcome(&models.PolicyConfig{Mode: tt.mode}, tt.results)
			if got != tt.want {
				t.Errorf("Outcome = %s, want %s", got, tt.want)
			}
		})
	}
}
