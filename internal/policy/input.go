package policy

import "github.com/patuh/patuh/internal/models"

// BuildInput converts a run into the CEL input document:
//
//	input.catalog_version  string
//	input.summary          {total, compliant, non_compliant, errors, critical, high, medium}
//	input.results[]        {source, kind, validator, compliant, error, findings[]}
//	findings[]             {category, term, severity, action}
//
// Every key is always present so expressions never hit a missing field.
func BuildInput(report *models.RunReport) map[string]any {
	s := report.Summarize()

	results := make([]any, 0, len(report.Submissions))
	for _, sub := range report.Submissions {
		results = append(results, submissionToMap(sub))
	}

	return map[string]any{
		"catalog_version": report.CatalogVersion,
		"summary": map[string]any{
			"total":         int64(s.Total),
			"compliant":     int64(s.Compliant),
			"non_compliant": int64(s.NonCompliant),
			"errors":        int64(s.Errors),
			"critical":      int64(s.Critical),
			"high":          int64(s.High),
			"medium":        int64(s.Medium),
		},
		"results": results,
	}
}

func submissionToMap(sub models.Submission) map[string]any {
	m := map[string]any{
		"source":    sub.Source,
		"kind":      sub.Kind,
		"validator": "",
		"compliant": false,
		"error":     sub.Error,
		"findings":  []any{},
	}
	if sub.Result == nil {
		return m
	}

	findings := make([]any, 0, len(sub.Result.Findings))
	for _, f := range sub.Result.Findings {
		findings = append(findings, map[string]any{
			"category": f.Category,
			"term":     f.Term,
			"severity": f.Severity.String(),
			"action":   string(f.Action),
		})
	}
	m["validator"] = sub.Result.Validator
	m["compliant"] = sub.Result.IsCompliant
	m["findings"] = findings
	return m
}
