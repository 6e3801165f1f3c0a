package models

import "time"

// Submission is one unit of content checked during a run.
type Submission struct {
	Source string            `json:"source"`
	Kind   string            `json:"kind"`
	Result *ValidationResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// RunReport collects the verdicts of a multi-file check.
type RunReport struct {
	Timestamp      time.Time    `json:"timestamp"`
	CatalogVersion string       `json:"catalog_version"`
	Submissions    []Submission `json:"submissions"`
}

// RunSummary counts verdicts and findings across a run.
type RunSummary struct {
	Total        int `json:"total"`
	Compliant    int `json:"compliant"`
	NonCompliant int `json:"non_compliant"`
	Errors       int `json:"errors"`
	Critical     int `json:"critical"`
	High         int `json:"high"`
	Medium       int `json:"medium"`
}

// Summarize the run
func (r *RunReport) Summarize() RunSummary {
	var s RunSummary
	for _, sub := range r.Submissions {
		s.Total++
		if sub.Result == nil {
			s.Errors++
			continue
		}
		if sub.Result.IsCompliant {
			s.Compliant++
		} else {
			s.NonCompliant++
		}
		for _, f := range sub.Result.Findings {
			switch f.Severity {
			case SeverityCritical:
				s.Critical++
			case SeverityHigh:
				s.High++
			case SeverityMedium:
				s.Medium++
			}
		}
	}
	return s
}
