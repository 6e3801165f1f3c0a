// Package report renders run reports in SARIF 2.1.0 for code-scanning
// dashboards.
package report

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/version"
)

const (
	ToolName = "patuh"
	ToolURI  = "https://github.com/patuh/patuh"

	// InputErrorRule is reported for files that could not be validated.
	InputErrorRule = "patuh/input-error"
)

// RuleID of a finding: category and term, e.g. akidah_violations/khurafat.
func RuleID(f models.Finding) string {
	return f.Category + "/" + f.Term
}

// Level maps finding severity onto SARIF levels.
func Level(s models.Severity) string {
	switch s {
	case models.SeverityCritical:
		return "error"
	case models.SeverityHigh:
		return "warning"
	case models.SeverityMedium:
		return "note"
	default:
		return "none"
	}
}

// SARIF builds a report with one run, one rule per distinct finding and one
// result per finding.
func SARIF(rep *models.RunReport) (*sarif.Report, error) {
	if rep == nil {
		return nil, fmt.Errorf("run report is required")
	}

	out, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(ToolName, ToolURI)
	toolVersion := version.BuildVersion()
	run.Tool.Driver.Version = &toolVersion

	for _, sub := range rep.Submissions {
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(sub.Source)),
		)

		if sub.Result == nil {
			rule := run.AddRule(InputErrorRule).
				WithDescription("Submission could not be validated").
				WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "error"})
			run.AddResult(sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(sub.Error)).
				WithLevel("error").
				WithLocations([]*sarif.Location{location}))
			continue
		}

		for _, f := range sub.Result.Findings {
			level := Level(f.Severity)
			rule := run.AddRule(RuleID(f)).
				WithDescription(f.Message).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level}).
				WithProperties(sarif.Properties{
					"severity":        f.Severity.String(),
					"validator":       sub.Result.Validator,
					"guideline_ref":   f.GuidelineRef,
					"catalog_version": sub.Result.CatalogVersion,
				})

			msg := f.Message
			if f.RequiredText != "" {
				msg = fmt.Sprintf("%s (required: %s)", msg, f.RequiredText)
			}
			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(msg)).
				WithLevel(level).
				WithLocations([]*sarif.Location{location})
			if f.Action != models.ActionNone {
				result.Properties = sarif.Properties{"action": string(f.Action)}
			}
			run.AddResult(result)
		}
	}

	out.AddRun(run)
	return out, nil
}

// WriteSARIF renders rep as indented SARIF JSON.
func WriteSARIF(w io.Writer, rep *models.RunReport) error {
	out, err := SARIF(rep)
	if err != nil {
		return err
	}
	return out.PrettyWrite(w)
}
