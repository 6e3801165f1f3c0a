package cli

import (
	"fmt"
	"strings"

	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/policy"
)

// ParseFindingThreshold reads a check --fail-on value. "none" disables the
// threshold and returns 0.
func ParseFindingThreshold(s string) (models.Severity, error) {
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return 0, nil
	}
	sev, err := models.ParseSeverity(s)
	if err != nil {
		return 0, fmt.Errorf("invalid fail-on level: %s (use critical, high, medium, or none)", s)
	}
	return sev, nil
}

// CheckResult output structure
type CheckResult struct {
	CatalogVersion string              `json:"catalogVersion"`
	Summary        models.RunSummary   `json:"summary"`
	Submissions    []models.Submission `json:"submissions"`
	Gate           *GateDecision       `json:"gate,omitempty"`
	FailOn         string              `json:"failOn"`
	Outcome        string              `json:"outcome"`
}

// GateDecision result
type GateDecision struct {
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Reasons  []string `json:"reasons,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// BuildCheckResult from a validated run. The run fails when the gate fails
// or any finding reaches the fail-on threshold.
func BuildCheckResult(
	report *models.RunReport,
	gateName string,
	gate *models.PolicyConfig,
	gateResults []models.PolicyResult,
	failOn models.Severity,
) *CheckResult {
	result := &CheckResult{
		CatalogVersion: report.CatalogVersion,
		Summary:        report.Summarize(),
		Submissions:    report.Submissions,
		FailOn:         failOnLabel(failOn),
		Outcome:        outcomePass,
	}
	if result.Submissions == nil {
		result.Submissions = []models.Submission{}
	}

	if gate != nil {
		decision := &GateDecision{
			Name:   gateName,
			Status: policy.Outcome(gate, gateResults),
		}
		for _, pr := range gateResults {
			if pr.Passed {
				continue
			}
			line := fmt.Sprintf("%s: %s", pr.RuleName, pr.FailureMsg)
			if pr.Severity == models.PolicySeverityWarn {
				decision.Warnings = append(decision.Warnings, line)
			} else {
				decision.Reasons = append(decision.Reasons, line)
			}
		}
		result.Gate = decision
		if decision.Status == policy.StatusFail {
			result.Outcome = outcomeFail
		}
	}

	if exceedsThreshold(report, failOn) {
		result.Outcome = outcomeFail
	}
	return result
}

func exceedsThreshold(report *models.RunReport, failOn models.Severity) bool {
	if failOn == 0 {
		return false
	}
	for _, sub := range report.Submissions {
		if sub.Result != nil && models.MaxSeverity(sub.Result.Findings) >= failOn {
			return true
		}
	}
	return false
}

func failOnLabel(s models.Severity) string {
	if s == 0 {
		return "none"
	}
	return s.String()
}

// FormatCheckText human readable
func FormatCheckText(result *CheckResult) string {
	var sb strings.Builder

	gateName := "none"
	if result.Gate != nil {
		gateName = result.Gate.Name
	}
	color := colorGreen
	if result.Outcome == outcomeFail {
		color = colorRed
	}
	sb.WriteString(fmt.Sprintf("%spatuh check: %s%s (gate=%s, fail-on=%s)\n",
		color, result.Outcome, colorReset, gateName, result.FailOn))
	sb.WriteString(fmt.Sprintf("Catalog: v%s\n", result.CatalogVersion))

	s := result.Summary
	sb.WriteString(fmt.Sprintf("Submissions: %d (compliant %d, non-compliant %d, errors %d)\n\n",
		s.Total, s.Compliant, s.NonCompliant, s.Errors))

	clean := true
	for _, sub := range result.Submissions {
		switch {
		case sub.Result == nil:
			clean = false
			sb.WriteString(fmt.Sprintf("%s✗ %s%s [%s]\n", colorRed, sub.Source, colorReset, sub.Kind))
			sb.WriteString(fmt.Sprintf("    error: %s\n", sub.Error))
		case len(sub.Result.Findings) > 0:
			clean = false
			mark, markColor := "!", colorYellow
			if !sub.Result.IsCompliant {
				mark, markColor = "✗", colorRed
			}
			sb.WriteString(fmt.Sprintf("%s%s %s%s [%s]\n", markColor, mark, sub.Source, colorReset, sub.Kind))
			for _, f := range sub.Result.Findings {
				formatFinding(&sb, f)
			}
		}
	}
	if clean {
		sb.WriteString(fmt.Sprintf("%s✓ No findings%s\n", colorGreen, colorReset))
	}
	sb.WriteString("\n")

	if g := result.Gate; g != nil {
		switch g.Status {
		case policy.StatusPass:
			sb.WriteString(fmt.Sprintf("Gate: %sPASS%s\n", colorGreen, colorReset))
		case policy.StatusWarn:
			sb.WriteString(fmt.Sprintf("Gate: %sWARN%s\n", colorYellow, colorReset))
		default:
			sb.WriteString(fmt.Sprintf("Gate: %sFAIL%s\n", colorRed, colorReset))
		}
		for _, reason := range g.Reasons {
			sb.WriteString(fmt.Sprintf("- %s\n", reason))
		}
		for _, warning := range g.Warnings {
			sb.WriteString(fmt.Sprintf("- (warn) %s\n", warning))
		}
	}
	return sb.String()
}

func formatFinding(sb *strings.Builder, f models.Finding) {
	color := severityColor(f.Severity)
	sb.WriteString(fmt.Sprintf("    %s%-8s%s %s/%s", color, strings.ToUpper(f.Severity.String()), resetFor(color), f.Category, f.Term))
	if f.Message != "" {
		sb.WriteString(": " + f.Message)
	}
	sb.WriteString("\n")
}
