package cli

import "github.com/patuh/patuh/internal/models"

// ANSI color codes
const (
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorReset  = "\033[0m"
)

// Outcome labels shared by check and catalog diff.
const (
	outcomePass = "PASS"
	outcomeFail = "FAIL"
)

func resultLabel(err error) string {
	if err != nil {
		return "fail"
	}
	return "success"
}

// severityColor for finding severities
func severityColor(s models.Severity) string {
	switch s {
	case models.SeverityCritical:
		return colorRed
	case models.SeverityHigh:
		return colorYellow
	default:
		return ""
	}
}
