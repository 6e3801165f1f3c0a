package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/patuh/patuh/internal/differ"
)

// FailOnLevel threshold for catalog drift
type FailOnLevel string

const (
	FailOnCritical FailOnLevel = "critical"
	FailOnModerate FailOnLevel = "moderate"
	FailOnInfo     FailOnLevel = "info"
)

// ParseFailOnLevel from string
func ParseFailOnLevel(s string) (FailOnLevel, error) {
	level, err := differ.ParseSeverityLevel(strings.ToLower(s))
	if err != nil {
		return "", fmt.Errorf("invalid fail-on level: %s (use critical, moderate, or info)", s)
	}
	return FailOnLevel(level.String()), nil
}

// ShouldFail checks limits. An unknown level behaves as critical.
func (f FailOnLevel) ShouldFail(severity differ.SeverityLevel) bool {
	threshold, err := differ.ParseSeverityLevel(string(f))
	if err != nil {
		threshold = differ.SeverityCritical
	}
	return severity >= threshold
}

// DiffResult output structure
type DiffResult struct {
	Old        string            `json:"old"`
	New        string            `json:"new"`
	OldVersion string            `json:"oldVersion"`
	NewVersion string            `json:"newVersion"`
	Summary    DiffSummary       `json:"summary"`
	Drift      []DriftOutputItem `json:"drift"`
	FailOn     string            `json:"failOn"`
	Outcome    string            `json:"outcome"`
}

// DiffSummary by severity
type DiffSummary struct {
	Critical int `json:"critical"`
	Moderate int `json:"moderate"`
	Info     int `json:"info"`
	Total    int `json:"total"`
}

// DriftOutputItem detail
type DriftOutputItem struct {
	Op       string `json:"op"`
	Severity string `json:"severity"`
	Path     string `json:"path"`
	Message  string `json:"message"`
}

// BuildDiffResult from a comparison
func BuildDiffResult(oldPath, newPath string, drift *differ.Result, failOn FailOnLevel) *DiffResult {
	result := &DiffResult{
		Old:     oldPath,
		New:     newPath,
		Drift:   []DriftOutputItem{},
		FailOn:  string(failOn),
		Outcome: outcomePass,
	}
	if drift == nil {
		return result
	}
	result.OldVersion = drift.OldVersion
	result.NewVersion = drift.NewVersion

	for _, d := range drift.Items {
		result.Drift = append(result.Drift, DriftOutputItem{
			Op:       d.Op,
			Severity: d.Severity.String(),
			Path:     d.Path,
			Message:  d.Message,
		})
		switch d.Severity {
		case differ.SeverityCritical:
			result.Summary.Critical++
		case differ.SeverityModerate:
			result.Summary.Moderate++
		default:
			result.Summary.Info++
		}
		result.Summary.Total++

		if failOn.ShouldFail(d.Severity) {
			result.Outcome = outcomeFail
		}
	}
	return result
}

// FormatDiffText human readable
func FormatDiffText(result *DiffResult) string {
	var sb strings.Builder

	color := colorGreen
	if result.Outcome == outcomeFail {
		color = colorRed
	}
	sb.WriteString(fmt.Sprintf("%spatuh catalog diff: %s%s (fail-on=%s)\n", color, result.Outcome, colorReset, result.FailOn))
	sb.WriteString(fmt.Sprintf("Old: %s (v%s)\n", result.Old, result.OldVersion))
	sb.WriteString(fmt.Sprintf("New: %s (v%s)\n\n", result.New, result.NewVersion))

	if result.Summary.Total == 0 {
		sb.WriteString(fmt.Sprintf("%s✓ No rule changes%s\n", colorGreen, colorReset))
		return sb.String()
	}

	groups := groupDriftBySeverity(result.Drift)
	for _, g := range []struct {
		name  string
		label string
		color string
	}{
		{"critical", "CRITICAL", colorRed},
		{"moderate", "MODERATE", colorYellow},
		{"info", "INFO", ""},
	} {
		items := groups[g.name]
		if len(items) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s%s (%d)%s\n", g.color, g.label, len(items), resetFor(g.color)))
		for _, d := range items {
			formatDriftItem(&sb, d, g.color)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// groupDriftBySeverity helper
func groupDriftBySeverity(drifts []DriftOutputItem) map[string][]DriftOutputItem {
	groups := map[string][]DriftOutputItem{
		"critical": {},
		"moderate": {},
		"info":     {},
	}
	for _, d := range drifts {
		groups[d.Severity] = append(groups[d.Severity], d)
	}
	for k := range groups {
		sort.SliceStable(groups[k], func(i, j int) bool {
			return groups[k][i].Path < groups[k][j].Path
		})
	}
	return groups
}

func formatDriftItem(sb *strings.Builder, d DriftOutputItem, color string) {
	sb.WriteString(fmt.Sprintf("%s- %s%s\n", color, d.Message, resetFor(color)))
	sb.WriteString(fmt.Sprintf("    %s %s\n", d.Op, d.Path))
}

func resetFor(color string) string {
	if color == "" {
		return ""
	}
	return colorReset
}

// FormatJSONOutput raw json
func FormatJSONOutput(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
