package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/policy"
	"github.com/spf13/cobra"
)

// gateCmd group
var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Inspect release gates",
	Long:  `List the built-in release gates and explain their rules.`,
}

var gateListCmd = &cobra.Command{
	Use:          "list",
	Short:        "List built-in gate presets",
	Args:         cobra.NoArgs,
	RunE:         runGateList,
	SilenceUsage: true,
}

// gateExplainCmd outputs gate rules with control references
var gateExplainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Output gate rules with their control references",
	Long: `Display gate rules with the JAKIM guidelines they enforce, in Markdown or JSON.

Example:
  patuh gate explain --gate strict
  patuh gate explain --gate baseline --json
  patuh gate explain --gate ./my-gate.yaml --output gate.md`,
	Args:         cobra.NoArgs,
	RunE:         runGateExplain,
	SilenceUsage: true,
}

var (
	explainGate   string
	explainJSON   bool
	explainOutput string
)

func init() {
	gateExplainCmd.Flags().StringVar(&explainGate, "gate", "baseline", "Gate preset name or path to YAML file")
	gateExplainCmd.Flags().BoolVar(&explainJSON, "json", false, "Output JSON instead of Markdown")
	gateExplainCmd.Flags().StringVar(&explainOutput, "output", "", "Write output to file (default: stdout)")

	gateCmd.AddCommand(gateListCmd)
	gateCmd.AddCommand(gateExplainCmd)
}

// GetGateCmd export
func GetGateCmd() *cobra.Command {
	return gateCmd
}

// ExplainOutput is the JSON output schema
type ExplainOutput struct {
	SchemaVersion string        `json:"schema_version"`
	Source        ExplainSource `json:"source"`
	Mode          string        `json:"mode"`
	GeneratedAt   string        `json:"generated_at"`
	Rules         []ExplainRule `json:"rules"`
}

// ExplainSource identifies where the gate came from
type ExplainSource struct {
	Type string `json:"type"` // "preset" or "file"
	Name string `json:"name"`
}

// ExplainRule is a rule with its metadata
type ExplainRule struct {
	Name        string   `json:"name"`
	Severity    string   `json:"severity"`
	Expr        string   `json:"expr"`
	FailureMsg  string   `json:"failure_msg"`
	ControlRefs []string `json:"control_refs"`
}

func runGateList(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	for _, name := range policy.ListPresetNames() {
		p := policy.MustGetPreset(name)
		fmt.Fprintf(out, "%s%-10s%s %s (mode=%s, %d rules)\n", colorBold, name, colorReset, p.Name, gateMode(p), len(p.Rules))
	}
	return nil
}

func runGateExplain(cmd *cobra.Command, _ []string) error {
	config, err := policy.Load(explainGate)
	if err != nil {
		return err
	}
	source := ExplainSource{Type: "file", Name: explainGate}
	if policy.GetPreset(explainGate) != nil {
		source.Type = "preset"
	}

	var output string
	if explainJSON {
		output, err = generateExplainJSON(config, source)
	} else {
		output, err = generateExplainMarkdown(config, source)
	}
	if err != nil {
		return err
	}

	if explainOutput != "" {
		if err := os.WriteFile(explainOutput, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Output written to %s\n", explainOutput)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

// gateMode defaults to strict when a gate file leaves it out.
func gateMode(config *models.PolicyConfig) string {
	if config.Mode == "" {
		return string(models.PolicyModeStrict)
	}
	return string(config.Mode)
}

func ruleSeverityLabel(rule models.PolicyRule) string {
	if rule.Severity == "" {
		return string(models.PolicySeverityError)
	}
	return string(rule.Severity)
}

// generateExplainJSON produces JSON output
func generateExplainJSON(config *models.PolicyConfig, source ExplainSource) (string, error) {
	output := ExplainOutput{
		SchemaVersion: "1.0",
		Source:        source,
		Mode:          gateMode(config),
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339Nano),
		Rules:         make([]ExplainRule, 0, len(config.Rules)),
	}

	for _, rule := range config.Rules {
		controlRefs := rule.ControlRefs
		if controlRefs == nil {
			controlRefs = []string{}
		}
		output.Rules = append(output.Rules, ExplainRule{
			Name:        rule.Name,
			Severity:    ruleSeverityLabel(rule),
			Expr:        rule.Expr,
			FailureMsg:  rule.FailureMsg,
			ControlRefs: controlRefs,
		})
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(jsonBytes) + "\n", nil
}

// generateExplainMarkdown produces Markdown table output
func generateExplainMarkdown(config *models.PolicyConfig, source ExplainSource) (string, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Gate: %s\n\n", config.Name))
	sb.WriteString(fmt.Sprintf("**Source**: %s (`%s`)  \n", source.Type, source.Name))
	sb.WriteString(fmt.Sprintf("**Mode**: %s\n\n", gateMode(config)))

	sb.WriteString("| Rule | Severity | Control Refs | Failure | Expr |\n")
	sb.WriteString("|------|----------|--------------|---------|------|\n")

	for _, rule := range config.Rules {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | `%s` |\n",
			rule.Name,
			ruleSeverityLabel(rule),
			formatSliceForMD(rule.ControlRefs),
			escapeCell(rule.FailureMsg),
			escapeCell(truncateExpr(rule.Expr, 120)),
		))
	}

	sb.WriteString("\n")
	return sb.String(), nil
}

// formatSliceForMD formats a string slice for a Markdown table cell
func formatSliceForMD(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return escapeCell(strings.Join(items, ", "))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// truncateExpr shortens CEL expressions for table display
func truncateExpr(expr string, maxLen int) string {
	expr = strings.Join(strings.Fields(expr), " ")
	if len(expr) <= maxLen {
		return expr
	}
	return expr[:maxLen-3] + "..."
}
