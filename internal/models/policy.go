package models

// PolicyMode decides whether warn-level gate failures fail the run
type PolicyMode string

const (
	PolicyModeWarn   PolicyMode = "warn"
	PolicyModeStrict PolicyMode = "strict"
)

// PolicySeverity of a gate rule
type PolicySeverity string

const (
	PolicySeverityWarn  PolicySeverity = "warn"
	PolicySeverityError PolicySeverity = "error"
)

// PolicyConfig from yaml
type PolicyConfig struct {
	Name  string       `yaml:"name"`
	Mode  PolicyMode   `yaml:"mode,omitempty"`
	Rules []PolicyRule `yaml:"rules"`
}

// PolicyRule cel rule
type PolicyRule struct {
	Name        string         `yaml:"name"`
	Expr        string         `yaml:"expr"`
	FailureMsg  string         `yaml:"failure_msg"`
	Severity    PolicySeverity `yaml:"severity,omitempty"`
	ControlRefs []string       `yaml:"control_refs,omitempty"`
}

// PolicyResult eval result
type PolicyResult struct {
	RuleName    string
	Passed      bool
	FailureMsg  string
	Severity    PolicySeverity
	ControlRefs []string
}
