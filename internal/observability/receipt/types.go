// Package receipt writes one audit record per command invocation: what ran,
// against which catalog, and what was decided.
package receipt

// ReceiptSchemaVersion current
const ReceiptSchemaVersion = "1.0"

// Receipt structure
type Receipt struct {
	SchemaVersion string          `json:"schema_version"`
	OpID          string          `json:"op_id"`
	TsStart       string          `json:"ts_start"`
	TsEnd         string          `json:"ts_end"`
	Command       string          `json:"command"`
	Args          []string        `json:"args"`
	ArgsRedacted  bool            `json:"args_redacted,omitempty"`
	Result        Result          `json:"result"`
	Catalog       *CatalogRef     `json:"catalog,omitempty"`
	Verdict       *VerdictSummary `json:"verdict,omitempty"`
	Run           *RunSummary     `json:"run,omitempty"`
	Gate          *GateSummary    `json:"gate,omitempty"`
}

// Result status
type Result struct {
	Status string `json:"status"` // "success" or "fail"
	Error  string `json:"error,omitempty"`
}

// CatalogRef identifies the rule catalog a decision was made against.
// Path is empty for the embedded catalog.
type CatalogRef struct {
	Version string `json:"version"`
	Path    string `json:"path,omitempty"`
	SHA256  string `json:"sha256,omitempty"`
}

// VerdictSummary of a single validation
type VerdictSummary struct {
	Validator string `json:"validator"`
	Compliant bool   `json:"compliant"`
	Critical  int    `json:"critical"`
	High      int    `json:"high"`
	Medium    int    `json:"medium"`
}

// RunSummary of a batch (check or stream)
type RunSummary struct {
	Total        int `json:"total"`
	NonCompliant int `json:"non_compliant"`
	Errors       int `json:"errors"`
}

// GateSummary detail
type GateSummary struct {
	Preset   string    `json:"preset,omitempty"` // baseline|strict|custom
	Status   string    `json:"status"`           // pass|warn|fail
	RulesHit []RuleHit `json:"rules_hit,omitempty"`
}

// RuleHit detail
type RuleHit struct {
	Name        string   `json:"name"`
	Severity    string   `json:"severity"` // warn|error
	ControlRefs []string `json:"control_refs,omitempty"`
}
