package receipt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"time"

	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/observability"
)

// MaxErrorLength is the maximum length for error strings in receipts.
const MaxErrorLength = 2048

// Session tracks command execution
type Session struct {
	ctx     context.Context
	start   time.Time
	command string
	args    []string
}

// Start session
func Start(ctx context.Context, cmd string, args []string) *Session {
	return &Session{
		ctx:     ctx,
		start:   time.Now(),
		command: cmd,
		args:    args,
	}
}

// Option configures receipt
type Option func(*Receipt)

// WithCatalog records the catalog version, and the file digest when the
// catalog came from disk.
func WithCatalog(version, path string) Option {
	return func(r *Receipt) {
		ref := &CatalogRef{Version: version, Path: path}
		if path != "" {
			if hash, err := computeSHA256(path); err == nil {
				ref.SHA256 = hash
			}
		}
		r.Catalog = ref
	}
}

// WithVerdict option
func WithVerdict(result *models.ValidationResult) Option {
	return func(r *Receipt) {
		if result == nil {
			return
		}
		counts := result.CountBySeverity()
		r.Verdict = &VerdictSummary{
			Validator: result.Validator,
			Compliant: result.IsCompliant,
			Critical:  counts[models.SeverityCritical],
			High:      counts[models.SeverityHigh],
			Medium:    counts[models.SeverityMedium],
		}
	}
}

// WithRun option
func WithRun(s models.RunSummary) Option {
	return func(r *Receipt) {
		r.Run = &RunSummary{
			Total:        s.Total,
			NonCompliant: s.NonCompliant,
			Errors:       s.Errors,
		}
	}
}

// WithGate option
func WithGate(preset, status string, hits []RuleHit) Option {
	return func(r *Receipt) {
		r.Gate = &GateSummary{
			Preset:   preset,
			Status:   status,
			RulesHit: hits,
		}
	}
}

// Finish and write receipt
func (s *Session) Finish(err error, opts ...Option) error {
	w := From(s.ctx)
	if w == nil {
		return nil
	}

	redactedArgs, wasRedacted := RedactArgs(s.args)

	r := Receipt{
		SchemaVersion: ReceiptSchemaVersion,
		OpID:          observability.OpID(s.ctx),
		TsStart:       s.start.Format(time.RFC3339Nano),
		TsEnd:         time.Now().Format(time.RFC3339Nano),
		Command:       s.command,
		Args:          redactedArgs,
		ArgsRedacted:  wasRedacted,
		Result:        Result{Status: "success"},
	}
	if err != nil {
		r.Result = Result{
			Status: "fail",
			Error:  truncateError(err.Error()),
		}
	}

	for _, opt := range opts {
		opt(&r)
	}

	return w.Write(r)
}

func computeSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func truncateError(s string) string {
	if len(s) <= MaxErrorLength {
		return s
	}
	return s[:MaxErrorLength-3] + "..."
}
