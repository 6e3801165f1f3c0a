package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/patuh/patuh/internal/bundler"
	"github.com/patuh/patuh/internal/catalog"
	"github.com/patuh/patuh/internal/compliance"
	"github.com/patuh/patuh/internal/ingest"
	"github.com/patuh/patuh/internal/metrics"
	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/observability/logging"
	otelobs "github.com/patuh/patuh/internal/observability/otel"
	"github.com/patuh/patuh/internal/observability/receipt"
	"github.com/patuh/patuh/internal/policy"
	"github.com/patuh/patuh/internal/report"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

// checkCmd validates a content tree and applies a release gate
var checkCmd = &cobra.Command{
	Use:   "check [flags] <glob>...",
	Short: "Validate content files and apply a release gate",
	Long: `Validates every file matched by the given globs and evaluates a release gate
(CEL rules) over the results.

The validator is picked from the file name: *.citation.yaml and *.saying.yaml
(or .json) are structured records, *.policy.* and *.theme.* are automated
answers and motivational text, everything else is scanned as free text. HTML
files are converted to text first.

The run fails when the gate fails or any finding reaches --fail-on.

Examples:
  patuh check 'content/**/*.md'
  patuh check --gate strict --fail-on high 'site/**/*.html' 'records/**/*.yaml'
  patuh check --format sarif 'content/**' > patuh.sarif
  patuh check --gate strict --evidence release/evidence.zip 'content/**'`,
	Args:         cobra.MinimumNArgs(1),
	RunE:         runCheck,
	SilenceUsage: true,
}

var (
	checkGateFlag     string
	checkFailOnFlag   string
	checkFormatFlag   string
	checkEvidenceFlag string
)

func init() {
	checkCmd.Flags().StringVar(&checkGateFlag, "gate", "baseline", "Release gate: baseline, strict, or path to YAML file")
	checkCmd.Flags().StringVar(&checkFailOnFlag, "fail-on", "critical", "Finding severity that fails the run: critical, high, medium, or none")
	checkCmd.Flags().StringVar(&checkFormatFlag, "format", "text", "Output format: text, json, or sarif")
	checkCmd.Flags().StringVar(&checkEvidenceFlag, "evidence", "", "Write an evidence bundle (zip) with the catalog, gate and report")
}

// GetCheckCmd export
func GetCheckCmd() *cobra.Command {
	return checkCmd
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	sess := receipt.Start(ctx, "patuh check", os.Args[1:])
	receiptOpts := []receipt.Option{catalogReceipt()}
	defer func() {
		_ = sess.Finish(err, receiptOpts...)
	}()

	log := logging.From(ctx)
	start := time.Now()
	engine := rt.store.Engine()

	ctx, finishSpan := otelobs.StartCommand(ctx, "check",
		attribute.String("patuh.gate", checkGateFlag),
		attribute.String("patuh.catalog_version", engine.Version()),
	)
	defer func() { finishSpan(err) }()

	log.Event(ctx, "check.start", map[string]any{"gate": checkGateFlag})

	resultStatus := "fail"
	defer func() {
		log.Event(ctx, "check.complete", map[string]any{
			"duration_ms": time.Since(start).Milliseconds(),
			"result":      resultStatus,
		})
	}()

	failOn, err := ParseFindingThreshold(checkFailOnFlag)
	if err != nil {
		return err
	}
	switch checkFormatFlag {
	case "text", "json", "sarif":
	default:
		return fmt.Errorf("invalid format: %s (use text, json, or sarif)", checkFormatFlag)
	}

	gate, err := policy.Load(checkGateFlag)
	if err != nil {
		return fmt.Errorf("failed to load gate: %w", err)
	}
	gateEngine, err := policy.NewEngine()
	if err != nil {
		return fmt.Errorf("failed to create gate engine: %w", err)
	}
	if err := gateEngine.CompileAndValidate(gate); err != nil {
		return err
	}

	paths, err := ingest.Expand(args)
	if err != nil {
		return err
	}

	m := metrics.From(ctx)
	run := validateFiles(engine, paths, m, log)

	gateResults, err := gateEngine.Evaluate(gate, run)
	if err != nil {
		return fmt.Errorf("gate evaluation failed: %w", err)
	}

	result := BuildCheckResult(run, checkGateFlag, gate, gateResults, failOn)
	m.ObserveGate(checkGateFlag, result.Gate.Status)

	receiptOpts = append(receiptOpts,
		receipt.WithRun(result.Summary),
		receipt.WithGate(checkGateFlag, result.Gate.Status, ruleHits(gateResults)),
	)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("patuh.submissions", result.Summary.Total),
		attribute.String("patuh.gate_status", result.Gate.Status),
		attribute.String("patuh.outcome", result.Outcome),
	)

	out := cmd.OutOrStdout()
	switch checkFormatFlag {
	case "json":
		data, err := FormatJSONOutput(result)
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "sarif":
		if err := report.WriteSARIF(out, run); err != nil {
			return fmt.Errorf("failed to write SARIF: %w", err)
		}
	default:
		fmt.Fprint(out, FormatCheckText(result))
	}

	if checkEvidenceFlag != "" {
		if err := writeEvidence(checkEvidenceFlag, engine.Catalog(), gate, result); err != nil {
			return err
		}
		log.Info("check", "evidence bundle written", "path", checkEvidenceFlag)
	}

	if result.Outcome == outcomeFail {
		return &ExitError{
			Code:   1,
			Err:    fmt.Errorf("check failed: %d of %d submission(s) not compliant, gate %s", result.Summary.NonCompliant+result.Summary.Errors, result.Summary.Total, result.Gate.Status),
			Silent: checkFormatFlag != "text",
		}
	}
	resultStatus = "success"
	return nil
}

// validateFiles runs every path through its validator. Read and decode
// failures are recorded on the submission, never returned.
func validateFiles(engine *compliance.Engine, paths []string, m *metrics.Collector, log logging.Logger) *models.RunReport {
	run := &models.RunReport{
		Timestamp:      time.Now().UTC(),
		CatalogVersion: engine.Version(),
		Submissions:    make([]models.Submission, 0, len(paths)),
	}

	for _, path := range paths {
		kind := ingest.KindOf(path)
		sub := models.Submission{Source: path, Kind: string(kind)}

		start := time.Now()
		item, err := ingest.LoadFile(path)
		if err == nil {
			sub.Result, err = ingest.Validate(engine, item)
		}
		if err != nil {
			sub.Result = nil
			sub.Error = err.Error()
			m.ObserveError(kind.Validator())
			log.Warn("check", "submission failed", "source", path, "error", err.Error())
		} else {
			m.ObserveValidation(sub.Result, time.Since(start))
		}
		run.Submissions = append(run.Submissions, sub)
	}
	return run
}

// writeEvidence bundles what the run was judged against with its result.
func writeEvidence(path string, cat *models.Catalog, gate *models.PolicyConfig, result *CheckResult) error {
	catalogYAML, err := catalog.Marshal(cat)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	gateYAML, err := yaml.Marshal(gate)
	if err != nil {
		return fmt.Errorf("failed to encode gate: %w", err)
	}
	reportJSON, err := FormatJSONOutput(result)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	entries := []bundler.Entry{
		{Name: "catalog.yaml", Data: catalogYAML},
		{Name: "gate.yaml", Data: gateYAML},
		{Name: "report.json", Data: reportJSON},
	}
	gateName := ""
	if result.Gate != nil {
		gateName = result.Gate.Name
	}
	manifest := bundler.NewManifest(result.CatalogVersion, gateName, result.Outcome, entries)
	if err := bundler.Write(path, manifest, entries); err != nil {
		return fmt.Errorf("failed to write evidence bundle: %w", err)
	}
	return nil
}

func ruleHits(results []models.PolicyResult) []receipt.RuleHit {
	var hits []receipt.RuleHit
	for _, r := range results {
		if r.Passed {
			continue
		}
		hits = append(hits, receipt.RuleHit{
			Name:        r.RuleName,
			Severity:    string(r.Severity),
			ControlRefs: r.ControlRefs,
		})
	}
	return hits
}
