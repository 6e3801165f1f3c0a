package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/patuh/patuh/internal/ingest"
	"github.com/patuh/patuh/internal/metrics"
	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/observability/logging"
	otelobs "github.com/patuh/patuh/internal/observability/otel"
	"github.com/patuh/patuh/internal/observability/receipt"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxInputSize caps a single submission read from a file or stdin.
const maxInputSize = 10 * 1024 * 1024

// validateCmd groups the single-submission validators
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate one submission and print the verdict as JSON",
	Long: `Runs one validator against one submission and prints the ValidationResult.

Text kinds (text, policy, theme) take --text, --file or stdin. Record kinds
(citation, saying) take a YAML or JSON record from --file or stdin.

Examples:
  patuh validate text --text "Amalan ini mengandungi unsur khurafat."
  patuh validate text --file article.html --content-type article
  patuh validate citation --file ayat.citation.yaml --pretty
  echo '{"grade":"sahih","is_externally_verified":true,"usage_context":"ruling"}' | patuh validate saying
  patuh validate policy --file answer.txt --strict`,
}

var (
	validateTextFlag        string
	validateFileFlag        string
	validateContentTypeFlag string
	validateHTMLFlag        bool
	validatePrettyFlag      bool
	validateStrictFlag      bool
)

func init() {
	validateCmd.PersistentFlags().StringVarP(&validateFileFlag, "file", "f", "", "Read the submission from a file (- for stdin)")
	validateCmd.PersistentFlags().BoolVar(&validatePrettyFlag, "pretty", false, "Indent JSON output")
	validateCmd.PersistentFlags().BoolVar(&validateStrictFlag, "strict", false, "Exit with code 2 when the submission is not compliant")

	text := newValidateCmd(ingest.KindText, "Scan free text against the rule catalog")
	text.Flags().StringVar(&validateContentTypeFlag, "content-type", "", "Content type hint recorded on the result")
	text.Flags().BoolVar(&validateHTMLFlag, "html", false, "Treat input as HTML and convert it to text first")

	validateCmd.AddCommand(
		text,
		newValidateCmd(ingest.KindCitation, "Validate a scripture citation record"),
		newValidateCmd(ingest.KindSaying, "Validate an attributed saying record"),
		newValidateCmd(ingest.KindPolicy, "Validate an automated answer against the generated-content policy"),
		newValidateCmd(ingest.KindTheme, "Validate motivational content for forbidden themes"),
	)
}

// GetValidateCmd export
func GetValidateCmd() *cobra.Command {
	return validateCmd
}

func newValidateCmd(kind ingest.Kind, short string) *cobra.Command {
	c := &cobra.Command{
		Use:          string(kind),
		Short:        short,
		Args:         cobra.NoArgs,
		RunE:         runValidate(kind),
		SilenceUsage: true,
	}
	if !kind.IsRecord() {
		c.Flags().StringVarP(&validateTextFlag, "text", "t", "", "Submission text")
	}
	return c
}

func runValidate(kind ingest.Kind) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) (err error) {
		ctx := cmd.Context()
		engine := rt.store.Engine()
		validator := kind.Validator()

		sess := receipt.Start(ctx, "patuh validate "+string(kind), os.Args[1:])
		var result *models.ValidationResult
		defer func() {
			_ = sess.Finish(err, catalogReceipt(), receipt.WithVerdict(result))
		}()

		log := logging.From(ctx)
		start := time.Now()

		ctx, finishSpan := otelobs.StartCommand(ctx, "validate",
			attribute.String("patuh.validator", validator),
			attribute.String("patuh.catalog_version", engine.Version()),
		)
		defer func() { finishSpan(err) }()

		log.Event(ctx, "validate.start", map[string]any{"validator": validator})

		resultStatus := "fail"
		defer func() {
			fields := map[string]any{
				"duration_ms": time.Since(start).Milliseconds(),
				"result":      resultStatus,
				"validator":   validator,
			}
			if result != nil {
				fields["compliant"] = result.IsCompliant
				fields["findings"] = len(result.Findings)
			}
			log.Event(ctx, "validate.complete", fields)
		}()

		item, err := readSubmission(cmd, kind)
		if err != nil {
			return err
		}

		m := metrics.From(ctx)
		result, err = ingest.Validate(engine, item)
		if err != nil {
			m.ObserveError(validator)
			return fmt.Errorf("validation failed: %w", err)
		}
		m.ObserveValidation(result, time.Since(start))

		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Bool("patuh.compliant", result.IsCompliant),
			attribute.Int("patuh.findings", len(result.Findings)),
		)

		if result.AuditLogRequired && !receipt.Enabled(ctx) {
			log.Warn("validate", "audit trail required for automated answers but no receipt configured")
			fmt.Fprintf(cmd.ErrOrStderr(), "%swarning:%s automated answers must be audited; pass --receipt to record this verdict\n", colorYellow, colorReset)
		}

		if err := writeJSON(cmd.OutOrStdout(), result, validatePrettyFlag); err != nil {
			return err
		}

		resultStatus = "success"
		if !result.IsCompliant {
			resultStatus = metrics.VerdictNonCompliant
			if validateStrictFlag {
				return &ExitError{Code: 2, Err: errors.New("submission is not compliant"), Silent: true}
			}
		}
		return nil
	}
}

// readSubmission builds the item from --text, --file or stdin.
func readSubmission(cmd *cobra.Command, kind ingest.Kind) (*ingest.Item, error) {
	inline := cmd.Flags().Changed("text")
	if inline && validateFileFlag != "" {
		return nil, errors.New("--text and --file are mutually exclusive")
	}

	var (
		data   []byte
		source string
		err    error
	)
	switch {
	case inline:
		data, source = []byte(validateTextFlag), "--text"
	case validateFileFlag != "" && validateFileFlag != "-":
		data, err = os.ReadFile(validateFileFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to read submission: %w", err)
		}
		source = validateFileFlag
	default:
		data, err = io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxInputSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(data) > maxInputSize {
			return nil, fmt.Errorf("submission exceeds %d bytes", maxInputSize)
		}
		source = "stdin"
	}

	if kind.IsRecord() {
		item, err := ingest.DecodeRecord(kind, data)
		if err != nil {
			return nil, err
		}
		item.Source = source
		return item, nil
	}

	text := string(data)
	if validateHTMLFlag || (source == validateFileFlag && ingest.IsHTML(source)) {
		if text, err = ingest.HTMLToText(data); err != nil {
			return nil, err
		}
	}
	return &ingest.Item{
		Source:      source,
		Kind:        kind,
		ContentType: validateContentTypeFlag,
		Text:        text,
	}, nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
