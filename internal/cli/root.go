package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patuh/patuh/internal/catalog"
	"github.com/patuh/patuh/internal/compliance"
	"github.com/patuh/patuh/internal/config"
	"github.com/patuh/patuh/internal/metrics"
	"github.com/patuh/patuh/internal/observability"
	"github.com/patuh/patuh/internal/observability/logging"
	otelobs "github.com/patuh/patuh/internal/observability/otel"
	"github.com/patuh/patuh/internal/observability/receipt"
	"github.com/patuh/patuh/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "patuh",
	Short: "Compliance checks for Islamic religious content",
	Long: `patuh: checks religious content against the JAKIM rule catalog before it
is published. Free text, scripture citations, attributed sayings, chatbot
answers and motivational material each have their own validator.`,
	Version:           version.String(),
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	logFormatFlag       string
	logLevelFlag        string
	logOutputFlag       string
	catalogFlag         string
	receiptFlag         string
	receiptModeFlag     string
	metricsTextfileFlag string

	otelFlag            bool
	otelEndpointFlag    string
	otelProtocolFlag    string
	otelInsecureFlag    bool
	otelSampleRatioFlag float64
)

// rt is the per-process state built by setup and released by teardown.
var rt struct {
	catalogPath string
	store       *compliance.Store
	logger      logging.Logger
	otel        *otelobs.Handle
	receipts    receipt.Writer
	metrics     *metrics.Collector
	metricsPath string
}

// ExitError carries a process exit code. Silent errors print nothing, so
// machine-readable stdout stays clean.
type ExitError struct {
	Code   int
	Err    error
	Silent bool
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	teardown()

	if err == nil {
		return
	}
	code := 1
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
		if exitErr.Silent {
			os.Exit(code)
		}
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(code)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logFormatFlag, "log-format", logging.FormatPretty, "Log format: pretty or jsonl (env PATUH_LOG_FORMAT)")
	pf.StringVar(&logLevelFlag, "log-level", logging.LevelInfo, "Log level: debug, info, warn, error (env PATUH_LOG_LEVEL)")
	pf.StringVar(&logOutputFlag, "log-output", "stderr", "Log destination: stderr or a file path (env PATUH_LOG_OUTPUT)")
	pf.StringVar(&catalogFlag, "catalog", "", "Rule catalog YAML (default: embedded catalog; env PATUH_CATALOG)")
	pf.StringVar(&receiptFlag, "receipt", "", "Write an audit receipt to this path (env PATUH_RECEIPT)")
	pf.StringVar(&receiptModeFlag, "receipt-mode", string(receipt.ModeOverwrite), "Receipt mode: overwrite or append (env PATUH_RECEIPT_MODE)")
	pf.StringVar(&metricsTextfileFlag, "metrics-textfile", "", "Write Prometheus metrics to this textfile on exit (env PATUH_METRICS_TEXTFILE)")

	pf.BoolVar(&otelFlag, "otel", false, "Enable OpenTelemetry tracing (env PATUH_OTEL_ENABLED)")
	pf.StringVar(&otelEndpointFlag, "otel-endpoint", "", "OTLP endpoint (env PATUH_OTEL_ENDPOINT)")
	pf.StringVar(&otelProtocolFlag, "otel-protocol", otelobs.ProtocolHTTP, "OTLP protocol: otlphttp or otlpgrpc")
	pf.BoolVar(&otelInsecureFlag, "otel-insecure", false, "Disable TLS for the OTLP exporter")
	pf.Float64Var(&otelSampleRatioFlag, "otel-sample-ratio", 1.0, "Trace sample ratio between 0 and 1")

	rootCmd.AddCommand(GetValidateCmd())
	rootCmd.AddCommand(GetFooterCmd())
	rootCmd.AddCommand(GetCatalogCmd())
	rootCmd.AddCommand(GetCheckCmd())
	rootCmd.AddCommand(GetGateCmd())
	rootCmd.AddCommand(GetStreamCmd())
}

// applyEnv fills every flag the user did not set from the environment.
func applyEnv(cmd *cobra.Command, cfg config.Config) {
	flags := cmd.Flags()
	str := func(name string, target *string, value string) {
		if !flags.Changed(name) && value != "" {
			*target = value
		}
	}
	str("log-format", &logFormatFlag, cfg.LogFormat)
	str("log-level", &logLevelFlag, cfg.LogLevel)
	str("log-output", &logOutputFlag, cfg.LogOutput)
	str("catalog", &catalogFlag, cfg.Catalog)
	str("receipt", &receiptFlag, cfg.Receipt)
	str("receipt-mode", &receiptModeFlag, cfg.ReceiptMode)
	str("metrics-textfile", &metricsTextfileFlag, cfg.MetricsTextfile)
	str("otel-endpoint", &otelEndpointFlag, cfg.Otel.Endpoint)
	str("otel-protocol", &otelProtocolFlag, cfg.Otel.Protocol)

	if !flags.Changed("otel") {
		otelFlag = cfg.Otel.Enabled
	}
	if !flags.Changed("otel-insecure") {
		otelInsecureFlag = cfg.Otel.Insecure
	}
	if !flags.Changed("otel-sample-ratio") {
		otelSampleRatioFlag = cfg.Otel.SampleRatio
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyEnv(cmd, cfg)

	ctx := observability.WithOpID(cmd.Context())

	logger, err := logging.NewLogger(logging.Config{
		Format: logFormatFlag,
		Level:  logLevelFlag,
		Output: logOutputFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	rt.logger = logger
	ctx = logging.WithLogger(ctx, logger)

	if otelFlag {
		oc := otelobs.DefaultConfig()
		oc.Enabled = true
		oc.Endpoint = otelEndpointFlag
		oc.Protocol = otelProtocolFlag
		oc.Insecure = otelInsecureFlag
		oc.SampleRatio = otelSampleRatioFlag
		h, err := otelobs.Init(ctx, oc)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		rt.otel = h
		ctx = otelobs.WithHandle(ctx, h)
	}

	if receiptFlag != "" {
		mode, err := receipt.ParseMode(receiptModeFlag)
		if err != nil {
			return err
		}
		w, err := receipt.NewWriter(receiptFlag, mode)
		if err != nil {
			return fmt.Errorf("failed to open receipt: %w", err)
		}
		rt.receipts = w
		ctx = receipt.WithWriter(ctx, w)
	}

	cat, err := catalog.LoadFile(catalogFlag)
	if err != nil {
		return err
	}
	engine, err := compliance.New(cat)
	if err != nil {
		return fmt.Errorf("failed to compile catalog: %w", err)
	}
	rt.catalogPath = catalogFlag
	rt.store = compliance.NewStore(engine)
	ctx = observability.WithCatalogVersion(ctx, cat.Version)

	rt.metrics = metrics.New()
	rt.metrics.SetCatalog(cat.Version)
	rt.metricsPath = metricsTextfileFlag
	ctx = metrics.WithCollector(ctx, rt.metrics)

	logger.Debug("cli", "catalog loaded", "version", cat.Version, "path", catalogFlag)
	cmd.SetContext(ctx)
	return nil
}

func teardown() {
	if err := rt.metrics.WriteTextfile(rt.metricsPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write metrics textfile: %v\n", err)
	}
	if rt.receipts != nil {
		_ = rt.receipts.Close()
	}
	if rt.otel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = rt.otel.Shutdown(ctx)
		cancel()
	}
	if rt.logger != nil {
		_ = rt.logger.Close()
	}
}

// catalogReceipt records the catalog the command ran against.
func catalogReceipt() receipt.Option {
	version := ""
	if rt.store != nil {
		version = rt.store.Engine().Version()
	}
	return receipt.WithCatalog(version, rt.catalogPath)
}
