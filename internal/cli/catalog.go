package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/patuh/patuh/internal/catalog"
	"github.com/patuh/patuh/internal/differ"
	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/observability/logging"
	otelobs "github.com/patuh/patuh/internal/observability/otel"
	"github.com/patuh/patuh/internal/observability/receipt"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

// embeddedCatalog names the built-in catalog on the diff command line.
const embeddedCatalog = "embedded"

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and compare rule catalogs",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active rule catalog",
	Long: `Prints the catalog selected by --catalog (or the embedded one).

Examples:
  patuh catalog show
  patuh catalog show --catalog jakim-2025.yaml --format json`,
	Args:         cobra.NoArgs,
	RunE:         runCatalogShow,
	SilenceUsage: true,
}

var catalogDiffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Report rule changes between two catalogs",
	Long: `Compares two catalog files and explains each change by its effect on
enforcement. Removing a forbidden term or lowering a severity is critical;
changing guidance text is moderate; additions are informational.

Use "embedded" for either side to compare against the built-in catalog.

Examples:
  patuh catalog diff embedded jakim-2025.yaml
  patuh catalog diff old.yaml new.yaml --fail-on=moderate --format=json`,
	Args:         cobra.ExactArgs(2),
	RunE:         runCatalogDiff,
	SilenceUsage: true,
}

var (
	catalogShowFormatFlag string
	catalogDiffFormatFlag string
	catalogDiffFailOnFlag string
)

func init() {
	catalogShowCmd.Flags().StringVar(&catalogShowFormatFlag, "format", "yaml", "Output format: yaml or json")
	catalogDiffCmd.Flags().StringVar(&catalogDiffFormatFlag, "format", "text", "Output format: text or json")
	catalogDiffCmd.Flags().StringVar(&catalogDiffFailOnFlag, "fail-on", "critical", "Severity threshold for failure: critical, moderate, or info")

	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogDiffCmd)
}

// GetCatalogCmd export
func GetCatalogCmd() *cobra.Command {
	return catalogCmd
}

func runCatalogShow(cmd *cobra.Command, _ []string) error {
	cat := rt.store.Engine().Catalog()

	var (
		data []byte
		err  error
	)
	switch catalogShowFormatFlag {
	case "yaml":
		data, err = catalog.Marshal(cat)
	case "json":
		data, err = json.MarshalIndent(cat, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("invalid format: %s (use yaml or json)", catalogShowFormatFlag)
	}
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runCatalogDiff(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	sess := receipt.Start(ctx, "patuh catalog diff", os.Args[1:])
	defer func() {
		_ = sess.Finish(err)
	}()

	log := logging.From(ctx)
	start := time.Now()
	ctx, finishSpan := otelobs.StartCommand(ctx, "catalog.diff",
		attribute.String("patuh.catalog.old", args[0]),
		attribute.String("patuh.catalog.new", args[1]),
	)
	defer func() { finishSpan(err) }()

	log.Event(ctx, "catalog.diff.start", nil)
	resultStatus := "fail"
	defer func() {
		log.Event(ctx, "catalog.diff.complete", map[string]any{
			"duration_ms": time.Since(start).Milliseconds(),
			"result":      resultStatus,
		})
	}()

	failOn, err := ParseFailOnLevel(catalogDiffFailOnFlag)
	if err != nil {
		return err
	}
	if catalogDiffFormatFlag != "text" && catalogDiffFormatFlag != "json" {
		return fmt.Errorf("invalid format: %s (use text or json)", catalogDiffFormatFlag)
	}

	oldCat, err := loadCatalogArg(args[0])
	if err != nil {
		return err
	}
	newCat, err := loadCatalogArg(args[1])
	if err != nil {
		return err
	}

	drift, err := differ.Compare(oldCat, newCat)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	result := BuildDiffResult(args[0], args[1], drift, failOn)
	out := cmd.OutOrStdout()
	if catalogDiffFormatFlag == "json" {
		data, err := FormatJSONOutput(result)
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprint(out, FormatDiffText(result))
	}

	if result.Outcome == outcomeFail {
		return &ExitError{
			Code:   1,
			Err:    fmt.Errorf("catalog drift exceeds fail-on=%s (%d change(s))", failOn, result.Summary.Total),
			Silent: catalogDiffFormatFlag == "json",
		}
	}
	resultStatus = "success"
	return nil
}

func loadCatalogArg(arg string) (*models.Catalog, error) {
	if arg == embeddedCatalog {
		return catalog.Default()
	}
	return catalog.LoadFile(arg)
}
