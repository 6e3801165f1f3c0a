package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/patuh/patuh/internal/observability/logging"
	otelobs "github.com/patuh/patuh/internal/observability/otel"
	"github.com/patuh/patuh/internal/observability/receipt"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

var footerCmd = &cobra.Command{
	Use:   "footer <content-type>",
	Short: "Print the attribution footer for a content type",
	Long: `Renders the attribution footer required by the catalog for one content type.

Examples:
  patuh footer quran
  patuh footer --list`,
	Args: func(cmd *cobra.Command, args []string) error {
		if footerListFlag {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE:         runFooter,
	SilenceUsage: true,
}

var footerListFlag bool

func init() {
	footerCmd.Flags().BoolVar(&footerListFlag, "list", false, "List content types with a footer template")
}

// GetFooterCmd export
func GetFooterCmd() *cobra.Command {
	return footerCmd
}

func runFooter(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	sess := receipt.Start(ctx, "patuh footer", os.Args[1:])
	defer func() {
		_ = sess.Finish(err, catalogReceipt())
	}()

	engine := rt.store.Engine()
	out := cmd.OutOrStdout()

	if footerListFlag {
		for _, ct := range engine.ContentTypes() {
			fmt.Fprintln(out, ct)
		}
		return nil
	}

	log := logging.From(ctx)
	start := time.Now()
	ctx, finishSpan := otelobs.StartCommand(ctx, "footer", attribute.String("patuh.content_type", args[0]))
	defer func() { finishSpan(err) }()

	footer, err := engine.RenderAttributionFooter(args[0])
	log.Event(ctx, "footer.complete", map[string]any{
		"duration_ms":  time.Since(start).Milliseconds(),
		"content_type": args[0],
		"result":       resultLabel(err),
	})
	if err != nil {
		return err
	}
	fmt.Fprint(out, footer)
	if len(footer) > 0 && footer[len(footer)-1] != '\n' {
		fmt.Fprintln(out)
	}
	return nil
}
