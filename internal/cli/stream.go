package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/patuh/patuh/internal/catalog"
	"github.com/patuh/patuh/internal/metrics"
	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/observability/logging"
	otelobs "github.com/patuh/patuh/internal/observability/otel"
	"github.com/patuh/patuh/internal/observability/receipt"
	"github.com/patuh/patuh/internal/stream"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Validate JSONL requests from stdin",
	Long: `Reads one JSON request per line on stdin and writes one JSON response per
line on stdout. Responses arrive in completion order and echo the request id.

Request:  {"id": 1, "kind": "text", "text": "...", "content_type": "article"}
          {"id": 2, "kind": "citation", "record": {"source_attribution": "Mushaf Malaysia", ...}}
Response: {"id": 1, "result": {...}, "catalog_version": "2025.1"}

With --watch the --catalog file is reloaded when it changes. Requests in
flight finish against the catalog they started with.

Example:
  patuh stream --catalog /etc/patuh/catalog.yaml --watch --workers 8`,
	Args:         cobra.NoArgs,
	RunE:         runStream,
	SilenceUsage: true,
}

var (
	streamWorkersFlag  int
	streamWatchFlag    bool
	streamDebounceFlag time.Duration
)

func init() {
	streamCmd.Flags().IntVarP(&streamWorkersFlag, "workers", "w", 0, "Concurrent validations (default: number of CPUs)")
	streamCmd.Flags().BoolVar(&streamWatchFlag, "watch", false, "Reload the --catalog file when it changes")
	streamCmd.Flags().DurationVar(&streamDebounceFlag, "debounce", catalog.DefaultDebounce, "Quiet period before a changed catalog is reloaded")
}

// GetStreamCmd export
func GetStreamCmd() *cobra.Command {
	return streamCmd
}

func runStream(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()
	sess := receipt.Start(ctx, "patuh stream", os.Args[1:])
	var stats stream.Stats
	defer func() {
		_ = sess.Finish(err, catalogReceipt(), receipt.WithRun(models.RunSummary{
			Total:  int(stats.Requests),
			Errors: int(stats.Errors),
		}))
	}()

	if streamWatchFlag && rt.catalogPath == "" {
		return errors.New("--watch requires --catalog")
	}

	log := logging.From(ctx)
	m := metrics.From(ctx)
	start := time.Now()

	ctx, finishSpan := otelobs.StartCommand(ctx, "stream",
		attribute.Int("patuh.workers", streamWorkersFlag),
		attribute.Bool("patuh.watch", streamWatchFlag),
	)
	defer func() { finishSpan(err) }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if streamWatchFlag {
		w, err := catalog.NewWatcher(rt.catalogPath, streamDebounceFlag, log)
		if err != nil {
			return fmt.Errorf("failed to watch catalog: %w", err)
		}
		defer w.Close()

		go func() {
			_ = w.Run(ctx, func(c *models.Catalog) {
				prev := rt.store.Engine().Version()
				if _, err := rt.store.Swap(c); err != nil {
					log.Error("stream", "catalog rejected", "path", rt.catalogPath, "error", err.Error())
					return
				}
				m.SetCatalog(c.Version)
				log.Event(ctx, "catalog.reload", map[string]any{
					"previous_version": prev,
					"version":          c.Version,
				})
			})
		}()
	}

	log.Event(ctx, "stream.start", map[string]any{"watch": streamWatchFlag})

	srv := stream.NewServer(rt.store, stream.Config{Workers: streamWorkersFlag}, log, m)
	stats, err = srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())

	log.Event(ctx, "stream.complete", map[string]any{
		"duration_ms": time.Since(start).Milliseconds(),
		"requests":    stats.Requests,
		"errors":      stats.Errors,
		"result":      resultLabel(err),
	})
	return err
}
