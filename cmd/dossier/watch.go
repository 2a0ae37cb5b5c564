package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dossier/internal/cli"
	"github.com/Veraticus/dossier/internal/engine"
	"github.com/Veraticus/dossier/internal/model"
)

func watchCmd() *cobra.Command {
	var (
		settle  time.Duration
		initial bool
	)

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Ingest files as they land in an upload directory",
		Long: `Watch an upload directory and ingest new files once they stop changing.
Readiness is recomputed after every batch. Runs until interrupted.`,
		Example: `  dossier watch /srv/portal/uploads
  dossier watch --initial --settle 2s ./uploads`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			interrupts := cli.NewInterruptHandler(os.Stderr)
			defer interrupts.Stop()
			ctx := interrupts.HandleInterrupts(cmd.Context(), "Watch", "")

			if initial {
				uploads, err := engine.ScanDir(dir)
				if err != nil {
					return err
				}
				if len(uploads) > 0 {
					stats, err := a.engine.IngestAll(ctx, uploads)
					if err != nil {
						return err
					}
					fmt.Println(cli.RenderIngestStats(stats)) //nolint:forbidigo // User-facing output
					if _, err := a.engine.RecomputeReadiness(ctx); err != nil {
						return err
					}
					a.flushMetrics()
				}
			}

			if settle <= 0 {
				settle = a.cfg.Ingest.SettleDelay
			}

			w, err := engine.NewWatcher(a.engine, dir,
				engine.WithSettleDelay(settle),
				engine.WithIngestHook(func(path string, item *model.Item, err error) {
					if err != nil {
						fmt.Println(cli.FormatError(fmt.Sprintf("%s: %v", path, err))) //nolint:forbidigo // User-facing output
						return
					}
					fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s → %s (%s)", item.Filename, item.Category, item.Type))) //nolint:forbidigo // User-facing output
				}),
				engine.WithRecomputeHook(func(_ map[string]model.AwardReadiness, err error) {
					if err == nil {
						a.flushMetrics()
					}
				}),
			)
			if err != nil {
				return err
			}

			if err := w.Start(ctx); err != nil {
				return err
			}
			fmt.Println(cli.FormatInfo("Watching " + dir + " (Ctrl+C to stop)")) //nolint:forbidigo // User-facing output

			<-w.Done()
			w.Stop()
			slog.Info("Watcher exited", "dir", dir)

			// Readiness as of the last recompute in this session.
			agg := a.engine.Aggregator()
			if records := agg.Snapshot(); records != nil {
				fmt.Println(cli.RenderReadiness(agg.Report(records), agg.Criteria().Awards())) //nolint:forbidigo // User-facing output
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&settle, "settle", 0, "quiet period before a changed file is ingested (default from ingest.settle_delay)")
	cmd.Flags().BoolVar(&initial, "initial", false, "ingest files already in the directory before watching")

	return cmd
}
