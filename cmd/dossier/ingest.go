package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/dossier/internal/cli"
	"github.com/Veraticus/dossier/internal/common"
	"github.com/Veraticus/dossier/internal/engine"
	"github.com/Veraticus/dossier/internal/model"
	"github.com/Veraticus/dossier/internal/service"
)

func ingestCmd() *cobra.Command {
	var (
		kind        string
		workers     int
		noRecompute bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <file-or-directory>...",
		Short: "Classify and store uploaded files",
		Long: `Classify, analyze and store files as documents or events, then recompute
award readiness. Directories are scanned one level deep; OCR sidecars
("<file>.txt") and hidden files are not ingested on their own.`,
		Example: `  dossier ingest ./uploads
  dossier ingest --kind event photos/*.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var uploadKind service.UploadKind
			if kind != "" {
				parsed, err := service.ParseUploadKind(kind)
				if err != nil {
					return common.NewUserError("Invalid --kind", err)
				}
				uploadKind = parsed
			}

			uploads, err := collectUploads(args, uploadKind)
			if err != nil {
				return err
			}
			if len(uploads) == 0 {
				return common.NewUserError("Nothing to ingest", common.ErrNoUploads)
			}

			bar := progressbar.NewOptions(len(uploads),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("Ingesting"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(false),
			)

			opts := []engine.Option{
				engine.WithProgress(func(_ service.Upload, _ *model.Item, _ error) {
					_ = bar.Add(1)
				}),
			}
			if workers > 0 {
				opts = append(opts, engine.WithWorkers(workers))
			}

			a, err := newApp(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			defer a.Close()
			defer a.flushMetrics()

			interrupts := cli.NewInterruptHandler(os.Stderr)
			defer interrupts.Stop()
			ctx := interrupts.HandleInterrupts(cmd.Context(), "Ingest",
				"Items stored so far are kept. Recompute with: dossier readiness recompute")

			stats, err := a.engine.IngestAll(ctx, uploads)
			_ = bar.Finish()
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}

			fmt.Println(cli.RenderIngestStats(stats)) //nolint:forbidigo // User-facing output

			if noRecompute {
				return nil
			}
			records, err := a.engine.RecomputeReadiness(ctx)
			if err != nil {
				return err
			}
			fmt.Println(cli.RenderReadiness(a.engine.Aggregator().Report(records), a.engine.Aggregator().Criteria().Awards())) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "store uploads as: auto, document or event (default from ingest.kind)")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of files analyzed in parallel (default from ingest.workers)")
	cmd.Flags().BoolVar(&noRecompute, "no-recompute", false, "skip the readiness recompute after ingest")

	return cmd
}

// collectUploads expands directories and applies an explicit kind to every
// upload. An empty kind leaves the engine default in place.
func collectUploads(paths []string, kind service.UploadKind) ([]service.Upload, error) {
	var uploads []service.Upload
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("Cannot read %s", path), err)
		}

		if info.IsDir() {
			found, err := engine.ScanDir(path)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, found...)
			continue
		}

		uploads = append(uploads, service.Upload{Path: path, Name: filepath.Base(path)})
	}

	for i := range uploads {
		uploads[i].Kind = kind
	}
	return uploads, nil
}
