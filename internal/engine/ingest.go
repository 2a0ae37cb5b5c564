package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/dossier/internal/common"
	"github.com/Veraticus/dossier/internal/model"
	"github.com/Veraticus/dossier/internal/service"
)

// IngestAll analyzes uploads in parallel and stores them in input order.
// A failing upload is counted and skipped; the batch only fails when the
// context is canceled or nothing could be stored.
func (e *Engine) IngestAll(ctx context.Context, uploads []service.Upload) (service.IngestStats, error) {
	var stats service.IngestStats
	if len(uploads) == 0 {
		return stats, common.ErrNoUploads
	}

	start := time.Now()
	slog.Info("Starting ingest", "uploads", len(uploads), "workers", e.workers)

	analyses := make([]analysis, len(uploads))
	failures := make([]error, len(uploads))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.workers)

	for i := range uploads {
		if egCtx.Err() != nil {
			break
		}
		i := i
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			analyses[i], failures[i] = e.analyze(egCtx, uploads[i])
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return stats, fmt.Errorf("ingest canceled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("ingest canceled: %w", err)
	}

	for i, upload := range uploads {
		err := failures[i]
		if err == nil {
			err = e.persist(ctx, &analyses[i])
		}

		var item *model.Item
		if err != nil {
			stats.Failed++
			slog.Warn("Failed to ingest upload", "path", upload.Path, "name", upload.Name, "error", err)
		} else {
			item = &analyses[i].item
			if item.Type == model.ItemEvent {
				stats.Events++
			} else {
				stats.Documents++
			}
			if analyses[i].result.Fallback {
				stats.Fallbacks++
			}
		}

		if e.progress != nil {
			e.progress(upload, item, err)
		}
	}

	stats.Duration = time.Since(start)
	slog.Info("Ingest complete",
		"documents", stats.Documents,
		"events", stats.Events,
		"fallbacks", stats.Fallbacks,
		"failed", stats.Failed,
		"duration", stats.Duration)

	if stats.Failed == len(uploads) {
		return stats, fmt.Errorf("%w: all %d uploads failed", common.ErrIngestFailed, len(uploads))
	}
	return stats, nil
}
