package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Veraticus/dossier/internal/common"
	"github.com/Veraticus/dossier/internal/model"
	"github.com/Veraticus/dossier/internal/service"
)

// DefaultSettleDelay is how long a file must stay quiet before it is ingested.
const DefaultSettleDelay = 500 * time.Millisecond

// ErrWatcherRunning is returned by Start while the watch loop is running.
var ErrWatcherRunning = errors.New("watcher already running")

// IngestHook observes every file the watcher processes.
type IngestHook func(path string, item *model.Item, err error)

// RecomputeHook observes every recompute the watcher triggers.
type RecomputeHook func(records map[string]model.AwardReadiness, err error)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithSettleDelay sets the quiet period before a changed file is ingested.
func WithSettleDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithRetryOptions controls retries for files that are still being written.
func WithRetryOptions(opts service.RetryOptions) WatcherOption {
	return func(w *Watcher) {
		w.retry = opts
	}
}

// WithIngestHook registers a callback run after each file.
func WithIngestHook(fn IngestHook) WatcherOption {
	return func(w *Watcher) {
		w.onIngest = fn
	}
}

// WithRecomputeHook registers a callback run after each recompute.
func WithRecomputeHook(fn RecomputeHook) WatcherOption {
	return func(w *Watcher) {
		w.onRecompute = fn
	}
}

// Watcher ingests files dropped into an upload directory and recomputes
// readiness after each batch. Each file is stored once: a rewritten upload
// replaces its earlier row. A Watcher can be started again after its loop
// has exited.
type Watcher struct {
	engine      *Engine
	pending     map[string]time.Time
	onIngest    IngestHook
	onRecompute RecomputeHook
	stopCh      chan struct{}
	doneCh      chan struct{}
	dir         string
	retry       service.RetryOptions
	settle      time.Duration
	mu          sync.Mutex
	running     bool
}

// NewWatcher creates a watcher for dir. Nothing is watched until Start.
func NewWatcher(e *Engine, dir string, opts ...WatcherOption) (*Watcher, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: engine", ErrMissingDependency)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat upload directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", common.ErrInvalidConfig, dir)
	}

	w := &Watcher{
		engine:  e,
		dir:     dir,
		settle:  DefaultSettleDelay,
		pending: make(map[string]time.Time),
		retry: service.RetryOptions{
			MaxAttempts:  5,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2,
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. It returns once the directory is registered; events
// are handled on a background goroutine until ctx is canceled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return ErrWatcherRunning
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	clear(w.pending)
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	slog.Info("Watching upload directory", "dir", w.dir, "settle", w.settle)

	go w.run(ctx, fw, w.stopCh, w.doneCh)
	return nil
}

// Stop ends the watch loop and waits for it to exit. It is safe to call
// after the context has already been canceled, or before Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	done := w.doneCh
	if w.running {
		w.running = false
		close(w.stopCh)
	}
	w.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Done is closed when the loop begun by the latest Start has exited. It is
// nil before the first Start.
func (w *Watcher) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doneCh
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, stop <-chan struct{}, done chan struct{}) {
	defer func() {
		if err := fw.Close(); err != nil {
			slog.Warn("Failed to close file watcher", "error", err)
		}

		w.mu.Lock()
		if w.doneCh == done {
			w.running = false
		}
		w.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(max(w.settle/2, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("Watcher context canceled", "dir", w.dir)
			return

		case <-stop:
			slog.Debug("Watcher stopped", "dir", w.dir)
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", "dir", w.dir, "error", err)

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	path := event.Name
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}
	if IsSidecar(path) {
		// New OCR text re-ingests the file it belongs to.
		path = path[:len(path)-len(SidecarSuffix)]
	}
	w.pending[path] = time.Now()
}

// flush ingests every pending file that has been quiet for the settle delay
// and recomputes readiness once for the batch.
func (w *Watcher) flush(ctx context.Context) {
	now := time.Now()
	var due []string
	for path, seen := range w.pending {
		if now.Sub(seen) >= w.settle {
			due = append(due, path)
		}
	}
	if len(due) == 0 {
		return
	}
	slices.Sort(due)

	ingested := 0
	for _, path := range due {
		delete(w.pending, path)

		item, err := w.ingestFile(ctx, path)
		switch {
		case err == nil:
			ingested++
		case errors.Is(err, errSkipped):
			continue
		default:
			slog.Warn("Failed to ingest watched file", "path", path, "error", err)
		}

		if w.onIngest != nil {
			w.onIngest(path, item, err)
		}
	}

	if ingested == 0 || ctx.Err() != nil {
		return
	}

	records, err := w.engine.RecomputeReadiness(ctx)
	if err != nil {
		common.LogError(err, "Failed to recompute readiness", common.Fields{"dir": w.dir, "ingested": ingested})
	}
	if w.onRecompute != nil {
		w.onRecompute(records, err)
	}
}

var errSkipped = errors.New("skipped")

func (w *Watcher) ingestFile(ctx context.Context, path string) (*model.Item, error) {
	var item *model.Item

	err := common.WithRetry(ctx, func() error {
		info, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return errSkipped
		}
		if err != nil {
			return err
		}
		if info.IsDir() || IsSidecar(path) {
			return errSkipped
		}
		if info.Size() == 0 {
			return fmt.Errorf("%s: %w", path, common.ErrFileBusy)
		}

		item, err = w.engine.Ingest(ctx, service.Upload{Path: path, Name: info.Name()})
		return err
	}, w.retry)

	return item, err
}
