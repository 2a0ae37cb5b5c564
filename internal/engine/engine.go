// Package engine implements the ingest and readiness pipeline: uploads are
// classified, analyzed and persisted, and award readiness is recomputed from
// everything stored.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/dossier/internal/common"
	"github.com/Veraticus/dossier/internal/metrics"
	"github.com/Veraticus/dossier/internal/model"
	"github.com/Veraticus/dossier/internal/ocr"
	"github.com/Veraticus/dossier/internal/readiness"
	"github.com/Veraticus/dossier/internal/rules"
	"github.com/Veraticus/dossier/internal/service"
)

// Engine errors.
var (
	ErrMissingDependency = errors.New("missing engine dependency")
	ErrInvalidUpload     = errors.New("invalid upload")
)

// DefaultWorkers is the analysis fan-out used by IngestAll.
const DefaultWorkers = 4

// ProgressFunc is called once per upload after IngestAll has tried to
// persist it. err is nil on success.
type ProgressFunc func(upload service.Upload, item *model.Item, err error)

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records classification, ingest and recompute metrics.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithWorkers bounds the number of uploads analyzed concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithKind sets the kind used for uploads that do not carry one.
func WithKind(kind service.UploadKind) Option {
	return func(e *Engine) {
		if kind != "" {
			e.kind = kind
		}
	}
}

// WithExtractor supplies text for uploads that arrive without any.
func WithExtractor(x service.TextExtractor) Option {
	return func(e *Engine) {
		e.extractor = x
	}
}

// WithProgress registers a callback for IngestAll.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// Engine orchestrates ingest and readiness recompute.
type Engine struct {
	storage    service.Storage
	matcher    *rules.Matcher
	analyzer   *ocr.Analyzer
	aggregator *readiness.Aggregator
	metrics    *metrics.Recorder
	extractor  service.TextExtractor
	progress   ProgressFunc
	kind       service.UploadKind
	workers    int

	// recomputeMu serializes every write to award_readiness.
	recomputeMu sync.Mutex
}

// New creates an engine over its collaborators.
func New(store service.Storage, matcher *rules.Matcher, analyzer *ocr.Analyzer, aggregator *readiness.Aggregator, opts ...Option) (*Engine, error) {
	switch {
	case store == nil:
		return nil, fmt.Errorf("%w: storage", ErrMissingDependency)
	case matcher == nil:
		return nil, fmt.Errorf("%w: rule matcher", ErrMissingDependency)
	case analyzer == nil:
		return nil, fmt.Errorf("%w: content analyzer", ErrMissingDependency)
	case aggregator == nil:
		return nil, fmt.Errorf("%w: readiness aggregator", ErrMissingDependency)
	}

	e := &Engine{
		storage:    store,
		matcher:    matcher,
		analyzer:   analyzer,
		aggregator: aggregator,
		kind:       service.KindAuto,
		workers:    DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := validateKind(e.kind); err != nil {
		return nil, err
	}

	return e, nil
}

// Aggregator returns the readiness aggregator the engine recomputes with.
func (e *Engine) Aggregator() *readiness.Aggregator {
	return e.aggregator
}

// analysis is an upload after the pure classification steps, ready to be
// written.
type analysis struct {
	item   model.Item
	result model.ClassificationResult
}

// Ingest classifies, analyzes and stores a single upload.
func (e *Engine) Ingest(ctx context.Context, upload service.Upload) (*model.Item, error) {
	a, err := e.analyze(ctx, upload)
	if err != nil {
		return nil, err
	}
	if err := e.persist(ctx, &a); err != nil {
		return nil, err
	}
	return &a.item, nil
}

func (e *Engine) analyze(ctx context.Context, upload service.Upload) (analysis, error) {
	name := upload.Name
	if name == "" {
		name = filepath.Base(upload.Path)
	}
	if name == "" || name == "." || name == string(filepath.Separator) {
		return analysis{}, fmt.Errorf("%w: no file name", ErrInvalidUpload)
	}

	kind := upload.Kind
	if kind == "" {
		kind = e.kind
	}
	if err := validateKind(kind); err != nil {
		return analysis{}, err
	}

	text, confidence := upload.Text, upload.OCRConfidence
	if text == "" && upload.Path != "" && e.extractor != nil {
		extracted, err := e.extractor.Extract(ctx, upload.Path)
		if err != nil {
			return analysis{}, fmt.Errorf("failed to extract text from %s: %w", name, err)
		}
		text, confidence = extracted.Text, extracted.Confidence
	}

	result := e.matcher.Classify(name, text)
	extracted := e.analyzer.Analyze(ocr.Result{Text: text, Confidence: confidence}, name)

	item := model.Item{
		Type:          e.resolveType(kind, name, result, extracted),
		Name:          strings.TrimSuffix(name, filepath.Ext(name)),
		Filename:      name,
		Category:      result.Category,
		Title:         extracted.Title,
		Description:   extracted.Description,
		ExtractedText: ocr.Normalize(text),
		Confidence:    result.Confidence,
		OCRConfidence: confidence,
	}
	if item.Type == model.ItemEvent {
		item.Details = extracted.EventDetails
	}

	common.LogDebug("Analyzed upload", common.Fields{
		"file":     name,
		"category": result.Category,
		"fallback": result.Fallback,
		"type":     item.Type,
		"content":  extracted.Category,
	})

	return analysis{item: item, result: result}, nil
}

// resolveType decides which table an upload lands in. Auto uploads become
// events when the rules say so, or when an image's text reads like an event.
func (e *Engine) resolveType(kind service.UploadKind, name string, result model.ClassificationResult, extracted model.ExtractedItem) model.ItemType {
	switch kind {
	case service.KindDocument:
		return model.ItemDocument
	case service.KindEvent:
		return model.ItemEvent
	}

	if result.Category == rules.CategoryEvents {
		return model.ItemEvent
	}
	if e.isImage(name) && extracted.Category == model.CategoryEvent {
		return model.ItemEvent
	}
	return model.ItemDocument
}

func (e *Engine) isImage(name string) bool {
	return e.matcher.RuleSet().Fallback().Lookup(strings.ToLower(name)) == rules.CategoryImages
}

func (e *Engine) persist(ctx context.Context, a *analysis) error {
	var err error
	if a.item.Type == model.ItemEvent {
		err = e.storage.SaveEvent(ctx, &a.item)
	} else {
		err = e.storage.SaveDocument(ctx, &a.item)
	}
	if err != nil {
		return fmt.Errorf("failed to save %s %s: %w", a.item.Type, a.item.Filename, err)
	}

	e.metrics.ObserveClassification(a.result)
	e.metrics.ObserveIngest(a.item.Type)

	slog.Info("Ingested item",
		"type", a.item.Type,
		"filename", a.item.Filename,
		"category", a.item.Category,
		"confidence", a.item.Confidence,
		"fallback", a.result.Fallback)

	return nil
}

// RecomputeReadiness rescans every stored item and replaces the persisted
// readiness rows. Only one recompute runs at a time.
func (e *Engine) RecomputeReadiness(ctx context.Context) (map[string]model.AwardReadiness, error) {
	e.recomputeMu.Lock()
	defer e.recomputeMu.Unlock()

	start := time.Now()

	items, err := e.storage.ListItems(ctx, service.ItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	records := e.aggregator.Recompute(items)
	if err := e.storage.SaveReadiness(ctx, e.aggregator.Report(records)); err != nil {
		return nil, fmt.Errorf("failed to save readiness: %w", err)
	}

	elapsed := time.Since(start)
	e.metrics.ObserveRecompute(elapsed, records)

	ready := 0
	for _, r := range records {
		if r.IsReady {
			ready++
		}
	}
	slog.Info("Recomputed award readiness",
		"items", len(items),
		"awards", len(records),
		"ready", ready,
		"duration", elapsed)

	return records, nil
}

// InitializeReadiness inserts a zeroed row for every award that has none.
// Existing rows are left alone, so it is safe to run repeatedly.
func (e *Engine) InitializeReadiness(ctx context.Context) (int, error) {
	e.recomputeMu.Lock()
	defer e.recomputeMu.Unlock()

	inserted, err := e.storage.UpsertReadiness(ctx, e.aggregator.Report(e.aggregator.Initial()))
	if err != nil {
		return 0, fmt.Errorf("failed to initialize readiness: %w", err)
	}

	slog.Info("Initialized award readiness", "inserted", inserted)
	return inserted, nil
}

// ResetReadiness zeroes every award, discarding stored counters and the
// aggregator's snapshot.
func (e *Engine) ResetReadiness(ctx context.Context) error {
	e.recomputeMu.Lock()
	defer e.recomputeMu.Unlock()

	if err := e.storage.ResetReadiness(ctx, e.aggregator.Report(e.aggregator.Initial())); err != nil {
		return fmt.Errorf("failed to reset readiness: %w", err)
	}
	initial := e.aggregator.Reset()
	e.metrics.ObserveReadiness(initial)

	slog.Info("Reset award readiness", "awards", len(initial))
	return nil
}

// Readiness returns the stored readiness rows.
func (e *Engine) Readiness(ctx context.Context) ([]model.AwardReadiness, error) {
	records, err := e.storage.GetReadiness(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load readiness: %w", err)
	}
	return records, nil
}

func validateKind(kind service.UploadKind) error {
	switch kind {
	case service.KindAuto, service.KindDocument, service.KindEvent:
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidUpload, kind)
	}
}
