// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/dossier/internal/model"
)

// ItemFilter narrows item listings. Zero values mean "no filter".
type ItemFilter struct {
	Type     model.ItemType
	Category string
	Limit    int
}

// ItemCounts holds per-type item totals.
type ItemCounts struct {
	Documents int
	Events    int
}

// Total returns the combined item count.
func (c ItemCounts) Total() int {
	return c.Documents + c.Events
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Item operations
	SaveDocument(ctx context.Context, item *model.Item) error
	SaveEvent(ctx context.Context, item *model.Item) error
	GetItem(ctx context.Context, id string) (*model.Item, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]model.Item, error)
	CountItems(ctx context.Context) (ItemCounts, error)

	// Readiness operations
	UpsertReadiness(ctx context.Context, records []model.AwardReadiness) (int, error)
	SaveReadiness(ctx context.Context, records []model.AwardReadiness) error
	GetReadiness(ctx context.Context) ([]model.AwardReadiness, error)
	ResetReadiness(ctx context.Context, records []model.AwardReadiness) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// UploadKind tells the ingest pipeline which table an upload belongs to.
type UploadKind string

// Upload kinds.
const (
	KindDocument UploadKind = "document"
	KindEvent    UploadKind = "event"
	KindAuto     UploadKind = "auto"
)

// ErrUnknownKind is returned by ParseUploadKind.
var ErrUnknownKind = errors.New("unknown upload kind")

// ParseUploadKind converts user input into an UploadKind. Empty input is
// KindAuto.
func ParseUploadKind(s string) (UploadKind, error) {
	switch kind := UploadKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case "":
		return KindAuto, nil
	case KindAuto, KindDocument, KindEvent:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q (want auto, document or event)", ErrUnknownKind, s)
	}
}

// Upload is a file handed to the ingest pipeline. Text and OCRConfidence are
// the output of the external text-extraction step; Text may be empty.
type Upload struct {
	Path          string
	Name          string
	Kind          UploadKind
	Text          string
	OCRConfidence float64
}

// ExtractedText is raw text recovered from a file with its recognition
// confidence on a 0..100 scale.
type ExtractedText struct {
	Text       string
	Confidence float64
}

// TextExtractor recovers text from an uploaded file. Implementations wrap the
// external OCR/PDF/DOCX tooling.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ExtractedText, error)
}

// IngestStats summarizes a batch ingest run.
type IngestStats struct {
	Documents int
	Events    int
	Fallbacks int
	Failed    int
	Duration  time.Duration
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
