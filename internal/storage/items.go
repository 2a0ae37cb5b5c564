package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/dossier/internal/common"
	"github.com/Veraticus/dossier/internal/model"
	"github.com/Veraticus/dossier/internal/service"
)

const (
	documentColumns = `id, 'document', name, filename, category, title, description, extracted_text,
		'', '', '', confidence, ocr_confidence, created_at`
	eventColumns = `id, 'event', name, filename, category, title, description, extracted_text,
		organizer, place, event_date, confidence, ocr_confidence, created_at`
)

// SaveDocument stores a document row keyed by filename. Saving a filename
// that is already stored replaces that row's content in place, keeping its
// ID and CreatedAt, and removes any event row with the same filename. A
// missing ID is filled with a new UUID and a zero CreatedAt with the current
// time; both are updated to the stored values.
func (s *SQLiteStorage) SaveDocument(ctx context.Context, item *model.Item) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateItem(item, model.ItemDocument); err != nil {
		return err
	}
	prepareItem(item, model.ItemDocument)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE filename = ?`, item.Filename); err != nil {
			return fmt.Errorf("failed to replace event %s: %w", item.Filename, err)
		}

		err := tx.QueryRowContext(ctx, `
			INSERT INTO documents (
				id, name, filename, category, title, description, extracted_text,
				confidence, ocr_confidence, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(filename) DO UPDATE SET
				name = excluded.name,
				category = excluded.category,
				title = excluded.title,
				description = excluded.description,
				extracted_text = excluded.extracted_text,
				confidence = excluded.confidence,
				ocr_confidence = excluded.ocr_confidence
			RETURNING id, created_at`,
			item.ID, item.Name, item.Filename, item.Category, item.Title, item.Description,
			item.ExtractedText, item.Confidence, item.OCRConfidence, item.CreatedAt,
		).Scan(&item.ID, timestamp{&item.CreatedAt})
		if err != nil {
			return wrapInsertError("document", item.ID, err)
		}
		return nil
	})
}

// SaveEvent stores an event row keyed by filename, with the same replacement
// rules as SaveDocument. Empty event details are stored as model.Unspecified.
func (s *SQLiteStorage) SaveEvent(ctx context.Context, item *model.Item) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateItem(item, model.ItemEvent); err != nil {
		return err
	}
	prepareItem(item, model.ItemEvent)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE filename = ?`, item.Filename); err != nil {
			return fmt.Errorf("failed to replace document %s: %w", item.Filename, err)
		}

		err := tx.QueryRowContext(ctx, `
			INSERT INTO events (
				id, name, filename, category, title, description, extracted_text,
				organizer, place, event_date, confidence, ocr_confidence, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(filename) DO UPDATE SET
				name = excluded.name,
				category = excluded.category,
				title = excluded.title,
				description = excluded.description,
				extracted_text = excluded.extracted_text,
				organizer = excluded.organizer,
				place = excluded.place,
				event_date = excluded.event_date,
				confidence = excluded.confidence,
				ocr_confidence = excluded.ocr_confidence
			RETURNING id, created_at`,
			item.ID, item.Name, item.Filename, item.Category, item.Title, item.Description,
			item.ExtractedText, item.Details.Organizer, item.Details.Place, item.Details.Date,
			item.Confidence, item.OCRConfidence, item.CreatedAt,
		).Scan(&item.ID, timestamp{&item.CreatedAt})
		if err != nil {
			return wrapInsertError("event", item.ID, err)
		}
		return nil
	})
}

func prepareItem(item *model.Item, typ model.ItemType) {
	item.Type = typ
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if typ == model.ItemEvent {
		unspecified := model.UnspecifiedDetails()
		if item.Details.Organizer == "" {
			item.Details.Organizer = unspecified.Organizer
		}
		if item.Details.Place == "" {
			item.Details.Place = unspecified.Place
		}
		if item.Details.Date == "" {
			item.Details.Date = unspecified.Date
		}
	}
}

func wrapInsertError(kind, id string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %s %s", common.ErrDuplicateEntry, kind, id)
	}
	return fmt.Errorf("failed to save %s: %w", kind, err)
}

// GetItem looks up a document or event by ID.
func (s *SQLiteStorage) GetItem(ctx context.Context, id string) (*model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?
		UNION ALL
		SELECT `+eventColumns+` FROM events WHERE id = ?`, id, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: item %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns documents and events ordered by creation time.
func (s *SQLiteStorage) ListItems(ctx context.Context, filter service.ItemFilter) ([]model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listItemsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) listItemsTx(ctx context.Context, q queryable, filter service.ItemFilter) ([]model.Item, error) {
	var (
		selects []string
		args    []any
	)

	where := ""
	if filter.Category != "" {
		where = " WHERE category = ?"
	}

	if filter.Type == "" || filter.Type == model.ItemDocument {
		selects = append(selects, `SELECT `+documentColumns+` FROM documents`+where)
		if where != "" {
			args = append(args, filter.Category)
		}
	}
	if filter.Type == "" || filter.Type == model.ItemEvent {
		selects = append(selects, `SELECT `+eventColumns+` FROM events`+where)
		if where != "" {
			args = append(args, filter.Category)
		}
	}
	if len(selects) == 0 {
		return nil, fmt.Errorf("%w: unknown item type %q", ErrInvalidItem, filter.Type)
	}

	query := strings.Join(selects, " UNION ALL ") + " ORDER BY 14, 1"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*model.Item, error) {
	var (
		item model.Item
		typ  string
	)
	err := row.Scan(
		&item.ID, &typ, &item.Name, &item.Filename, &item.Category,
		&item.Title, &item.Description, &item.ExtractedText,
		&item.Details.Organizer, &item.Details.Place, &item.Details.Date,
		&item.Confidence, &item.OCRConfidence, timestamp{&item.CreatedAt},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}
	item.Type = model.ItemType(typ)
	return &item, nil
}

// timestamp scans DATETIME values that lose their declared type in compound
// selects and arrive as text.
type timestamp struct {
	t *time.Time
}

func (ts timestamp) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*ts.t = x
		return nil
	case nil:
		*ts.t = time.Time{}
		return nil
	case []byte:
		return ts.parse(string(x))
	case string:
		return ts.parse(x)
	default:
		return fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func (ts timestamp) parse(s string) error {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*ts.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}

// CountItems returns the number of stored documents and events.
func (s *SQLiteStorage) CountItems(ctx context.Context) (service.ItemCounts, error) {
	if err := validateContext(ctx); err != nil {
		return service.ItemCounts{}, err
	}

	var counts service.ItemCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM documents),
			(SELECT COUNT(*) FROM events)
	`).Scan(&counts.Documents, &counts.Events)
	if err != nil {
		return service.ItemCounts{}, fmt.Errorf("failed to count items: %w", err)
	}
	return counts, nil
}
