package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/dossier/internal/model"
)

const readinessColumns = `award_key, total_documents, total_events, total_items,
	satisfied_criteria, unsatisfied_criteria, readiness_percentage, is_ready,
	threshold, last_calculated`

// UpsertReadiness inserts records for awards that have no row yet and leaves
// existing rows untouched. It returns the number of rows inserted.
func (s *SQLiteStorage) UpsertReadiness(ctx context.Context, records []model.AwardReadiness) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateReadiness(records); err != nil {
		return 0, err
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, r := range records {
			args, err := readinessArgs(r)
			if err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO award_readiness (`+readinessColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
			if err != nil {
				return fmt.Errorf("failed to insert readiness for %s: %w", r.AwardKey, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read affected rows: %w", err)
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// SaveReadiness replaces the stored snapshot with records in one transaction.
// Rows for awards absent from records are removed.
func (s *SQLiteStorage) SaveReadiness(ctx context.Context, records []model.AwardReadiness) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReadiness(records); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		keys := make([]any, 0, len(records))
		for _, r := range records {
			args, err := readinessArgs(r)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO award_readiness (`+readinessColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(award_key) DO UPDATE SET
					total_documents = excluded.total_documents,
					total_events = excluded.total_events,
					total_items = excluded.total_items,
					satisfied_criteria = excluded.satisfied_criteria,
					unsatisfied_criteria = excluded.unsatisfied_criteria,
					readiness_percentage = excluded.readiness_percentage,
					is_ready = excluded.is_ready,
					threshold = excluded.threshold,
					last_calculated = excluded.last_calculated`, args...)
			if err != nil {
				return fmt.Errorf("failed to save readiness for %s: %w", r.AwardKey, err)
			}
			keys = append(keys, r.AwardKey)
		}

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM award_readiness WHERE award_key NOT IN (`+placeholders+`)`, keys...); err != nil {
			return fmt.Errorf("failed to prune stale readiness rows: %w", err)
		}
		return nil
	})
}

// ResetReadiness discards every stored row and writes records in their place.
func (s *SQLiteStorage) ResetReadiness(ctx context.Context, records []model.AwardReadiness) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReadiness(records); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM award_readiness`); err != nil {
			return fmt.Errorf("failed to clear readiness: %w", err)
		}
		for _, r := range records {
			args, err := readinessArgs(r)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO award_readiness (`+readinessColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
				return fmt.Errorf("failed to reset readiness for %s: %w", r.AwardKey, err)
			}
		}
		return nil
	})
}

// GetReadiness returns every stored readiness record ordered by award key.
func (s *SQLiteStorage) GetReadiness(ctx context.Context) ([]model.AwardReadiness, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getReadinessTx(ctx, s.db)
}

func (s *SQLiteStorage) getReadinessTx(ctx context.Context, q queryable) ([]model.AwardReadiness, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+readinessColumns+` FROM award_readiness ORDER BY award_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query readiness: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.AwardReadiness
	for rows.Next() {
		var (
			r                      model.AwardReadiness
			satisfied, unsatisfied string
		)
		if err := rows.Scan(
			&r.AwardKey, &r.TotalDocuments, &r.TotalEvents, &r.TotalItems,
			&satisfied, &unsatisfied, &r.ReadinessPercentage, &r.IsReady,
			&r.Threshold, &r.LastCalculated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan readiness: %w", err)
		}
		if err := json.Unmarshal([]byte(satisfied), &r.SatisfiedCriteria); err != nil {
			return nil, fmt.Errorf("%w: satisfied criteria for %s: %w", ErrInvalidReadiness, r.AwardKey, err)
		}
		if err := json.Unmarshal([]byte(unsatisfied), &r.UnsatisfiedCriteria); err != nil {
			return nil, fmt.Errorf("%w: unsatisfied criteria for %s: %w", ErrInvalidReadiness, r.AwardKey, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readiness: %w", err)
	}

	return records, nil
}

func readinessArgs(r model.AwardReadiness) ([]any, error) {
	satisfied, err := marshalCriteria(r.SatisfiedCriteria)
	if err != nil {
		return nil, err
	}
	unsatisfied, err := marshalCriteria(r.UnsatisfiedCriteria)
	if err != nil {
		return nil, err
	}
	return []any{
		r.AwardKey, r.TotalDocuments, r.TotalEvents, r.TotalItems,
		satisfied, unsatisfied, r.ReadinessPercentage, r.IsReady,
		r.Threshold, r.LastCalculated.UTC(),
	}, nil
}

func marshalCriteria(criteria []string) (string, error) {
	if criteria == nil {
		criteria = []string{}
	}
	data, err := json.Marshal(criteria)
	if err != nil {
		return "", fmt.Errorf("failed to encode criteria: %w", err)
	}
	return string(data), nil
}
