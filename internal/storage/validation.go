// Package storage provides the data persistence layer for the dossier application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/dossier/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidItem      = errors.New("invalid item")
	ErrInvalidReadiness = errors.New("invalid award readiness")
	ErrSchemaMismatch   = errors.New("schema version mismatch")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateItem checks an item before it is written to the table for want.
func validateItem(item *model.Item, want model.ItemType) error {
	if item == nil {
		return fmt.Errorf("%w: item", ErrNilParameter)
	}
	if item.Type != "" && item.Type != want {
		return fmt.Errorf("%w: %s item saved as %s", ErrInvalidItem, item.Type, want)
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidItem)
	}
	if strings.TrimSpace(item.Filename) == "" {
		return fmt.Errorf("%w: missing filename", ErrInvalidItem)
	}
	if strings.TrimSpace(item.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidItem)
	}
	if item.Confidence < 0 || item.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidItem)
	}
	if item.OCRConfidence < 0 || item.OCRConfidence > 100 {
		return fmt.Errorf("%w: OCR confidence must be between 0 and 100", ErrInvalidItem)
	}
	return nil
}

// validateReadiness checks a batch of readiness records.
func validateReadiness(records []model.AwardReadiness) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: readiness records", ErrEmptySlice)
	}

	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.AwardKey) == "" {
			return fmt.Errorf("%w: record %d has no award key", ErrInvalidReadiness, i)
		}
		if _, dup := seen[r.AwardKey]; dup {
			return fmt.Errorf("%w: duplicate award key %q", ErrInvalidReadiness, r.AwardKey)
		}
		seen[r.AwardKey] = struct{}{}

		if r.TotalItems != r.TotalDocuments+r.TotalEvents {
			return fmt.Errorf("%w: %s total items %d != %d documents + %d events",
				ErrInvalidReadiness, r.AwardKey, r.TotalItems, r.TotalDocuments, r.TotalEvents)
		}
		if r.Threshold <= 0 {
			return fmt.Errorf("%w: %s threshold must be positive", ErrInvalidReadiness, r.AwardKey)
		}
		if r.ReadinessPercentage < 0 || r.ReadinessPercentage > 100 {
			return fmt.Errorf("%w: %s percentage out of range", ErrInvalidReadiness, r.AwardKey)
		}
	}
	return nil
}
