// Package testutil provides test helpers for the dossier project: an
// in-memory migrated database and item fixtures.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/dossier/internal/model"
	"github.com/Veraticus/dossier/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, *storage.SQLiteStorage) error
	Items          []model.Item
	SkipMigrations bool
}

// SetupTestDB creates a new in-memory, migrated test database. It is closed
// automatically when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.MustSeed(testutil.NewItem().Event().Named("ASEAN Forum").Build())
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	db := &TestDB{Storage: store, t: t}
	db.MustSeed(opts.Items...)

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return db
}

// MustSeed saves items into the table matching their type, failing the
// test on error. Items are copied so generated IDs do not leak back.
func (db *TestDB) MustSeed(items ...model.Item) {
	db.t.Helper()
	ctx := context.Background()
	for i := range items {
		item := items[i]
		if err := seed(ctx, db.Storage, &item); err != nil {
			db.t.Fatalf("failed to seed item %q: %v", item.Name, err)
		}
	}
}

func seed(ctx context.Context, store *storage.SQLiteStorage, item *model.Item) error {
	switch item.Type {
	case model.ItemEvent:
		return store.SaveEvent(ctx, item)
	case model.ItemDocument, "":
		return store.SaveDocument(ctx, item)
	default:
		return fmt.Errorf("unknown item type %q", item.Type)
	}
}
