package main

import (
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

// setupTestStore opens a run store over a throwaway database file and
// registers cleanup with the test.
func setupTestStore(t *testing.T) *RunStore {
	t.Helper()

	db, err := initDB(filepath.Join(t.TempDir(), "test_runs.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err = SetupStoreSchema(db); err != nil {
		t.Fatalf("failed to set up store schema: %v", err)
	}

	store, err := NewRunStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to create run store: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := initDB(filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
