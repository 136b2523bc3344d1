package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := InitializeDB(filepath.Join(t.TempDir(), "data", "audit.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndCountLookups(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	lookups := []Lookup{
		{VideoID: "abc123", LanguageCode: "en", Outcome: "ok", Status: 200},
		{VideoID: "abc123", Outcome: "transcripts_disabled", Status: 403},
		{VideoID: "xyz789", LanguageCode: "fr", Outcome: "ok", Status: 200},
	}
	for _, l := range lookups {
		if err := store.RecordLookup(ctx, l); err != nil {
			t.Fatalf("Failed to record lookup: %v", err)
		}
	}

	count, err := store.countLookups(ctx, "abc123")
	if err != nil {
		t.Fatalf("Failed to count lookups: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 lookups, got %d", count)
	}

	last, err := store.lastLookup(ctx, "abc123")
	if err != nil {
		t.Fatalf("Failed to get last lookup: %v", err)
	}
	if last.Outcome != "transcripts_disabled" || last.Status != 403 {
		t.Errorf("expected last lookup to be the disabled one, got %+v", last)
	}
	if last.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestLastLookup_None(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.lastLookup(context.Background(), "missing"); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestInitializeDB_Error(t *testing.T) {
	// A regular file where the parent directory should be.
	parent := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(parent, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := InitializeDB(filepath.Join(parent, "audit.db")); err == nil {
		t.Fatal("expected error, got nil")
	}
}
