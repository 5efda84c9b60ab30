package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vsalab/predvec/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_Predications(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	rows := []*models.PredicationRow{
		{ID: "p1", Predication: models.Predication{Subject: "aspirin", Predicate: "TREATS", Object: "headache"}, Source: "/data/a.tsv"},
		{ID: "p2", Predication: models.Predication{Subject: "insulin", Predicate: "AFFECTS", Object: "glucose"}, Source: "/data/a.tsv"},
		{ID: "p3", Predication: models.Predication{Subject: "a", Predicate: "P", Object: "b"}, Source: "/data/b.tsv"},
	}
	if err := store.BatchInsertPredications(ctx, rows); err != nil {
		t.Fatal(err)
	}
	if rows[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	count, err := store.CountPredications(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("expected 3 predications, got %d", count)
	}

	got, err := store.GetPredicationsBySource(ctx, "/data/a.tsv")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows for source, got %d", len(got))
	}
	if got[0].Subject != "aspirin" || got[0].Predicate != "TREATS" || got[0].Object != "headache" {
		t.Errorf("got %+v", got[0])
	}
}

func TestSQLiteStorage_DeleteBySourceReturnsIDs(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	rows := []*models.PredicationRow{
		{ID: "p1", Predication: models.Predication{Subject: "a", Predicate: "P", Object: "b"}, Source: "/data/a.tsv"},
		{ID: "p2", Predication: models.Predication{Subject: "c", Predicate: "Q", Object: "d"}, Source: "/data/a.tsv"},
		{ID: "p3", Predication: models.Predication{Subject: "e", Predicate: "R", Object: "f"}, Source: "/data/b.tsv"},
	}
	if err := store.BatchInsertPredications(ctx, rows); err != nil {
		t.Fatal(err)
	}

	ids, err := store.DeletePredicationsBySource(ctx, "/data/a.tsv")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 deleted IDs, got %v", ids)
	}

	count, _ := store.CountPredications(ctx)
	if count != 1 {
		t.Errorf("expected 1 remaining row, got %d", count)
	}
	remaining, _ := store.GetPredicationsBySource(ctx, "/data/b.tsv")
	if len(remaining) != 1 {
		t.Errorf("other sources must be untouched, got %d rows", len(remaining))
	}
}

func TestSQLiteStorage_SourceLedger(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	src := &models.SourceFile{Path: "/data/a.tsv", Mtime: 1700000000, Size: 1024, Triples: 42}
	if err := store.UpsertSource(ctx, src); err != nil {
		t.Fatal(err)
	}
	if src.IngestedAt.IsZero() {
		t.Error("IngestedAt should be set")
	}

	got, err := store.GetSource(ctx, "/data/a.tsv")
	if err != nil {
		t.Fatal(err)
	}
	if got.Mtime != 1700000000 || got.Size != 1024 || got.Triples != 42 {
		t.Errorf("got %+v", got)
	}

	// Upsert with fresh metadata replaces the entry.
	src.Mtime = 1700000500
	src.Triples = 50
	if err := store.UpsertSource(ctx, src); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetSource(ctx, "/data/a.tsv")
	if got.Mtime != 1700000500 || got.Triples != 50 {
		t.Errorf("upsert did not refresh entry: %+v", got)
	}

	count, _ := store.CountSources(ctx)
	if count != 1 {
		t.Errorf("expected 1 source, got %d", count)
	}

	if err := store.DeleteSource(ctx, "/data/a.tsv"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetSource(ctx, "/data/a.tsv"); err == nil {
		t.Error("expected error after delete")
	}
}

func TestSQLiteStorage_ListSources(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	for _, path := range []string{"/data/b.tsv", "/data/a.tsv"} {
		if err := store.UpsertSource(ctx, &models.SourceFile{Path: path, Mtime: 1, Size: 1, Triples: 1}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := store.ListSources(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(list))
	}
	if list[0].Path != "/data/a.tsv" {
		t.Errorf("sources must be ordered by path, got %s first", list[0].Path)
	}
}

func TestSQLiteStorage_GetSourceMissing(t *testing.T) {
	store := newTestStorage(t)
	if _, err := store.GetSource(context.Background(), "/nope.tsv"); err == nil {
		t.Error("expected error for unknown source")
	}
}
