package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pokedex/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func strptr(s string) *string { return &s }

func TestRecordAssignsIDAndRoundTrips(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	saved, err := store.Record(ctx, history.Entry{
		Image:          "pika.png",
		PredictedIndex: 24,
		RawLabel:       strptr("Pikachu"),
		Name:           "皮卡丘",
		Label:          "Pikachu",
		Resolved:       true,
		Rule:           "exact",
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be assigned, got %+v", saved)
	}

	fetched, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.Name != "皮卡丘" || !fetched.Resolved || fetched.RawLabel == nil || *fetched.RawLabel != "Pikachu" {
		t.Fatalf("unexpected entry %+v", fetched)
	}
	if !fetched.CreatedAt.Equal(saved.CreatedAt) {
		t.Fatalf("timestamp mismatch: %v vs %v", fetched.CreatedAt, saved.CreatedAt)
	}
}

func TestRecordKeepsNilRawLabel(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	saved, err := store.Record(ctx, history.Entry{Image: "blank.png", Error: "invalid input"})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	fetched, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.RawLabel != nil {
		t.Fatalf("expected nil raw label, got %q", *fetched.RawLabel)
	}
	if fetched.Error != "invalid input" {
		t.Fatalf("unexpected error field %q", fetched.Error)
	}
}

func TestGetMissing(t *testing.T) {
	store := openStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirstWithFilters(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []history.Entry{
		{Label: "Pikachu", Resolved: true, CreatedAt: base},
		{Label: "unknownmon", Resolved: false, CreatedAt: base.Add(500 * time.Millisecond)},
		{Label: "Eevee", Resolved: true, CreatedAt: base.Add(time.Second)},
		{Image: "broken.png", Error: "classifier returned 500", CreatedAt: base.Add(-time.Second)},
	}
	for _, entry := range entries {
		if _, err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	all, err := store.List(ctx, history.ListOptions{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 4 || all[0].Label != "Eevee" || all[1].Label != "unknownmon" || all[2].Label != "Pikachu" || all[3].Error == "" {
		t.Fatalf("unexpected order %+v", all)
	}

	limited, err := store.List(ctx, history.ListOptions{Limit: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(limited) != 1 || limited[0].Label != "Eevee" {
		t.Fatalf("unexpected limited list %+v", limited)
	}

	unresolved, err := store.List(ctx, history.ListOptions{UnresolvedOnly: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(unresolved) != 1 || unresolved[0].Label != "unknownmon" {
		t.Fatalf("unexpected unresolved list %+v", unresolved)
	}
}

func TestClear(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for range 2 {
		if _, err := store.Record(ctx, history.Entry{Label: "x"}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	remaining, err := store.List(ctx, history.ListOptions{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty history, got %+v", remaining)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	saved, err := store.Record(context.Background(), history.Entry{Label: "Pikachu"})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if _, err := reopened.Get(context.Background(), saved.ID); err != nil {
		t.Fatalf("expected entry after reopen: %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := history.Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
