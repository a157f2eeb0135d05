package kvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/questlabs/roomquest/internal/database"
	"github.com/questlabs/roomquest/internal/migrations"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return New(db)
}

func TestPutGetRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	want := testDoc{Name: "progress", Count: 3}
	if err := store.Put(ctx, "progress", want); err != nil {
		t.Fatalf("put: %v", err)
	}

	var got testDoc
	if err := store.Get(ctx, "progress", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestPutReplacesExisting(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "progress", testDoc{Name: "old", Count: 1}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := store.Put(ctx, "progress", testDoc{Name: "new", Count: 2}); err != nil {
		t.Fatalf("second put: %v", err)
	}

	var got testDoc
	if err := store.Get(ctx, "progress", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "new" || got.Count != 2 {
		t.Fatalf("expected the replacement to win, got %+v", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	store := setupStore(t)

	var got testDoc
	err := store.Get(context.Background(), "nothing-here", &got)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "achievements", testDoc{Name: "rec"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "achievements"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var got testDoc
	if err := store.Get(ctx, "achievements", &got); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "achievements"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a second delete, got %v", err)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, KeyProgress, testDoc{Name: "p"}); err != nil {
		t.Fatalf("put progress: %v", err)
	}
	if err := store.Put(ctx, KeyAchievements, testDoc{Name: "a"}); err != nil {
		t.Fatalf("put achievements: %v", err)
	}
	if err := store.Delete(ctx, KeyProgress); err != nil {
		t.Fatalf("delete progress: %v", err)
	}

	var got testDoc
	if err := store.Get(ctx, KeyAchievements, &got); err != nil {
		t.Fatalf("achievements should survive a progress delete: %v", err)
	}
	if got.Name != "a" {
		t.Fatalf("expected the achievements doc, got %+v", got)
	}
}
