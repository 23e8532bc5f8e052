package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"todont/internal/service"
	"todont/internal/store"
)

func openStores(t *testing.T) map[string]store.Store {
	t.Helper()
	ctx := context.Background()

	sq, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "todont.sqlite"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]store.Store{
		"memory": store.NewMemory(),
		"sqlite": sq,
	}
}

func TestStore_CRUD(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			items, err := s.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(items) != 0 {
				t.Fatalf("expected empty store, got %d items", len(items))
			}

			milk, err := s.Create(ctx, "Buy milk")
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			eggs, err := s.Create(ctx, "Buy eggs")
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if milk.ID == eggs.ID {
				t.Fatalf("expected distinct IDs, both %d", milk.ID)
			}

			milk.Complete = true
			if err := s.Update(ctx, milk); err != nil {
				t.Fatalf("update: %v", err)
			}

			items, err = s.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			want := []service.Item{
				{ID: milk.ID, Desc: "Buy milk", Complete: true},
				{ID: eggs.ID, Desc: "Buy eggs"},
			}
			if len(items) != len(want) {
				t.Fatalf("expected %d items, got %d", len(want), len(items))
			}
			for i := range want {
				if items[i] != want[i] {
					t.Errorf("item %d: expected %#v, got %#v", i, want[i], items[i])
				}
			}

			if err := s.Delete(ctx, milk.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			items, _ = s.List(ctx)
			if len(items) != 1 || items[0].ID != eggs.ID {
				t.Errorf("expected only eggs left, got %#v", items)
			}
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Update(ctx, service.Item{ID: 42, Desc: "x"}); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("update: expected ErrNotFound, got %v", err)
			}
			if err := s.Delete(ctx, 42); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("delete: expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "todont.sqlite")

	s, err := store.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Create(ctx, "persist me"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = store.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	items, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Desc != "persist me" {
		t.Errorf("expected persisted item, got %#v", items)
	}
}

func TestOpen_Memory(t *testing.T) {
	for _, dsn := range []string{"", "memory", "  memory "} {
		s, err := store.Open(context.Background(), dsn)
		if err != nil {
			t.Fatalf("dsn %q: %v", dsn, err)
		}
		if _, ok := s.(*store.Memory); !ok {
			t.Errorf("dsn %q: expected memory store, got %T", dsn, s)
		}
	}
}
