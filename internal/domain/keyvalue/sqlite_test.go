package keyvalue

import (
	"context"
	"path/filepath"
	"testing"

	"skycanvas-client-go/internal/platform/storage"
)

func TestSQLiteStore(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("storage.Open error: %v", err)
	}

	store, err := NewSQLite(db, Config{Namespace: "test"})
	if err != nil {
		t.Fatalf("NewSQLite error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	runStoreSuite(t, store)
}

func TestSQLiteStoreNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("storage.Open error: %v", err)
	}

	a, _ := NewSQLite(db, Config{Namespace: "a"})
	b, _ := NewSQLite(db, Config{Namespace: "b"})

	if err := a.Set(ctx, KeyToken, "token-a"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, ok, _ := b.Get(ctx, KeyToken); ok {
		t.Fatal("namespace b must not see namespace a entries")
	}
}

func TestSQLiteStoreRequiresDB(t *testing.T) {
	if _, err := NewSQLite(nil, Config{}); err == nil {
		t.Fatal("expected error for nil database handle")
	}
}
