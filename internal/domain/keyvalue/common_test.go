package keyvalue

import (
	"context"
	"testing"
)

// runStoreSuite exercises the Store contract shared by every driver.
func runStoreSuite(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, KeyToken); err != nil || ok {
		t.Fatalf("expected absent token, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, KeyToken, "jwt-abc"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	value, ok, err := store.Get(ctx, KeyToken)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !ok || value != "jwt-abc" {
		t.Fatalf("expected jwt-abc, got %q ok=%v", value, ok)
	}

	// Overwrite keeps a single entry per key.
	if err := store.Set(ctx, KeyToken, "jwt-def"); err != nil {
		t.Fatalf("Set overwrite error: %v", err)
	}
	value, _, _ = store.Get(ctx, KeyToken)
	if value != "jwt-def" {
		t.Fatalf("expected overwritten value jwt-def, got %q", value)
	}

	// JSON payloads round-trip untouched.
	profile := `{"id":7,"nickname":"星河","credits":120}`
	if err := store.Set(ctx, KeyUserInfo, profile); err != nil {
		t.Fatalf("Set userInfo error: %v", err)
	}
	value, ok, err = store.Get(ctx, KeyUserInfo)
	if err != nil || !ok || value != profile {
		t.Fatalf("userInfo round-trip failed: %q ok=%v err=%v", value, ok, err)
	}

	if err := store.Remove(ctx, KeyToken); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, ok, _ := store.Get(ctx, KeyToken); ok {
		t.Fatal("expected token removed")
	}

	// Removing an absent key is a no-op.
	if err := store.Remove(ctx, "absent"); err != nil {
		t.Fatalf("Remove absent key error: %v", err)
	}
}
