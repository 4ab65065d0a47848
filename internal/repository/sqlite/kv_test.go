package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" gives every test a fresh, isolated database that disappears when
// the connection closes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGet_Missing(t *testing.T) {
	db := newTestDB(t)

	value, ok, err := db.Get(context.Background(), "session")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Errorf("Get() ok = true for missing key, value %q", value)
	}
}

func TestSetGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Set(ctx, "family_key", "sunny-curry-feast"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok, err := db.Get(ctx, "family_key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || value != "sunny-curry-feast" {
		t.Errorf("Get() = %q, %v; want %q, true", value, ok, "sunny-curry-feast")
	}
}

func TestSet_Overwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Set(ctx, "user_name", "Asha"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := db.Set(ctx, "user_name", "Ravi"); err != nil {
		t.Fatalf("Set() second write error = %v", err)
	}

	value, _, err := db.Get(ctx, "user_name")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "Ravi" {
		t.Errorf("Get() = %q, want %q", value, "Ravi")
	}
}

func TestRemove(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Set(ctx, "session", "{}"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := db.Remove(ctx, "session"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok, _ := db.Get(ctx, "session"); ok {
		t.Error("key still present after Remove()")
	}

	// Removing again is a no-op.
	if err := db.Remove(ctx, "session"); err != nil {
		t.Errorf("Remove() of missing key error = %v", err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.db")
	ctx := context.Background()

	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := db.Set(ctx, "foods_sunny-curry-feast", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	db.Close()

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, "foods_sunny-curry-feast")
	if err != nil || !ok {
		t.Fatalf("Get() after reopen = ok %v, err %v", ok, err)
	}
	if value != `[{"id":"1"}]` {
		t.Errorf("Get() = %q", value)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.migrate(); err != nil {
		t.Errorf("second migrate() error = %v", err)
	}
}
