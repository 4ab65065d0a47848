package memory

import (
	"context"
	"testing"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.Get(ctx, "session"); ok || err != nil {
		t.Fatalf("Get() on empty store = ok %v, err %v", ok, err)
	}

	if err := s.Set(ctx, "session", `{"mode":"create"}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, ok, err := s.Get(ctx, "session")
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if v != `{"mode":"create"}` {
		t.Errorf("Get() = %q", v)
	}

	if err := s.Remove(ctx, "session"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, "session"); ok {
		t.Error("key still present after Remove()")
	}
	if len(s.Keys()) != 0 {
		t.Errorf("Keys() = %v, want empty", s.Keys())
	}
}
