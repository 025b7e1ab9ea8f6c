package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryCreateAndFind(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	user, err := m.Create(ctx, "alice@example.com", "hash1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, hash, err := m.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if found.ID != user.ID || hash != "hash1" {
		t.Fatalf("found %+v/%s, want %+v/hash1", found, hash, user)
	}

	// Lookup is case-insensitive.
	if _, _, err := m.FindByEmail(ctx, "ALICE@example.com"); err != nil {
		t.Fatalf("case-insensitive find failed: %v", err)
	}
}

func TestMemoryDuplicateEmail(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Create(ctx, "alice@example.com", "h"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := m.Create(ctx, "ALICE@example.com", "h"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestMemoryNotFound(t *testing.T) {
	m := NewMemory()
	if _, _, err := m.FindByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
