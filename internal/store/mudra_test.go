package store

import (
	"errors"
	"testing"

	"github.com/ayusman/mudra/internal/gesture"
)

func TestMudraRepository_Seed(t *testing.T) {
	s := newTestStore(t)
	repo := s.Mudras()

	defaults := gesture.DefaultCatalog().Entries()

	n, err := repo.Seed(defaults)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != len(defaults) {
		t.Errorf("inserted %d, want %d", n, len(defaults))
	}

	// Edited descriptions survive a reseed.
	if err := repo.Upsert(&Mudra{Label: "Pataka", Description: "Flag, edited"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	n, err = repo.Seed(defaults)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if n != 0 {
		t.Errorf("reseed inserted %d, want 0", n)
	}

	m, err := repo.Get("Pataka")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.Description != "Flag, edited" {
		t.Errorf("description = %q, want edited value", m.Description)
	}
}

func TestMudraRepository_CRUD(t *testing.T) {
	s := newTestStore(t)
	repo := s.Mudras()

	if _, err := repo.Get("Pataka"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	m := &Mudra{Label: "Pataka", Description: "Flag"}
	if err := repo.Upsert(m); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if m.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set after upsert")
	}

	if err := repo.Upsert(&Mudra{Label: "Arala", Description: "Bent"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list has %d entries, want 2", len(list))
	}
	if list[0].Label != "Arala" || list[1].Label != "Pataka" {
		t.Errorf("list not ordered by label: %s, %s", list[0].Label, list[1].Label)
	}

	if err := repo.Delete("Arala"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete("Arala"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestMudraRepository_UpsertRequiresLabel(t *testing.T) {
	s := newTestStore(t)
	if err := s.Mudras().Upsert(&Mudra{Description: "nameless"}); err == nil {
		t.Error("expected error for empty label")
	}
}

func TestStore_Catalog(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Mudras().Seed(gesture.DefaultCatalog().Entries()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.Mudras().Delete(string(gesture.Trisula)); err != nil {
		t.Fatalf("delete: %v", err)
	}

	c, err := s.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	if c.Len() != 17 {
		t.Errorf("catalog has %d entries, want 17", c.Len())
	}
	if got := c.Description(gesture.Trisula); got != gesture.NoDescription {
		t.Errorf("deleted entry description = %q", got)
	}
	want := gesture.DefaultCatalog().Description(gesture.Mushti)
	if got := c.Description(gesture.Mushti); got != want {
		t.Errorf("Mushti description = %q, want %q", got, want)
	}
}
