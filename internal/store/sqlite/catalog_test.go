package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/linkdeck/linkdeck/internal/domain"
)

func testEntries(names ...string) []domain.LinkDefinition {
	entries := make([]domain.LinkDefinition, 0, len(names))
	for i, name := range names {
		entries = append(entries, domain.LinkDefinition{
			Name:      name,
			URL:       "https://" + name + ".internal",
			GroupName: "Tools",
			SortOrder: i,
		})
	}
	return entries
}

func TestGetActiveSnapshotEmptyStore(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetActiveSnapshot(context.Background())
	if !errors.Is(err, domain.ErrNoActiveCatalog) {
		t.Errorf("err = %v, want ErrNoActiveCatalog", err)
	}
}

func TestPublishSnapshotVersionsAreMonotonic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.PublishSnapshot(ctx, 0, testEntries("wiki"))
	if err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if first.Version != 1 {
		t.Errorf("first.Version = %d, want 1", first.Version)
	}

	second, err := store.PublishSnapshot(ctx, first.Version, testEntries("wiki", "vault"))
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if second.Version != 2 {
		t.Errorf("second.Version = %d, want 2", second.Version)
	}

	active, err := store.GetActiveSnapshot(ctx)
	if err != nil {
		t.Fatalf("GetActiveSnapshot: %v", err)
	}
	if active.Version != 2 {
		t.Errorf("active.Version = %d, want 2", active.Version)
	}

	// The first snapshot survives, superseded.
	old, err := store.GetSnapshot(ctx, 1)
	if err != nil {
		t.Fatalf("GetSnapshot(1): %v", err)
	}
	if old.Status != domain.SnapshotSuperseded {
		t.Errorf("old.Status = %s, want superseded", old.Status)
	}
}

func TestPublishSnapshotConflictOnStaleBase(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.PublishSnapshot(ctx, 0, testEntries("wiki")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := store.PublishSnapshot(ctx, 1, testEntries("wiki", "vault")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// Base 1 is stale: the active version is now 2.
	_, err := store.PublishSnapshot(ctx, 1, testEntries("wiki"))
	if !errors.Is(err, domain.ErrPublishConflict) {
		t.Errorf("err = %v, want ErrPublishConflict", err)
	}

	active, err := store.GetActiveSnapshot(ctx)
	if err != nil {
		t.Fatalf("GetActiveSnapshot: %v", err)
	}
	if active.Version != 2 {
		t.Errorf("active.Version = %d after failed publish, want 2", active.Version)
	}
}

func TestPublishSnapshotCollapsesDuplicateNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entries := []domain.LinkDefinition{
		{Name: "wiki", URL: "https://first.internal", GroupName: "Tools"},
		{Name: "vault", URL: "https://vault.internal", GroupName: "Tools"},
		{Name: "wiki", URL: "https://last.internal", GroupName: "Docs"},
	}

	snap, err := store.PublishSnapshot(ctx, 0, entries)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(snap.Entries) != 2 {
		t.Fatalf("entries = %d, want 2 after collapse", len(snap.Entries))
	}
	// Last definition wins, position of the first occurrence is kept.
	if snap.Entries[0].Name != "wiki" || snap.Entries[0].URL != "https://last.internal" {
		t.Errorf("Entries[0] = %+v, want wiki with last url in first position", snap.Entries[0])
	}
	if snap.Entries[1].Name != "vault" {
		t.Errorf("Entries[1].Name = %s, want vault", snap.Entries[1].Name)
	}
}
