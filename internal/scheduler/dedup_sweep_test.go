package scheduler

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store/sqlite"
)

func newSweepStore(t *testing.T) *sqlite.Store {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	store, err := sqlite.New(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedSystemRecord(t *testing.T, store *sqlite.Store, userID, name string) *domain.PersonalRecord {
	t.Helper()

	rec := &domain.PersonalRecord{
		UserID: userID, Name: name, URL: "https://" + name + ".internal",
		IsSystemLink: true, Active: true,
	}
	if err := store.CreateRecord(context.Background(), rec); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	return rec
}

func TestSweepRetiresDuplicatesAcrossUsers(t *testing.T) {
	store := newSweepStore(t)
	ctx := context.Background()

	keepU1 := seedSystemRecord(t, store, "u1", "wiki")
	seedSystemRecord(t, store, "u1", "wiki")
	seedSystemRecord(t, store, "u1", "wiki")
	keepU2 := seedSystemRecord(t, store, "u2", "wiki")
	seedSystemRecord(t, store, "u2", "wiki")
	untouched := seedSystemRecord(t, store, "u1", "vault")

	sweeper := NewDedupSweeper(store, logger.New("error", false), time.Hour)
	retired, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if retired != 3 {
		t.Errorf("retired = %d, want 3", retired)
	}

	records, err := store.ListAllActiveSystemRecords(ctx)
	if err != nil {
		t.Fatalf("ListAllActiveSystemRecords: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("active records = %d, want 3 survivors", len(records))
	}
	want := map[int64]bool{keepU1.ID: true, keepU2.ID: true, untouched.ID: true}
	for _, rec := range records {
		if !want[rec.ID] {
			t.Errorf("unexpected survivor %d (%s/%s)", rec.ID, rec.UserID, rec.Name)
		}
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	store := newSweepStore(t)
	ctx := context.Background()

	seedSystemRecord(t, store, "u1", "wiki")
	seedSystemRecord(t, store, "u1", "wiki")

	sweeper := NewDedupSweeper(store, logger.New("error", false), time.Hour)
	if _, err := sweeper.Sweep(ctx); err != nil {
		t.Fatalf("first Sweep: %v", err)
	}

	retired, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if retired != 0 {
		t.Errorf("second sweep retired = %d, want 0", retired)
	}
}

func TestSweepEmptyStore(t *testing.T) {
	store := newSweepStore(t)

	sweeper := NewDedupSweeper(store, logger.New("error", false), time.Hour)
	retired, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if retired != 0 {
		t.Errorf("retired = %d, want 0", retired)
	}
}
