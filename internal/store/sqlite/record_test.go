package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/linkdeck/linkdeck/internal/domain"
)

func TestApplyPlanCreatesGroupsAndRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := &domain.SyncPlan{
		UserID:          "u1",
		SnapshotVersion: 3,
		Ops: []domain.Op{
			{Kind: domain.OpCreateGroup, GroupName: "Tools"},
			{Kind: domain.OpCreate, GroupName: "Tools", Def: domain.LinkDefinition{
				Name: "wiki", URL: "https://wiki.internal", Description: "team wiki", SortOrder: 1,
			}},
			{Kind: domain.OpCreate, GroupName: "Tools", Def: domain.LinkDefinition{
				Name: "vault", URL: "https://vault.internal", SortOrder: 2,
			}},
		},
	}

	result, err := store.ApplyPlan(ctx, plan)
	if err != nil {
		t.Fatalf("ApplyPlan: %v", err)
	}
	if result.Created != 2 || result.Updated != 0 || result.Retired != 0 {
		t.Errorf("result = %+v, want 2 created", result)
	}
	if result.Errors == nil {
		t.Errorf("result.Errors is nil, want empty slice")
	}

	groups, err := store.ListGroups(ctx, "u1")
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "Tools" {
		t.Fatalf("groups = %v, want single Tools group", groups)
	}

	records, err := store.ListActiveSystemRecords(ctx, "u1")
	if err != nil {
		t.Fatalf("ListActiveSystemRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	for _, rec := range records {
		if !rec.IsSystemLink || rec.IsDeletable || !rec.Active {
			t.Errorf("record %q = %+v, want system, non-deletable, active", rec.Name, rec)
		}
		if rec.GroupID != groups[0].ID {
			t.Errorf("record %q GroupID = %d, want %d", rec.Name, rec.GroupID, groups[0].ID)
		}
	}

	state, err := store.GetSyncState(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSyncState: %v", err)
	}
	if state.SyncedVersion != 3 {
		t.Errorf("SyncedVersion = %d, want 3", state.SyncedVersion)
	}
}

func TestApplyPlanUpdateAndRetire(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedPlan := &domain.SyncPlan{
		UserID:          "u1",
		SnapshotVersion: 1,
		Ops: []domain.Op{
			{Kind: domain.OpCreateGroup, GroupName: "Tools"},
			{Kind: domain.OpCreate, GroupName: "Tools", Def: domain.LinkDefinition{Name: "wiki", URL: "https://old.internal"}},
			{Kind: domain.OpCreate, GroupName: "Tools", Def: domain.LinkDefinition{Name: "wiki", URL: "https://old.internal"}},
		},
	}
	if _, err := store.ApplyPlan(ctx, seedPlan); err != nil {
		t.Fatalf("seed ApplyPlan: %v", err)
	}

	records, err := store.ListActiveSystemRecords(ctx, "u1")
	if err != nil {
		t.Fatalf("ListActiveSystemRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("seeded records = %d, want 2", len(records))
	}
	canonical, dup := records[0], records[1]

	plan := &domain.SyncPlan{
		UserID:          "u1",
		SnapshotVersion: 2,
		Ops: []domain.Op{
			{Kind: domain.OpUpdate, GroupName: "Tools", RecordID: canonical.ID,
				Def: domain.LinkDefinition{Name: "wiki", URL: "https://new.internal"}},
			{Kind: domain.OpRetire, RecordID: dup.ID},
		},
	}

	result, err := store.ApplyPlan(ctx, plan)
	if err != nil {
		t.Fatalf("ApplyPlan: %v", err)
	}
	if result.Updated != 1 || result.Retired != 1 {
		t.Errorf("result = %+v, want 1 updated, 1 retired", result)
	}

	after, err := store.ListActiveSystemRecords(ctx, "u1")
	if err != nil {
		t.Fatalf("ListActiveSystemRecords: %v", err)
	}
	if len(after) != 1 {
		t.Fatalf("active records = %d, want 1", len(after))
	}
	if after[0].ID != canonical.ID || after[0].URL != "https://new.internal" {
		t.Errorf("survivor = %+v, want canonical id %d with new url", after[0], canonical.ID)
	}

	// Retired, not deleted.
	retired, err := store.GetRecord(ctx, dup.ID)
	if err != nil {
		t.Fatalf("GetRecord(%d): %v", dup.ID, err)
	}
	if retired.Active {
		t.Errorf("retired record still active")
	}
}

func TestApplyPlanIsAtomic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := &domain.SyncPlan{
		UserID:          "u1",
		SnapshotVersion: 1,
		Ops: []domain.Op{
			{Kind: domain.OpCreate, GroupName: "", Def: domain.LinkDefinition{Name: "wiki", URL: "https://wiki.internal"}},
			{Kind: domain.OpKind("bogus")},
		},
	}

	if _, err := store.ApplyPlan(ctx, plan); err == nil {
		t.Fatal("ApplyPlan succeeded with a bogus op, want error")
	}

	records, err := store.ListActiveSystemRecords(ctx, "u1")
	if err != nil {
		t.Fatalf("ListActiveSystemRecords: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d after failed plan, want 0 (rollback)", len(records))
	}

	state, err := store.GetSyncState(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSyncState: %v", err)
	}
	if state.SyncedVersion != 0 {
		t.Errorf("SyncedVersion = %d after failed plan, want 0", state.SyncedVersion)
	}
}

func TestApplyPlanEmptyStillAdvancesSyncState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := &domain.SyncPlan{UserID: "u1", SnapshotVersion: 7}
	if _, err := store.ApplyPlan(ctx, plan); err != nil {
		t.Fatalf("ApplyPlan: %v", err)
	}

	state, err := store.GetSyncState(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSyncState: %v", err)
	}
	if state.SyncedVersion != 7 {
		t.Errorf("SyncedVersion = %d, want 7", state.SyncedVersion)
	}
}

func TestEnsureGroupIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.EnsureGroup(ctx, "u1", "Tools")
	if err != nil {
		t.Fatalf("EnsureGroup: %v", err)
	}
	second, err := store.EnsureGroup(ctx, "u1", "Tools")
	if err != nil {
		t.Fatalf("EnsureGroup (second): %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("ids differ: %d vs %d, want same group", first.ID, second.ID)
	}

	other, err := store.EnsureGroup(ctx, "u2", "Tools")
	if err != nil {
		t.Fatalf("EnsureGroup (other user): %v", err)
	}
	if other.ID == first.ID {
		t.Errorf("groups are shared across users")
	}
}

func TestGetRecordNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRecord(context.Background(), 999)
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}
