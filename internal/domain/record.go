package domain

import "time"

// PersonalRecord is a per-user materialized link.
// Records materialized from the catalog carry IsSystemLink=true and default
// to non-deletable by the owning user.
type PersonalRecord struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned once by the store and never reused. Updates happen
	// in place so external references stay valid.
	ID int64

	// UserID is the exclusive owner of the record.
	UserID string

	// Name is the logical key matched against catalog entries.
	Name string

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	URL         string
	Description string

	// GroupID references a Group owned by the same user. Zero means
	// ungrouped.
	GroupID int64

	SortOrder int

	// ─────────────────────────────
	// Policy & lifecycle
	// ─────────────────────────────

	// IsSystemLink marks records that originate from a catalog snapshot.
	IsSystemLink bool

	// IsDeletable is false for system links so end users cannot remove
	// catalog-managed records.
	IsDeletable bool

	// Active is the soft-delete flag. Retirement clears it instead of
	// removing the row.
	Active bool

	UpdatedAt time.Time
}

// Matches reports whether the record already reflects def with the given
// resolved group id, making a refresh op unnecessary.
func (r *PersonalRecord) Matches(def *LinkDefinition, groupID int64) bool {
	return r.URL == def.URL &&
		r.Description == def.Description &&
		r.SortOrder == def.SortOrder &&
		r.GroupID == groupID
}

// Group is a named per-user bucket for personal records. The materializer
// creates missing groups on demand when a catalog entry references one.
type Group struct {
	ID        int64
	UserID    string
	Name      string
	CreatedAt time.Time
}

// SyncState tracks the last catalog version a user's records were
// reconciled against. Written in the same transaction as the plan.
type SyncState struct {
	UserID        string
	SyncedVersion int64
	RefreshedAt   time.Time
}
