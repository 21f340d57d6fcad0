package domain

import "time"

// SnapshotStatus tags the lifecycle state of a catalog snapshot.
// Exactly one snapshot is Active at any time once the first publish happened.
type SnapshotStatus string

const (
	SnapshotDraft      SnapshotStatus = "draft"
	SnapshotActive     SnapshotStatus = "active"
	SnapshotSuperseded SnapshotStatus = "superseded"
)

// LinkDefinition is one curated entry of a catalog snapshot.
// Name is the logical key used to match per-user materialized records.
type LinkDefinition struct {
	Name        string `json:"name" yaml:"name"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description"`
	GroupName   string `json:"group_name" yaml:"group"`
	SortOrder   int    `json:"sort_order" yaml:"sort_order"`
}

// ContentEquals reports whether the fields a refresh would rewrite are equal.
// Group membership is compared separately because it resolves to a per-user id.
func (d *LinkDefinition) ContentEquals(o *LinkDefinition) bool {
	return d.URL == o.URL &&
		d.Description == o.Description &&
		d.SortOrder == o.SortOrder
}

// CatalogSnapshot is an immutable, versioned set of system link definitions.
// Snapshots are superseded, never deleted.
type CatalogSnapshot struct {
	// Version is strictly increasing across all snapshots, including
	// superseded ones.
	Version int64

	Status SnapshotStatus

	// Entries keep the curated order; the planner keys on Name.
	Entries []LinkDefinition

	UpdatedAt time.Time
}

// Entry returns the definition matching name, if any.
func (s *CatalogSnapshot) Entry(name string) (*LinkDefinition, bool) {
	for i := range s.Entries {
		if s.Entries[i].Name == name {
			return &s.Entries[i], true
		}
	}
	return nil, false
}

// EntriesEqual reports whether two definition lists are identical,
// including order. Used to skip publishes that would change nothing.
func EntriesEqual(a, b []LinkDefinition) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
