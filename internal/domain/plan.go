package domain

// OpKind identifies a sync plan operation.
type OpKind string

const (
	// OpCreateGroup creates a missing per-user group. Emitted ahead of
	// the link op that references it.
	OpCreateGroup OpKind = "create-group"
	// OpCreate materializes a catalog entry as a new system record.
	OpCreate OpKind = "create"
	// OpUpdate rewrites a record's content in place, preserving its id.
	OpUpdate OpKind = "update"
	// OpRetire soft-deletes a surplus duplicate record.
	OpRetire OpKind = "retire"
)

// Op is one step of a sync plan. Which fields are meaningful depends on Kind:
// create/update carry Def and GroupName, update/retire carry RecordID,
// create-group carries GroupName only.
type Op struct {
	Kind      OpKind
	Def       LinkDefinition
	GroupName string
	RecordID  int64
}

// EntryError reports a catalog entry that was excluded from a plan.
// The rest of the plan still applies.
type EntryError struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// SyncPlan is the ordered set of operations bringing one user's system
// records in line with a catalog snapshot. Applied atomically.
type SyncPlan struct {
	UserID          string
	SnapshotVersion int64
	Ops             []Op
	Errors          []EntryError
}

// Empty reports whether applying the plan would change nothing.
func (p *SyncPlan) Empty() bool {
	return len(p.Ops) == 0
}

// RefreshResult is what a refresh returns to the caller: op counts plus
// the per-entry errors accumulated during planning.
type RefreshResult struct {
	Created int          `json:"created"`
	Updated int          `json:"updated"`
	Retired int          `json:"retired"`
	Errors  []EntryError `json:"errors"`
}

// Config status values reported by the status endpoint.
const (
	StatusUpToDate        = "up-to-date"
	StatusUpdateAvailable = "update-available"
	StatusNoCatalog       = "no-catalog"
)

// ConfigStatus compares a user's last synced version against the active
// catalog version.
type ConfigStatus struct {
	Status        string `json:"status"`
	UserVersion   int64  `json:"user_version"`
	ActiveVersion int64  `json:"active_version"`
}
