package sync

import (
	"sort"
	"strings"

	"github.com/linkdeck/linkdeck/internal/domain"
)

// BuildPlan computes the ordered set of operations bringing one user's
// materialized system records in line with the active snapshot.
//
// Per catalog entry, keyed by name:
//   - no matching record:       create (isSystemLink=true, isDeletable=false)
//   - one match, content diff:  update in place, id preserved
//   - one match, identical:     no-op
//   - several matches:          lowest-id record is canonical, others retire
//
// System records whose name no longer appears in the snapshot are left
// untouched: removal from the catalog never deletes user data.
//
// An entry whose group cannot be resolved is excluded from the plan and
// reported in Errors; the rest of the plan proceeds.
func BuildPlan(snap *domain.CatalogSnapshot, userID string, records []*domain.PersonalRecord, groups []*domain.Group) *domain.SyncPlan {
	plan := &domain.SyncPlan{
		UserID:          userID,
		SnapshotVersion: snap.Version,
	}

	groupIDs := make(map[string]int64, len(groups))
	for _, g := range groups {
		groupIDs[g.Name] = g.ID
	}

	byName := make(map[string][]*domain.PersonalRecord, len(records))
	for _, rec := range records {
		if !rec.IsSystemLink || !rec.Active {
			continue
		}
		byName[rec.Name] = append(byName[rec.Name], rec)
	}
	for _, matches := range byName {
		sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	}

	pendingGroups := make(map[string]bool)
	seen := make(map[string]bool, len(snap.Entries))

	for _, def := range snap.Entries {
		if seen[def.Name] {
			// Publish collapses duplicate names; skip defensively anyway.
			continue
		}
		seen[def.Name] = true

		groupName := strings.TrimSpace(def.GroupName)
		if groupName == "" {
			plan.Errors = append(plan.Errors, domain.EntryError{
				Name:   def.Name,
				Reason: "catalog entry has no resolvable group name",
			})
			continue
		}

		groupID, groupExists := groupIDs[groupName]
		if !groupExists && !pendingGroups[groupName] {
			plan.Ops = append(plan.Ops, domain.Op{Kind: domain.OpCreateGroup, GroupName: groupName})
			pendingGroups[groupName] = true
		}

		matches := byName[def.Name]
		if len(matches) == 0 {
			plan.Ops = append(plan.Ops, domain.Op{Kind: domain.OpCreate, Def: def, GroupName: groupName})
			continue
		}

		canonical := matches[0]
		// A record cannot already point at a group that does not exist
		// yet, so a pending group always forces an update.
		if !groupExists || !canonical.Matches(&def, groupID) {
			plan.Ops = append(plan.Ops, domain.Op{
				Kind:      domain.OpUpdate,
				Def:       def,
				GroupName: groupName,
				RecordID:  canonical.ID,
			})
		}

		for _, dup := range matches[1:] {
			plan.Ops = append(plan.Ops, domain.Op{Kind: domain.OpRetire, RecordID: dup.ID})
		}
	}

	return plan
}
