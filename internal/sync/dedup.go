package sync

import (
	"sort"

	"github.com/linkdeck/linkdeck/internal/domain"
)

// RetireSet returns the ids of every surplus duplicate in records: for each
// (userID, name) pair of active system records, all but the lowest-id one.
//
// Pure and idempotent: once the dedup invariant holds (at most one active
// system record per user and name) the result is empty.
func RetireSet(records []*domain.PersonalRecord) []int64 {
	type key struct {
		userID string
		name   string
	}

	groupsByKey := make(map[key][]int64)
	for _, rec := range records {
		if !rec.IsSystemLink || !rec.Active {
			continue
		}
		k := key{userID: rec.UserID, name: rec.Name}
		groupsByKey[k] = append(groupsByKey[k], rec.ID)
	}

	var retire []int64
	for _, ids := range groupsByKey {
		if len(ids) < 2 {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		retire = append(retire, ids[1:]...)
	}

	sort.Slice(retire, func(i, j int) bool { return retire[i] < retire[j] })
	return retire
}
