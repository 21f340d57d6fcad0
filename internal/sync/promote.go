package sync

import (
	"context"

	"github.com/linkdeck/linkdeck/internal/catalog"
	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store/sqlite"
)

// Promoter folds an administrator's edit to one of their own system
// records back into the catalog as a new version. Promotion is an
// explicit action, never a side effect of saving a record: automatic
// propagation would let any routine edit trigger an unreviewed global
// change. The role check itself lives at the HTTP layer.
type Promoter struct {
	store   *sqlite.Store
	catalog *catalog.Service
	logger  logger.Logger
}

// NewPromoter creates the promoter.
func NewPromoter(store *sqlite.Store, cat *catalog.Service, log logger.Logger) *Promoter {
	return &Promoter{
		store:   store,
		catalog: cat,
		logger:  log,
	}
}

// Promote publishes a new snapshot whose entry matching the record's name
// takes the record's url, description and sort order. Idempotent: when the
// values already match the active entry, the current version is returned
// without a bump.
//
// Fails with domain.ErrRecordNotFound when the record does not exist or is
// not owned by userID, and domain.ErrNotPromotable when it is not an
// active system link named by the active snapshot.
func (p *Promoter) Promote(ctx context.Context, userID string, recordID int64) (int64, error) {
	rec, err := p.store.GetRecord(ctx, recordID)
	if err != nil {
		return 0, err
	}
	if rec.UserID != userID {
		// Ownership failures look identical to missing records.
		return 0, domain.ErrRecordNotFound
	}
	if !rec.IsSystemLink || !rec.Active {
		return 0, domain.ErrNotPromotable
	}

	snap, err := p.catalog.Active(ctx)
	if err != nil {
		return 0, err
	}

	entry, ok := snap.Entry(rec.Name)
	if !ok {
		return 0, domain.ErrNotPromotable
	}

	if entry.URL == rec.URL && entry.Description == rec.Description && entry.SortOrder == rec.SortOrder {
		p.logger.Info("promote is a no-op, record already matches catalog",
			logger.String("user_id", userID),
			logger.String("name", rec.Name),
			logger.Int64("version", snap.Version))
		return snap.Version, nil
	}

	entries := make([]domain.LinkDefinition, len(snap.Entries))
	copy(entries, snap.Entries)
	for i := range entries {
		if entries[i].Name == rec.Name {
			entries[i].URL = rec.URL
			entries[i].Description = rec.Description
			entries[i].SortOrder = rec.SortOrder
		}
	}

	next, err := p.catalog.Publish(ctx, snap.Version, entries)
	if err != nil {
		return 0, err
	}

	p.logger.Info("record promoted to catalog",
		logger.String("user_id", userID),
		logger.String("name", rec.Name),
		logger.Int64("version", next.Version))
	return next.Version, nil
}
