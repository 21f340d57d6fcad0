package scheduler

import (
	"context"
	"time"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store/sqlite"
	linksync "github.com/linkdeck/linkdeck/internal/sync"
)

// DedupSweeper is the maintenance pass of the dedup guard: it scans every
// user's active system records and retires surplus duplicates. The refresh
// path already dedups inline; the sweeper repairs duplication introduced
// outside it (manual data edits, CSV imports).
type DedupSweeper struct {
	store    *sqlite.Store
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewDedupSweeper creates a dedup sweeper.
func NewDedupSweeper(store *sqlite.Store, log logger.Logger, interval time.Duration) *DedupSweeper {
	return &DedupSweeper{
		store:    store,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs a sweep immediately, then periodically.
func (ds *DedupSweeper) Start(ctx context.Context) error {
	if _, err := ds.Sweep(ctx); err != nil {
		ds.logger.Warn("initial dedup sweep failed", logger.Error(err))
	}

	ticker := time.NewTicker(ds.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := ds.Sweep(ctx); err != nil {
					ds.logger.Error("dedup sweep failed", logger.Error(err))
				}
			case <-ds.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper.
func (ds *DedupSweeper) Stop() {
	close(ds.stopCh)
}

// Sweep retires all surplus duplicates and returns how many were retired.
// Idempotent: a second sweep right after retires nothing.
func (ds *DedupSweeper) Sweep(ctx context.Context) (int, error) {
	records, err := ds.store.ListAllActiveSystemRecords(ctx)
	if err != nil {
		return 0, err
	}

	retire := linksync.RetireSet(records)
	if len(retire) == 0 {
		return 0, nil
	}

	if err := ds.store.RetireRecords(ctx, retire); err != nil {
		return 0, err
	}

	ds.logger.Info("dedup sweep retired duplicate system records",
		logger.Int("retired", len(retire)))
	return len(retire), nil
}
