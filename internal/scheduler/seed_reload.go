package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linkdeck/linkdeck/internal/catalog"
	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/sources/seed"
)

// SeedReloader periodically re-reads the curated seed file and publishes a
// new catalog version when its entries differ from the active snapshot.
// This is the administrative publish path for file-managed catalogs; users
// still only pick the change up through their own refresh.
type SeedReloader struct {
	loader        *seed.Loader
	mapper        *seed.Mapper
	catalog       *catalog.Service
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewSeedReloader creates a seed reloader.
func NewSeedReloader(
	seedFile string,
	cat *catalog.Service,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SeedReloader {
	return &SeedReloader{
		loader:        seed.NewLoader(seedFile),
		mapper:        seed.NewMapper(),
		catalog:       cat,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start publishes from the seed file immediately (bootstrapping the first
// catalog version when none is active), then keeps checking periodically
// and on manual trigger.
func (sr *SeedReloader) Start(ctx context.Context) error {
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial seed reload failed: %w", err)
	}

	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed catalog",
						logger.Error(err))
				}
			case <-sr.manualTrigger:
				sr.logger.Info("manual seed reload triggered")
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed catalog",
						logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (sr *SeedReloader) Stop() {
	close(sr.stopCh)
}

// Reload loads the seed file and publishes when its entries differ from
// the active snapshot. A publish conflict is left for the next run: the
// file will be re-read against the new active version anyway.
func (sr *SeedReloader) Reload(ctx context.Context) error {
	file, err := sr.loader.Load()
	if err != nil {
		return err
	}

	entries, err := sr.mapper.MapEntries(file)
	if err != nil {
		return err
	}

	var baseVersion int64
	active, err := sr.catalog.Active(ctx)
	switch {
	case errors.Is(err, domain.ErrNoActiveCatalog):
		baseVersion = 0
	case err != nil:
		return err
	default:
		if domain.EntriesEqual(active.Entries, entries) {
			return nil
		}
		baseVersion = active.Version
	}

	snap, err := sr.catalog.Publish(ctx, baseVersion, entries)
	if err != nil {
		if errors.Is(err, domain.ErrPublishConflict) {
			sr.logger.Warn("seed publish lost a race with another publish, will retry next run")
			return nil
		}
		return err
	}

	sr.logger.Info("catalog published from seed file",
		logger.Int64("version", snap.Version),
		logger.Int("entries", len(snap.Entries)))
	return nil
}
