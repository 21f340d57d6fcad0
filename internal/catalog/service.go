package catalog

import (
	"context"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
	redisstore "github.com/linkdeck/linkdeck/internal/store/redis"
	"github.com/linkdeck/linkdeck/internal/store/sqlite"
)

// Service fronts the catalog store: reads go through the optional Redis
// cache, publishes go to sqlite and refresh the cache. The cache is a
// best-effort layer; every failure falls back to the database.
type Service struct {
	store  *sqlite.Store
	cache  *redisstore.Cache // nil when caching is disabled
	logger logger.Logger
}

// New creates the catalog service. cache may be nil.
func New(store *sqlite.Store, cache *redisstore.Cache, log logger.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: log,
	}
}

// Active returns the single active snapshot, or domain.ErrNoActiveCatalog.
func (s *Service) Active(ctx context.Context) (*domain.CatalogSnapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.GetActiveSnapshot(ctx)
		if err != nil {
			s.logger.Warn("snapshot cache read failed, falling back to database",
				logger.Error(err))
		} else if snap != nil {
			return snap, nil
		}
	}

	snap, err := s.store.GetActiveSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetActiveSnapshot(ctx, snap); err != nil {
			s.logger.Warn("failed to cache active snapshot", logger.Error(err))
		}
	}
	return snap, nil
}

// Publish creates a new active snapshot against baseVersion and refreshes
// the cache. Fails with domain.ErrPublishConflict when the active version
// moved since baseVersion was read.
func (s *Service) Publish(ctx context.Context, baseVersion int64, entries []domain.LinkDefinition) (*domain.CatalogSnapshot, error) {
	snap, err := s.store.PublishSnapshot(ctx, baseVersion, entries)
	if err != nil {
		return nil, err
	}

	s.logger.Info("catalog snapshot published",
		logger.Int64("version", snap.Version),
		logger.Int64("base_version", baseVersion),
		logger.Int("entries", len(snap.Entries)))

	if s.cache != nil {
		if err := s.cache.SetActiveSnapshot(ctx, snap); err != nil {
			s.logger.Warn("failed to refresh snapshot cache after publish",
				logger.Error(err))
			// Stale reads are bounded by the cache TTL; drop the key
			// so readers fall back to the database instead.
			if err := s.cache.Invalidate(ctx); err != nil {
				s.logger.Warn("failed to invalidate snapshot cache", logger.Error(err))
			}
		}
	}
	return snap, nil
}
