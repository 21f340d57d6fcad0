package sync

import (
	"context"
	"errors"
	stdsync "sync"

	"github.com/linkdeck/linkdeck/internal/catalog"
	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store/sqlite"
)

// Service runs the refresh path: plan against the active snapshot, apply
// atomically. Refreshes for the same user serialize on a per-user mutex so
// two planners never race to create the same missing record; different
// users share nothing and run independently.
type Service struct {
	store   *sqlite.Store
	catalog *catalog.Service
	logger  logger.Logger

	mu        stdsync.Mutex
	userLocks map[string]*stdsync.Mutex
}

// NewService creates the sync service.
func NewService(store *sqlite.Store, cat *catalog.Service, log logger.Logger) *Service {
	return &Service{
		store:     store,
		catalog:   cat,
		logger:    log,
		userLocks: make(map[string]*stdsync.Mutex),
	}
}

func (s *Service) userLock(userID string) *stdsync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &stdsync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// Refresh reconciles the caller's system records against the active
// snapshot and returns op counts plus per-entry errors. Fails with
// domain.ErrNoActiveCatalog when nothing was ever published.
func (s *Service) Refresh(ctx context.Context, userID string) (*domain.RefreshResult, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.catalog.Active(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListActiveSystemRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.ListGroups(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan := BuildPlan(snap, userID, records, groups)

	// An empty plan still applies: the user's sync state has to advance
	// to the snapshot version.
	result, err := s.store.ApplyPlan(ctx, plan)
	if err != nil {
		return nil, err
	}

	if result.Retired > 0 {
		// Duplicates are resolved silently; log them for observability.
		s.logger.Warn("retired duplicate system records during refresh",
			logger.String("user_id", userID),
			logger.Int("retired", result.Retired))
	}

	s.logger.Info("refresh applied",
		logger.String("user_id", userID),
		logger.Int64("catalog_version", snap.Version),
		logger.Int("created", result.Created),
		logger.Int("updated", result.Updated),
		logger.Int("retired", result.Retired),
		logger.Int("entry_errors", len(result.Errors)))

	return result, nil
}

// Status compares the caller's last synced version against the active
// snapshot. Never fails for a missing catalog: it reports the no-catalog
// state instead.
func (s *Service) Status(ctx context.Context, userID string) (*domain.ConfigStatus, error) {
	snap, err := s.catalog.Active(ctx)
	if errors.Is(err, domain.ErrNoActiveCatalog) {
		return &domain.ConfigStatus{Status: domain.StatusNoCatalog}, nil
	}
	if err != nil {
		return nil, err
	}

	state, err := s.store.GetSyncState(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := domain.StatusUpdateAvailable
	if state.SyncedVersion == snap.Version {
		status = domain.StatusUpToDate
	}
	return &domain.ConfigStatus{
		Status:        status,
		UserVersion:   state.SyncedVersion,
		ActiveVersion: snap.Version,
	}, nil
}
