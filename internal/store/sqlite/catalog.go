package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
)

// GetActiveSnapshot returns the single active catalog snapshot.
// Returns domain.ErrNoActiveCatalog when none exists, which is a valid
// state before the first publish.
func (s *Store) GetActiveSnapshot(ctx context.Context) (*domain.CatalogSnapshot, error) {
	return s.snapshotWhere(ctx, `status = ?`, string(domain.SnapshotActive))
}

// GetSnapshot returns a snapshot by version, active or superseded.
func (s *Store) GetSnapshot(ctx context.Context, version int64) (*domain.CatalogSnapshot, error) {
	return s.snapshotWhere(ctx, `version = ?`, version)
}

func (s *Store) snapshotWhere(ctx context.Context, cond string, arg interface{}) (*domain.CatalogSnapshot, error) {
	query := `SELECT version, status, entries, updated_at FROM catalog_snapshots WHERE ` + cond

	var snap domain.CatalogSnapshot
	var status string
	var entriesJSON []byte

	err := s.db.QueryRowContext(ctx, query, arg).Scan(&snap.Version, &status, &entriesJSON, &snap.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoActiveCatalog
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap.Status = domain.SnapshotStatus(status)
	if err := json.Unmarshal(entriesJSON, &snap.Entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot entries: %w", err)
	}
	return &snap, nil
}

// PublishSnapshot creates a new active snapshot with version = max+1 and
// supersedes the previous active one in the same transaction, so no reader
// ever observes two active snapshots or none mid-publish.
//
// baseVersion is the active version the entries were computed against
// (0 when no catalog exists yet). When the active version moved in the
// meantime the publish fails with domain.ErrPublishConflict.
//
// Duplicate entry names collapse to a single definition: the last one wins,
// keeping the position of the first occurrence.
func (s *Store) PublishSnapshot(ctx context.Context, baseVersion int64, entries []domain.LinkDefinition) (*domain.CatalogSnapshot, error) {
	entries = collapseByName(entries)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin publish: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current int64
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM catalog_snapshots WHERE status = ?`,
		string(domain.SnapshotActive)).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read active version: %w", err)
	}

	if current != baseVersion {
		return nil, domain.ErrPublishConflict
	}

	var maxVersion sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(version) FROM catalog_snapshots`).Scan(&maxVersion); err != nil {
		return nil, fmt.Errorf("failed to read max version: %w", err)
	}

	snap := &domain.CatalogSnapshot{
		Version:   maxVersion.Int64 + 1,
		Status:    domain.SnapshotActive,
		Entries:   entries,
		UpdatedAt: time.Now().UTC(),
	}

	entriesJSON, err := json.Marshal(snap.Entries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entries: %w", err)
	}

	if current != 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE catalog_snapshots SET status = ? WHERE version = ?`,
			string(domain.SnapshotSuperseded), current); err != nil {
			return nil, fmt.Errorf("failed to supersede snapshot %d: %w", current, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalog_snapshots (version, status, entries, updated_at) VALUES (?, ?, ?, ?)`,
		snap.Version, string(snap.Status), entriesJSON, snap.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit publish: %w", err)
	}
	return snap, nil
}

func collapseByName(entries []domain.LinkDefinition) []domain.LinkDefinition {
	out := make([]domain.LinkDefinition, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, def := range entries {
		if i, seen := index[def.Name]; seen {
			out[i] = def
			continue
		}
		index[def.Name] = len(out)
		out = append(out, def)
	}
	return out
}
