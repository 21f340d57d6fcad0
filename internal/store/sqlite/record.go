package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
)

const recordColumns = `id, user_id, name, url, description, group_id, sort_order, is_system_link, is_deletable, active, updated_at`

func scanRecord(row interface{ Scan(...interface{}) error }) (*domain.PersonalRecord, error) {
	var rec domain.PersonalRecord
	var groupID sql.NullInt64
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Name, &rec.URL, &rec.Description,
		&groupID, &rec.SortOrder, &rec.IsSystemLink, &rec.IsDeletable, &rec.Active, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.GroupID = groupID.Int64
	return &rec, nil
}

// GetRecord returns a record by id, active or retired.
// Returns domain.ErrRecordNotFound when the id is unknown.
func (s *Store) GetRecord(ctx context.Context, id int64) (*domain.PersonalRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM personal_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %d: %w", id, err)
	}
	return rec, nil
}

// ListActiveSystemRecords returns a user's active catalog-originated records,
// ordered by id so the planner's lowest-id-canonical rule is deterministic.
func (s *Store) ListActiveSystemRecords(ctx context.Context, userID string) ([]*domain.PersonalRecord, error) {
	return s.listRecords(ctx,
		`SELECT `+recordColumns+` FROM personal_records
		 WHERE user_id = ? AND is_system_link = 1 AND active = 1 ORDER BY id`, userID)
}

// ListActiveRecords returns all of a user's active records, system or not.
// Used by the CSV export path.
func (s *Store) ListActiveRecords(ctx context.Context, userID string) ([]*domain.PersonalRecord, error) {
	return s.listRecords(ctx,
		`SELECT `+recordColumns+` FROM personal_records
		 WHERE user_id = ? AND active = 1 ORDER BY sort_order, id`, userID)
}

// ListAllActiveSystemRecords returns every user's active system records.
// Feeds the maintenance dedup pass.
func (s *Store) ListAllActiveSystemRecords(ctx context.Context) ([]*domain.PersonalRecord, error) {
	return s.listRecords(ctx,
		`SELECT `+recordColumns+` FROM personal_records
		 WHERE is_system_link = 1 AND active = 1 ORDER BY user_id, name, id`)
}

func (s *Store) listRecords(ctx context.Context, query string, args ...interface{}) ([]*domain.PersonalRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []*domain.PersonalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CreateRecord inserts a record and assigns its id.
func (s *Store) CreateRecord(ctx context.Context, rec *domain.PersonalRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO personal_records (user_id, name, url, description, group_id, sort_order, is_system_link, is_deletable, active, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.Name, rec.URL, rec.Description, nullableID(rec.GroupID),
		rec.SortOrder, rec.IsSystemLink, rec.IsDeletable, rec.Active, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

// UpdateRecordContent rewrites a record's content fields in place.
// Identity fields (id, user_id, name, is_system_link) never change.
func (s *Store) UpdateRecordContent(ctx context.Context, rec *domain.PersonalRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE personal_records SET url = ?, description = ?, group_id = ?, sort_order = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		rec.URL, rec.Description, nullableID(rec.GroupID), rec.SortOrder, rec.UpdatedAt,
		rec.ID, rec.UserID)
	if err != nil {
		return fmt.Errorf("failed to update record %d: %w", rec.ID, err)
	}
	return nil
}

// RetireRecords soft-deletes the given records in one transaction.
// Used by the maintenance dedup pass.
func (s *Store) RetireRecords(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin retire: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE personal_records SET active = 0, updated_at = ? WHERE id = ?`, now, id); err != nil {
			return fmt.Errorf("failed to retire record %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// ListGroups returns a user's groups.
func (s *Store) ListGroups(ctx context.Context, userID string) ([]*domain.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_at FROM groups WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var groups []*domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

// EnsureGroup returns the user's group with the given name, creating it
// when missing. Used by the import path; the sync path creates groups
// inside the plan transaction instead.
func (s *Store) EnsureGroup(ctx context.Context, userID, name string) (*domain.Group, error) {
	var g domain.Group
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at FROM groups WHERE user_id = ? AND name = ?`,
		userID, name).Scan(&g.ID, &g.UserID, &g.Name, &g.CreatedAt)
	if err == nil {
		return &g, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up group: %w", err)
	}

	g = domain.Group{UserID: userID, Name: name, CreatedAt: time.Now().UTC()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO groups (user_id, name, created_at) VALUES (?, ?, ?)`,
		g.UserID, g.Name, g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetSyncState returns the user's last synced catalog version, zero when
// the user never refreshed.
func (s *Store) GetSyncState(ctx context.Context, userID string) (*domain.SyncState, error) {
	var st domain.SyncState
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, synced_version, refreshed_at FROM sync_states WHERE user_id = ?`,
		userID).Scan(&st.UserID, &st.SyncedVersion, &st.RefreshedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.SyncState{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}
	return &st, nil
}

// ApplyPlan applies a sync plan as a single transaction scoped to one user:
// every op succeeds or none is applied, and the user's sync state advances
// to the plan's snapshot version in the same transaction.
func (s *Store) ApplyPlan(ctx context.Context, plan *domain.SyncPlan) (*domain.RefreshResult, error) {
	result := &domain.RefreshResult{Errors: plan.Errors}
	if result.Errors == nil {
		result.Errors = []domain.EntryError{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin plan: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	groupIDs, err := groupIDsByName(ctx, tx, plan.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, op := range plan.Ops {
		switch op.Kind {
		case domain.OpCreateGroup:
			res, err := tx.ExecContext(ctx,
				`INSERT INTO groups (user_id, name, created_at) VALUES (?, ?, ?)`,
				plan.UserID, op.GroupName, now)
			if err != nil {
				return nil, fmt.Errorf("failed to create group %q: %w", op.GroupName, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return nil, err
			}
			groupIDs[op.GroupName] = id

		case domain.OpCreate:
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO personal_records (user_id, name, url, description, group_id, sort_order, is_system_link, is_deletable, active, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, 1, 0, 1, ?)`,
				plan.UserID, op.Def.Name, op.Def.URL, op.Def.Description,
				nullableID(groupIDs[op.GroupName]), op.Def.SortOrder, now); err != nil {
				return nil, fmt.Errorf("failed to create record %q: %w", op.Def.Name, err)
			}
			result.Created++

		case domain.OpUpdate:
			if _, err := tx.ExecContext(ctx,
				`UPDATE personal_records SET url = ?, description = ?, group_id = ?, sort_order = ?, updated_at = ?
				 WHERE id = ? AND user_id = ?`,
				op.Def.URL, op.Def.Description, nullableID(groupIDs[op.GroupName]),
				op.Def.SortOrder, now, op.RecordID, plan.UserID); err != nil {
				return nil, fmt.Errorf("failed to update record %d: %w", op.RecordID, err)
			}
			result.Updated++

		case domain.OpRetire:
			if _, err := tx.ExecContext(ctx,
				`UPDATE personal_records SET active = 0, updated_at = ? WHERE id = ? AND user_id = ?`,
				now, op.RecordID, plan.UserID); err != nil {
				return nil, fmt.Errorf("failed to retire record %d: %w", op.RecordID, err)
			}
			result.Retired++

		default:
			return nil, fmt.Errorf("unknown plan op kind %q", op.Kind)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sync_states (user_id, synced_version, refreshed_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET synced_version = excluded.synced_version, refreshed_at = excluded.refreshed_at`,
		plan.UserID, plan.SnapshotVersion, now); err != nil {
		return nil, fmt.Errorf("failed to advance sync state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit plan: %w", err)
	}
	return result, nil
}

func groupIDsByName(ctx context.Context, tx *sql.Tx, userID string) (map[string]int64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, name FROM groups WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
