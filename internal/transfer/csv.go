// Package transfer moves personal records in and out as CSV. Import and
// export operate on personal records only and never touch the catalog;
// system links re-imported here are exactly the duplication source the
// dedup guard cleans up afterwards.
package transfer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store/sqlite"
)

var csvHeader = []string{"name", "url", "description", "group", "sort_order", "system"}

// RowError reports one rejected CSV row.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportSummary is the outcome of one import job.
type ImportSummary struct {
	JobID   string     `json:"job_id"`
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  []RowError `json:"errors"`
}

// Service implements CSV import and export for one user's records.
type Service struct {
	store  *sqlite.Store
	logger logger.Logger
}

// New creates the transfer service.
func New(store *sqlite.Store, log logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

// Export writes the user's active records as CSV, group referenced by name.
func (s *Service) Export(ctx context.Context, userID string, w io.Writer) error {
	records, err := s.store.ListActiveRecords(ctx, userID)
	if err != nil {
		return err
	}

	groups, err := s.store.ListGroups(ctx, userID)
	if err != nil {
		return err
	}
	groupNames := make(map[int64]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Name,
			rec.URL,
			rec.Description,
			groupNames[rec.GroupID],
			strconv.Itoa(rec.SortOrder),
			strconv.FormatBool(rec.IsSystemLink),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Import reads CSV rows and creates or updates the user's records by name.
// Bad rows are reported per line; the rest of the file still applies.
func (s *Service) Import(ctx context.Context, userID string, r io.Reader) (*ImportSummary, error) {
	summary := &ImportSummary{
		JobID:  uuid.NewString(),
		Errors: []RowError{},
	}

	s.logger.Info("csv import started",
		logger.String("job_id", summary.JobID),
		logger.String("user_id", userID))

	existing, err := s.store.ListActiveRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*domain.PersonalRecord, len(existing))
	for _, rec := range existing {
		if _, ok := byName[rec.Name]; !ok {
			byName[rec.Name] = rec
		}
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line++

		if line == 1 && len(row) > 0 && strings.EqualFold(row[0], "name") {
			continue // header
		}

		if len(row) < 2 {
			summary.Errors = append(summary.Errors, RowError{Line: line, Reason: "row needs at least name and url"})
			continue
		}

		name := strings.TrimSpace(row[0])
		url := strings.TrimSpace(row[1])
		if name == "" || url == "" {
			summary.Errors = append(summary.Errors, RowError{Line: line, Reason: "name and url must not be empty"})
			continue
		}

		var description, groupName string
		var sortOrder int
		var system bool
		if len(row) > 2 {
			description = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			groupName = strings.TrimSpace(row[3])
		}
		if len(row) > 4 && strings.TrimSpace(row[4]) != "" {
			sortOrder, err = strconv.Atoi(strings.TrimSpace(row[4]))
			if err != nil {
				summary.Errors = append(summary.Errors, RowError{Line: line, Reason: "sort_order is not a number"})
				continue
			}
		}
		if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
			system, err = strconv.ParseBool(strings.TrimSpace(row[5]))
			if err != nil {
				summary.Errors = append(summary.Errors, RowError{Line: line, Reason: "system is not a boolean"})
				continue
			}
		}

		var groupID int64
		if groupName != "" {
			group, err := s.store.EnsureGroup(ctx, userID, groupName)
			if err != nil {
				summary.Errors = append(summary.Errors, RowError{Line: line, Reason: "failed to resolve group"})
				continue
			}
			groupID = group.ID
		}

		if rec, ok := byName[name]; ok {
			rec.URL = url
			rec.Description = description
			rec.GroupID = groupID
			rec.SortOrder = sortOrder
			if err := s.store.UpdateRecordContent(ctx, rec); err != nil {
				summary.Errors = append(summary.Errors, RowError{Line: line, Reason: "failed to update record"})
				continue
			}
			summary.Updated++
			continue
		}

		rec := &domain.PersonalRecord{
			UserID:       userID,
			Name:         name,
			URL:          url,
			Description:  description,
			GroupID:      groupID,
			SortOrder:    sortOrder,
			IsSystemLink: system,
			IsDeletable:  !system,
			Active:       true,
		}
		if err := s.store.CreateRecord(ctx, rec); err != nil {
			summary.Errors = append(summary.Errors, RowError{Line: line, Reason: "failed to create record"})
			continue
		}
		byName[name] = rec
		summary.Created++
	}

	s.logger.Info("csv import finished",
		logger.String("job_id", summary.JobID),
		logger.String("user_id", userID),
		logger.Int("created", summary.Created),
		logger.Int("updated", summary.Updated),
		logger.Int("row_errors", len(summary.Errors)))

	return summary, nil
}
