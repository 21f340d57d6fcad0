package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
)

type componentStatus struct {
	OK            bool   `json:"ok"`
	ActiveVersion *int64 `json:"active_version,omitempty"`
	EntriesLoaded *int   `json:"entries_loaded,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Impact        string `json:"impact,omitempty"`
	Error         string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		components := map[string]componentStatus{
			"database":       checkDatabase(d),
			"snapshot_cache": checkCache(d),
			"catalog":        checkCatalog(d),
		}

		response := infraResponse{
			Mode:       determineMode(components),
			Components: components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineMode(components map[string]componentStatus) string {
	// No database or no active catalog means refreshes cannot work.
	if db, exists := components["database"]; exists && !db.OK {
		return "critical"
	}
	if cat, exists := components["catalog"]; exists && !cat.OK {
		return "critical"
	}

	// Cache is optional; a dead cache only costs read latency.
	if cache, exists := components["snapshot_cache"]; exists && !cache.OK && cache.Mode != "disabled" {
		return "degraded"
	}

	return "nominal"
}

func checkDatabase(d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Impact: "refresh-and-publish-unavailable",
			Error:  err.Error(),
		}
	}

	return componentStatus{OK: true}
}

func checkCache(d deps.Deps) componentStatus {
	if d.Cache == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "snapshot-reads-hit-database",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.Cache.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "snapshot-reads-hit-database",
			Error:  err.Error(),
		}
	}

	return componentStatus{OK: true, Mode: "optimal"}
}

func checkCatalog(d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snap, err := d.Catalog.Active(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveCatalog) {
			return componentStatus{
				OK:     false,
				Impact: "no-catalog-to-sync",
				Error:  "no active catalog version",
			}
		}
		return componentStatus{OK: false, Error: err.Error()}
	}

	entries := len(snap.Entries)
	return componentStatus{
		OK:            true,
		ActiveVersion: &snap.Version,
		EntriesLoaded: &entries,
	}
}
