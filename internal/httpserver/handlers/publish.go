package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
)

type publishRequest struct {
	BaseVersion int64                   `json:"base_version"`
	Entries     []domain.LinkDefinition `json:"entries"`
}

// Publish installs a full set of catalog entries as a new active
// snapshot. The caller supplies the version it based its edits on so
// concurrent publishes cannot silently clobber each other.
func Publish(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req publishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed publish body")
			return
		}
		if len(req.Entries) == 0 {
			writeError(w, http.StatusBadRequest, "entries must not be empty")
			return
		}

		snap, err := d.Catalog.Publish(r.Context(), req.BaseVersion, req.Entries)
		if err != nil {
			if errors.Is(err, domain.ErrPublishConflict) {
				writeError(w, http.StatusConflict, "catalog changed since base_version")
				return
			}
			d.Logger.Error("publish failed",
				logger.Int64("base_version", req.BaseVersion),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "publish failed")
			return
		}

		writeJSON(w, http.StatusOK, versionResponse{Version: snap.Version})
	}
}
