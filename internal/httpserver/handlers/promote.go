package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
)

type promoteRequest struct {
	RecordID int64 `json:"record_id"`
}

type versionResponse struct {
	Version int64 `json:"version"`
}

// Promote folds an administrator's edited system record back into the
// catalog as a new version. Routes gate this with the admin role.
func Promote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identity(d, w, r)
		if !ok {
			return
		}

		var req promoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RecordID == 0 {
			writeError(w, http.StatusBadRequest, "body must carry a record_id")
			return
		}

		version, err := d.Promoter.Promote(r.Context(), ident.UserID, req.RecordID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRecordNotFound), errors.Is(err, domain.ErrNoActiveCatalog):
				writeError(w, http.StatusNotFound, err.Error())
			case errors.Is(err, domain.ErrNotPromotable):
				writeError(w, http.StatusUnprocessableEntity, err.Error())
			case errors.Is(err, domain.ErrPublishConflict):
				writeError(w, http.StatusConflict, err.Error())
			default:
				d.Logger.Error("promote failed",
					logger.String("user_id", ident.UserID),
					logger.Int64("record_id", req.RecordID),
					logger.Error(err))
				writeError(w, http.StatusInternalServerError, "promote failed")
			}
			return
		}

		writeJSON(w, http.StatusOK, versionResponse{Version: version})
	}
}
