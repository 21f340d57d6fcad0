package handlers

import (
	"errors"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
)

// Refresh materializes the active catalog into the caller's records and
// returns op counts plus the per-entry error list. Only the total absence
// of a catalog is a hard failure (404); entry-level problems come back in
// the error list of a 200.
func Refresh(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identity(d, w, r)
		if !ok {
			return
		}

		result, err := d.Sync.Refresh(r.Context(), ident.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNoActiveCatalog) {
				writeError(w, http.StatusNotFound, "no active catalog")
				return
			}
			d.Logger.Error("refresh failed",
				logger.String("user_id", ident.UserID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "refresh failed")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
