package handlers

import (
	"net/http"

	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
)

// Status reports whether the caller's records are in line with the active
// catalog version. A missing catalog is a state, not an error.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identity(d, w, r)
		if !ok {
			return
		}

		status, err := d.Sync.Status(r.Context(), ident.UserID)
		if err != nil {
			d.Logger.Error("status check failed",
				logger.String("user_id", ident.UserID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to compute status")
			return
		}

		writeJSON(w, http.StatusOK, status)
	}
}
