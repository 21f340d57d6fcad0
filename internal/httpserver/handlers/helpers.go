package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/httpserver/mw"
	"github.com/linkdeck/linkdeck/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// identity pulls the authenticated caller out of the context; Auth always
// runs first, so a miss is a wiring bug and answered with 401.
func identity(d deps.Deps, w http.ResponseWriter, r *http.Request) (mw.Identity, bool) {
	ident, ok := mw.IdentityFrom(r.Context())
	if !ok {
		d.Logger.Error("handler reached without identity in context",
			logger.String("path", r.URL.Path))
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return mw.Identity{}, false
	}
	return ident, true
}
