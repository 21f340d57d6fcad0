package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/httpserver/handlers"
	"github.com/linkdeck/linkdeck/internal/httpserver/mw"
)

func init() { Register(registerCatalog) }

func registerCatalog(r chi.Router, d deps.Deps) {
	r.With(mw.Auth(d.JWTSecret, d.Logger), mw.RequireRole(mw.RoleAdmin, d.Logger)).
		Post("/api/catalog/publish", handlers.Publish(d))
}
