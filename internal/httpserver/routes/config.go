package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/httpserver/handlers"
	"github.com/linkdeck/linkdeck/internal/httpserver/mw"
)

func init() { Register(registerConfig) }

func registerConfig(r chi.Router, d deps.Deps) {
	r.Route("/api/config", func(r chi.Router) {
		r.Use(mw.Auth(d.JWTSecret, d.Logger))
		r.Get("/status", handlers.Status(d))
		r.Post("/refresh", handlers.Refresh(d))
		r.With(mw.RequireRole(mw.RoleAdmin, d.Logger)).Post("/promote", handlers.Promote(d))
	})
}
