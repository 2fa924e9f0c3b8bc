package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shelfd/shelf/internal/httpserver/deps"
	"github.com/shelfd/shelf/internal/httpserver/handlers"
	"github.com/shelfd/shelf/internal/httpserver/mw"
)

func init() { Register(registerViews) }

func registerViews(r chi.Router, d deps.Deps) {
	g := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	g.Get("/views", handlers.View(d))
	g.Post("/views/more", handlers.ViewMore(d))
}
