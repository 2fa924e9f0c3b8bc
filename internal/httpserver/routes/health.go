package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shelfd/shelf/internal/httpserver/deps"
	"github.com/shelfd/shelf/internal/httpserver/handlers"
	"github.com/shelfd/shelf/internal/httpserver/mw"
)

func init() { Register(registerHealth) }

func registerHealth(r chi.Router, d deps.Deps) {
	guarded := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	guarded.Get("/healthz", handlers.Healthz(d))
	guarded.Get("/readyz", handlers.Readyz(d))
}
