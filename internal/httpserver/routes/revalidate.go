package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shelfd/shelf/internal/httpserver/deps"
	"github.com/shelfd/shelf/internal/httpserver/handlers"
	"github.com/shelfd/shelf/internal/httpserver/mw"
)

func init() { Register(registerRevalidate) }

func registerRevalidate(r chi.Router, d deps.Deps) {
	r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	).Post("/revalidate", handlers.Revalidate(d))
}
