package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shelfd/shelf/internal/httpserver/deps"
	"github.com/shelfd/shelf/internal/httpserver/handlers"
	"github.com/shelfd/shelf/internal/httpserver/mw"
)

func init() { Register(registerPrefs) }

func registerPrefs(r chi.Router, d deps.Deps) {
	guarded := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	guarded.Get("/prefs/layout", handlers.GetLayout(d))
	guarded.Put("/prefs/layout", handlers.PutLayout(d))
}
