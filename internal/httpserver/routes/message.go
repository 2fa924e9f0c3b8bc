package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shelfd/shelf/internal/httpserver/deps"
	"github.com/shelfd/shelf/internal/httpserver/handlers"
	"github.com/shelfd/shelf/internal/httpserver/mw"
)

func init() { Register(registerMessage) }

func registerMessage(r chi.Router, d deps.Deps) {
	r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RateLimit(mw.RateLimitConfig{
			Burst:        d.RateLimitBurst,
			RefillPerMin: d.RateLimitPerMin,
			TrustProxy:   d.TrustProxy,
		}),
	).Post("/message", handlers.Message(d))
}
