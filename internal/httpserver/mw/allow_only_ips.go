package mw

import (
	"net/http"

	"github.com/shelfd/shelf/internal/logger"
	"github.com/shelfd/shelf/internal/utils"
)

// AllowOnlyCIDRS allows only specific IPs/CIDRs. An empty list means
// passthrough. The daemon ships with a loopback-only default so that a
// misconfigured listen address does not expose the bridge to the network.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		log.Debug("AllowOnlyCIDRS: empty matcher, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Debugf("AllowOnlyCIDRS: IP %s rejected", ip)
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
