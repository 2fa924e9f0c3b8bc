package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shelfd/shelf/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Redis string `json:"redis"`
}

// Readyz reports readiness. The daemon serves reads from memory even with
// Redis down, but persistence is degraded, so readiness reflects the ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		redisStatus := "ok"
		ready := true
		if d.RedisClient == nil {
			redisStatus = "not configured"
			ready = false
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.RedisClient.Ping(ctx).Err(); err != nil {
				redisStatus = "unreachable"
				ready = false
			}
		}

		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(readyzResponse{
			Ready: ready,
			Redis: redisStatus,
		})
	}
}
