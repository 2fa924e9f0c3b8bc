package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shelfd/shelf/internal/httpserver/deps"
	"github.com/shelfd/shelf/internal/utils"
)

type viewportUpdate struct {
	Enter []string `json:"enter"`
	Leave []string `json:"leave"`
}

type viewportResponse struct {
	Pending int `json:"pending"`
}

// Viewport receives scroll deltas from the frontend: ids that entered the
// viewport and ids that left it. Entered ids get a debounced detail
// prefetch, left ids have theirs cancelled.
func Viewport(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer utils.Close(r.Body)

		var upd viewportUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			http.Error(w, "malformed viewport update", http.StatusBadRequest)
			return
		}

		for _, id := range upd.Leave {
			d.Prefetcher.Leave(id)
		}
		for _, id := range upd.Enter {
			d.Prefetcher.Enter(id)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(viewportResponse{
			Pending: d.Prefetcher.Pending(),
		})
	}
}
