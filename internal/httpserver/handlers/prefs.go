package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/shelfd/shelf/internal/httpserver/deps"
	"github.com/shelfd/shelf/internal/logger"
	"github.com/shelfd/shelf/internal/prefs"
	"github.com/shelfd/shelf/internal/utils"
)

// GetLayout serves the stored layout preferences. A missing or unreadable
// blob serves the defaults with a 200; the frontend never has to special
// case a fresh profile.
func GetLayout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		layout, err := d.Store.GetLayout(r.Context())
		if err != nil {
			d.Logger.Warn("serving default layout, store unreachable", logger.Error(err))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(layout)
	}
}

// PutLayout stores the layout preferences.
func PutLayout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer utils.Close(r.Body)

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		// DecodeLayout absorbs malformed input into the defaults, so a
		// corrupted write can only reset preferences, never store garbage.
		layout := prefs.DecodeLayout(body)
		if err := d.Store.SaveLayout(r.Context(), layout); err != nil {
			d.Logger.Error("failed to save layout", logger.Error(err))
			http.Error(w, "failed to persist layout", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(layout)
	}
}
