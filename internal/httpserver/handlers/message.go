package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shelfd/shelf/internal/bridge"
	"github.com/shelfd/shelf/internal/httpserver/deps"
	"github.com/shelfd/shelf/internal/logger"
	"github.com/shelfd/shelf/internal/utils"
)

// Message handles one extension message per request. The response is always
// 200 with the envelope; the extension reads success/error from the body.
func Message(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer utils.Close(r.Body)

		var msg bridge.Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(bridge.Response{
				Success: false,
				Error:   "malformed message body",
			})
			return
		}

		d.Logger.Debug("extension message", logger.String("action", msg.Action))
		resp := d.Dispatcher.Dispatch(r.Context(), msg)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
