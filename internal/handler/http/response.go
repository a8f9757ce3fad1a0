package http

import (
	"encoding/json"
	"net/http"

	"github.com/tripwell/trippy-server/internal/logger"
)

// writeJSON marshals data and writes it with the given status code.
// Marshal failures are logged and degrade to a plain 500; at that point
// nothing else can be sent to the client.
func writeJSON(w http.ResponseWriter, r *http.Request, data any, statusCode int) {
	body, err := json.Marshal(data)
	if err != nil {
		logger.FromRequest(r).Error().Err(err).Msg("marshaling response body")
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body) //nolint:errcheck // nothing left to do if the client went away
}
