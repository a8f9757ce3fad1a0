package http

import (
	"net/http"

	"github.com/tripwell/trippy-server/internal/apperr"
	"github.com/tripwell/trippy-server/internal/logger"
)

// writeError is the single exit point for every failed request. It
// normalizes whatever error bubbled up into an *apperr.Error, logs the
// full cause, and renders the environment-appropriate body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.Normalize(err)

	log := logger.FromRequest(r)
	event := log.Warn()
	if e.Code >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Int("status", e.Code).
		Str("path", r.URL.Path).
		Msg("request failed")

	writeJSON(w, r, e.Render(h.production), e.Code)
}
