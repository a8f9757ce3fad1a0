package http

import (
	"fmt"
	"net/http"
)

// withRecover converts panics in downstream handlers into normalized 500
// responses so a single bad request cannot take the process down.
func (h *Handler) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				h.writeError(w, r, err)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
