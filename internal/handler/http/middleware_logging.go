package http

import (
	"net/http"
	"time"

	"github.com/declanlscott/printdesk-sub002/internal/logger"
)

// withLogging logs one line per finished request. For the poke endpoint
// the line appears when the subscriber disconnects, since the handler
// blocks for the lifetime of the websocket.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)
		start := time.Now()

		lw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(lw, r)

		log.Info().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Str("remote", r.RemoteAddr).
			Int("status", lw.status).
			Int("size", lw.size).
			Dur("duration", time.Since(start)).
			Send()
	})
}
