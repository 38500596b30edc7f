package http

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// responseWriter is a thin decorator around [http.ResponseWriter] that
// records the status code and body size for the logging middleware,
// forwarding WriteHeader to the underlying writer exactly once.
type responseWriter struct {
	http.ResponseWriter

	status      int
	size        int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// Hijack hands the underlying connection over, which the websocket upgrade
// of the poke endpoint needs. After a hijack the recorded status and size
// describe only what was written before the takeover.
func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support hijacking")
	}
	w.wroteHeader = true
	w.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}
