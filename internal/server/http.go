package server

import (
	"context"
	"net/http"

	"github.com/declanlscott/printdesk-sub002/internal/config"
	"github.com/declanlscott/printdesk-sub002/internal/logger"
)

type httpServer struct {
	server *http.Server
	logger *logger.Logger
}

func newHTTPServer(mux http.Handler, cfg config.Server, logger *logger.Logger) *httpServer {
	return &httpServer{
		// only the header read is bounded; the poke endpoint holds
		// connections open indefinitely
		server: &http.Server{
			Addr:              cfg.HTTPAddress,
			Handler:           mux,
			ReadHeaderTimeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

func (h *httpServer) RunServer() {
	if err := h.server.ListenAndServe(); err != nil {
		h.logger.Info().Msgf("HTTP server ListenAndServe: %v", err)
	}
}

func (h *httpServer) Shutdown() {
	if err := h.server.Shutdown(context.Background()); err != nil {
		h.logger.Info().Msgf("HTTP server Shutdown: %v", err)
	}
}
