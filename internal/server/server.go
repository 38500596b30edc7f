// Package server wires and runs the application's HTTP transport,
// including startup, signal handling, and graceful shutdown.
package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/declanlscott/printdesk-sub002/internal/config"
	"github.com/declanlscott/printdesk-sub002/internal/logger"
)

// Server is the lifecycle contract of the transport server.
//
// Implementations are expected to block in [Server.RunServer] until
// shutdown is requested and to release resources in [Server.Shutdown].
type Server interface {
	// RunServer starts serving requests and blocks until the server stops.
	RunServer()

	// Shutdown gracefully stops the server and frees associated resources.
	Shutdown()
}

type server struct {
	httpServer *httpServer
	logger     *logger.Logger
}

func NewServer(mux http.Handler, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	return &server{
		httpServer: newHTTPServer(mux, cfg, logger),
		logger:     logger,
	}, nil
}

func (s *server) RunServer() {
	if err := s.run(); err != nil {
		s.logger.Info().Msgf("Error running server: %v \n", err)
	}
}

func (s *server) Shutdown() {
	s.httpServer.Shutdown()
}

func (s *server) run() error {
	idleConnectionsClosed := make(chan struct{})
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	// listen for stop signals
	go func() {
		<-ctx.Done()

		s.Shutdown()

		close(idleConnectionsClosed)
	}()

	s.logger.Info().Msg("Launching HTTP server")
	go s.httpServer.RunServer()

	<-idleConnectionsClosed
	s.logger.Info().Msg("server Shutdown gracefully")

	return nil
}
