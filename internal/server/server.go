// Package server owns the HTTP listener lifecycle: startup, signal
// handling, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tripwell/trippy-server/internal/config"
	"github.com/tripwell/trippy-server/internal/logger"
)

// shutdownTimeout bounds how long in-flight requests may run after a stop
// signal before the listener is torn down.
const shutdownTimeout = 10 * time.Second

var errNoAddressConfigured = errors.New("no HTTP address configured")

// Server wraps the standard library HTTP server with signal-driven
// graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// NewServer builds a Server serving router on the configured address.
func NewServer(router http.Handler, cfg config.Server, log *logger.Logger) (*Server, error) {
	if cfg.HTTPAddress == "" {
		return nil, errNoAddressConfigured
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddress,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: log,
	}, nil
}

// Run starts serving and blocks until a termination signal arrives, then
// shuts down gracefully. It returns once all in-flight requests finished
// or the shutdown timeout passed.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.httpServer.Addr).Msg("launching HTTP server")
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	s.logger.Info().Msg("server shut down gracefully")

	return nil
}
