// Package server runs the HTTP endpoint of long-running commands: the
// Prometheus scrape target and the health probes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address (e.g. ":9102").
	Addr string

	// ShutdownTimeout bounds graceful shutdown. Default: 5s.
	ShutdownTimeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server serves a handler until its context is cancelled.
type Server struct {
	config     Config
	handler    http.Handler
	httpServer *http.Server
	logger     *slog.Logger

	mu        sync.Mutex
	listener  net.Listener
	isRunning bool
}

// New creates a server for handler wrapped in the request ID, logging and
// recovery middleware.
func New(cfg Config, handler http.Handler) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")

	wrapped := RecoveryMiddleware(logger, LoggingMiddleware(logger, RequestIDMiddleware(handler)))
	return &Server{
		config:  cfg,
		handler: wrapped,
		logger:  logger,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           wrapped,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Listen binds the listen address. Start calls it when needed; calling it
// first lets callers learn the bound address.
func (s *Server) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		ln, err := net.Listen("tcp", s.config.Addr)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
		}
		s.listener = ln
	}
	return s.listener.Addr(), nil
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	s.isRunning = true
	ln := s.listener
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving telemetry", "address", addr.String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown stops the server, waiting up to the shutdown timeout for
// in-flight requests.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("telemetry server stopped")
	return nil
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Handler returns the wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}
