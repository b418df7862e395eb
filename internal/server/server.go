package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/evyataryagoni/clientinfo/internal/logger"
)

// Server owns the listening socket and its lifecycle: created at startup,
// torn down by Run when a termination signal arrives. Nothing else holds
// process-wide networking state.
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger

	stop chan struct{}

	mu   sync.Mutex
	addr net.Addr
}

// New creates a server for the given address ("" port means ":3000" was
// already resolved by config) and handler.
func New(addr string, h http.Handler, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: h,
		},
		logger: log.WithComponent("Server"),
		stop:   make(chan struct{}),
	}
}

// Addr returns the bound listen address once Run has started. Useful for
// tests that listen on an ephemeral port.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Stop requests the same graceful shutdown a termination signal would.
func (s *Server) Stop() {
	close(s.stop)
}

// Run binds the port, serves until SIGTERM/SIGINT (or Stop), then drains.
//
// Binding happens before anything else so a bad port aborts startup loudly
// instead of dying inside the serve goroutine. The drain is unbounded on
// purpose: no new connections are accepted once it begins, and the process
// waits for every in-flight request to finish rather than cutting them off
// at a deadline.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.Info().Str("addr", s.addr.String()).Msg("Server is running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		s.logger.Info().Str("signal", sig.String()).Msg("Shutting down, draining in-flight requests")
	case <-s.stop:
		s.logger.Info().Msg("Shutdown requested, draining in-flight requests")
	}

	if err := s.httpServer.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	s.logger.Info().Msg("Server exited")
	return nil
}
