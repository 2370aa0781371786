// Package server runs the HTTP listener and shuts it down when the service context ends.
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

	"github.com/JaimeStill/legal-lab/internal/config"
)

// System manages the HTTP server lifecycle.
type System interface {
	// Start binds the listener and serves until ctx is cancelled.
	// The shutdown goroutine is tracked by wg.
	Start(ctx context.Context, wg *sync.WaitGroup) error

	// Stop gracefully shuts the server down within ctx.
	Stop(ctx context.Context) error

	// Addr returns the bound address once Start has returned.
	Addr() string
}

type server struct {
	http            *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
	listener        net.Listener
	stopOnce        sync.Once
	stopErr         error
}

// New creates a server system with the specified configuration, handler, and logger.
func New(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) System {
	return &server{
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeoutDuration(),
			WriteTimeout: cfg.WriteTimeoutDuration(),
		},
		logger:          logger.With("system", "server"),
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}
}

func (s *server) Start(ctx context.Context, wg *sync.WaitGroup) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	s.listener = ln

	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.Stop(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		}
	}()

	return nil
}

func (s *server) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.logger.Info("shutting down server")
		s.stopErr = s.http.Shutdown(ctx)
		if s.stopErr == nil {
			s.logger.Info("server shutdown complete")
		}
	})
	return s.stopErr
}

func (s *server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.http.Addr
}
