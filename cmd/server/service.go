package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/JaimeStill/legal-lab/internal/config"
	"github.com/JaimeStill/legal-lab/internal/routes"
	"github.com/JaimeStill/legal-lab/internal/server"
)

// Service coordinates the lifecycle of all subsystems.
type Service struct {
	ctx        context.Context
	cancel     context.CancelFunc
	shutdownWg sync.WaitGroup
	tasks      sync.WaitGroup
	ready      atomic.Bool

	runtime *Runtime
	domain  *Domain
	server  server.System
}

// NewService creates and initializes the service with all subsystems.
func NewService(cfg *config.Config) (*Service, error) {
	rt, err := NewRuntime(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	svc := &Service{
		ctx:     ctx,
		cancel:  cancel,
		runtime: rt,
	}
	svc.domain = NewDomain(rt, cfg, &svc.tasks)

	routeSys := routes.New(rt.Logger)
	registerRoutes(routeSys, svc.domain, &svc.ready)

	handler := buildMiddleware(rt, cfg).Apply(routeSys.Build())
	svc.server = server.New(&cfg.Server, handler, rt.Logger)

	rt.Logger.Info(
		"service initialized",
		"auth", cfg.Auth.Enabled,
		"cases_backend", cfg.Cases.Backend,
		"model", cfg.Analysis.Model,
	)
	return svc, nil
}

// Start begins all subsystems and returns when they are ready.
func (s *Service) Start() error {
	s.runtime.Logger.Info("starting service")

	if err := s.runtime.Start(s.ctx); err != nil {
		return err
	}

	if err := s.server.Start(s.ctx, &s.shutdownWg); err != nil {
		return fmt.Errorf("server start failed: %w", err)
	}

	s.ready.Store(true)
	s.runtime.Logger.Info("service started", "addr", s.server.Addr())
	return nil
}

// Shutdown stops the HTTP server, drains detached case writes and closes the
// database within the provided context deadline.
func (s *Service) Shutdown(ctx context.Context) error {
	s.runtime.Logger.Info("initiating shutdown")
	s.ready.Store(false)

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.shutdownWg.Wait()
		s.domain.Registry.Wait()
		close(done)
	}()

	var errs []error
	select {
	case <-done:
		s.runtime.Logger.Info("all subsystems shut down successfully")
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("shutdown timeout: %w", ctx.Err()))
	}

	if err := s.runtime.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	return errors.Join(errs...)
}
