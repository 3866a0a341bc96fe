// Package server exposes the tracker store over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/julianstephens/tracked/internal/analyzer"
	"github.com/julianstephens/tracked/internal/cache"
	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/logger"
	"github.com/julianstephens/tracked/internal/storage"
)

// Options configures a Server.
type Options struct {
	Addr     string
	APIToken string
	// Async makes generate return a task id instead of waiting.
	Async         bool
	GenerateRate  float64
	GenerateBurst int
	Location      *time.Location
	// Now is overridable in tests.
	Now func() time.Time
}

type Server struct {
	store    storage.Provider
	cache    cache.MonthCache
	analyzer analyzer.Analyzer
	tasks    *TaskRegistry
	limiter  *rate.Limiter
	opts     Options
	handler  http.Handler
}

// New wires a server. A nil cache disables month caching.
func New(store storage.Provider, monthCache cache.MonthCache, an analyzer.Analyzer, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.GenerateRate <= 0 {
		opts.GenerateRate = constants.DefaultGenerateRate
	}
	if opts.GenerateBurst < 1 {
		opts.GenerateBurst = constants.DefaultGenerateBurst
	}
	if monthCache == nil {
		monthCache = cache.NewMemory(0)
	}

	s := &Server{
		store:    store,
		cache:    monthCache,
		analyzer: an,
		tasks:    NewTaskRegistry(constants.TaskRetention),
		limiter:  rate.NewLimiter(rate.Limit(opts.GenerateRate), opts.GenerateBurst),
		opts:     opts,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Tasks exposes the generation task registry.
func (s *Server) Tasks() *TaskRegistry {
	return s.tasks
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// generation tasks.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.tasks.Start()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", s.opts.Addr, "analyzer", s.analyzer.Name(), "async", s.opts.Async)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			_ = s.tasks.Stop(context.Background())
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := s.tasks.Stop(shutdownCtx); err != nil {
		logger.Warn("Generation tasks did not finish before shutdown", "error", err)
	}
	return nil
}

func (s *Server) today() time.Time {
	now := s.opts.Now().In(s.opts.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
