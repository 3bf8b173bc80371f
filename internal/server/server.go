// Package server wires the development API server: storage, handlers and middleware.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/metareview/internal/config"
	"github.com/iudanet/metareview/internal/server/handlers"
	"github.com/iudanet/metareview/internal/server/middleware"
	"github.com/iudanet/metareview/internal/server/storage"
)

const shutdownTimeout = 10 * time.Second

// Store - все, что нужно серверу от хранилища
type Store interface {
	storage.UserStorage
	storage.ProjectStorage
	storage.PaperStorage
	handlers.Pinger
}

// Server is the HTTP API server
type Server struct {
	logger  *slog.Logger
	limiter *middleware.RateLimiter
	http    *http.Server
}

// New builds the server and its routes
func New(cfg config.ServerConfig, store Store, logger *slog.Logger, version string) *Server {
	jwtCfg := handlers.JWTConfig{
		Secret:         []byte(cfg.JWTSecret),
		AccessTokenTTL: cfg.TokenTTL,
	}

	limiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)

	mux := http.NewServeMux()
	registerRoutes(mux, routeDeps{
		health:      handlers.NewHealthHandler(logger, store, version),
		auth:        handlers.NewAuthHandler(logger, store, jwtCfg),
		projects:    handlers.NewProjectHandler(logger, store),
		papers:      handlers.NewPaperHandler(logger, store, store, cfg.UploadDir),
		requireAuth: middleware.AuthMiddleware(logger, jwtCfg),
		loginLimit:  limiter.Middleware(logger),
	})

	var handler http.Handler = mux
	handler = middleware.RecoveryMiddleware(logger)(handler)
	handler = middleware.LoggingMiddleware(logger, "/health")(handler)

	return &Server{
		logger:  logger,
		limiter: limiter,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
	}
}

// Handler returns the root handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

type routeDeps struct {
	health      *handlers.HealthHandler
	auth        *handlers.AuthHandler
	projects    *handlers.ProjectHandler
	papers      *handlers.PaperHandler
	requireAuth func(http.Handler) http.Handler
	loginLimit  func(http.Handler) http.Handler
}

func registerRoutes(mux *http.ServeMux, d routeDeps) {
	protected := func(h http.HandlerFunc) http.Handler {
		return d.requireAuth(h)
	}

	mux.HandleFunc("GET /health", d.health.Health)

	// Авторизация
	mux.Handle("POST /auth/token", d.loginLimit(http.HandlerFunc(d.auth.Token)))
	mux.HandleFunc("POST /auth/register", d.auth.Register)
	mux.Handle("GET /auth/users/me", protected(d.auth.Me))

	// Проекты текущего пользователя
	mux.Handle("GET /projects/{$}", protected(d.projects.List))
	mux.Handle("POST /projects/{$}", protected(d.projects.Create))
	mux.Handle("GET /projects/{id}/{$}", protected(d.projects.Get))
	mux.Handle("PUT /projects/{id}/{$}", protected(d.projects.Update))
	mux.Handle("DELETE /projects/{id}/{$}", protected(d.projects.Delete))

	// Статьи
	mux.HandleFunc("GET /search/papers", d.papers.Search)
	mux.Handle("POST /papers/upload", protected(d.papers.Upload))
}

// Close releases background resources when the server is used without Run
func (s *Server) Close() {
	s.limiter.Stop()
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	defer s.limiter.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
