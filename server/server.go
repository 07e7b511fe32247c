// Package server wires the HTTP surface: routes, middleware, CORS and the
// http.Server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"manytomany/config"
	"manytomany/handlers"
	"manytomany/middleware"
	"manytomany/repositories"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	logger     *zap.Logger
}

// NewHandler builds the routed and wrapped handler over db.
func NewHandler(cfg *config.Config, db *gorm.DB, logger *zap.Logger) (http.Handler, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}

	students := repositories.NewStudentRepository(db)
	projects := repositories.NewProjectRepository(db)
	transactor := repositories.NewTransactor(db)
	links := handlers.NewLinks(cfg.BaseURL)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(sqlDB, cfg.Version, logger).RegisterRoutes(mux)
	handlers.NewStudentsHandler(students, projects, links, logger.Named("students")).RegisterRoutes(mux)
	handlers.NewProjectsHandler(projects, students, transactor, links, logger.Named("projects")).RegisterRoutes(mux)

	return wrap(mux, cfg.HTTP, logger), nil
}

func wrap(h http.Handler, cfg config.HTTPConfig, logger *zap.Logger) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Location", middleware.RequestIDHeader},
	})

	return middleware.RequestID(middleware.RequestLogger(logger.Named("http"))(c.Handler(h)))
}

func New(cfg *config.Config, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
			ErrorLog:     zap.NewStdLog(logger.Named("http")),
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve answers requests on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server",
			zap.String("addr", ln.Addr().String()),
			zap.String("version", s.cfg.Version))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server", zap.Duration("timeout", s.cfg.HTTP.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}
