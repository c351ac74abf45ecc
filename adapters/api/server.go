package api

import (
	"context"
	"net/http"
	"time"

	"negmdf/app"
	"negmdf/domain/core"
	"negmdf/domain/screening"
	"negmdf/internal"
	"negmdf/ports"

	"github.com/gin-gonic/gin"
)

// ScreeningService is the part of app.ScreeningService the API serves.
type ScreeningService interface {
	Screen(ctx context.Context, req app.ScreenRequest) (*app.BatchReport, error)
	GetRun(ctx context.Context, id core.RunID) (*screening.Run, error)
	ListRuns(ctx context.Context, filters ports.RunFilters) ([]ports.RunSummary, error)
	Persistent() bool
}

// Server exposes screening over HTTP
type Server struct {
	router  *gin.Engine
	service ScreeningService
	logger  *internal.Logger
}

// NewServer creates a server with routes and middleware installed
func NewServer(service ScreeningService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.Discard
	}
	s := &Server{
		router:  gin.New(),
		service: service,
		logger:  logger.With("API"),
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.POST("/screen", s.handleScreen)
	v1.GET("/runs", s.handleListRuns)
	v1.GET("/runs/:id", s.handleGetRun)
}

// Handler returns the router for use with net/http
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("%s %s %d %.2fms", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), float64(time.Since(start).Nanoseconds())/1e6)
	}
}
