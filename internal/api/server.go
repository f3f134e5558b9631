// Package api exposes the triage engine over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Server wraps the HTTP listener and its routes.
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	gracefulTimeout time.Duration
}

// NewServer builds the router and binds every API route.
func NewServer(addr string, gracefulTimeout time.Duration, logger *slog.Logger, handler *Handler) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", handler.Health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/triage", handler.Triage)
		v1.GET("/decisions", handler.ListDecisions)
		v1.GET("/decisions/:id", handler.GetDecision)
		v1.GET("/alerts/status", handler.AlertStatus)
	}

	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		gracefulTimeout: gracefulTimeout,
	}
}

// Start serves until the listener closes. ErrServerClosed is swallowed
// so a clean shutdown does not surface as a failure.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the graceful timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// GracefulTimeout returns the configured shutdown deadline.
func (s *Server) GracefulTimeout() time.Duration {
	return s.gracefulTimeout
}
