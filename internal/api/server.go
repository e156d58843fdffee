// Package api implements the HTTP API for the price comparison service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/config"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
)

// readHeaderTimeout bounds header reads independently of body timeouts.
const readHeaderTimeout = 10 * time.Second

// Server wraps the HTTP server and its router.
type Server struct {
	cfg    config.ServerConfig
	srv    *http.Server
	logger logger.Interface
}

// NewServer builds the router and HTTP server around the handler set.
func NewServer(cfg config.ServerConfig, h *Handler, log logger.Interface) *Server {
	router := SetupRouter(h, log)

	return &Server{
		cfg: cfg,
		srv: &http.Server{
			Addr:              cfg.Address(),
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: log.WithComponent("api"),
	}
}

// Start listens and serves until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "address", s.cfg.Address())
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// SetupRouter creates and configures the Gin router with all routes.
func SetupRouter(h *Handler, log logger.Interface) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/search", h.TextSearch)
		v1.POST("/search/image", h.ImageSearch)
		v1.GET("/search/status/:groupID", h.SearchStatus)
		v1.GET("/search/history", h.SearchHistory)

		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/products/:id/price-history", h.ProductPriceHistory)
		v1.GET("/products/:id/compare", h.CompareProduct)
		v1.GET("/compare", h.Compare)

		v1.GET("/platforms", h.ListPlatforms)
	}

	return router
}
