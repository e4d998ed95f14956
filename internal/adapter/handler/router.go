package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/minutes-service/internal/infrastructure/observability"
	"github.com/johnquangdev/minutes-service/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	minutesHandler *Minutes
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, minutesHandler *Minutes) *Router {
	return &Router{
		cfg:            cfg,
		minutesHandler: minutesHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// Prometheus metrics
	e.GET("/metrics", echo.WrapHandler(observability.Handler()))

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupMinutesRoutes(v1)
}

// setupMinutesRoutes configures the pipeline routes
func (rt *Router) setupMinutesRoutes(g *echo.Group) {
	minutesGroup := g.Group("/minutes")

	minutesGroup.POST("/process", rt.minutesHandler.Process)
	minutesGroup.POST("/clean", rt.minutesHandler.Clean)
	minutesGroup.POST("/summarize", rt.minutesHandler.Summarize)
	minutesGroup.POST("/diarize", rt.minutesHandler.Diarize)
	minutesGroup.POST("/extract", rt.minutesHandler.Extract)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
