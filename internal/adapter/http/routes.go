package http

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all shipping quote API routes.
// It creates a versioned API group and attaches the handler methods.
func RegisterRoutes(e *echo.Echo, h *CalculationHandler) {
	RegisterRoutesWithMiddleware(e, h)
}

// RegisterRoutesWithMiddleware registers routes with middleware applied to the versioned group.
func RegisterRoutesWithMiddleware(e *echo.Echo, h *CalculationHandler, middleware ...echo.MiddlewareFunc) {
	// Health check endpoint (no version prefix, no middleware)
	e.GET("/health", h.Health)

	api := e.Group("/api/v1", middleware...)

	api.POST("/calculations", h.Calculate)

	locations := api.Group("/locations")
	locations.GET("/resolve", h.ResolveLocation)
}
