package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status"`

	// Cache reports location cache counters when available
	Cache any `json:"cache,omitempty"`
}

// Health writes a health check response.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, &HealthResponse{
		Status: "ok",
	})
}

// HealthWithCache writes a health check response including cache statistics.
func HealthWithCache(c echo.Context, cache any) error {
	return c.JSON(http.StatusOK, &HealthResponse{
		Status: "ok",
		Cache:  cache,
	})
}

// CalculationResults writes a 200 OK response with a calculation batch.
func CalculationResults(c echo.Context, results any) error {
	return c.JSON(http.StatusOK, results)
}
