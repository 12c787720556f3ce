package http

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/adapter/http/response"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/logger"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/usecase"
)

// statsProvider is implemented by resolvers that expose cache counters.
type statsProvider interface {
	Stats() usecase.ResolverStats
}

// CalculationHandler handles HTTP requests for quote calculation and location lookup.
type CalculationHandler struct {
	useCase  usecase.CalculationUseCase
	resolver domain.LocationResolver
	log      *logger.Logger
}

// NewCalculationHandler creates a new CalculationHandler.
// A nil logger falls back to a no-op logger.
func NewCalculationHandler(uc usecase.CalculationUseCase, resolver domain.LocationResolver, log *logger.Logger) *CalculationHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CalculationHandler{
		useCase:  uc,
		resolver: resolver,
		log:      log.WithComponent("http"),
	}
}

// Calculate handles POST /api/v1/calculations
//
// @Summary Calculate shipping quotes
// @Description Resolves every route, requests offers for each weight tier and returns the ranked results
// @Tags calculations
// @Accept json
// @Produce json
// @Param request body CalculateRequest true "Routes and optional weight tiers"
// @Success 200 {object} CalculationResponseDTO
// @Failure 400 {object} response.ErrorDetail "Validation error"
// @Failure 500 {object} response.ErrorDetail "Internal error"
// @Failure 504 {object} response.ErrorDetail "Gateway timeout"
// @Router /api/v1/calculations [post]
func (h *CalculationHandler) Calculate(c echo.Context) error {
	var req CalculateRequest

	if err := c.Bind(&req); err != nil {
		return response.InvalidRequestBody(c)
	}

	if err := req.Validate(); err != nil {
		return h.handleValidationError(c, err)
	}

	routes, err := ToDomainRoutes(&req)
	if err != nil {
		return h.handleValidationError(c, err)
	}
	opts, err := ToCalculateOptions(&req)
	if err != nil {
		return response.ValidationErrorWithMessage(c, err.Error())
	}

	ctx := c.Request().Context()
	result, err := h.useCase.Calculate(ctx, routes, opts)
	if err != nil {
		return h.handleError(c, err)
	}

	dto := ToCalculationResponseDTO(result)
	dto.RequestID = logger.RequestIDFromContext(ctx)
	return response.CalculationResults(c, dto)
}

// ResolveLocation handles GET /api/v1/locations/resolve
//
// @Summary Resolve a place name
// @Description Maps a free-text city name or a location code to the provider location
// @Tags locations
// @Produce json
// @Param name query string true "City name or location code"
// @Success 200 {object} LocationDTO
// @Failure 400 {object} response.ErrorDetail "Validation error"
// @Failure 404 {object} response.ErrorDetail "Location not found"
// @Failure 502 {object} response.ErrorDetail "Provider failure"
// @Failure 504 {object} response.ErrorDetail "Gateway timeout"
// @Router /api/v1/locations/resolve [get]
func (h *CalculationHandler) ResolveLocation(c echo.Context) error {
	req := ResolveLocationRequest{Name: strings.TrimSpace(c.QueryParam("name"))}
	if err := req.Validate(); err != nil {
		return h.handleValidationError(c, err)
	}

	ctx := c.Request().Context()
	loc, err := h.resolver.Resolve(ctx, req.Name)
	switch {
	case err == nil:
		return response.OK(c, LocationDTO{Query: req.Name, ID: loc.ID, Name: loc.Name})
	case errors.Is(err, domain.ErrLocationNotFound):
		return response.NotFound(c, response.MsgLocationNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		return response.GatewayTimeout(c)
	case errors.Is(err, context.Canceled):
		return response.RequestCancelled(c)
	default:
		logger.FromContext(ctx, h.log).Error().Err(err).Str("name", req.Name).Msg("location lookup failed")
		return response.BadGateway(c)
	}
}

// handleValidationError handles validation errors and returns a 400 response.
func (h *CalculationHandler) handleValidationError(c echo.Context, err error) error {
	var validationErrs *ValidationErrors
	if errors.As(err, &validationErrs) {
		return response.ValidationError(c, validationErrs.ToMap())
	}

	return response.ValidationErrorWithMessage(c, err.Error())
}

// handleError maps calculation errors to HTTP responses.
func (h *CalculationHandler) handleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNoRoutes),
		errors.Is(err, domain.ErrInvalidWeight),
		errors.Is(err, domain.ErrInvalidRoute):
		return response.ValidationErrorWithMessage(c, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return response.GatewayTimeout(c)
	case errors.Is(err, context.Canceled):
		return response.RequestCancelled(c)
	}

	logger.FromContext(c.Request().Context(), h.log).Error().Err(err).Msg("calculation failed")
	return response.InternalServerError(c)
}

// Health handles GET /health
//
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} SwaggerHealthResponse
// @Router /health [get]
func (h *CalculationHandler) Health(c echo.Context) error {
	if sp, ok := h.resolver.(statsProvider); ok {
		return response.HealthWithCache(c, sp.Stats())
	}
	return response.Health(c)
}
