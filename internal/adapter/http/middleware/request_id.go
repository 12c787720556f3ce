// Package middleware holds the echo middleware every route runs through.
package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/logger"
)

const (
	// RequestIDHeader carries the correlation id in both directions.
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLen = 128
	requestIDKey    = "request_id"
)

// RequestID assigns every request a correlation id.
//
// A client-supplied X-Request-ID is kept when it is at most 128 printable
// ASCII characters; otherwise a fresh UUID is issued. The id is echoed in the
// response header, set on the echo context and stored in the request
// context, where the use cases and provider adapters read it for their logs.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := acceptRequestID(c.Request().Header.Get(RequestIDHeader))
			if id == "" {
				id = uuid.NewString()
			}

			c.Set(requestIDKey, id)
			c.Response().Header().Set(RequestIDHeader, id)

			req := c.Request()
			c.SetRequest(req.WithContext(logger.ContextWithRequestID(req.Context(), id)))
			return next(c)
		}
	}
}

// acceptRequestID returns raw when it is usable as a correlation id, else "".
func acceptRequestID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxRequestIDLen {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '!' || id[i] > '~' {
			return ""
		}
	}
	return id
}

// GetRequestID returns the correlation id of the request, or "" outside the
// RequestID middleware.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(requestIDKey).(string); ok {
		return id
	}
	return logger.RequestIDFromContext(c.Request().Context())
}
