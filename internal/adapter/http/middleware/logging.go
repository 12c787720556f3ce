package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/logger"
)

// RequestLogger writes one access log line per request and hands the
// handler chain a logger tagged with the request id via the request context.
// Routes listed in quiet (e.g. /health) get the scoped logger but no
// access line.
func RequestLogger(log zerolog.Logger, quiet ...string) echo.MiddlewareFunc {
	skip := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			reqLog := logger.ForRequest(req.Context(), log)
			c.SetRequest(req.WithContext(reqLog.WithContext(req.Context())))

			if err := next(c); err != nil {
				// Render here so the logged status is the one sent.
				c.Error(err)
			}
			if _, ok := skip[c.Path()]; ok {
				return nil
			}

			res := c.Response()
			accessEvent(reqLog, res.Status).
				Str("method", req.Method).
				Str("route", c.Path()).
				Str("path", req.URL.Path).
				Str("query", req.URL.RawQuery).
				Int("status", res.Status).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int64("bytes_out", res.Size).
				Str("client_ip", c.RealIP()).
				Msg("HTTP request")
			return nil
		}
	}
}

func accessEvent(log zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= 500:
		return log.Error()
	case status >= 400:
		return log.Warn()
	default:
		return log.Info()
	}
}
