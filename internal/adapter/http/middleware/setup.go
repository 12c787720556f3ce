package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Config selects the deployment-specific middleware behavior.
type Config struct {
	Recovery RecoveryConfig

	// QuietRoutes are served without an access log line.
	QuietRoutes []string
}

// DefaultConfig keeps full panic stacks and silences the health check.
func DefaultConfig() Config {
	return Config{
		Recovery:    DefaultRecoveryConfig(),
		QuietRoutes: []string{"/health"},
	}
}

// Setup registers the middleware chain with DefaultConfig.
func Setup(e *echo.Echo, log zerolog.Logger) {
	SetupWithConfig(e, log, DefaultConfig())
}

// SetupWithConfig registers the middleware chain. RequestID runs first so the
// access log and the recovery log share its id; Recover sits innermost so a
// panic still produces an access line with status 500.
func SetupWithConfig(e *echo.Echo, log zerolog.Logger, cfg Config) {
	e.Use(
		RequestID(),
		RequestLogger(log, cfg.QuietRoutes...),
		RecoverWithConfig(log, cfg.Recovery),
	)
}
