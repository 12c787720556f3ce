package middleware

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/adapter/http/response"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/logger"
)

// RecoveryConfig controls how much panic detail gets logged.
type RecoveryConfig struct {
	// DisableStackAll limits the logged stack to the panicking goroutine.
	DisableStackAll bool
	// DisablePrintStack omits the stack trace from the log entry.
	DisablePrintStack bool
}

// DefaultRecoveryConfig logs the stacks of all goroutines.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{}
}

// Recover turns a handler panic into a logged 500 with the default config.
func Recover(log zerolog.Logger) echo.MiddlewareFunc {
	return RecoverWithConfig(log, DefaultRecoveryConfig())
}

// RecoverWithConfig turns a handler panic into a logged 500.
// The body is the generic internal error; panic details only reach the log.
func RecoverWithConfig(log zerolog.Logger, config RecoveryConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				reqLog := logger.ForRequest(c.Request().Context(), log)
				event := reqLog.Error().
					Str("panic", fmt.Sprint(r)).
					Str("route", c.Path())
				if !config.DisablePrintStack {
					event = event.Str("stack", stackTrace(config.DisableStackAll))
				}
				event.Msg("Panic recovered")

				if !c.Response().Committed {
					err = response.InternalServerError(c)
				}
			}()

			return next(c)
		}
	}
}

func stackTrace(currentOnly bool) string {
	if currentOnly {
		return string(debug.Stack())
	}
	buf := make([]byte, 64<<10)
	n := runtime.Stack(buf, true)
	return string(buf[:n])
}
