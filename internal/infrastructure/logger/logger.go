// Package logger provides structured logging using zerolog.
// It supports JSON and console output formats with configurable log levels,
// and carries request-scoped loggers through context.Context.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the logger configuration options.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error, fatal, panic)
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format is the output format (json, console)
	Format string `env:"LOG_FORMAT" envDefault:"json"`

	// EnableCaller adds caller information to log entries
	EnableCaller bool `env:"LOG_CALLER" envDefault:"false"`

	// ServiceName is the name of the service for log context
	ServiceName string `env:"SERVICE_NAME" envDefault:"shipping-quotes"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "shipping-quotes",
	}
}

// Logger wraps zerolog.Logger with additional context.
type Logger struct {
	zerolog.Logger
}

// New creates a new Logger writing to stdout.
func New(cfg Config) *Logger {
	return NewWithOutput(cfg, os.Stdout)
}

// NewWithOutput creates a new Logger with custom output writer.
func NewWithOutput(cfg Config, output io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var writer io.Writer = output
	if cfg.Format == "console" {
		writer = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zctx := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName)

	if cfg.EnableCaller {
		zctx = zctx.Caller()
	}

	return &Logger{Logger: zctx.Logger()}
}

// WithField returns a new logger with an additional string field.
func (l *Logger) WithField(key, value string) *Logger {
	return &Logger{Logger: l.With().Str(key, value).Logger()}
}

// WithRequestID returns a logger with request ID context.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.WithField("request_id", requestID)
}

// WithProvider returns a logger with provider context.
func (l *Logger) WithProvider(provider string) *Logger {
	return l.WithField("provider", provider)
}

// WithComponent returns a logger tagged with the emitting component
// (resolver, session, quote_client, calculator).
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// WithRoute returns a logger carrying the route endpoints.
func (l *Logger) WithRoute(origin, destination string) *Logger {
	return &Logger{Logger: l.With().Str("origin", origin).Str("destination", destination).Logger()}
}

// IntoContext stores the logger in ctx.
func (l *Logger) IntoContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or fallback when there is none.
func FromContext(ctx context.Context, fallback *Logger) *Logger {
	if zl := zerolog.Ctx(ctx); zl != nil && zl.GetLevel() != zerolog.Disabled {
		return &Logger{Logger: *zl}
	}
	if fallback == nil {
		return Nop()
	}
	return fallback
}

type requestIDKey struct{}

// ContextWithRequestID stores the request correlation id in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the correlation id stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ForRequest tags log with the request id carried by ctx.
// Without one, log is returned unchanged.
func ForRequest(ctx context.Context, log zerolog.Logger) zerolog.Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return log.With().Str("request_id", id).Logger()
	}
	return log
}

// Nop returns a disabled logger that produces no output.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Global is the global logger instance.
// It should be initialized at application startup.
var Global *Logger

// Init initializes the global logger with the given configuration.
func Init(cfg Config) {
	Global = New(cfg)
}

// SetGlobal sets a custom logger as the global logger.
func SetGlobal(l *Logger) {
	Global = l
}

func global() *Logger {
	if Global == nil {
		Init(DefaultConfig())
	}
	return Global
}

// Info returns an info level event from the global logger.
func Info() *zerolog.Event {
	return global().Info()
}

// Warn returns a warn level event from the global logger.
func Warn() *zerolog.Event {
	return global().Warn()
}

// Error returns an error level event from the global logger.
func Error() *zerolog.Event {
	return global().Error()
}

// Fatal returns a fatal level event from the global logger.
func Fatal() *zerolog.Event {
	return global().Fatal()
}
