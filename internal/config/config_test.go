package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
)

// TestLoad_Defaults tests that all default values load correctly with only credentials set.
func TestLoad_Defaults(t *testing.T) {
	clearEnvVars(t)
	setCredentials(t)

	cfg, err := Load()
	require.NoError(t, err)

	// Server defaults
	assert.Equal(t, 8080, cfg.Server.Port, "default server port")
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout, "default read timeout")
	assert.Equal(t, 10*time.Minute, cfg.Server.WriteTimeout, "default write timeout")

	// Provider defaults
	assert.Equal(t, "https://lk.top-ex.ru/api", cfg.Provider.BaseURL)
	assert.Equal(t, "14", cfg.Provider.UserID)
	assert.Equal(t, "81dd8a13-8235-494f-84fd-9c04c51d50ec", cfg.Provider.CargoType)
	assert.Equal(t, 1, cfg.Provider.CargoSeatsNumber)
	assert.Equal(t, "1", cfg.Provider.DeliveryMethod)
	assert.Equal(t, 150*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, time.Second, cfg.Provider.RateLimitDelay)
	assert.Equal(t, 3, cfg.Provider.RetryCount)
	assert.Equal(t, 5*time.Minute, cfg.Provider.TokenRefreshBuffer)

	// Calculation defaults
	assert.Equal(t, []domain.Weight{0.5, 1, 5, 10, 20, 30}, cfg.Weights())
	assert.Equal(t, domain.DeliveryModeFilter{"До дверей"}, cfg.DeliveryModeFilter())
	assert.Equal(t, 4, cfg.Calculation.Workers)
	assert.Zero(t, cfg.Calculation.BatchTimeout)

	// Cache defaults
	assert.Equal(t, time.Hour, cfg.Cache.LocationTTL)
	assert.True(t, cfg.Cache.WarmOnStart)

	// Logging and app defaults
	assert.Equal(t, "info", cfg.Logging.Level, "default log level")
	assert.Equal(t, "json", cfg.Logging.Format, "default log format")
	assert.Equal(t, "development", cfg.App.Env, "default app environment")
}

// TestLoad_EnvironmentOverrides tests that environment variables override defaults.
func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)
	setCredentials(t)

	setEnvVars(t, map[string]string{
		"SERVER_PORT":              "3000",
		"SERVER_READ_TIMEOUT":      "1m",
		"SERVER_WRITE_TIMEOUT":     "30m",
		"TOPEX_API_BASE":           "http://localhost:9000/api",
		"TOPEX_USER_ID":            "99",
		"TOPEX_CARGO_TYPE":         "cargo",
		"TOPEX_CARGO_SEATS_NUMBER": "2",
		"TOPEX_DELIVERY_METHOD":    "3",
		"API_TIMEOUT":              "20s",
		"RATE_LIMIT_DELAY":         "250ms",
		"RETRY_COUNT":              "5",
		"TOKEN_REFRESH_BUFFER":     "1m",
		"WEIGHT_CATEGORIES":        "2,0.25,15",
		"DELIVERY_FILTER":          "До дверей,До склада",
		"CALC_WORKERS":             "8",
		"CALC_BATCH_TIMEOUT":       "10m",
		"LOCATION_CACHE_TTL":       "30m",
		"LOCATION_CACHE_WARM":      "false",
		"LOG_LEVEL":                "debug",
		"LOG_FORMAT":               "console",
		"APP_ENV":                  "production",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, "test@example.com", cfg.Provider.Email)
	assert.Equal(t, "secret", cfg.Provider.Password)
	assert.Equal(t, "http://localhost:9000/api", cfg.Provider.BaseURL)
	assert.Equal(t, "99", cfg.Provider.UserID)
	assert.Equal(t, "cargo", cfg.Provider.CargoType)
	assert.Equal(t, 2, cfg.Provider.CargoSeatsNumber)
	assert.Equal(t, "3", cfg.Provider.DeliveryMethod)
	assert.Equal(t, 20*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Provider.RateLimitDelay)
	assert.Equal(t, 5, cfg.Provider.RetryCount)
	assert.Equal(t, time.Minute, cfg.Provider.TokenRefreshBuffer)
	assert.Equal(t, []domain.Weight{2, 0.25, 15}, cfg.Weights(), "configured order is kept")
	assert.Equal(t, domain.DeliveryModeFilter{"До дверей", "До склада"}, cfg.DeliveryModeFilter())
	assert.Equal(t, 8, cfg.Calculation.Workers)
	assert.Equal(t, 10*time.Minute, cfg.Calculation.BatchTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Cache.LocationTTL)
	assert.False(t, cfg.Cache.WarmOnStart)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "production", cfg.App.Env)
}

// TestLoad_DeliveryFilterAny tests that the "any" keyword disables filtering.
func TestLoad_DeliveryFilterAny(t *testing.T) {
	clearEnvVars(t)
	setCredentials(t)
	setEnvVars(t, map[string]string{"DELIVERY_FILTER": "ANY"})

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.DeliveryModeFilter().IsEmpty())
}

// TestLoad_RequiredCredentials tests that missing credentials are fatal.
func TestLoad_RequiredCredentials(t *testing.T) {
	tests := []struct {
		name   string
		vars   map[string]string
		errMsg string
	}{
		{"missing both", map[string]string{}, "TOPEX_EMAIL is required"},
		{"blank email", map[string]string{"TOPEX_EMAIL": "  ", "TOPEX_PASSWORD": "secret"}, "TOPEX_EMAIL is required"},
		{"missing password", map[string]string{"TOPEX_EMAIL": "test@example.com"}, "TOPEX_PASSWORD is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			setEnvVars(t, tt.vars)

			cfg, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, cfg)
		})
	}
}

// TestLoad_Validation_PortRange tests port validation boundaries.
func TestLoad_Validation_PortRange(t *testing.T) {
	tests := []struct {
		name    string
		port    string
		wantErr bool
	}{
		{"valid port 1", "1", false},
		{"valid port 8080", "8080", false},
		{"valid port 65535", "65535", false},
		{"invalid port 0", "0", true},
		{"invalid port negative", "-1", true},
		{"invalid port too high", "65536", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			setCredentials(t)
			setEnvVars(t, map[string]string{"SERVER_PORT": tt.port})

			cfg, err := Load()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "SERVER_PORT must be between 1 and 65535")
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, cfg)
			}
		})
	}
}

// TestLoad_Validation_Values tests per-variable validation rules.
func TestLoad_Validation_Values(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
		errMsg string
	}{
		{"zero read timeout", "SERVER_READ_TIMEOUT", "0s", "SERVER_READ_TIMEOUT must be positive"},
		{"negative write timeout", "SERVER_WRITE_TIMEOUT", "-1s", "SERVER_WRITE_TIMEOUT must be positive"},
		{"relative base url", "TOPEX_API_BASE", "/api", "TOPEX_API_BASE must be an absolute http(s) URL"},
		{"ftp base url", "TOPEX_API_BASE", "ftp://lk.top-ex.ru/api", "TOPEX_API_BASE must be an absolute http(s) URL"},
		{"zero seats", "TOPEX_CARGO_SEATS_NUMBER", "0", "TOPEX_CARGO_SEATS_NUMBER must be at least 1"},
		{"zero api timeout", "API_TIMEOUT", "0s", "API_TIMEOUT must be positive"},
		{"negative rate limit", "RATE_LIMIT_DELAY", "-1s", "RATE_LIMIT_DELAY must not be negative"},
		{"zero retries", "RETRY_COUNT", "0", "RETRY_COUNT must be at least 1"},
		{"negative refresh buffer", "TOKEN_REFRESH_BUFFER", "-5m", "TOKEN_REFRESH_BUFFER must not be negative"},
		{"non-positive weight", "WEIGHT_CATEGORIES", "1,0", "WEIGHT_CATEGORIES"},
		{"duplicate weight", "WEIGHT_CATEGORIES", "1,5,1", "duplicate weight tier"},
		{"zero workers", "CALC_WORKERS", "0", "CALC_WORKERS must be at least 1"},
		{"negative batch timeout", "CALC_BATCH_TIMEOUT", "-1s", "CALC_BATCH_TIMEOUT must not be negative"},
		{"zero cache ttl", "LOCATION_CACHE_TTL", "0s", "LOCATION_CACHE_TTL must be positive"},
		{"invalid log level", "LOG_LEVEL", "trace", "LOG_LEVEL must be one of"},
		{"invalid log format", "LOG_FORMAT", "text", "LOG_FORMAT must be one of"},
		{"invalid app env", "APP_ENV", "local", "APP_ENV must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			setCredentials(t)
			setEnvVars(t, map[string]string{tt.envVar: tt.value})

			cfg, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, cfg)
		})
	}
}

// TestLoad_ParseErrors tests values the env parser rejects.
func TestLoad_ParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"weight not a number", "WEIGHT_CATEGORIES", "1,heavy"},
		{"workers not a number", "CALC_WORKERS", "many"},
		{"duration without unit", "RATE_LIMIT_DELAY", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			setCredentials(t)
			setEnvVars(t, map[string]string{tt.envVar: tt.value})

			cfg, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "parse config")
			assert.Nil(t, cfg)
		})
	}
}

// TestMustLoad_Success tests MustLoad with valid config.
func TestMustLoad_Success(t *testing.T) {
	clearEnvVars(t)
	setCredentials(t)

	assert.NotPanics(t, func() {
		cfg := MustLoad()
		assert.NotNil(t, cfg)
	})
}

// TestMustLoad_Panic tests MustLoad panics on invalid config.
func TestMustLoad_Panic(t *testing.T) {
	clearEnvVars(t)

	assert.Panics(t, func() {
		MustLoad()
	})
}

// TestConfig_Environment tests the environment helper methods.
func TestConfig_Environment(t *testing.T) {
	tests := []struct {
		env         string
		development bool
		production  bool
	}{
		{"development", true, false},
		{"staging", false, false},
		{"production", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			clearEnvVars(t)
			setCredentials(t)
			setEnvVars(t, map[string]string{"APP_ENV": tt.env})

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.development, cfg.IsDevelopment())
			assert.Equal(t, tt.production, cfg.IsProduction())
		})
	}
}

// Helper functions

// clearEnvVars clears all config-related environment variables.
func clearEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SERVER_PORT",
		"SERVER_READ_TIMEOUT",
		"SERVER_WRITE_TIMEOUT",
		"TOPEX_API_BASE",
		"TOPEX_EMAIL",
		"TOPEX_PASSWORD",
		"TOPEX_USER_ID",
		"TOPEX_CARGO_TYPE",
		"TOPEX_CARGO_SEATS_NUMBER",
		"TOPEX_DELIVERY_METHOD",
		"API_TIMEOUT",
		"RATE_LIMIT_DELAY",
		"RETRY_COUNT",
		"TOKEN_REFRESH_BUFFER",
		"WEIGHT_CATEGORIES",
		"DELIVERY_FILTER",
		"CALC_WORKERS",
		"CALC_BATCH_TIMEOUT",
		"LOCATION_CACHE_TTL",
		"LOCATION_CACHE_WARM",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"APP_ENV",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

// setCredentials sets the mandatory provider credentials.
func setCredentials(t *testing.T) {
	t.Helper()
	setEnvVars(t, map[string]string{
		"TOPEX_EMAIL":    "test@example.com",
		"TOPEX_PASSWORD": "secret",
	})
}

// setEnvVars sets multiple environment variables.
func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		os.Setenv(k, v)
	}
}
