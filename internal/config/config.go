// Package config provides application configuration management.
// It loads configuration from environment variables with support for .env files.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
)

// DeliveryFilterAny disables delivery mode filtering.
const DeliveryFilterAny = "any"

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Provider    ProviderConfig
	Calculation CalculationConfig
	Cache       CacheConfig
	Logging     LoggingConfig
	App         AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10m"`
}

// ProviderConfig holds the shipping provider account and transport settings.
type ProviderConfig struct {
	BaseURL            string        `env:"TOPEX_API_BASE" envDefault:"https://lk.top-ex.ru/api"`
	Email              string        `env:"TOPEX_EMAIL"`
	Password           string        `env:"TOPEX_PASSWORD"`
	UserID             string        `env:"TOPEX_USER_ID" envDefault:"14"`
	CargoType          string        `env:"TOPEX_CARGO_TYPE" envDefault:"81dd8a13-8235-494f-84fd-9c04c51d50ec"`
	CargoSeatsNumber   int           `env:"TOPEX_CARGO_SEATS_NUMBER" envDefault:"1"`
	DeliveryMethod     string        `env:"TOPEX_DELIVERY_METHOD" envDefault:"1"`
	Timeout            time.Duration `env:"API_TIMEOUT" envDefault:"150s"`
	RateLimitDelay     time.Duration `env:"RATE_LIMIT_DELAY" envDefault:"1s"`
	RetryCount         int           `env:"RETRY_COUNT" envDefault:"3"`
	TokenRefreshBuffer time.Duration `env:"TOKEN_REFRESH_BUFFER" envDefault:"5m"`
}

// CalculationConfig holds batch calculation settings.
type CalculationConfig struct {
	WeightCategories []float64     `env:"WEIGHT_CATEGORIES" envDefault:"0.5,1,5,10,20,30" envSeparator:","`
	DeliveryFilter   []string      `env:"DELIVERY_FILTER" envDefault:"До дверей" envSeparator:","`
	Workers          int           `env:"CALC_WORKERS" envDefault:"4"`
	BatchTimeout     time.Duration `env:"CALC_BATCH_TIMEOUT" envDefault:"0s"`
}

// CacheConfig holds location cache settings.
type CacheConfig struct {
	LocationTTL time.Duration `env:"LOCATION_CACHE_TTL" envDefault:"1h"`
	WarmOnStart bool          `env:"LOCATION_CACHE_WARM" envDefault:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first (optional - won't fail if missing).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics on error.
// Use this in main() where configuration is required to start.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// validate checks configuration values for correctness.
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}

	if err := validateProvider(&cfg.Provider); err != nil {
		return err
	}

	if err := domain.ValidateWeights(cfg.Weights()); err != nil {
		return fmt.Errorf("WEIGHT_CATEGORIES: %w", err)
	}
	if cfg.Calculation.Workers < 1 {
		return fmt.Errorf("CALC_WORKERS must be at least 1, got %d", cfg.Calculation.Workers)
	}
	if cfg.Calculation.BatchTimeout < 0 {
		return fmt.Errorf("CALC_BATCH_TIMEOUT must not be negative")
	}
	if cfg.Cache.LocationTTL <= 0 {
		return fmt.Errorf("LOCATION_CACHE_TTL must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console; got %q", cfg.Logging.Format)
	}

	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[cfg.App.Env] {
		return fmt.Errorf("APP_ENV must be one of: development, staging, production; got %q", cfg.App.Env)
	}

	return nil
}

func validateProvider(p *ProviderConfig) error {
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("TOPEX_EMAIL is required")
	}
	if p.Password == "" {
		return fmt.Errorf("TOPEX_PASSWORD is required")
	}

	u, err := url.Parse(p.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("TOPEX_API_BASE must be an absolute http(s) URL, got %q", p.BaseURL)
	}

	if p.CargoSeatsNumber < 1 {
		return fmt.Errorf("TOPEX_CARGO_SEATS_NUMBER must be at least 1, got %d", p.CargoSeatsNumber)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	if p.RateLimitDelay < 0 {
		return fmt.Errorf("RATE_LIMIT_DELAY must not be negative")
	}
	if p.RetryCount < 1 {
		return fmt.Errorf("RETRY_COUNT must be at least 1, got %d", p.RetryCount)
	}
	if p.TokenRefreshBuffer < 0 {
		return fmt.Errorf("TOKEN_REFRESH_BUFFER must not be negative")
	}
	return nil
}

// Weights returns the configured weight tiers in configured order.
func (c *Config) Weights() []domain.Weight {
	weights := make([]domain.Weight, len(c.Calculation.WeightCategories))
	for i, w := range c.Calculation.WeightCategories {
		weights[i] = domain.Weight(w)
	}
	return weights
}

// DeliveryModeFilter returns the delivery mode allow-list.
// DELIVERY_FILTER=any yields an empty filter that keeps every offer.
func (c *Config) DeliveryModeFilter() domain.DeliveryModeFilter {
	modes := c.Calculation.DeliveryFilter
	if len(modes) == 1 && strings.EqualFold(strings.TrimSpace(modes[0]), DeliveryFilterAny) {
		return nil
	}
	return domain.NewDeliveryModeFilter(modes...)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
