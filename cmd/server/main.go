// Package main is the entry point for the shipping quote aggregation service.
//
//	@title						Shipping Quote Aggregation API
//	@version					1.0.0
//	@description				Resolves city names to provider locations, requests shipping offers for every route and weight tier, and returns ranked results.
//
//	@contact.name				API Support
//	@contact.url				https://github.com/shipping-quote/shipping-quote-aggregation-system/issues
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	// Import generated docs for swagger
	_ "github.com/shipping-quote/shipping-quote-aggregation-system/docs"

	quotehttp "github.com/shipping-quote/shipping-quote-aggregation-system/internal/adapter/http"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/adapter/http/middleware"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/adapter/provider/topex"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/config"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/logger"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/retry"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/usecase"
)

const (
	shutdownTimeout = 10 * time.Second
	warmTimeout     = 2 * time.Minute
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger with config
	appLog := setupLogger(cfg)

	appLog.Info().
		Str("env", cfg.App.Env).
		Int("port", cfg.Server.Port).
		Str("provider", cfg.Provider.BaseURL).
		Msg("Configuration loaded")

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Configure server timeouts from config
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// Setup middleware
	mwCfg := middleware.DefaultConfig()
	mwCfg.Recovery.DisableStackAll = cfg.IsProduction()
	middleware.SetupWithConfig(e, appLog.Logger, mwCfg)

	// Setup provider, use case and routes
	app := setupApp(cfg, appLog)
	quotehttp.RegisterRoutes(e, app.handler)

	// Swagger documentation endpoint
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if cfg.Cache.WarmOnStart {
		go warmLocations(app.resolver, appLog)
	}

	// Start server with graceful shutdown
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		appLog.Info().Str("address", addr).Msg("Starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	gracefulShutdown(e, app.session, appLog)
}

// setupLogger builds the application logger from config and installs it globally.
func setupLogger(cfg *config.Config) *logger.Logger {
	l := logger.New(logger.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		EnableCaller: cfg.IsDevelopment(),
		ServiceName:  "shipping-quotes",
	})
	logger.SetGlobal(l)
	return l
}

type application struct {
	session  *topex.Session
	resolver *usecase.LocationResolver
	handler  *quotehttp.CalculationHandler
}

// setupApp wires the provider adapters into the calculation use case.
func setupApp(cfg *config.Config, appLog *logger.Logger) application {
	providerLog := appLog.WithProvider("topex").Logger

	retryCfg := retry.TransportConfig.WithMaxAttempts(cfg.Provider.RetryCount)
	client := topex.NewClient(topex.ClientConfig{
		BaseURL: cfg.Provider.BaseURL,
		Timeout: cfg.Provider.Timeout,
		Retry:   retryCfg,
	}, topex.WithClientLogger(providerLog))

	session := topex.NewSession(client, topex.Credentials{
		Email:    cfg.Provider.Email,
		Password: cfg.Provider.Password,
	}, cfg.Provider.TokenRefreshBuffer, topex.WithSessionLogger(providerLog))

	directory := topex.NewDirectory(client, session, providerLog)
	resolver := usecase.NewLocationResolver(directory, usecase.ResolverConfig{
		TTL: cfg.Cache.LocationTTL,
	}, usecase.WithResolverLogger(appLog.WithComponent("resolver").Logger))

	quotes := topex.NewQuoteClient(client, session, topex.QuoteConfig{
		UserID:           cfg.Provider.UserID,
		CargoType:        cfg.Provider.CargoType,
		CargoSeatsNumber: cfg.Provider.CargoSeatsNumber,
		DeliveryMethod:   cfg.Provider.DeliveryMethod,
		RateLimitDelay:   cfg.Provider.RateLimitDelay,
		Filter:           cfg.DeliveryModeFilter(),
	}, providerLog)

	calc := usecase.NewCalculationUseCase(resolver, quotes, &usecase.CalculationConfig{
		Weights:      cfg.Weights(),
		Workers:      cfg.Calculation.Workers,
		BatchTimeout: cfg.Calculation.BatchTimeout,
	}, usecase.WithCalculationLogger(appLog.WithComponent("calculation").Logger))

	return application{
		session:  session,
		resolver: resolver,
		handler:  quotehttp.NewCalculationHandler(calc, resolver, appLog),
	}
}

// warmLocations preloads the location listing so the first batch skips the full fetch.
func warmLocations(resolver *usecase.LocationResolver, appLog *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	if err := resolver.Warm(ctx); err != nil {
		appLog.Warn().Err(err).Msg("Location cache warm-up failed")
		return
	}
	appLog.Info().Int("locations", resolver.Stats().ListingSize).Msg("Location cache warmed")
}

// gracefulShutdown handles graceful server shutdown on interrupt signals.
func gracefulShutdown(e *echo.Echo, session *topex.Session, appLog *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	appLog.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		appLog.Error().Err(err).Msg("Error during server shutdown")
	}
	if err := session.Close(); err != nil {
		appLog.Error().Err(err).Msg("Error closing provider session")
	}

	appLog.Info().Msg("Server stopped")
}
