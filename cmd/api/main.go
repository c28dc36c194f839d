// Paygate Payments Microservice
//
// This is the main entry point for the payment gateway service.
// It wires up all dependencies and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/fitstack/paygate/config"
	"github.com/fitstack/paygate/internal/adapters/merchantcore"
	"github.com/fitstack/paygate/internal/adapters/tenpay"
	"github.com/fitstack/paygate/internal/core/gateway"
	"github.com/fitstack/paygate/internal/core/ports"
	"github.com/fitstack/paygate/internal/core/service"
	"github.com/fitstack/paygate/internal/handlers"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the YAML config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), config.Usage())
	}
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("configuration error")
	}

	logger := newLogger(cfg.Log)
	logger.Info().
		Str("port", cfg.Server.Port).
		Str("pay_url", cfg.Tenpay.PayURL).
		Bool("settlement_callback", cfg.Core.BaseURL != "").
		Msg("starting paygate")

	// Wire up dependencies (manual dependency injection)
	//
	// Infrastructure Layer
	provider, err := tenpay.Provider(cfg.Tenpay.Options())
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid provider configuration")
	}
	gw, err := gateway.New(provider, tenpay.NewClient(cfg.Tenpay.Timeout), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid provider configuration")
	}

	var notifier ports.SettlementNotifier
	if cfg.Core.BaseURL != "" {
		notifier = merchantcore.NewClient(cfg.Core.BaseURL, cfg.Core.APIKey, cfg.Core.Timeout)
	} else {
		logger.Warn().Msg("CORE_BASE_URL not set, settlements are only logged")
	}

	// Service Layer
	paymentService := service.NewPaymentService(cfg.Merchant.Domain(), gw, notifier, logger)

	// API Layer
	handler := handlers.NewPaymentHandler(paymentService, logger)
	router := handlers.SetupRouter(handler, cfg.Server.GinMode, cfg.APIKey, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
}

// newLogger builds the root logger from the log section.
func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Str("service", "paygate").Logger()
}
