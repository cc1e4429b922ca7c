package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mpesa-paywall/config"
	"mpesa-paywall/internal/adapter/gateway/mpesa"
	pgStorage "mpesa-paywall/internal/adapter/storage/postgres"
	redisStorage "mpesa-paywall/internal/adapter/storage/redis"
	"mpesa-paywall/internal/app"
	"mpesa-paywall/internal/metrics"
	"mpesa-paywall/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// .env is optional; deployments use real env vars
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(os.Getenv("MPW_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting M-Pesa paywall")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.Callback.Token == "" {
		log.Warn().Msg("callback.token is empty, every M-Pesa callback will be rejected")
	}
	if cfg.Cookie.Secret == "" {
		cfg.Cookie.Secret = randomSecret()
		log.Warn().Msg("cookie.secret is empty, using a random secret; client cookies reset on restart")
	}

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	if err := pgStorage.Migrate(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pricingRepo := pgStorage.NewPricingRepo(pool)
	stores := app.Stores{
		Transactions: pgStorage.NewTransactionRepo(pool),
		Callbacks:    pgStorage.NewCallbackRepo(pool),
		Whitelist:    pgStorage.NewWhitelistRepo(pool),
		Pricing:      pricingRepo,
		Settings:     pricingRepo,
		Audit:        pgStorage.NewAuditRepository(pool),
		Fulfillment:  pgStorage.NewFulfillmentRepo(pool),
		Redis:        rdb,
	}

	m := metrics.New(registry)
	gateway := mpesa.NewClient(cfg.Gateway, cfg.Breaker, mpesa.NewHTTPClient(cfg.Gateway.Timeout), m, logger.Component(log, "mpesa"))
	log.Info().Str("breaker", gateway.BreakerState()).Msg("M-Pesa gateway client ready")

	paywall := app.Build(cfg, stores, gateway, registry, m, log,
		pgStorage.NewHealthCheck(pool), gateway,
	)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	if cfg.Sweeper.Enabled {
		go paywall.Sweeper.Start(sweepCtx)
	}

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           paywall.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	stopSweeper()
	if err := paywall.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Dialogs did not stop in time")
	}

	log.Info().Msg("Server exited")
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
