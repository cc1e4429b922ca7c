// Package app wires the paywall services into an HTTP router.
package app

import (
	"context"

	"mpesa-paywall/config"
	httpHandler "mpesa-paywall/internal/adapter/http/handler"
	redisStorage "mpesa-paywall/internal/adapter/storage/redis"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/internal/metrics"
	"mpesa-paywall/internal/service"
	"mpesa-paywall/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Stores holds the persistence adapters the services run on.
type Stores struct {
	Transactions ports.TransactionRepository
	Callbacks    ports.CallbackRepository
	Whitelist    ports.WhitelistRepository
	Pricing      ports.PricingRepository
	Settings     ports.SettingsRepository
	Audit        ports.AuditRepository
	Fulfillment  ports.FulfillmentRepository
	Redis        *goredis.Client
}

// App is the assembled paywall.
type App struct {
	Router  *gin.Engine
	Dialogs *service.DialogManager
	Sweeper *service.Sweeper
	Audit   *service.AuditServiceImpl
	Metrics *metrics.Metrics
}

// Build creates every service from cfg and stores and mounts them on a router.
// m must be registered on registry, which is exposed at /metrics.
func Build(
	cfg *config.Config,
	stores Stores,
	gateway ports.PaymentGateway,
	registry *prometheus.Registry,
	m *metrics.Metrics,
	log zerolog.Logger,
	checkers ...ports.HealthChecker,
) *App {
	sessionStore := redisStorage.NewSessionStore(stores.Redis)
	pollLock := redisStorage.NewPollLock(stores.Redis)
	rateLimitStore := redisStorage.NewRateLimitStore(stores.Redis)

	auditSvc := service.NewAuditService(stores.Audit, logger.Component(log, "audit"))
	whitelistSvc := service.NewWhitelistService(stores.Whitelist, logger.Component(log, "whitelist"))
	sessionSvc := service.NewSessionService(sessionStore, cfg.Paywall.SessionTTL, logger.Component(log, "sessions"))
	pricingSvc := service.NewPricingService(
		stores.Pricing, stores.Settings,
		cfg.Paywall.PricingAttempts, cfg.Paywall.PricingBackoff,
		m, logger.Component(log, "pricing"),
	)
	paymentSvc := service.NewPaymentService(stores.Transactions, gateway, cfg.Paywall.MinPhoneDigits, m, logger.Component(log, "payments"))
	reconciler := service.NewReconciler(
		stores.Transactions, stores.Callbacks, sessionSvc, pollLock,
		cfg.Paywall.PollInterval, cfg.Paywall.MaxPolls,
		m, logger.Component(log, "reconciler"),
	)
	callbackSvc := service.NewCallbackService(stores.Callbacks, stores.Transactions, auditSvc, m, logger.Component(log, "callbacks"))
	fulfillmentSvc := service.NewFulfillmentService(stores.Fulfillment, auditSvc, logger.Component(log, "fulfillment"))
	sweeper := service.NewSweeper(
		stores.Transactions, stores.Callbacks,
		cfg.Sweeper.Interval, cfg.Sweeper.MinAge, cfg.Sweeper.BatchSize,
		m, logger.Component(log, "sweeper"),
	)

	dialogs := service.NewDialogManager(
		service.EntryGuards(whitelistSvc, sessionSvc, pricingSvc),
		whitelistSvc, paymentSvc, reconciler, fulfillmentSvc, auditSvc,
		service.DialogConfig{
			MinPhoneDigits:    cfg.Paywall.MinPhoneDigits,
			SuccessCloseDelay: cfg.Paywall.SuccessCloseDelay,
			ClosedDialogTTL:   cfg.Paywall.ClosedDialogTTL,
		},
		m, logger.Component(log, "dialogs"),
	)

	checkers = append([]ports.HealthChecker{redisStorage.NewHealthCheck(stores.Redis)}, checkers...)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Dialogs:        dialogs,
		SessionSvc:     sessionSvc,
		PaymentSvc:     paymentSvc,
		CallbackSvc:    callbackSvc,
		TokenSvc:       service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Issuer),
		Signer:         service.NewHMACSignatureService(),
		Cookie:         cfg.Cookie,
		CallbackToken:  cfg.Callback.Token,
		RateLimitStore: rateLimitStore,
		HealthCheckers: checkers,
		AuditSvc:       auditSvc,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Logger:         log,
	})

	return &App{
		Router:  router,
		Dialogs: dialogs,
		Sweeper: sweeper,
		Audit:   auditSvc,
		Metrics: m,
	}
}

// Shutdown stops in-flight dialogs, then drains pending audit writes.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Dialogs.Shutdown(ctx)
	a.Audit.Wait()
	return err
}
