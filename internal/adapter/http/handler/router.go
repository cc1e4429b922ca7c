package handler

import (
	"net/http"

	"mpesa-paywall/config"
	"mpesa-paywall/internal/adapter/http/middleware"
	redisStore "mpesa-paywall/internal/adapter/storage/redis"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	maxBodyBytes     = 64 << 10
	maxCallbackBytes = 256 << 10
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Dialogs        DialogService
	SessionSvc     ports.SessionService
	PaymentSvc     ports.PaymentService
	CallbackSvc    ports.CallbackService
	TokenSvc       ports.TokenService
	Signer         middleware.ValueSigner
	Cookie         config.CookieConfig
	CallbackToken  string
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler // nil = /metrics not exposed
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))

	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Metrics, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Gateway webhook (token in query string, no cookie) ---
	paymentHandler := NewPaymentHandler(deps.PaymentSvc, deps.CallbackSvc, deps.CallbackToken, deps.Logger)
	v1.POST("/mpesa/callback", middleware.MaxBodySize(maxCallbackBytes), rl("callback"), paymentHandler.MpesaCallback)

	// --- Paywall routes (anonymous client cookie, optional user token) ---
	paywall := v1.Group("",
		middleware.MaxBodySize(maxBodyBytes),
		middleware.ClientCookie(deps.Signer, deps.Cookie, deps.Logger),
		middleware.OptionalJWTAuth(deps.TokenSvc, deps.Logger),
	)

	dialogHandler := NewDialogHandler(deps.Dialogs)
	dialogs := paywall.Group("/dialogs")
	{
		dialogs.POST("", rl("dialogs_open"), dialogHandler.Open)
		dialogs.GET("/:id", rl("dialogs"), dialogHandler.Get)
		dialogs.POST("/:id/phone", rl("dialogs"), dialogHandler.CheckPhone)
		dialogs.POST("/:id/submit", rl("dialogs_submit"), dialogHandler.Submit)
		dialogs.POST("/:id/retry", rl("dialogs"), dialogHandler.Retry)
		dialogs.DELETE("/:id", rl("dialogs"), dialogHandler.Close)
	}

	sessionHandler := NewSessionHandler(deps.SessionSvc)
	paywall.GET("/paid-sessions/:serviceType/:actionType", rl("paid_sessions"), sessionHandler.HasActivePaidSession)

	// --- Operator routes (JWT required) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("/:id", rl("transactions"), paymentHandler.GetTransaction)
	}

	return r
}
