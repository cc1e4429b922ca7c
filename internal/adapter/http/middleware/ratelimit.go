package middleware

import (
	"fmt"
	"strconv"
	"time"

	redisStore "mpesa-paywall/internal/adapter/storage/redis"
	"mpesa-paywall/internal/metrics"
	"mpesa-paywall/pkg/apperror"
	"mpesa-paywall/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules returns the rate limits per endpoint group.
// Dialog reads are polled by the page, so "dialogs" is generous; opening and
// submitting trigger store lookups and STK pushes and are tighter.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"dialogs_open":   {Limit: 30, Window: time.Minute},
		"dialogs_submit": {Limit: 10, Window: time.Minute},
		"dialogs":        {Limit: 120, Window: time.Minute},
		"paid_sessions":  {Limit: 60, Window: time.Minute},
		"transactions":   {Limit: 60, Window: time.Minute},
		"callback":       {Limit: 300, Window: time.Minute},
	}
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group.
func RateLimiter(store *redisStore.RateLimitStore, group string, rule RateLimitRule, m *metrics.Metrics, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := extractIdentifier(c)
		key := fmt.Sprintf("%s:%s", identifier, group)

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			m.ObserveRateLimit(group)
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractIdentifier determines the rate limit key source: the signed-in
// user, then the client cookie, then the remote address.
func extractIdentifier(c *gin.Context) string {
	if uid := c.GetString(CtxUserID); uid != "" {
		return "user:" + uid
	}
	if cid := c.GetString(CtxClientID); cid != "" {
		return "client:" + cid
	}
	return "ip:" + c.ClientIP()
}
