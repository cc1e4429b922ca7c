package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mpesa-paywall/internal/adapter/http/middleware"
	redisStore "mpesa-paywall/internal/adapter/storage/redis"
	"mpesa-paywall/internal/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitRouter(store *redisStore.RateLimitStore, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute}

	r.GET("/test", func(c *gin.Context) {
		if cid := c.GetHeader("X-Test-Client"); cid != "" {
			c.Set(middleware.CtxClientID, cid)
		}
		c.Next()
	}, middleware.RateLimiter(store, "test", rule, m, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}

func newStore(t *testing.T) *redisStore.RateLimitStore {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redisStore.NewRateLimitStore(client)
}

func doGet(router *gin.Engine, clientID string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), "GET", "/test", nil)
	if clientID != "" {
		req.Header.Set("X-Test-Client", clientID)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	router := setupRateLimitRouter(newStore(t), nil)

	for i := 0; i < 3; i++ {
		w := doGet(router, "")
		assert.Equal(t, 200, w.Code, "request %d should succeed", i+1)
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	router := setupRateLimitRouter(newStore(t), m)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, doGet(router, "").Code)
	}

	w := doGet(router, "")
	assert.Equal(t, 429, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitHitsTotal.WithLabelValues("test")))
}

func TestRateLimiter_KeysByClientID(t *testing.T) {
	router := setupRateLimitRouter(newStore(t), nil)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, doGet(router, "client-a").Code)
	}
	assert.Equal(t, 429, doGet(router, "client-a").Code)

	// Independent counter for another client
	assert.Equal(t, 200, doGet(router, "client-b").Code)
}

func TestDefaultRateLimitRules(t *testing.T) {
	rules := middleware.DefaultRateLimitRules()
	assert.Equal(t, int64(30), rules["dialogs_open"].Limit)
	assert.Equal(t, int64(10), rules["dialogs_submit"].Limit)
	assert.Equal(t, int64(120), rules["dialogs"].Limit)
	assert.Equal(t, int64(60), rules["paid_sessions"].Limit)
	assert.Equal(t, int64(60), rules["transactions"].Limit)
	assert.Equal(t, int64(300), rules["callback"].Limit)
}
