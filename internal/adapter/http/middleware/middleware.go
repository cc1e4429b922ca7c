package middleware

import (
	"net/http"
	"strings"
	"time"

	"mpesa-paywall/config"
	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/pkg/apperror"
	"mpesa-paywall/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID = "X-Request-ID"

	// Context keys
	CtxUserID    = "user_id"
	CtxUserEmail = "user_email"
	CtxClientID  = "client_id"

	clientCookieMaxAge = 365 * 24 * 60 * 60
)

// ValueSigner signs and opens cookie values.
type ValueSigner interface {
	SignValue(secretKey, value string) string
	OpenValue(secretKey, signed string) (string, bool)
}

// RequestID propagates X-Request-ID or generates one, and exposes it to the
// response envelope.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.New().String()
		}
		c.Set(response.CtxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// ClientCookie makes sure every paywall request carries a stable anonymous
// client id. Paid sessions are keyed by it. The cookie value is HMAC signed
// so a client cannot claim another client's sessions.
func ClientCookie(signer ValueSigner, cfg config.CookieConfig, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(cfg.Name); err == nil && raw != "" {
			if id, ok := signer.OpenValue(cfg.Secret, raw); ok {
				c.Set(CtxClientID, id)
				c.Next()
				return
			}
			log.Debug().Str("client_ip", c.ClientIP()).Msg("rejected tampered client cookie")
		}

		id := uuid.New().String()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.Name, signer.SignValue(cfg.Secret, id), clientCookieMaxAge, "/", "", cfg.Secure, true)
		c.Set(CtxClientID, id)
		c.Next()
	}
}

// JWTAuth rejects requests without a valid marketplace token.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		claims, err := tokenSvc.Validate(tokenStr)
		if err != nil {
			log.Debug().Err(err).Msg("token rejected")
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth attaches the user identity when a valid token is present.
// Anonymous payers are allowed; an invalid token is treated as absent.
func OptionalJWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			claims, err := tokenSvc.Validate(tokenStr)
			if err != nil {
				log.Debug().Err(err).Msg("ignoring invalid token")
			} else {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) < 8 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return "", false
	}
	return authHeader[7:], true
}

func setClaims(c *gin.Context, claims *ports.TokenClaims) {
	if claims.UserID != "" {
		c.Set(CtxUserID, claims.UserID)
	}
	if claims.Email != "" {
		c.Set(CtxUserEmail, claims.Email)
	}
}

// PayerFrom collects the payer identity set by ClientCookie and the JWT
// middlewares.
func PayerFrom(c *gin.Context) domain.Payer {
	return domain.Payer{
		ClientID:  c.GetString(CtxClientID),
		UserID:    c.GetString(CtxUserID),
		UserEmail: c.GetString(CtxUserEmail),
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("request_id", c.GetString(response.CtxRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": apperror.CodeInternal,
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
