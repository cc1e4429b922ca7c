package middleware

import (
	"encoding/json"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuditLog creates an audit middleware for the route-level actions the
// services do not audit themselves: dialog retries and operator lookups of
// transactions. Only successful responses are recorded.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var userID *string
		if uid := c.GetString(CtxUserID); uid != "" {
			userID = &uid
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetString(response.CtxRequestID),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			UserID:       userID,
			ClientID:     c.GetString(CtxClientID),
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   c.Param("id"),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
		})
	}
}

// mapRouteToAction matches on the registered route template, so path
// parameters do not matter.
func mapRouteToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/api/v1/dialogs/:id/retry" && method == "POST":
		return domain.AuditActionDialogRetry, "dialog"
	case route == "/api/v1/transactions/:id" && method == "GET":
		return domain.AuditActionTransactionView, "transaction"
	}
	return "", ""
}
