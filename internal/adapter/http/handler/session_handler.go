package handler

import (
	"fmt"

	"mpesa-paywall/internal/adapter/http/dto"
	"mpesa-paywall/internal/adapter/http/middleware"
	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/pkg/apperror"
	"mpesa-paywall/pkg/response"

	"github.com/gin-gonic/gin"
)

// SessionHandler answers whether the caller already paid for an action.
type SessionHandler struct {
	sessions ports.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// HasActivePaidSession handles GET /api/v1/paid-sessions/:serviceType/:actionType.
// The answer is advisory: a store outage reads as "not paid".
func (h *SessionHandler) HasActivePaidSession(c *gin.Context) {
	serviceType := c.Param("serviceType")
	action, ok := domain.ParseActionType(c.Param("actionType"))
	if !ok {
		response.Error(c, apperror.Validation(fmt.Sprintf("unknown action type %q", c.Param("actionType"))))
		return
	}

	clientID := middleware.PayerFrom(c).ClientID
	active := h.sessions.HasActivePaidSession(c.Request.Context(), clientID, serviceType, action)

	response.OK(c, dto.PaidSessionResponse{
		ServiceType: serviceType,
		ActionType:  string(action),
		Active:      active,
	})
}
