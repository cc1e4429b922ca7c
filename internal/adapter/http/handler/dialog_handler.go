package handler

import (
	"context"
	"fmt"
	"strconv"

	"mpesa-paywall/internal/adapter/http/dto"
	"mpesa-paywall/internal/adapter/http/middleware"
	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/service"
	"mpesa-paywall/pkg/apperror"
	"mpesa-paywall/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DialogService is the payment dialog state machine as the HTTP layer sees it.
// *service.DialogManager implements it.
type DialogService interface {
	Open(ctx context.Context, req service.OpenRequest) (*domain.DialogView, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.DialogView, error)
	CheckPhone(ctx context.Context, id uuid.UUID, phone string) (*domain.DialogView, error)
	Submit(ctx context.Context, id uuid.UUID, phone string) (*domain.DialogView, error)
	Retry(ctx context.Context, id uuid.UUID) (*domain.DialogView, error)
	Close(ctx context.Context, id uuid.UUID, confirm bool) (*domain.DialogView, error)
}

// DialogHandler handles the payment dialog endpoints.
type DialogHandler struct {
	dialogs DialogService
}

// NewDialogHandler creates a new DialogHandler.
func NewDialogHandler(dialogs DialogService) *DialogHandler {
	return &DialogHandler{dialogs: dialogs}
}

// Open handles POST /api/v1/dialogs.
func (h *DialogHandler) Open(c *gin.Context) {
	var req dto.OpenDialogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	action, ok := domain.ParseActionType(req.ActionType)
	if !ok {
		response.Error(c, apperror.Validation(fmt.Sprintf("unknown action type %q", req.ActionType)))
		return
	}

	view, err := h.dialogs.Open(c.Request.Context(), service.OpenRequest{
		ServiceType: req.ServiceType,
		ActionType:  action,
		FixedAmount: req.FixedAmount,
		Payer:       middleware.PayerFrom(c),
		Purpose:     req.Purpose.ToDomain(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, view)
}

// Get handles GET /api/v1/dialogs/:id.
func (h *DialogHandler) Get(c *gin.Context) {
	id, ok := dialogID(c)
	if !ok {
		return
	}

	view, err := h.dialogs.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, view)
}

// CheckPhone handles POST /api/v1/dialogs/:id/phone.
func (h *DialogHandler) CheckPhone(c *gin.Context) {
	id, ok := dialogID(c)
	if !ok {
		return
	}
	var req dto.PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	view, err := h.dialogs.CheckPhone(c.Request.Context(), id, req.PhoneNumber)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, view)
}

// Submit handles POST /api/v1/dialogs/:id/submit. Payment continues in the
// background, so a dialog that moved to Processing answers 202.
func (h *DialogHandler) Submit(c *gin.Context) {
	id, ok := dialogID(c)
	if !ok {
		return
	}
	var req dto.PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	view, err := h.dialogs.Submit(c.Request.Context(), id, req.PhoneNumber)
	if err != nil {
		response.Error(c, err)
		return
	}

	if view.State == domain.DialogStateProcessing {
		response.Accepted(c, view)
		return
	}
	response.OK(c, view)
}

// Retry handles POST /api/v1/dialogs/:id/retry.
func (h *DialogHandler) Retry(c *gin.Context) {
	id, ok := dialogID(c)
	if !ok {
		return
	}

	view, err := h.dialogs.Retry(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, view)
}

// Close handles DELETE /api/v1/dialogs/:id?confirm=true.
func (h *DialogHandler) Close(c *gin.Context) {
	id, ok := dialogID(c)
	if !ok {
		return
	}
	confirm := false
	if raw := c.Query("confirm"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, apperror.Validation("confirm must be a boolean"))
			return
		}
		confirm = v
	}

	view, err := h.dialogs.Close(c.Request.Context(), id, confirm)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, view)
}

func dialogID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound("dialog"))
		return uuid.Nil, false
	}
	return id, true
}

var _ DialogService = (*service.DialogManager)(nil)
