package handler

import (
	"crypto/subtle"
	"net/http"

	"mpesa-paywall/internal/adapter/http/dto"
	"mpesa-paywall/internal/adapter/http/middleware"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/pkg/apperror"
	"mpesa-paywall/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentHandler handles transaction lookups and the M-Pesa callback.
type PaymentHandler struct {
	paymentSvc    ports.PaymentService
	callbackSvc   ports.CallbackService
	callbackToken string
	log           zerolog.Logger
}

// NewPaymentHandler creates a new PaymentHandler. With an empty callbackToken
// every callback is rejected.
func NewPaymentHandler(paymentSvc ports.PaymentService, callbackSvc ports.CallbackService, callbackToken string, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentSvc:    paymentSvc,
		callbackSvc:   callbackSvc,
		callbackToken: callbackToken,
		log:           log,
	}
}

// GetTransaction handles GET /api/v1/transactions/:id. Callers only see
// transactions recorded under their own user id; anything else is reported
// as not found.
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound("transaction"))
		return
	}

	tx, err := h.paymentSvc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	caller := c.GetString(middleware.CtxUserID)
	if caller == "" || tx.UserID == nil || *tx.UserID != caller {
		h.log.Warn().
			Str("transaction_id", id.String()).
			Str("user_id", caller).
			Msg("transaction lookup denied: not the owner")
		response.Error(c, apperror.ErrNotFound("transaction"))
		return
	}

	response.OK(c, dto.NewTransactionResponse(tx))
}

// MpesaCallback handles POST /api/v1/mpesa/callback?token=...
// Once the callback is stored it is acknowledged with ResultCode 0 so the
// gateway stops retrying, duplicates included.
func (h *PaymentHandler) MpesaCallback(c *gin.Context) {
	if h.callbackToken == "" {
		h.log.Error().Str("client_ip", c.ClientIP()).Msg("callback rejected: no callback token configured")
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	token := c.Query("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.callbackToken)) != 1 {
		h.log.Warn().Str("client_ip", c.ClientIP()).Msg("callback rejected: bad token")
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	var env dto.STKCallbackEnvelope
	if err := binding.JSON.BindBody(raw, &env); err != nil {
		h.log.Warn().Err(err).Msg("callback rejected: invalid body")
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.callbackSvc.HandleCallback(c.Request.Context(), env.ToDomain(raw)); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CallbackAck{ResultCode: 0, ResultDesc: "Accepted"})
}
