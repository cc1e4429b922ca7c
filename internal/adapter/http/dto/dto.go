package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"mpesa-paywall/internal/core/domain"
)

// OpenDialogRequest is the request body for opening a payment dialog.
type OpenDialogRequest struct {
	ServiceType string          `json:"service_type" binding:"required,max=64,safe_id"`
	ActionType  string          `json:"action_type" binding:"required,max=32"`
	FixedAmount *int64          `json:"fixed_amount,omitempty" binding:"omitempty,gte=0"`
	Purpose     *PurposeRequest `json:"purpose,omitempty"`
}

// PurposeRequest names the record a successful payment unlocks.
type PurposeRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=advertisement job_application"`
	ReferenceID string `json:"reference_id" binding:"required,max=100,safe_id"`
}

// ToDomain converts the request purpose; nil means no purpose.
func (p *PurposeRequest) ToDomain() domain.Purpose {
	if p == nil {
		return domain.Purpose{}
	}
	return domain.Purpose{Kind: domain.PurposeKind(p.Kind), ReferenceID: p.ReferenceID}
}

// PhoneRequest carries the phone number typed into the dialog.
type PhoneRequest struct {
	PhoneNumber string `json:"phone_number" binding:"max=20,phone_chars"`
}

// PaidSessionResponse answers the paid-session check.
type PaidSessionResponse struct {
	ServiceType string `json:"service_type"`
	ActionType  string `json:"action_type"`
	Active      bool   `json:"active"`
}

// TransactionResponse is the operator view of a pending transaction.
type TransactionResponse struct {
	ID                 string  `json:"id"`
	CheckoutRequestID  string  `json:"checkout_request_id,omitempty"`
	MerchantRequestID  string  `json:"merchant_request_id,omitempty"`
	PhoneNumber        string  `json:"phone_number"`
	Amount             int64   `json:"amount"`
	ServiceType        string  `json:"service_type"`
	ActionType         string  `json:"action_type"`
	Status             string  `json:"status"`
	ResultCode         *int    `json:"result_code,omitempty"`
	ResultDesc         *string `json:"result_desc,omitempty"`
	MpesaReceiptNumber *string `json:"mpesa_receipt_number,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

// NewTransactionResponse converts domain.PendingTransaction to DTO.
func NewTransactionResponse(tx *domain.PendingTransaction) TransactionResponse {
	return TransactionResponse{
		ID:                 tx.ID.String(),
		CheckoutRequestID:  tx.CheckoutRequestID,
		MerchantRequestID:  tx.MerchantRequestID,
		PhoneNumber:        tx.PhoneNumber,
		Amount:             tx.Amount,
		ServiceType:        tx.ServiceType,
		ActionType:         string(tx.ActionType),
		Status:             string(tx.Status),
		ResultCode:         tx.ResultCode,
		ResultDesc:         tx.ResultDesc,
		MpesaReceiptNumber: tx.MpesaReceiptNumber,
		CreatedAt:          tx.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:          tx.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// --- M-Pesa STK callback (Daraja) ---

// STKCallbackEnvelope is the body Daraja posts to the callback URL.
type STKCallbackEnvelope struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID" binding:"required,max=100"`
	ResultCode        *int              `json:"ResultCode" binding:"required"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

// CallbackItem values are numbers or strings depending on the field.
type CallbackItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value,omitempty"`
}

// CallbackAck is the reply Daraja expects; anything else is retried.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// ToDomain flattens the envelope into a CallbackResult. raw is kept as the
// audit payload.
func (e *STKCallbackEnvelope) ToDomain(raw []byte) *domain.CallbackResult {
	cb := e.Body.STKCallback
	res := &domain.CallbackResult{
		CheckoutRequestID: cb.CheckoutRequestID,
		MerchantRequestID: cb.MerchantRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
		RawPayload:        raw,
	}
	if cb.CallbackMetadata == nil {
		return res
	}
	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "MpesaReceiptNumber":
			res.MpesaReceiptNumber = scalarString(item.Value)
		case "TransactionDate":
			res.TransactionDate = scalarString(item.Value)
		case "PhoneNumber":
			res.PhoneNumber = scalarString(item.Value)
		case "Amount":
			if f, err := strconv.ParseFloat(scalarString(item.Value), 64); err == nil {
				amount := int64(math.Round(f))
				res.Amount = &amount
			}
		}
	}
	return res
}

// scalarString renders a JSON number or string without quotes. Numbers keep
// their literal digits, so 254708374149 does not turn into 2.54708374149e+11.
func scalarString(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return string(v)
}
