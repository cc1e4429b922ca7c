package domain

import (
	"strings"
	"time"
)

// CallbackResult is what the gateway webhook reported for one checkout id.
// It is written at most once per checkout id and never updated.
type CallbackResult struct {
	CheckoutRequestID  string    `json:"checkout_request_id"`
	MerchantRequestID  string    `json:"merchant_request_id,omitempty"`
	ResultCode         *int      `json:"result_code,omitempty"`
	Status             string    `json:"status,omitempty"`
	ResultDesc         string    `json:"result_desc"`
	MpesaReceiptNumber string    `json:"mpesa_receipt_number,omitempty"`
	TransactionDate    string    `json:"transaction_date,omitempty"`
	PhoneNumber        string    `json:"phone_number,omitempty"`
	Amount             *int64    `json:"amount,omitempty"`
	RawPayload         []byte    `json:"-"`
	ReceivedAt         time.Time `json:"received_at"`
}

// IsSuccess reports whether the callback represents a completed payment.
// A present result code decides on its own: 0 is success and anything else
// is a failure, whatever Status says. Status is only read when the code is
// missing.
func (c *CallbackResult) IsSuccess() bool {
	if c.ResultCode != nil {
		return *c.ResultCode == 0
	}
	return statusIsSuccess(c.Status)
}

// StatusConflicts reports a callback whose Status disagrees with its result
// code. IsSuccess follows the code.
func (c *CallbackResult) StatusConflicts() bool {
	if c.ResultCode == nil || c.Status == "" {
		return false
	}
	return (*c.ResultCode == 0) != statusIsSuccess(c.Status)
}

func statusIsSuccess(status string) bool {
	switch strings.ToLower(status) {
	case "success", "completed":
		return true
	}
	return false
}

// ToResult converts the callback into the transaction update it implies.
func (c *CallbackResult) ToResult() TransactionResult {
	if c.IsSuccess() {
		return TransactionResult{
			Status:             TransactionStatusSuccess,
			ResultCode:         c.ResultCode,
			ResultDesc:         c.ResultDesc,
			MpesaReceiptNumber: c.MpesaReceiptNumber,
			TransactionDate:    c.TransactionDate,
		}
	}
	return TransactionResult{
		Status:     TransactionStatusFailed,
		ResultCode: c.ResultCode,
		ResultDesc: c.ResultDesc,
	}
}
