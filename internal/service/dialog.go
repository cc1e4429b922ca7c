package service

import (
	"context"
	"errors"
	"time"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/pkg/apperror"

	"github.com/google/uuid"
)

const genericFailureMessage = "Payment failed. Please try again."

// bypassMessages give every auto-success a reason the payer can read.
var bypassMessages = map[domain.BypassReason]string{
	domain.BypassNone:           "Payment confirmed. Thank you!",
	domain.BypassPaidSession:    "You already paid for this recently.",
	domain.BypassWhitelistEmail: "Your account is exempt from payment.",
	domain.BypassWhitelistPhone: "This phone number is exempt from payment.",
	domain.BypassPaused:         "Payments are currently not required.",
	domain.BypassFree:           "This is free. No payment needed.",
}

// dialog is one payment dialog. All fields are guarded by DialogManager.mu.
type dialog struct {
	id          uuid.UUID
	state       domain.DialogState
	serviceType string
	actionType  domain.ActionType
	amount      int64
	bypass      domain.BypassReason
	payer       domain.Payer
	purpose     domain.Purpose

	// clientPriced marks an amount taken from the open request.
	clientPriced bool

	phone      string
	message    string
	errorCode  string
	fieldError string

	transactionID     *uuid.UUID
	checkoutRequestID string
	receiptNumber     string

	// cancel stops the in-flight initiate/poll run, if any.
	cancel context.CancelFunc
	// stopClose cancels the pending success auto-close.
	stopClose func() bool

	updatedAt time.Time
	closedAt  time.Time
}

func (d *dialog) view() *domain.DialogView {
	v := &domain.DialogView{
		ID:                d.id,
		State:             d.state,
		ServiceType:       d.serviceType,
		ActionType:        d.actionType,
		Amount:            d.amount,
		Bypass:            d.bypass,
		Message:           d.message,
		ErrorCode:         d.errorCode,
		FieldError:        d.fieldError,
		Retryable:         d.state == domain.DialogStateFailed,
		CheckoutRequestID: d.checkoutRequestID,
		ReceiptNumber:     d.receiptNumber,
		UpdatedAt:         d.updatedAt,
	}
	if d.transactionID != nil {
		id := *d.transactionID
		v.TransactionID = &id
	}
	return v
}

func (d *dialog) setState(s domain.DialogState, now time.Time) {
	d.state = s
	d.updatedAt = now
}

func (d *dialog) toInput(now time.Time) {
	d.setState(domain.DialogStateInput, now)
	d.message, d.errorCode, d.fieldError = "", "", ""
	d.transactionID, d.checkoutRequestID, d.receiptNumber = nil, "", ""
	d.cancel = nil
}

func (d *dialog) toSuccess(bypass domain.BypassReason, now time.Time) {
	d.setState(domain.DialogStateSuccess, now)
	d.bypass = bypass
	d.message = bypassMessages[bypass]
	d.errorCode, d.fieldError = "", ""
}

// toFailed surfaces AppError messages verbatim; anything else gets the
// generic fallback.
func (d *dialog) toFailed(err error, now time.Time) {
	d.setState(domain.DialogStateFailed, now)
	d.message = genericFailureMessage
	d.errorCode = apperror.CodeInternal
	if appErr, ok := asAppError(err); ok {
		d.message = appErr.Message
		d.errorCode = appErr.Code
	}
}

func (d *dialog) toTimeout(now time.Time) {
	d.setState(domain.DialogStateTimeout, now)
	e := apperror.ErrVerificationTimeout()
	d.message, d.errorCode = e.Message, e.Code
}

func (d *dialog) toConfigError(err error, now time.Time) {
	d.setState(domain.DialogStateConfigError, now)
	e := apperror.ErrPricingMissing(d.serviceType)
	if appErr, ok := asAppError(err); ok {
		e = appErr
	}
	d.message, d.errorCode = e.Message, e.Code
}

func (d *dialog) toClosed(now time.Time) {
	d.setState(domain.DialogStateClosed, now)
	d.closedAt = now
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.stopClose != nil {
		d.stopClose()
		d.stopClose = nil
	}
}

func (d *dialog) completion() *domain.Completion {
	c := &domain.Completion{
		DialogID:    d.id,
		ServiceType: d.serviceType,
		ActionType:  d.actionType,
		Amount:      d.amount,
		Bypass:      d.bypass,
		PhoneNumber: d.phone,
		Payer:       d.payer,
		Purpose:     d.purpose,

		ClientPriced: d.clientPriced,
	}
	if d.transactionID != nil {
		id := *d.transactionID
		c.TransactionID = &id
	}
	return c
}

func asAppError(err error) (*apperror.AppError, bool) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
