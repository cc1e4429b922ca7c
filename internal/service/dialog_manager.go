package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/internal/metrics"
	"mpesa-paywall/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultSuccessCloseDelay = 2 * time.Second
	defaultClosedDialogTTL   = 5 * time.Minute
	abandonedDialogTTL       = time.Hour
	fulfillTimeout           = 15 * time.Second
	processingMessage        = "Check your phone and enter your M-Pesa PIN to complete the payment."
)

// DialogConfig holds the dialog timings and limits.
type DialogConfig struct {
	MinPhoneDigits    int
	SuccessCloseDelay time.Duration
	ClosedDialogTTL   time.Duration
}

// OpenRequest describes the dialog a page wants to show.
type OpenRequest struct {
	ServiceType string
	ActionType  domain.ActionType
	// FixedAmount skips every pricing lookup when set.
	FixedAmount *int64
	Payer       domain.Payer
	Purpose     domain.Purpose
}

// processJob is the immutable input of one Processing run.
type processJob struct {
	dialogID    uuid.UUID
	phone       string
	amount      int64
	serviceType string
	actionType  domain.ActionType
	payer       domain.Payer
}

// DialogManager runs the payment dialog state machine:
//
//	Input -> Processing -> {Success, Failed, VerificationTimeout}
//	Failed -> Input (retry)
//	any -> Closed
//
// Opening a dialog evaluates the entry guards first, so a dialog may start
// directly in Success or ConfigurationError. Success closes itself after
// SuccessCloseDelay and then runs fulfillment.
type DialogManager struct {
	guards      []Guard
	whitelist   ports.WhitelistService
	payments    ports.PaymentService
	reconciler  ports.Reconciler
	fulfillment ports.FulfillmentService
	audit       ports.AuditService
	metrics     *metrics.Metrics
	log         zerolog.Logger
	cfg         DialogConfig

	now       func() time.Time
	afterFunc func(time.Duration, func()) (stop func() bool)

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	dialogs map[uuid.UUID]*dialog
}

// NewDialogManager creates a new DialogManager. guards are evaluated in
// slice order; see EntryGuards.
func NewDialogManager(
	guards []Guard,
	whitelist ports.WhitelistService,
	payments ports.PaymentService,
	reconciler ports.Reconciler,
	fulfillment ports.FulfillmentService,
	audit ports.AuditService,
	cfg DialogConfig,
	m *metrics.Metrics,
	log zerolog.Logger,
) *DialogManager {
	if cfg.MinPhoneDigits <= 0 {
		cfg.MinPhoneDigits = defaultMinPhoneDigits
	}
	if cfg.SuccessCloseDelay <= 0 {
		cfg.SuccessCloseDelay = defaultSuccessCloseDelay
	}
	if cfg.ClosedDialogTTL <= 0 {
		cfg.ClosedDialogTTL = defaultClosedDialogTTL
	}

	baseCtx, stop := context.WithCancel(context.Background())
	return &DialogManager{
		guards:      guards,
		whitelist:   whitelist,
		payments:    payments,
		reconciler:  reconciler,
		fulfillment: fulfillment,
		audit:       audit,
		metrics:     m,
		log:         log,
		cfg:         cfg,
		now:         time.Now,
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
		baseCtx: baseCtx,
		stop:    stop,
		dialogs: make(map[uuid.UUID]*dialog),
	}
}

// Open creates a dialog and runs the entry guards. Missing pricing yields a
// dialog in ConfigurationError, never a free pass.
func (m *DialogManager) Open(ctx context.Context, req OpenRequest) (*domain.DialogView, error) {
	if req.ServiceType == "" {
		return nil, apperror.Validation("service type is required")
	}
	if !req.ActionType.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown action type %q", req.ActionType))
	}
	if req.FixedAmount != nil && req.Purpose.Kind != domain.PurposeNone {
		return nil, apperror.Validation("fixed amount cannot be combined with a purpose")
	}

	res, err := RunGuards(ctx, m.guards, &GuardInput{
		ServiceType: req.ServiceType,
		ActionType:  req.ActionType,
		FixedAmount: req.FixedAmount,
		Payer:       req.Payer,
		Purpose:     req.Purpose,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		switch apperror.CodeOf(err) {
		case apperror.CodeInvalidRequest, apperror.CodeInvalidAmount:
			return nil, err
		}
	}

	now := m.now()
	d := &dialog{
		id:          uuid.New(),
		serviceType: req.ServiceType,
		actionType:  req.ActionType,
		payer:       req.Payer,
		purpose:     req.Purpose,
		updatedAt:   now,
	}

	m.mu.Lock()
	m.purgeLocked(now)
	m.dialogs[d.id] = d
	switch {
	case err != nil:
		d.toConfigError(err, now)
	case res.PaymentRequired():
		d.amount = res.Amount
		d.toInput(now)
	default:
		d.amount = res.Amount
		m.succeedLocked(d, res.Bypass, m.cfg.SuccessCloseDelay)
	}
	if res != nil && res.Guard == fixedAmountGuardName {
		d.clientPriced = true
	}
	view := d.view()
	m.mu.Unlock()

	m.metrics.DialogOpened()

	log := m.log.With().Str("dialog_id", d.id.String()).Logger()
	evt := log.Info().
		Str("service_type", req.ServiceType).
		Str("action_type", string(req.ActionType)).
		Str("state", string(view.State)).
		Int64("amount", view.Amount)
	if res != nil {
		evt = evt.Str("guard", res.Guard).Str("bypass", string(res.Bypass))
	}
	if err != nil {
		evt = evt.AnErr("guard_error", err)
	}
	evt.Msg("dialog opened")

	action := domain.AuditActionDialogOpen
	if view.State == domain.DialogStateSuccess {
		action = domain.AuditActionPaymentBypassed
	}
	m.auditLog(ctx, action, req.Payer, view)

	return view, nil
}

// Get returns the current dialog view.
func (m *DialogManager) Get(_ context.Context, id uuid.UUID) (*domain.DialogView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgeLocked(m.now())
	d, ok := m.dialogs[id]
	if !ok {
		return nil, apperror.ErrNotFound("dialog")
	}
	return d.view(), nil
}

// CheckPhone is the live whitelist check while the payer types. A match
// succeeds and closes the dialog immediately; too few digits is a no-op.
func (m *DialogManager) CheckPhone(ctx context.Context, id uuid.UUID, phone string) (*domain.DialogView, error) {
	m.mu.Lock()
	d, ok := m.dialogs[id]
	if !ok {
		m.mu.Unlock()
		return nil, apperror.ErrNotFound("dialog")
	}
	if d.state != domain.DialogStateInput {
		view := d.view()
		m.mu.Unlock()
		return view, apperror.ErrInvalidTransition(string(view.State), "check phone")
	}
	if len(domain.PhoneDigits(phone)) < m.cfg.MinPhoneDigits {
		view := d.view()
		m.mu.Unlock()
		return view, nil
	}
	m.mu.Unlock()

	whitelisted := m.whitelist.IsWhitelisted(ctx, phone)

	m.mu.Lock()
	defer m.mu.Unlock()
	if whitelisted && d.state == domain.DialogStateInput {
		d.phone = domain.ToMSISDN(phone)
		m.succeedLocked(d, domain.BypassWhitelistPhone, 0)
		m.log.Info().Str("dialog_id", id.String()).Msg("phone whitelisted, payment bypassed")
	}
	return d.view(), nil
}

// Submit moves Input to Processing and starts the initiate-then-poll run in
// the background. An implausible phone keeps the dialog in Input with a
// field error.
func (m *DialogManager) Submit(ctx context.Context, id uuid.UUID, phone string) (*domain.DialogView, error) {
	m.mu.Lock()
	d, ok := m.dialogs[id]
	if !ok {
		m.mu.Unlock()
		return nil, apperror.ErrNotFound("dialog")
	}
	if d.state != domain.DialogStateInput {
		view := d.view()
		m.mu.Unlock()
		return view, apperror.ErrInvalidTransition(string(view.State), "submit")
	}
	if len(domain.PhoneDigits(phone)) < m.cfg.MinPhoneDigits {
		e := apperror.ErrInvalidPhone()
		d.fieldError, d.errorCode = e.Message, e.Code
		d.updatedAt = m.now()
		view := d.view()
		m.mu.Unlock()
		return view, nil
	}
	m.mu.Unlock()

	whitelisted := m.whitelist.IsWhitelisted(ctx, phone)

	m.mu.Lock()
	if d.state != domain.DialogStateInput {
		view := d.view()
		m.mu.Unlock()
		return view, apperror.ErrInvalidTransition(string(view.State), "submit")
	}
	d.phone = domain.ToMSISDN(phone)
	if whitelisted {
		m.succeedLocked(d, domain.BypassWhitelistPhone, 0)
		view := d.view()
		m.mu.Unlock()
		m.auditLog(ctx, domain.AuditActionPaymentBypassed, d.payer, view)
		return view, nil
	}

	runCtx, cancel := context.WithCancel(m.baseCtx)
	d.cancel = cancel
	d.setState(domain.DialogStateProcessing, m.now())
	d.message, d.errorCode, d.fieldError = processingMessage, "", ""
	job := processJob{
		dialogID:    d.id,
		phone:       d.phone,
		amount:      d.amount,
		serviceType: d.serviceType,
		actionType:  d.actionType,
		payer:       d.payer,
	}
	view := d.view()
	m.wg.Add(1)
	m.mu.Unlock()

	go m.process(runCtx, cancel, job)

	m.auditLog(ctx, domain.AuditActionPaymentSubmit, job.payer, view)
	return view, nil
}

// process drives the initiator then the reconciler for one Processing run.
// Every state write checks that the run was not cancelled by Close.
func (m *DialogManager) process(ctx context.Context, cancel context.CancelFunc, job processJob) {
	defer m.wg.Done()
	defer cancel()

	log := m.log.With().Str("dialog_id", job.dialogID.String()).Logger()

	res, err := m.payments.InitiatePayment(ctx, ports.InitiateRequest{
		PhoneNumber: job.phone,
		Amount:      job.amount,
		ServiceType: job.serviceType,
		ActionType:  job.actionType,
		UserID:      job.payer.UserID,
		UserEmail:   job.payer.UserEmail,
	})
	if err != nil {
		log.Warn().Err(err).Msg("initiate payment failed")
		m.updateProcessing(ctx, job.dialogID, func(d *dialog, now time.Time) {
			d.toFailed(err, now)
		})
		return
	}

	// The ids are already persisted by the initiator; polling may start.
	if !m.updateProcessing(ctx, job.dialogID, func(d *dialog, _ time.Time) {
		id := res.TransactionID
		d.transactionID = &id
		d.checkoutRequestID = res.CheckoutRequestID
	}) {
		return
	}

	outcome, err := m.reconciler.PollForResult(ctx, ports.PollRequest{
		TransactionID:     res.TransactionID,
		CheckoutRequestID: res.CheckoutRequestID,
		ClientID:          job.payer.ClientID,
		ServiceType:       job.serviceType,
		ActionType:        job.actionType,
		PhoneNumber:       job.phone,
	})
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Msg("poll for result failed")
		}
		m.updateProcessing(ctx, job.dialogID, func(d *dialog, now time.Time) {
			d.toFailed(err, now)
		})
		return
	}

	log.Info().Str("outcome", string(outcome.Kind)).Int("attempts", outcome.Attempts).Msg("payment outcome")

	m.updateProcessing(ctx, job.dialogID, func(d *dialog, now time.Time) {
		switch outcome.Kind {
		case domain.OutcomeSuccess:
			d.receiptNumber = outcome.MpesaReceiptNumber
			m.succeedLocked(d, domain.BypassNone, m.cfg.SuccessCloseDelay)
		case domain.OutcomeFailed:
			d.toFailed(apperror.ErrPaymentFailed(outcome.ResultDesc), now)
		default:
			d.toTimeout(now)
		}
	})
}

// updateProcessing applies fn if the run is still live and the dialog is
// still Processing. It reports whether fn ran.
func (m *DialogManager) updateProcessing(ctx context.Context, id uuid.UUID, fn func(d *dialog, now time.Time)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ctx.Err() != nil {
		return false
	}
	d, ok := m.dialogs[id]
	if !ok || d.state != domain.DialogStateProcessing {
		return false
	}
	fn(d, m.now())
	return true
}

// Retry moves a Failed dialog back to Input.
func (m *DialogManager) Retry(_ context.Context, id uuid.UUID) (*domain.DialogView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.dialogs[id]
	if !ok {
		return nil, apperror.ErrNotFound("dialog")
	}
	if d.state != domain.DialogStateFailed {
		return d.view(), apperror.ErrInvalidTransition(string(d.state), "retry")
	}
	d.toInput(m.now())
	return d.view(), nil
}

// Close dismisses the dialog from any state. Closing while Processing needs
// confirm because the payer may still be charged; the poller is stopped and
// writes nothing further. Closing a Success dialog runs fulfillment.
func (m *DialogManager) Close(ctx context.Context, id uuid.UUID, confirm bool) (*domain.DialogView, error) {
	m.mu.Lock()
	d, ok := m.dialogs[id]
	if !ok {
		m.mu.Unlock()
		return nil, apperror.ErrNotFound("dialog")
	}
	if d.state == domain.DialogStateClosed {
		view := d.view()
		m.mu.Unlock()
		return view, nil
	}
	if d.state == domain.DialogStateProcessing && !confirm {
		view := d.view()
		m.mu.Unlock()
		return view, apperror.ErrConfirmRequired()
	}
	wasProcessing := d.state == domain.DialogStateProcessing
	completion := m.closeLocked(d)
	view := d.view()
	payer := d.payer
	m.mu.Unlock()

	m.log.Info().
		Str("dialog_id", id.String()).
		Bool("while_processing", wasProcessing).
		Msg("dialog closed")
	m.afterClose(completion)
	m.auditLog(ctx, domain.AuditActionDialogClose, payer, view)
	return view, nil
}

// Shutdown stops every running poller and waits for them to exit.
func (m *DialogManager) Shutdown(ctx context.Context) error {
	m.stop()

	m.mu.Lock()
	for _, d := range m.dialogs {
		if d.stopClose != nil {
			d.stopClose()
		}
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// succeedLocked moves d to Success and schedules the auto-close.
func (m *DialogManager) succeedLocked(d *dialog, bypass domain.BypassReason, delay time.Duration) {
	d.toSuccess(bypass, m.now())
	if bypass != domain.BypassNone {
		m.metrics.ObserveBypass(string(bypass))
	}
	id := d.id
	d.stopClose = m.afterFunc(delay, func() { m.autoClose(id) })
}

func (m *DialogManager) autoClose(id uuid.UUID) {
	m.mu.Lock()
	d, ok := m.dialogs[id]
	if !ok || d.state != domain.DialogStateSuccess {
		m.mu.Unlock()
		return
	}
	d.stopClose = nil
	completion := m.closeLocked(d)
	m.mu.Unlock()

	m.afterClose(completion)
}

// closeLocked closes d and returns its completion if it had succeeded.
func (m *DialogManager) closeLocked(d *dialog) *domain.Completion {
	var c *domain.Completion
	if d.state == domain.DialogStateSuccess {
		c = d.completion()
	}
	d.toClosed(m.now())
	return c
}

func (m *DialogManager) afterClose(c *domain.Completion) {
	m.metrics.DialogClosed()
	if c == nil || m.fulfillment == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(m.baseCtx), fulfillTimeout)
	defer cancel()
	if err := m.fulfillment.Fulfill(ctx, c); err != nil {
		m.log.Error().
			Err(err).
			Str("dialog_id", c.DialogID.String()).
			Str("purpose", string(c.Purpose.Kind)).
			Str("reference_id", c.Purpose.ReferenceID).
			Msg("fulfillment failed")
	}
}

// purgeLocked forgets closed dialogs after ClosedDialogTTL and dialogs left
// idle outside Processing for an hour.
func (m *DialogManager) purgeLocked(now time.Time) {
	for id, d := range m.dialogs {
		switch {
		case d.state == domain.DialogStateClosed:
			if now.Sub(d.closedAt) > m.cfg.ClosedDialogTTL {
				delete(m.dialogs, id)
			}
		case d.state == domain.DialogStateProcessing:
		case now.Sub(d.updatedAt) > abandonedDialogTTL:
			if d.stopClose != nil {
				d.stopClose()
			}
			delete(m.dialogs, id)
			m.metrics.DialogClosed()
		}
	}
}

func (m *DialogManager) auditLog(ctx context.Context, action domain.AuditAction, payer domain.Payer, view *domain.DialogView) {
	if m.audit == nil {
		return
	}
	var userID *string
	if payer.UserID != "" {
		uid := payer.UserID
		userID = &uid
	}
	m.audit.Log(ctx, &domain.AuditLog{
		UserID:       userID,
		ClientID:     payer.ClientID,
		Action:       action,
		ResourceType: "dialog",
		ResourceID:   view.ID.String(),
		Details: fmt.Sprintf(`{"state":%q,"service_type":%q,"action_type":%q,"amount":%d,"bypass":%q}`,
			view.State, view.ServiceType, view.ActionType, view.Amount, view.Bypass),
	})
}
