package service

import (
	"context"
	"fmt"
	"time"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/pkg/apperror"

	"github.com/rs/zerolog"
)

// DefaultSessionTTL is how long a paid session suppresses re-prompting.
const DefaultSessionTTL = 3 * time.Hour

// SessionServiceImpl implements ports.SessionService.
type SessionServiceImpl struct {
	store ports.SessionStore
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
}

// NewSessionService creates a new SessionServiceImpl. A zero ttl means
// DefaultSessionTTL.
func NewSessionService(store ports.SessionStore, ttl time.Duration, log zerolog.Logger) *SessionServiceImpl {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionServiceImpl{store: store, ttl: ttl, now: time.Now, log: log}
}

// HasActivePaidSession reports whether the client paid for this action
// within the window. Expiry is checked at read time; any store error reads
// as "no session" so the client is prompted to pay.
func (s *SessionServiceImpl) HasActivePaidSession(ctx context.Context, clientID, serviceType string, action domain.ActionType) bool {
	if clientID == "" {
		return false
	}
	session, err := s.store.Get(ctx, clientID, serviceType, action)
	if err != nil {
		s.log.Warn().Err(err).Str("client_id", clientID).Msg("paid session lookup failed")
		return false
	}
	if session == nil {
		return false
	}
	return session.IsActive(s.now())
}

// RecordPaymentSession stores a marker valid for ttl from now. Phone and
// transaction id are metadata only.
func (s *SessionServiceImpl) RecordPaymentSession(ctx context.Context, clientID, serviceType string, action domain.ActionType, phoneNumber, transactionID string) error {
	if clientID == "" {
		return apperror.Validation("client id is required to record a paid session")
	}
	now := s.now().UTC()
	session := &domain.PaidSession{
		ClientID:      clientID,
		ServiceType:   serviceType,
		ActionType:    action,
		PhoneNumber:   phoneNumber,
		TransactionID: transactionID,
		RecordedAt:    now,
		ExpiresAt:     now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		return apperror.ErrStoreUnavailable(fmt.Errorf("save paid session: %w", err))
	}
	return nil
}
