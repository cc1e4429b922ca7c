package domain

import "time"

// PaidSession is an advisory marker that a client already paid for an
// action. It is not proof of payment.
type PaidSession struct {
	ClientID      string     `json:"client_id"`
	ServiceType   string     `json:"service_type"`
	ActionType    ActionType `json:"action_type"`
	PhoneNumber   string     `json:"phone_number"`
	TransactionID string     `json:"transaction_id"`
	RecordedAt    time.Time  `json:"recorded_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

// IsActive reports whether the session is still inside its window at now.
func (s *PaidSession) IsActive(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
