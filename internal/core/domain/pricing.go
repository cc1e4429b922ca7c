package domain

import "time"

// ServicePricing holds the amount due per action for one service type.
// An amount of 0 means free; a missing record is a configuration error.
type ServicePricing struct {
	ServiceType          string    `json:"service_type"`
	ContinueAmount       int64     `json:"continue_amount"`
	VideosAmount         int64     `json:"videos_amount"`
	PostAmount           int64     `json:"post_amount"`
	JobApplicationAmount *int64    `json:"job_application_amount,omitempty"`
	UpdatedAt            time.Time `json:"updated_at"`
	UpdatedBy            string    `json:"updated_by,omitempty"`
}

// AmountFor selects the field for action. The second result is false when
// the pricing record has no value for that action.
func (p *ServicePricing) AmountFor(action ActionType) (int64, bool) {
	switch action {
	case ActionContinueAccess:
		return p.ContinueAmount, true
	case ActionViewVideos:
		return p.VideosAmount, true
	case ActionPostService:
		return p.PostAmount, true
	case ActionJobApplication:
		if p.JobApplicationAmount == nil {
			return 0, false
		}
		return *p.JobApplicationAmount, true
	}
	return 0, false
}

// GlobalPaymentSettings is the single payment enforcement switch.
type GlobalPaymentSettings struct {
	IsPaused  bool      `json:"is_paused"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// Quote is the resolved payment requirement for one (service, action).
type Quote struct {
	ServiceType string
	ActionType  ActionType
	Amount      int64
	Paused      bool
	Attempts    int
}

// PaymentRequired reports whether the caller must pay.
func (q *Quote) PaymentRequired() bool {
	return !q.Paused && q.Amount > 0
}
