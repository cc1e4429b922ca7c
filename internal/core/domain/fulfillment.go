package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobApplication is an application submitted once its fee is settled.
// ApplicationFee is 0 when the application was free or exempt.
type JobApplication struct {
	ID             uuid.UUID  `json:"id"`
	JobID          string     `json:"job_id"`
	ApplicantID    *string    `json:"applicant_id,omitempty"`
	ApplicantEmail *string    `json:"applicant_email,omitempty"`
	ApplicationFee int64      `json:"application_fee"`
	TransactionID  *uuid.UUID `json:"transaction_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
