package domain

import (
	"time"

	"github.com/google/uuid"
)

// StudentProfile holds per-student progression state. It is optional:
// the award path touches LastActivity best-effort, and a missing
// profile never fails an award.
type StudentProfile struct {
	ID           uuid.UUID  `json:"id"`
	AccountID    uuid.UUID  `json:"account_id"`
	Level        int        `json:"level"`
	Streak       int        `json:"streak"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
