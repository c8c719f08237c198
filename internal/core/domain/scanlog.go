package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScanLog records a single teacher-scans-student award event. It is the
// audit trail backing dashboard trends, with a lifecycle independent of
// the ledger, though within one award both are written, never one
// without the other.
type ScanLog struct {
	ID        uuid.UUID `json:"id"`
	StudentID uuid.UUID `json:"student_id"`
	TeacherID uuid.UUID `json:"teacher_id"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}
