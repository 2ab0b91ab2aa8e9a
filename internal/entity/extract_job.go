package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractJob represents one processing attempt of a source file.
type ExtractJob struct {
	ID           uuid.UUID  `json:"id"`
	FileID       uuid.UUID  `json:"file_id"`
	BillID       *uuid.UUID `json:"bill_id,omitempty"`
	Format       string     `json:"format"`
	Status       string     `json:"status"`
	Method       *string    `json:"method,omitempty"`
	Source       *string    `json:"source,omitempty"`
	Confidence   *float32   `json:"confidence,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	DurationMS   *int64     `json:"duration_ms,omitempty"`
}
