package models

import (
	"time"

	"github.com/google/uuid"
)

type IngestionStatus string

const (
	IngestionStatusRunning   IngestionStatus = "running"
	IngestionStatusCompleted IngestionStatus = "completed"
	IngestionStatusFailed    IngestionStatus = "failed"
)

// IngestionRun tracks one upload through the pipeline. A run that never
// reaches completed must be read as not applied, whatever rows it managed to
// write before failing.
type IngestionRun struct {
	BaseUUIDModel
	Platform  Platform        `gorm:"type:text;not null"                   json:"platform"`
	ProfileID *uuid.UUID      `gorm:"type:uuid;index"                      json:"profileId,omitempty"`
	Status    IngestionStatus `gorm:"type:text;not null;default:'running'" json:"status"`

	UsageDaysWritten int `gorm:"type:int;default:0" json:"usageDaysWritten"`
	MatchesWritten   int `gorm:"type:int;default:0" json:"matchesWritten"`
	MessagesWritten  int `gorm:"type:int;default:0" json:"messagesWritten"`

	ErrorMessage *string    `gorm:"type:text"      json:"errorMessage,omitempty"`
	CompletedAt  *time.Time `gorm:"type:timestamp" json:"completedAt,omitempty"`
}

// MarkAsCompleted records the write counts and completion time.
func (r *IngestionRun) MarkAsCompleted(usageDays, matches, messages int) {
	now := time.Now()
	r.Status = IngestionStatusCompleted
	r.UsageDaysWritten = usageDays
	r.MatchesWritten = matches
	r.MessagesWritten = messages
	r.CompletedAt = &now
}

// MarkAsFailed records the failure reason.
func (r *IngestionRun) MarkAsFailed(err error) {
	now := time.Now()
	msg := err.Error()
	r.Status = IngestionStatusFailed
	r.ErrorMessage = &msg
	r.CompletedAt = &now
}
