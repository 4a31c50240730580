package models

import (
	"time"

	"swimops/src/types"

	"github.com/google/uuid"
)

type TimeOffRequest struct {
	ID           uuid.UUID           `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	InstructorID uuid.UUID           `gorm:"type:uuid;index" json:"instructor_id,omitempty"`
	StartDate    time.Time           `json:"start_date,omitempty"`
	EndDate      time.Time           `json:"end_date,omitempty"`
	IsAllDay     bool                `gorm:"default:true" json:"is_all_day"`
	ReasonType   types.TimeOffReason `gorm:"default:'other'" json:"reason_type,omitempty"`
	Reason       string              `json:"reason,omitempty"`
	Status       types.TimeOffStatus `gorm:"default:'pending'" json:"status,omitempty"`
	AdminNotes   *string             `json:"admin_notes,omitempty"`
	ReviewedBy   *uuid.UUID          `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time          `json:"reviewed_at,omitempty"`

	Instructor Profile  `gorm:"foreignKey:instructor_id" json:"instructor,omitempty"`
	Reviewer   *Profile `gorm:"foreignKey:reviewed_by" json:"reviewer,omitempty"`

	types.Timestamps
}

// OverlapsRange reports whether the request intersects [start, end].
func (t *TimeOffRequest) OverlapsRange(start, end time.Time) bool {
	return !t.StartDate.After(end) && !t.EndDate.Before(start)
}
