package models

import (
	"time"

	"swimops/src/types"

	"github.com/google/uuid"
)

type TimeEntry struct {
	ID           uuid.UUID             `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	InstructorID uuid.UUID             `gorm:"type:uuid;index" json:"instructor_id,omitempty"`
	WorkDate     time.Time             `gorm:"index" json:"work_date,omitempty"`
	Hours        float64               `json:"hours"`
	Status       types.TimeEntryStatus `gorm:"default:'pending'" json:"status,omitempty"`
	ApprovedBy   *uuid.UUID            `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt   *time.Time            `json:"approved_at,omitempty"`
	Notes        *string               `json:"notes,omitempty"`

	Instructor Profile `gorm:"foreignKey:instructor_id" json:"instructor,omitempty"`

	types.Timestamps
}
