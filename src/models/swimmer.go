package models

import (
	"time"

	"swimops/src/types"

	"github.com/google/uuid"
)

type Swimmer struct {
	ID                uuid.UUID              `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	FirstName         string                 `json:"first_name,omitempty"`
	LastName          string                 `json:"last_name,omitempty"`
	DateOfBirth       *time.Time             `json:"date_of_birth,omitempty"`
	ParentID          uuid.UUID              `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	CoordinatorID     *uuid.UUID             `gorm:"type:uuid" json:"coordinator_id,omitempty"`
	CoordinatorEmail  *string                `json:"vmrc_coordinator_email,omitempty"`
	CoordinatorName   *string                `json:"vmrc_coordinator_name,omitempty"`
	FundingSourceID   *uuid.UUID             `gorm:"type:uuid" json:"funding_source_id,omitempty"`
	PaymentType       types.PaymentType      `gorm:"default:'private_pay'" json:"payment_type,omitempty"`
	EnrollmentStatus  types.EnrollmentStatus `gorm:"default:'waitlist'" json:"enrollment_status,omitempty"`
	WaiverCompletedAt *time.Time             `json:"waiver_completed_at,omitempty"`
	Notes             *string                `json:"notes,omitempty"`

	Parent        Profile        `gorm:"foreignKey:parent_id" json:"-"`
	FundingSource *FundingSource `gorm:"foreignKey:funding_source_id" json:"funding_source,omitempty"`

	types.Timestamps
}

func (s *Swimmer) FullName() string {
	return s.FirstName + " " + s.LastName
}
