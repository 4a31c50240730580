package models

import (
	"time"

	"swimops/src/types"

	"github.com/google/uuid"
)

type Booking struct {
	ID            uuid.UUID           `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	SwimmerID     uuid.UUID           `gorm:"type:uuid;index" json:"swimmer_id,omitempty"`
	SessionID     uuid.UUID           `gorm:"type:uuid;index" json:"session_id,omitempty"`
	ParentID      uuid.UUID           `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Status        types.BookingStatus `gorm:"default:'confirmed'" json:"status,omitempty"`
	IsRecurring   bool                `json:"is_recurring"`
	CancelReason  *string             `json:"cancel_reason,omitempty"`
	CancelSource  *string             `json:"cancel_source,omitempty"`
	CanceledAt    *time.Time          `json:"canceled_at,omitempty"`
	CanceledBy    *uuid.UUID          `gorm:"type:uuid" json:"canceled_by,omitempty"`
	BlockCancelID *uuid.UUID          `gorm:"type:uuid" json:"block_cancel_id,omitempty"`

	Swimmer Swimmer `gorm:"foreignKey:swimmer_id" json:"swimmer,omitempty"`
	Session Session `gorm:"foreignKey:session_id" json:"session,omitempty"`
	Parent  Profile `gorm:"foreignKey:parent_id" json:"-"`

	types.Timestamps
}

// FloatingSession is a make-up credit minted when a recurring booking is
// cancelled ahead of a future session.
type FloatingSession struct {
	ID                uuid.UUID  `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	SwimmerID         uuid.UUID  `gorm:"type:uuid;index" json:"swimmer_id,omitempty"`
	SourceBookingID   uuid.UUID  `gorm:"type:uuid" json:"source_booking_id,omitempty"`
	OriginalStartTime time.Time  `json:"original_start_time,omitempty"`
	RedeemedAt        *time.Time `json:"redeemed_at,omitempty"`
	RedeemedBookingID *uuid.UUID `gorm:"type:uuid" json:"redeemed_booking_id,omitempty"`

	Swimmer Swimmer `gorm:"foreignKey:swimmer_id" json:"-"`

	types.Timestamps
}
