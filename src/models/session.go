package models

import (
	"log"
	"time"

	"swimops/src/lib"
	"swimops/src/types"

	"github.com/google/uuid"
)

type Session struct {
	ID              uuid.UUID           `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	InstructorID    *uuid.UUID          `gorm:"type:uuid;index" json:"instructor_id,omitempty"`
	StartTime       time.Time           `gorm:"index" json:"start_time,omitempty"`
	EndTime         time.Time           `json:"end_time,omitempty"`
	DurationMinutes int                 `json:"duration_minutes,omitempty"`
	Location        string              `json:"location,omitempty"`
	Status          types.SessionStatus `gorm:"default:'draft'" json:"status,omitempty"`
	BatchID         *uuid.UUID          `gorm:"type:uuid;index" json:"batch_id,omitempty"`
	BookingCount    int                 `json:"booking_count"`
	MaxCapacity     int                 `gorm:"default:1" json:"max_capacity,omitempty"`
	IsFull          bool                `json:"is_full"`
	IsRecurring     bool                `json:"is_recurring"`
	MonthYear       string              `gorm:"index" json:"month_year,omitempty"`
	Weekday         string              `json:"weekday,omitempty"`
	NotesTags       *string             `json:"notes_tags,omitempty"`

	Instructor *Profile  `gorm:"foreignKey:instructor_id" json:"instructor,omitempty"`
	Bookings   []Booking `gorm:"foreignKey:session_id" json:"bookings,omitempty"`

	types.Timestamps
}

// Overlaps reports whether [start, end) collides with this session's window.
func (s *Session) Overlaps(start, end time.Time) bool {
	return start.Before(s.EndTime) && end.After(s.StartTime)
}

func SessionsOpenProducer(batchId uuid.UUID, payload types.JSONB) error {
	err := lib.KafkaProduceMessage("sessions_open_producer", "sessions-open", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}
