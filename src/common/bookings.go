package common

import (
	"errors"
	"fmt"
	"time"

	"swimops/src/config"
	"swimops/src/db"
	"swimops/src/models"
	"swimops/src/types"
	"swimops/src/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrNotBookingOwner  = errors.New("booking does not belong to this account")
	ErrSessionStarted   = errors.New("the session has already started and cannot be cancelled")
)

// LateCancellation is returned when the cutoff has passed. The handler
// serializes it so the client can route the parent to the front desk.
type LateCancellation struct {
	HoursBeforeSession float64 `json:"hoursBeforeSession"`
	ContactPhone       string  `json:"contactPhone"`
	ContactType        string  `json:"contactType"`
}

func (e *LateCancellation) Error() string {
	return fmt.Sprintf("late cancellation: %.1f hours before session", e.HoursBeforeSession)
}

// cancelEligibility applies the single-cancel rules: ownership, no double
// cancel, the session must not have started, and parents must be outside
// the cutoff. Admins bypass everything except the double-cancel check.
func cancelEligibility(booking *models.Booking, actorID uuid.UUID, isAdmin bool, now time.Time) error {
	if !isAdmin && booking.ParentID != actorID {
		return ErrNotBookingOwner
	}
	if booking.Status == types.BOOKING_CANCELED {
		return ErrAlreadyCancelled
	}
	if isAdmin {
		return nil
	}
	if !booking.Session.StartTime.After(now) {
		return ErrSessionStarted
	}
	hours := utils.HoursUntil(now, booking.Session.StartTime)
	if hours < config.CANCELLATION_CUTOFF_HOURS {
		return &LateCancellation{
			HoursBeforeSession: hours,
			ContactPhone:       config.CONTACT_PHONE,
			ContactType:        "text",
		}
	}
	return nil
}

// CancelBooking cancels a single booking, enforcing ownership and the
// cancellation cutoff for parents. Admins bypass both.
func CancelBooking(bookingID uuid.UUID, actorID uuid.UUID, reason string, isAdmin bool) error {
	dbi := db.GetDb()
	now := time.Now()
	return dbi.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingID}).
			Preload("Session").
			First(&booking).
			Error; err != nil {
			return err
		}
		if err := cancelEligibility(&booking, actorID, isAdmin, now); err != nil {
			return err
		}
		if err := cancelBookingInTx(tx, &booking, actorID, reason, cancelSource(isAdmin), nil, now); err != nil {
			return err
		}
		if booking.IsRecurring && booking.Session.StartTime.After(now) {
			credit := models.FloatingSession{
				SwimmerID:         booking.SwimmerID,
				SourceBookingID:   booking.ID,
				OriginalStartTime: booking.Session.StartTime,
			}
			if err := tx.Create(&credit).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func cancelSource(isAdmin bool) string {
	if isAdmin {
		return "admin"
	}
	return "parent"
}

func cancelBookingInTx(tx *gorm.DB, booking *models.Booking, actorID uuid.UUID, reason string, source string, blockID *uuid.UUID, now time.Time) error {
	updates := map[string]any{
		"status":        types.BOOKING_CANCELED,
		"cancel_reason": reason,
		"cancel_source": source,
		"canceled_at":   now,
		"canceled_by":   actorID,
	}
	if blockID != nil {
		updates["block_cancel_id"] = *blockID
	}
	if err := tx.
		Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Updates(updates).
		Error; err != nil {
		return err
	}
	return tx.
		Model(&models.Session{}).
		Where("id = ?", booking.SessionID).
		Updates(map[string]any{
			"booking_count": gorm.Expr("GREATEST(booking_count - 1, 0)"),
			"is_full":       false,
		}).
		Error
}

type BlockCancelResult struct {
	Canceled      int       `json:"canceled"`
	Skipped       int       `json:"skipped"`
	BlockCancelID uuid.UUID `json:"block_cancel_id"`
}

// blockCancelGuard gates a block cancel on the batch's earliest confirmed
// session: parents may only cancel while it starts strictly in the future.
// Admins may always. Bookings must be ordered by session start time.
func blockCancelGuard(bookings []models.Booking, isAdmin bool, now time.Time) error {
	if len(bookings) == 0 {
		return errors.New("no confirmed bookings found for this batch")
	}
	if !isAdmin && !bookings[0].Session.StartTime.After(now) {
		return errors.New("the block has already started; contact the front desk to cancel")
	}
	return nil
}

// BlockCancel cancels a swimmer's remaining confirmed bookings in a batch.
// Past sessions are skipped. Parents may only do this while the batch's
// earliest confirmed session is still in the future; admins may always.
func BlockCancel(swimmerID, batchID, actorID uuid.UUID, reason string, isAdmin bool) (*BlockCancelResult, error) {
	dbi := db.GetDb()
	now := time.Now()
	result := &BlockCancelResult{BlockCancelID: uuid.New()}
	err := dbi.Transaction(func(tx *gorm.DB) error {
		var bookings []models.Booking
		if err := tx.
			Model(&models.Booking{}).
			Joins("JOIN sessions ON sessions.id = bookings.session_id").
			Where("bookings.swimmer_id = ?", swimmerID).
			Where("bookings.status = ?", types.BOOKING_CONFIRMED).
			Where("sessions.batch_id = ?", batchID).
			Order("sessions.start_time asc").
			Preload("Session").
			Find(&bookings).
			Error; err != nil {
			return err
		}
		if err := blockCancelGuard(bookings, isAdmin, now); err != nil {
			return err
		}
		for i := range bookings {
			booking := &bookings[i]
			if !booking.Session.StartTime.After(now) {
				result.Skipped++
				continue
			}
			if err := cancelBookingInTx(tx, booking, actorID, reason, cancelSource(isAdmin), &result.BlockCancelID, now); err != nil {
				return err
			}
			result.Canceled++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CancelSessionWithBookings cancels a session outright, cancels its active
// bookings and emails each affected parent. Returns the number of parents
// notified.
func CancelSessionWithBookings(sessionID uuid.UUID, actorID uuid.UUID, reason string, notifyParents bool) (int, error) {
	if reason == "" {
		reason = "Cancelled due to instructor time off"
	}
	dbi := db.GetDb()
	now := time.Now()
	var session models.Session
	var affected []models.Booking
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(&models.Session{ID: sessionID}).
			First(&session).
			Error; err != nil {
			return err
		}
		if session.Status == types.SESSION_CANCELED {
			return errors.New("session is already cancelled")
		}
		if err := tx.
			Model(&models.Session{}).
			Where("id = ?", sessionID).
			Updates(map[string]any{
				"status":     types.SESSION_CANCELED,
				"notes_tags": reason,
			}).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Booking{}).
			Where("session_id = ?", sessionID).
			Where("status <> ?", types.BOOKING_CANCELED).
			Preload("Parent").
			Preload("Swimmer").
			Find(&affected).
			Error; err != nil {
			return err
		}
		for i := range affected {
			if err := cancelBookingInTx(tx, &affected[i], actorID, reason, "admin", nil, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !notifyParents || len(affected) == 0 {
		return 0, nil
	}
	notified := NotifySessionCancellation(&session, affected, reason)
	return notified, nil
}

// ReplaceSessionInstructor swaps the instructor on a session after checking
// the replacement actually holds the instructor role.
func ReplaceSessionInstructor(sessionID, newInstructorID uuid.UUID, notifyParents bool) (int, error) {
	dbi := db.GetDb()
	var session models.Session
	var instructor models.Profile
	var affected []models.Booking
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(&models.Session{ID: sessionID}).
			First(&session).
			Error; err != nil {
			return err
		}
		if session.InstructorID != nil && *session.InstructorID == newInstructorID {
			return errors.New("session is already assigned to this instructor")
		}
		var roleCount int64
		if err := tx.
			Model(&models.UserRole{}).
			Where(&models.UserRole{UserID: newInstructorID, Role: types.ROLE_INSTRUCTOR}).
			Count(&roleCount).
			Error; err != nil {
			return err
		}
		if roleCount == 0 {
			return errors.New("replacement is not an instructor")
		}
		if err := tx.
			Where(&models.Profile{ID: newInstructorID}).
			First(&instructor).
			Error; err != nil {
			return err
		}
		updates := map[string]any{"instructor_id": newInstructorID}
		if session.Status == types.SESSION_OPEN {
			updates["status"] = types.SESSION_REASSIGNED
		}
		if err := tx.
			Model(&models.Session{}).
			Where("id = ?", sessionID).
			Updates(updates).
			Error; err != nil {
			return err
		}
		return tx.
			Model(&models.Booking{}).
			Where("session_id = ?", sessionID).
			Where("status <> ?", types.BOOKING_CANCELED).
			Preload("Parent").
			Preload("Swimmer").
			Find(&affected).
			Error
	})
	if err != nil {
		return 0, err
	}
	if !notifyParents || len(affected) == 0 {
		return 0, nil
	}
	notified := NotifyInstructorChange(&session, affected, &instructor)
	return notified, nil
}
