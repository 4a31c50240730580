package common

import (
	"errors"
	"testing"
	"time"

	"swimops/src/models"
	"swimops/src/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func confirmedBooking(parentID uuid.UUID, start time.Time) models.Booking {
	return models.Booking{
		ID:       uuid.New(),
		ParentID: parentID,
		Status:   types.BOOKING_CONFIRMED,
		Session:  models.Session{StartTime: start, EndTime: start.Add(30 * time.Minute)},
	}
}

func TestCancelEligibility(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	parentID := uuid.New()

	t.Run("Outside the cutoff", func(t *testing.T) {
		booking := confirmedBooking(parentID, now.Add(48*time.Hour))
		assert.NoError(t, cancelEligibility(&booking, parentID, false, now))
	})

	t.Run("Not the owner", func(t *testing.T) {
		booking := confirmedBooking(parentID, now.Add(48*time.Hour))
		err := cancelEligibility(&booking, uuid.New(), false, now)
		assert.ErrorIs(t, err, ErrNotBookingOwner)
	})

	t.Run("Already cancelled", func(t *testing.T) {
		booking := confirmedBooking(parentID, now.Add(48*time.Hour))
		booking.Status = types.BOOKING_CANCELED
		err := cancelEligibility(&booking, parentID, false, now)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
	})

	t.Run("Inside the cutoff", func(t *testing.T) {
		booking := confirmedBooking(parentID, now.Add(23*time.Hour+30*time.Minute))
		err := cancelEligibility(&booking, parentID, false, now)

		var late *LateCancellation
		assert.ErrorAs(t, err, &late)
		assert.Equal(t, 23.5, late.HoursBeforeSession)
		assert.NotEmpty(t, late.ContactPhone)
		assert.Equal(t, "text", late.ContactType)
	})

	t.Run("Exactly at the cutoff", func(t *testing.T) {
		booking := confirmedBooking(parentID, now.Add(24*time.Hour))
		assert.NoError(t, cancelEligibility(&booking, parentID, false, now))
	})

	t.Run("Session already started", func(t *testing.T) {
		booking := confirmedBooking(parentID, now.Add(-2*time.Hour))
		err := cancelEligibility(&booking, parentID, false, now)

		assert.ErrorIs(t, err, ErrSessionStarted)
		var late *LateCancellation
		assert.False(t, errors.As(err, &late), "past sessions are not late cancellations")
	})

	t.Run("Admin bypasses the cutoff", func(t *testing.T) {
		booking := confirmedBooking(parentID, now.Add(1*time.Hour))
		assert.NoError(t, cancelEligibility(&booking, uuid.New(), true, now))
	})

	t.Run("Admin cannot double cancel", func(t *testing.T) {
		booking := confirmedBooking(parentID, now.Add(1*time.Hour))
		booking.Status = types.BOOKING_CANCELED
		err := cancelEligibility(&booking, uuid.New(), true, now)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
	})
}

func TestBlockCancelGuard(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	parentID := uuid.New()

	future := []models.Booking{
		confirmedBooking(parentID, now.Add(1*time.Minute)),
		confirmedBooking(parentID, now.Add(7*24*time.Hour)),
	}
	assert.NoError(t, blockCancelGuard(future, false, now))

	started := []models.Booking{
		confirmedBooking(parentID, now),
		confirmedBooking(parentID, now.Add(7*24*time.Hour)),
	}
	assert.Error(t, blockCancelGuard(started, false, now), "an earliest start at now is not strictly in the future")
	assert.NoError(t, blockCancelGuard(started, true, now), "admins may cancel a started block")

	assert.Error(t, blockCancelGuard(nil, false, now))
	assert.Error(t, blockCancelGuard(nil, true, now))
}
