package common

import (
	"errors"
	"time"

	"swimops/src/db"
	"swimops/src/models"
	"swimops/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionConflict struct {
	Session      models.Session `json:"session"`
	SwimmerCount int64          `json:"swimmer_count"`
}

type TimeOffConflicts struct {
	RequestID          uuid.UUID               `json:"request_id"`
	ConflictCount      int                     `json:"conflict_count"`
	HasConflicts       bool                    `json:"has_conflicts"`
	Sessions           []SessionConflict       `json:"sessions"`
	OverlappingTimeOff []models.TimeOffRequest `json:"overlapping_time_off"`
}

// ConflictsForTimeOff lists the instructor's open sessions inside the
// requested range with their confirmed swimmer counts, plus any other
// approved time off overlapping it. Conflicts inform review; they never
// block it.
func ConflictsForTimeOff(requestID uuid.UUID) (*TimeOffConflicts, error) {
	dbi := db.GetDb()
	var request models.TimeOffRequest
	if err := dbi.
		Where(&models.TimeOffRequest{ID: requestID}).
		First(&request).
		Error; err != nil {
		return nil, err
	}
	rangeEnd := request.EndDate.AddDate(0, 0, 1)

	var sessions []models.Session
	if err := dbi.
		Model(&models.Session{}).
		Where("instructor_id = ?", request.InstructorID).
		Where("status IN (?)", []types.SessionStatus{types.SESSION_OPEN, types.SESSION_REASSIGNED}).
		Where("start_time >= ? AND start_time < ?", request.StartDate, rangeEnd).
		Order("start_time asc").
		Find(&sessions).
		Error; err != nil {
		return nil, err
	}

	result := &TimeOffConflicts{
		RequestID: requestID,
		Sessions:  []SessionConflict{},
	}
	for i := range sessions {
		var count int64
		if err := dbi.
			Model(&models.Booking{}).
			Where(&models.Booking{SessionID: sessions[i].ID, Status: types.BOOKING_CONFIRMED}).
			Count(&count).
			Error; err != nil {
			return nil, err
		}
		result.Sessions = append(result.Sessions, SessionConflict{Session: sessions[i], SwimmerCount: count})
	}

	if err := dbi.
		Model(&models.TimeOffRequest{}).
		Where("instructor_id = ?", request.InstructorID).
		Where("id <> ?", requestID).
		Where("status = ?", types.TIMEOFF_APPROVED).
		Where("start_date <= ? AND end_date >= ?", request.EndDate, request.StartDate).
		Find(&result.OverlappingTimeOff).
		Error; err != nil {
		return nil, err
	}

	result.ConflictCount = len(result.Sessions)
	result.HasConflicts = result.ConflictCount > 0
	return result, nil
}

// ReviewTimeOff records the admin decision. Review is independent of
// conflict resolution.
func ReviewTimeOff(requestID, reviewerID uuid.UUID, status types.TimeOffStatus, adminNotes *string) (*models.TimeOffRequest, error) {
	if status != types.TIMEOFF_APPROVED && status != types.TIMEOFF_DECLINED {
		return nil, errors.New("status must be approved or declined")
	}
	dbi := db.GetDb()
	var request models.TimeOffRequest
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(&models.TimeOffRequest{ID: requestID}).
			First(&request).
			Error; err != nil {
			return err
		}
		now := time.Now()
		updates := map[string]any{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
		}
		if adminNotes != nil {
			updates["admin_notes"] = *adminNotes
		}
		if err := tx.
			Model(&models.TimeOffRequest{}).
			Where("id = ?", requestID).
			Updates(updates).
			Error; err != nil {
			return err
		}
		return tx.Where("id = ?", requestID).Preload("Instructor").First(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}
