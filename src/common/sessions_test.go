package common

import (
	"testing"
	"time"

	"swimops/src/models"
	"swimops/src/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateTimeSlots(t *testing.T) {
	slots, err := GenerateTimeSlots("09:00", "12:00", 30, nil)
	assert.Nil(t, err)
	assert.Len(t, slots, 6)
	assert.Equal(t, "09:00", slots[0].Start)
	assert.Equal(t, "09:30", slots[0].End)
	assert.Equal(t, "11:30", slots[5].Start)
	assert.Equal(t, "12:00", slots[5].End)
}

func TestGenerateTimeSlotsWithBreaks(t *testing.T) {
	breaks := []types.BreakWindow{{Start: "10:00", End: "10:30"}}
	slots, err := GenerateTimeSlots("09:00", "12:00", 30, breaks)
	assert.Nil(t, err)
	assert.Len(t, slots, 5)
	for _, s := range slots {
		assert.NotEqual(t, "10:00", s.Start)
	}
}

func TestGenerateTimeSlotsPartialOverlapWithBreak(t *testing.T) {
	// 45-minute slots against a 12:00-12:30 break: the 11:15-12:00 slot
	// survives, the 11:15+45 successor starting inside the break does not.
	breaks := []types.BreakWindow{{Start: "12:00", End: "12:30"}}
	slots, err := GenerateTimeSlots("11:15", "13:30", 45, breaks)
	assert.Nil(t, err)
	assert.Equal(t, []TimeSlot{
		{Start: "11:15", End: "12:00"},
		{Start: "12:45", End: "13:30"},
	}, slots)
}

func TestGenerateTimeSlotsInvalidClock(t *testing.T) {
	_, err := GenerateTimeSlots("not-a-clock", "12:00", 30, nil)
	assert.NotNil(t, err)
}

func TestTargetDates(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	// March 2026 has four Mondays (2, 9, 16, 23, 30 - that is five) and
	// four Wednesdays falling on 4, 11, 18, 25.
	dates := TargetDates(start, end, []int{int(time.Wednesday)}, nil, nil)
	assert.Len(t, dates, 4)
	for _, d := range dates {
		assert.Equal(t, time.Wednesday, d.Weekday())
	}
}

func TestTargetDatesBlackoutAndAdditional(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	dates := TargetDates(start, end,
		[]int{int(time.Wednesday)},
		[]string{"2026-03-11"},
		[]string{"2026-03-14", "2026-03-18"},
	)
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, d.Format("2006-01-02"))
	}
	assert.NotContains(t, keys, "2026-03-11")
	assert.Contains(t, keys, "2026-03-14")
	// A generated date named again as additional is not duplicated.
	assert.Equal(t, []string{"2026-03-04", "2026-03-14", "2026-03-18", "2026-03-25"}, keys)
}

func TestResolveRangeNextMonth(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.Local)
	start, end, err := ResolveRange("next_month", nil, nil, now)
	assert.Nil(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.Local), end)
}

func TestResolveRangeCustomRequiresBounds(t *testing.T) {
	_, _, err := ResolveRange("custom_range", nil, nil, time.Now())
	assert.NotNil(t, err)
}

func draftSession(batchID *uuid.UUID, instructor *models.Profile, start time.Time, createdAt time.Time) models.Session {
	s := models.Session{
		ID:        uuid.New(),
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    types.SESSION_DRAFT,
		BatchID:   batchID,
	}
	if instructor != nil {
		id := instructor.ID
		s.InstructorID = &id
		s.Instructor = instructor
	}
	s.CreatedAt = createdAt
	return s
}

func TestGroupDraftBatches(t *testing.T) {
	instructor := &models.Profile{ID: uuid.New(), FullName: "Jessica Moore"}
	batchA := uuid.New()
	batchB := uuid.New()
	base := time.Date(2026, 4, 6, 9, 0, 0, 0, time.Local)

	sessions := []models.Session{
		draftSession(&batchA, instructor, base.AddDate(0, 0, 7), base),
		draftSession(&batchA, instructor, base, base),
		draftSession(&batchB, nil, base.AddDate(0, 0, 1), base.Add(time.Hour)),
	}
	groups := GroupDraftBatches(sessions)
	assert.Len(t, groups, 2)

	// Newest batch first.
	assert.Equal(t, batchB.String(), groups[0].BatchID)
	assert.Equal(t, "Unknown Instructor", groups[0].Instructor.Name)

	// Sessions within a group are sorted by start time.
	assert.Equal(t, batchA.String(), groups[1].BatchID)
	assert.Equal(t, 2, groups[1].SessionCount)
	assert.Equal(t, base, groups[1].DateRange.Start)
	assert.Equal(t, base.AddDate(0, 0, 7), groups[1].DateRange.End)
	assert.Equal(t, "Jessica Moore", groups[1].Instructor.Name)
}

func TestGroupDraftBatchesWithoutBatchID(t *testing.T) {
	base := time.Date(2026, 4, 6, 9, 0, 0, 0, time.Local)
	sessions := []models.Session{
		draftSession(nil, nil, base, base),
		draftSession(nil, nil, base.Add(time.Hour), base),
	}
	groups := GroupDraftBatches(sessions)
	assert.Len(t, groups, 2)
}

func TestBatchTitle(t *testing.T) {
	instructor := &models.Profile{ID: uuid.New(), FullName: "Jessica Moore"}
	batchID := uuid.New()
	monday := time.Date(2026, 4, 6, 9, 0, 0, 0, time.Local)

	t.Run("empty batch", func(t *testing.T) {
		assert.Equal(t, "Empty Batch", BatchTitle(&BatchGroup{}))
	})

	t.Run("same weekday with instructor", func(t *testing.T) {
		groups := GroupDraftBatches([]models.Session{
			draftSession(&batchID, instructor, monday, monday),
			draftSession(&batchID, instructor, monday.AddDate(0, 0, 7), monday),
		})
		assert.Equal(t, "April Mondays - Jessica", BatchTitle(&groups[0]))
	})

	t.Run("mixed weekdays", func(t *testing.T) {
		groups := GroupDraftBatches([]models.Session{
			draftSession(&batchID, instructor, monday, monday),
			draftSession(&batchID, instructor, monday.AddDate(0, 0, 1), monday),
		})
		assert.Equal(t, "April Mixed - Jessica", BatchTitle(&groups[0]))
	})

	t.Run("unknown instructor drops the suffix", func(t *testing.T) {
		groups := GroupDraftBatches([]models.Session{
			draftSession(&batchID, nil, monday, monday),
		})
		assert.Equal(t, "April Mondays", BatchTitle(&groups[0]))
	})
}

func TestExpandSelection(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	batch := uuid.New()
	batchSessions := map[uuid.UUID][]uuid.UUID{
		batch: {b, c},
	}

	out := ExpandSelection([]uuid.UUID{a, b}, batchSessions, []uuid.UUID{batch})
	assert.Equal(t, []uuid.UUID{a, b, c}, out)

	// Idempotent over repeated input.
	again := ExpandSelection(out, batchSessions, []uuid.UUID{batch})
	assert.Equal(t, out, again)
}
