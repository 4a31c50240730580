package common

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"swimops/src/config"
	"swimops/src/db"
	"swimops/src/lib"
	"swimops/src/models"
	"swimops/src/types"
	"swimops/src/utils"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func clockToMinutes(clock string) (int, error) {
	t, err := time.Parse(config.CLOCK_PARSE_FORMAT, clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func minutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// GenerateTimeSlots steps through the teaching window in duration-sized
// slots, dropping any slot that overlaps a break.
func GenerateTimeSlots(startTime, endTime string, duration int, breaks []types.BreakWindow) ([]TimeSlot, error) {
	start, err := clockToMinutes(startTime)
	if err != nil {
		return nil, err
	}
	end, err := clockToMinutes(endTime)
	if err != nil {
		return nil, err
	}
	type window struct{ start, end int }
	var windows []window
	for _, b := range breaks {
		bs, err := clockToMinutes(b.Start)
		if err != nil {
			return nil, err
		}
		be, err := clockToMinutes(b.End)
		if err != nil {
			return nil, err
		}
		windows = append(windows, window{bs, be})
	}
	var slots []TimeSlot
	for cur := start; cur+duration <= end; cur += duration {
		slotEnd := cur + duration
		blocked := false
		for _, w := range windows {
			if cur < w.end && slotEnd > w.start {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		slots = append(slots, TimeSlot{Start: minutesToClock(cur), End: minutesToClock(slotEnd)})
	}
	return slots, nil
}

// TargetDates expands a range into the matching weekdays, minus blackout
// dates, plus any explicitly added dates.
func TargetDates(rangeStart, rangeEnd time.Time, daysOfWeek []int, blackoutDates []string, additionalDates []string) []time.Time {
	wanted := map[time.Weekday]bool{}
	for _, d := range daysOfWeek {
		wanted[time.Weekday(d)] = true
	}
	blackout := map[string]bool{}
	for _, b := range blackoutDates {
		blackout[b] = true
	}
	var dates []time.Time
	seen := map[string]bool{}
	for d := rangeStart; !d.After(rangeEnd); d = d.AddDate(0, 0, 1) {
		key := d.Format(config.DATE_PARSE_FORMAT)
		if wanted[d.Weekday()] && !blackout[key] {
			dates = append(dates, d)
			seen[key] = true
		}
	}
	for _, a := range additionalDates {
		if blackout[a] || seen[a] {
			continue
		}
		if d, err := utils.ParseDate(a); err == nil {
			dates = append(dates, d)
			seen[a] = true
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// ResolveRange turns the request mode into concrete range bounds.
func ResolveRange(mode string, rangeStart, rangeEnd *string, now time.Time) (time.Time, time.Time, error) {
	switch mode {
	case "next_month":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local).AddDate(0, 1, 0)
		last := first.AddDate(0, 1, -1)
		return first, last, nil
	default:
		if rangeStart == nil || rangeEnd == nil {
			return time.Time{}, time.Time{}, errors.New("range_start and range_end are required for this mode")
		}
		start, err := utils.ParseDate(*rangeStart)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err := utils.ParseDate(*rangeEnd)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, end, nil
	}
}

type SlotConflict struct {
	InstructorID string    `json:"instructor_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

type GenerationResult struct {
	Created   int              `json:"created"`
	Skipped   int              `json:"skipped"`
	BatchID   uuid.UUID        `json:"batch_id"`
	Conflicts []SlotConflict   `json:"conflicts"`
	Preview   []models.Session `json:"preview"`
}

// GenerateDraftBatch creates one draft session per instructor, date and
// free slot inside a single transaction. Slots colliding with an existing
// non-cancelled session for the instructor are reported, not created.
func GenerateDraftBatch(body *types.GenerateSessionsRequestBody, createdBy uuid.UUID) (*GenerationResult, error) {
	now := time.Now()
	rangeStart, rangeEnd, err := ResolveRange(body.Mode, body.RangeStart, body.RangeEnd, now)
	if err != nil {
		return nil, err
	}
	slots, err := GenerateTimeSlots(body.StartTime, body.EndTime, body.DurationMinutes, body.Breaks)
	if err != nil {
		return nil, err
	}
	dates := TargetDates(rangeStart, rangeEnd, body.DaysOfWeek, body.BlackoutDates, body.AdditionalDates)

	batchID := uuid.New()
	isRecurring := body.Mode == "weekly_recurring_month"
	result := &GenerationResult{BatchID: batchID, Conflicts: []SlotConflict{}}

	dbi := db.GetDb()
	err = dbi.Transaction(func(tx *gorm.DB) error {
		for _, sid := range body.InstructorIDs {
			instructorID := utils.MustUUID(sid)
			var existing []models.Session
			if err := tx.
				Model(&models.Session{}).
				Where("instructor_id = ?", instructorID).
				Where("status <> ?", types.SESSION_CANCELED).
				Where("start_time BETWEEN ? AND ?", rangeStart, rangeEnd.AddDate(0, 0, 1)).
				Find(&existing).
				Error; err != nil {
				return err
			}
			for _, date := range dates {
				for _, slot := range slots {
					startTime, err := utils.CombineDateClock(date.Format(config.DATE_PARSE_FORMAT), slot.Start)
					if err != nil {
						return err
					}
					endTime, err := utils.CombineDateClock(date.Format(config.DATE_PARSE_FORMAT), slot.End)
					if err != nil {
						return err
					}
					conflict := false
					for i := range existing {
						if existing[i].Overlaps(startTime, endTime) {
							conflict = true
							break
						}
					}
					if conflict {
						result.Skipped++
						result.Conflicts = append(result.Conflicts, SlotConflict{
							InstructorID: sid,
							StartTime:    startTime,
							EndTime:      endTime,
						})
						continue
					}
					session := models.Session{
						InstructorID:    &instructorID,
						StartTime:       startTime,
						EndTime:         endTime,
						DurationMinutes: body.DurationMinutes,
						Location:        body.Location,
						Status:          types.SESSION_DRAFT,
						BatchID:         &batchID,
						MaxCapacity:     1,
						IsRecurring:     isRecurring,
						MonthYear:       startTime.Format(config.MONTH_YEAR_FORMAT),
						Weekday:         startTime.Format("Mon"),
					}
					if err := tx.Create(&session).Error; err != nil {
						return err
					}
					existing = append(existing, session)
					result.Created++
					if len(result.Preview) < 50 {
						result.Preview = append(result.Preview, session)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[sessions] %s generated batch %s: created=%d skipped=%d\n",
		createdBy.String(), batchID.String(), result.Created, result.Skipped)

	if body.OpensAt != nil {
		opensAt, err := time.Parse(config.TIME_PARSE_FORMAT, *body.OpensAt)
		if err != nil {
			log.Printf("Could not parse opens_at for batch %s: %s\n", batchID.String(), err.Error())
			return result, nil
		}
		go enqueueBatchOpen(batchID, opensAt)
	}
	return result, nil
}

func enqueueBatchOpen(batchID uuid.UUID, opensAt time.Time) {
	payloadId := uuid.NewString()
	jobTask := models.JobTask{
		Name:      fmt.Sprintf("SessionsToOpen_%s", batchID.String()),
		JobType:   "OneTimeJobStartDateTime",
		RunsAt:    opensAt,
		PayloadID: payloadId,
		Payload: types.JSONB{
			"batch_id":         batchID.String(),
			"payloadId":        payloadId,
			"producerClientId": "sessions_open_producer",
			"topic":            "sessions-open",
		},
		Source: "sessions_open_producer",
		Topic:  "sessions-open",
	}
	if !opensAt.After(time.Now()) {
		if err := models.SessionsOpenProducer(batchID, jobTask.Payload); err != nil {
			log.Printf("Error opening batch %s: %s\n", batchID.String(), err.Error())
		}
		return
	}
	if _, err := jobTask.CreateAndEnqueueJobTask(jobTask); err != nil {
		log.Printf("Error scheduling batch open for %s: %s\n", batchID.String(), err.Error())
	}
}

type BatchInstructor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type BatchGroup struct {
	BatchID      string           `json:"batch_id"`
	CreatedAt    time.Time        `json:"created_at"`
	SessionCount int              `json:"session_count"`
	DateRange    DateRange        `json:"date_range"`
	Location     string           `json:"location"`
	Instructor   BatchInstructor  `json:"instructor"`
	Sessions     []models.Session `json:"sessions"`
}

// GroupDraftBatches folds a flat session list into per-batch groups, newest
// batch first. Sessions without a batch id form their own group.
func GroupDraftBatches(sessions []models.Session) []BatchGroup {
	index := map[string]*BatchGroup{}
	var order []string
	for _, s := range sessions {
		key := s.ID.String()
		if s.BatchID != nil {
			key = s.BatchID.String()
		}
		group, ok := index[key]
		if !ok {
			group = &BatchGroup{
				BatchID:    key,
				CreatedAt:  s.CreatedAt,
				Location:   s.Location,
				Instructor: BatchInstructor{Name: "Unknown Instructor"},
			}
			if s.Instructor != nil {
				group.Instructor = BatchInstructor{ID: s.Instructor.ID.String(), Name: s.Instructor.FullName}
			}
			index[key] = group
			order = append(order, key)
		}
		if s.CreatedAt.Before(group.CreatedAt) {
			group.CreatedAt = s.CreatedAt
		}
		group.Sessions = append(group.Sessions, s)
	}
	groups := make([]BatchGroup, 0, len(order))
	for _, key := range order {
		g := index[key]
		sort.Slice(g.Sessions, func(i, j int) bool { return g.Sessions[i].StartTime.Before(g.Sessions[j].StartTime) })
		g.SessionCount = len(g.Sessions)
		g.DateRange = DateRange{Start: g.Sessions[0].StartTime, End: g.Sessions[len(g.Sessions)-1].StartTime}
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].CreatedAt.After(groups[j].CreatedAt) })
	return groups
}

// BatchTitle derives the display title for a batch: month of the first
// session, the shared weekday (or Mixed), and the instructor's first name.
func BatchTitle(g *BatchGroup) string {
	if len(g.Sessions) == 0 {
		return "Empty Batch"
	}
	first := g.Sessions[0].StartTime
	month := first.Month().String()
	weekdayLabel := "Mixed"
	same := true
	for _, s := range g.Sessions[1:] {
		if s.StartTime.Weekday() != first.Weekday() {
			same = false
			break
		}
	}
	if same {
		weekdayLabel = first.Weekday().String() + "s"
	}
	name := g.Instructor.Name
	firstName := name
	for i, c := range name {
		if c == ' ' {
			firstName = name[:i]
			break
		}
	}
	if firstName == "" || firstName == "Unknown" {
		return fmt.Sprintf("%s %s", month, weekdayLabel)
	}
	return fmt.Sprintf("%s %s - %s", month, weekdayLabel, firstName)
}

// ExpandSelection resolves the client's selection (explicit sessions, whole
// batches, or everything) into a deduplicated id set.
func ExpandSelection(sessionIDs []uuid.UUID, batchSessionIDs map[uuid.UUID][]uuid.UUID, batchIDs []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range sessionIDs {
		add(id)
	}
	for _, bid := range batchIDs {
		for _, id := range batchSessionIDs[bid] {
			add(id)
		}
	}
	return out
}

// ResolveSelection loads whatever the selection body names from the draft
// pool and returns the exact session id set to operate on.
func ResolveSelection(body *types.SessionSelectionRequestBody) ([]uuid.UUID, error) {
	dbi := db.GetDb()
	if body.All {
		var ids []uuid.UUID
		if err := dbi.
			Model(&models.Session{}).
			Where(&models.Session{Status: types.SESSION_DRAFT}).
			Pluck("id", &ids).
			Error; err != nil {
			return nil, err
		}
		return ids, nil
	}
	sessionIDs := make([]uuid.UUID, 0, len(body.SessionIDs))
	for _, s := range body.SessionIDs {
		sessionIDs = append(sessionIDs, utils.MustUUID(s))
	}
	batchSessions := map[uuid.UUID][]uuid.UUID{}
	batchIDs := make([]uuid.UUID, 0, len(body.BatchIDs))
	for _, b := range body.BatchIDs {
		bid := utils.MustUUID(b)
		batchIDs = append(batchIDs, bid)
		var ids []uuid.UUID
		if err := dbi.
			Model(&models.Session{}).
			Where(&models.Session{Status: types.SESSION_DRAFT}).
			Where("batch_id = ?", bid).
			Pluck("id", &ids).
			Error; err != nil {
			return nil, err
		}
		batchSessions[bid] = ids
	}
	return ExpandSelection(sessionIDs, batchSessions, batchIDs), nil
}

// OpenSessions flips draft sessions to open, all-or-nothing. A selection
// containing a non-draft session fails the whole batch.
func OpenSessions(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return errors.New("empty selection")
	}
	dbi := db.GetDb()
	return dbi.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&models.Session{}).
			Where("id IN (?)", ids).
			Where(&models.Session{Status: types.SESSION_DRAFT}).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count != int64(len(ids)) {
			return fmt.Errorf("selection contains %d sessions that are not drafts", int64(len(ids))-count)
		}
		return tx.
			Model(&models.Session{}).
			Where("id IN (?)", ids).
			Update("status", types.SESSION_OPEN).
			Error
	})
}

// CompleteSession marks a held session completed, completes its confirmed
// bookings, and consumes one authorized lesson from each funded swimmer's
// active purchase order. Returns the number of bookings completed.
func CompleteSession(sessionID uuid.UUID) (int, error) {
	completed := 0
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.Where("id = ?", sessionID).First(&session).Error; err != nil {
			return err
		}
		if session.Status != types.SESSION_OPEN && session.Status != types.SESSION_REASSIGNED {
			return fmt.Errorf("session is %s and cannot be completed", session.Status)
		}
		if err := utils.UpdateSessionStatus(tx, sessionID, types.SESSION_COMPLETED, session.Status); err != nil {
			return err
		}
		var bookings []models.Booking
		if err := tx.
			Preload("Swimmer").
			Where(&models.Booking{SessionID: sessionID, Status: types.BOOKING_CONFIRMED}).
			Find(&bookings).
			Error; err != nil {
			return err
		}
		for i := range bookings {
			if err := tx.
				Model(&bookings[i]).
				Update("status", types.BOOKING_COMPLETED).
				Error; err != nil {
				return err
			}
			if bookings[i].Swimmer.PaymentType != types.PAYMENT_FUNDED {
				continue
			}
			var po models.PurchaseOrder
			err := tx.
				Where(&models.PurchaseOrder{SwimmerID: bookings[i].SwimmerID, Status: types.PO_ACTIVE}).
				Order("start_date asc").
				First(&po).
				Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := tx.
				Model(&po).
				Update("sessions_used", gorm.Expr("sessions_used + 1")).
				Error; err != nil {
				return err
			}
		}
		completed = len(bookings)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return completed, nil
}

// DeleteDraftSessions removes draft sessions, all-or-nothing.
func DeleteDraftSessions(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return errors.New("empty selection")
	}
	dbi := db.GetDb()
	return dbi.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&models.Session{}).
			Where("id IN (?)", ids).
			Where(&models.Session{Status: types.SESSION_DRAFT}).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count != int64(len(ids)) {
			return fmt.Errorf("selection contains %d sessions that are not drafts", int64(len(ids))-count)
		}
		return tx.
			Where("id IN (?)", ids).
			Delete(&models.Session{}).
			Error
	})
}

// EditDraftSession recombines the date and clock values into timestamps and
// applies them to a single draft session.
func EditDraftSession(id uuid.UUID, body *types.EditSessionRequestBody) error {
	startTime, err := utils.CombineDateClock(body.Date, body.StartTime)
	if err != nil {
		return err
	}
	endTime, err := utils.CombineDateClock(body.Date, body.EndTime)
	if err != nil {
		return err
	}
	if !endTime.After(startTime) {
		return errors.New("end_time must be after start_time")
	}
	dbi := db.GetDb()
	return dbi.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.
			Where(&models.Session{ID: id, Status: types.SESSION_DRAFT}).
			First(&session).
			Error; err != nil {
			return err
		}
		updates := map[string]any{
			"start_time":       startTime,
			"end_time":         endTime,
			"duration_minutes": int(endTime.Sub(startTime).Minutes()),
			"month_year":       startTime.Format(config.MONTH_YEAR_FORMAT),
			"weekday":          startTime.Format("Mon"),
		}
		if body.InstructorID != nil {
			updates["instructor_id"] = utils.MustUUID(*body.InstructorID)
		}
		return tx.
			Model(&models.Session{}).
			Where("id = ?", id).
			Updates(updates).
			Error
	})
}

// KafkaSessionsToOpenConsumer handles the scheduled batch-open message.
func KafkaSessionsToOpenConsumer(spayload string) {
	if !gjson.Valid(spayload) {
		log.Println("[sessions-open]: Received invalid json body. Aborting")
		return
	}
	batchVal := gjson.Get(spayload, "batch_id").String()
	payloadId := gjson.Get(spayload, "payloadId").String()
	batchID, err := uuid.Parse(batchVal)
	if err != nil {
		log.Printf("[sessions-open] invalid batch id %q: %s\n", batchVal, err.Error())
		return
	}
	log.Printf("[sessions-open] opening batch %s\n", batchID.String())
	go func() {
		dbi := db.GetDb()
		err := dbi.Transaction(func(tx *gorm.DB) error {
			return tx.
				Model(&models.Session{}).
				Where("batch_id = ?", batchID).
				Where(&models.Session{Status: types.SESSION_DRAFT}).
				Update("status", types.SESSION_OPEN).
				Error
		})
		if err != nil {
			log.Printf("Error opening batch [%s]: %s\n", batchID.String(), err.Error())
			return
		}
	}()
	go func() {
		dbi := db.GetDb()
		err := dbi.Transaction(func(tx *gorm.DB) error {
			return tx.
				Where(&models.JobTask{PayloadID: payloadId}).
				Updates(&models.JobTask{Status: "done"}).
				Error
		})
		if err != nil {
			log.Printf("Error updating job status: %s\n", err.Error())
		}
	}()
}

func SessionsOpenConsumer() {
	lib.KafkaConsume("sessions-open", "swimops", KafkaSessionsToOpenConsumer)
}
