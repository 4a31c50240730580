package common

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log"
	"time"

	"swimops/src/db"
	"swimops/src/lib"
	"swimops/src/models"
	"swimops/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPeriodLocked = errors.New("billing period is being processed by another request")

// periodFlow is the forward-only progression a billing period moves through.
// Generate and export own the draft->generated and ->submitted steps; the
// reviewed and paid steps are marked by an admin.
var periodFlow = map[types.BillingPeriodStatus]types.BillingPeriodStatus{
	types.PERIOD_DRAFT:     types.PERIOD_GENERATED,
	types.PERIOD_GENERATED: types.PERIOD_REVIEWED,
	types.PERIOD_REVIEWED:  types.PERIOD_SUBMITTED,
	types.PERIOD_SUBMITTED: types.PERIOD_PAID,
}

// CanAdvancePeriod reports whether a period may move directly from one
// status to the next.
func CanAdvancePeriod(from, to types.BillingPeriodStatus) bool {
	return periodFlow[from] == to
}

// MarkPeriodStatus applies the manual steps of the period flow: a generated
// period is marked reviewed before export, a submitted one is marked paid
// once the agency remits.
func MarkPeriodStatus(periodID uuid.UUID, to types.BillingPeriodStatus) (*models.BillingPeriod, error) {
	if to != types.PERIOD_REVIEWED && to != types.PERIOD_PAID {
		return nil, fmt.Errorf("period status %s is not set directly", to)
	}
	dbi := db.GetDb()
	var period models.BillingPeriod
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}}).
			Where(&models.BillingPeriod{ID: periodID}).
			First(&period).
			Error; err != nil {
			return err
		}
		if !CanAdvancePeriod(period.Status, to) {
			return fmt.Errorf("billing period %d/%d cannot move from %s to %s",
				period.Month, period.Year, period.Status, to)
		}
		if err := tx.
			Model(&models.BillingPeriod{}).
			Where("id = ?", periodID).
			Update("status", to).
			Error; err != nil {
			return err
		}
		return tx.Where("id = ?", periodID).First(&period).Error
	})
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// PopulateBillingLineItems builds one line item per funded swimmer with an
// active or completed lessons PO overlapping the period. Only draft periods
// can be generated; the period moves to generated afterwards.
func PopulateBillingLineItems(periodID uuid.UUID) (int, error) {
	lockKey := fmt.Sprintf("billing:%s:lock", periodID.String())
	if !lib.AcquireLock(context.Background(), lockKey, 5*time.Minute) {
		return 0, ErrPeriodLocked
	}
	defer lib.ReleaseLock(context.Background(), lockKey)

	dbi := db.GetDb()
	count := 0
	err := dbi.Transaction(func(tx *gorm.DB) error {
		var period models.BillingPeriod
		if err := tx.Where(&models.BillingPeriod{ID: periodID}).First(&period).Error; err != nil {
			return err
		}
		if period.Status != types.PERIOD_DRAFT {
			return fmt.Errorf("billing period %d/%d is %s, only draft periods can be generated",
				period.Month, period.Year, period.Status)
		}
		start, end := period.Bounds()

		var pos []models.PurchaseOrder
		if err := tx.
			Model(&models.PurchaseOrder{}).
			Where("status IN (?)", []types.POStatus{types.PO_ACTIVE, types.PO_COMPLETED}).
			Where("type = ?", types.PO_TYPE_LESSONS).
			Where("start_date < ?", end).
			Where("end_date >= ?", start).
			Find(&pos).
			Error; err != nil {
			return err
		}

		// Regeneration replaces the previous draft items.
		if err := tx.
			Where("billing_period_id = ?", periodID).
			Delete(&models.BillingLineItem{}).
			Error; err != nil {
			return err
		}

		for i := range pos {
			po := &pos[i]
			var units int64
			if err := tx.
				Model(&models.Booking{}).
				Joins("JOIN sessions ON sessions.id = bookings.session_id").
				Where("bookings.swimmer_id = ?", po.SwimmerID).
				Where("bookings.status IN (?)", []types.BookingStatus{types.BOOKING_CONFIRMED, types.BOOKING_COMPLETED}).
				Where("sessions.start_time >= ? AND sessions.start_time < ?", start, end).
				Count(&units).
				Error; err != nil {
				return err
			}
			status := types.LINE_ITEM_INCLUDED
			if units == 0 {
				status = types.LINE_ITEM_NO_SERVICE
			}
			item := models.BillingLineItem{
				BillingPeriodID: periodID,
				PurchaseOrderID: po.ID,
				SwimmerID:       po.SwimmerID,
				FundingSourceID: po.FundingSourceID,
				Units:           int(units),
				RateCents:       po.RateCents,
				AmountCents:     units * po.RateCents,
				Status:          status,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			count++
		}

		now := time.Now()
		return tx.
			Model(&models.BillingPeriod{}).
			Where("id = ?", periodID).
			Updates(map[string]any{
				"status":       types.PERIOD_GENERATED,
				"generated_at": now,
			}).
			Error
	})
	if err != nil {
		return 0, err
	}
	log.Printf("[billing] generated %d line items for period %s\n", count, periodID.String())
	return count, nil
}

type ebillingInvoiceLine struct {
	XMLName         xml.Name `xml:"InvoiceLine"`
	AuthNumber      string   `xml:"AuthorizationNumber"`
	PONumber        string   `xml:"PurchaseOrderNumber"`
	ConsumerName    string   `xml:"ConsumerName"`
	ServiceMonth    string   `xml:"ServiceMonth"`
	Units           int      `xml:"Units"`
	RateCents       int64    `xml:"UnitRateCents"`
	AmountCents     int64    `xml:"AmountCents"`
	FundingSource   string   `xml:"FundingSource"`
}

type ebillingInvoice struct {
	XMLName      xml.Name              `xml:"EBillingInvoice"`
	VendorName   string                `xml:"VendorName"`
	ServiceMonth string                `xml:"ServiceMonth"`
	GeneratedAt  string                `xml:"GeneratedAt"`
	Lines        []ebillingInvoiceLine `xml:"Lines>InvoiceLine"`
}

// ExportFilename names the download the way the agency expects it.
func ExportFilename(year, month int) string {
	return fmt.Sprintf("VMRC_Billing_%d_%02d.xml", year, month)
}

// GenerateEBillingXML renders the agency invoice for a generated period,
// marks the included items billed, rolls PO billing status forward and
// stamps the period submitted.
func GenerateEBillingXML(periodID uuid.UUID) (string, error) {
	lockKey := fmt.Sprintf("billing:%s:lock", periodID.String())
	if !lib.AcquireLock(context.Background(), lockKey, 5*time.Minute) {
		return "", ErrPeriodLocked
	}
	defer lib.ReleaseLock(context.Background(), lockKey)

	dbi := db.GetDb()
	var out string
	err := dbi.Transaction(func(tx *gorm.DB) error {
		var period models.BillingPeriod
		if err := tx.Where(&models.BillingPeriod{ID: periodID}).First(&period).Error; err != nil {
			return err
		}
		if period.Status == types.PERIOD_DRAFT {
			return fmt.Errorf("billing period %d/%d has not been generated yet", period.Month, period.Year)
		}

		var items []models.BillingLineItem
		if err := tx.
			Model(&models.BillingLineItem{}).
			Where("billing_period_id = ?", periodID).
			Where("status IN (?)", []types.LineItemStatus{types.LINE_ITEM_INCLUDED, types.LINE_ITEM_BILLED}).
			Preload("PurchaseOrder").
			Preload("Swimmer").
			Preload("FundingSource").
			Find(&items).
			Error; err != nil {
			return err
		}

		serviceMonth := fmt.Sprintf("%d-%02d", period.Year, period.Month)
		invoice := ebillingInvoice{
			VendorName:   "Aqua Patio Swim School",
			ServiceMonth: serviceMonth,
			GeneratedAt:  time.Now().Format(time.RFC3339),
		}
		for i := range items {
			item := &items[i]
			auth := ""
			if item.PurchaseOrder.AuthorizationNumber != nil {
				auth = *item.PurchaseOrder.AuthorizationNumber
			}
			invoice.Lines = append(invoice.Lines, ebillingInvoiceLine{
				AuthNumber:    auth,
				PONumber:      item.PurchaseOrder.PONumber,
				ConsumerName:  item.Swimmer.FullName(),
				ServiceMonth:  serviceMonth,
				Units:         item.Units,
				RateCents:     item.RateCents,
				AmountCents:   item.AmountCents,
				FundingSource: item.FundingSource.ShortName,
			})
		}
		b, err := xml.MarshalIndent(&invoice, "", "  ")
		if err != nil {
			return err
		}
		out = xml.Header + string(b)

		for i := range items {
			item := &items[i]
			if item.Status != types.LINE_ITEM_INCLUDED {
				continue
			}
			if err := tx.
				Model(&models.BillingLineItem{}).
				Where("id = ?", item.ID).
				Update("status", types.LINE_ITEM_BILLED).
				Error; err != nil {
				return err
			}
			if err := tx.
				Model(&models.PurchaseOrder{}).
				Where("id = ?", item.PurchaseOrderID).
				Where("billing_status = ?", types.BILLING_UNBILLED).
				Updates(map[string]any{
					"billing_status":      types.BILLING_BILLED,
					"amount_billed_cents": gorm.Expr("amount_billed_cents + ?", item.AmountCents),
				}).
				Error; err != nil {
				return err
			}
		}

		// Re-exporting a submitted or paid period must not roll its status back.
		if period.Status != types.PERIOD_GENERATED && period.Status != types.PERIOD_REVIEWED {
			return nil
		}
		now := time.Now()
		return tx.
			Model(&models.BillingPeriod{}).
			Where("id = ?", periodID).
			Updates(map[string]any{
				"status":       types.PERIOD_SUBMITTED,
				"submitted_at": now,
			}).
			Error
	})
	if err != nil {
		return "", err
	}
	go invalidatePOStatsCache()
	return out, nil
}

type FundingSourceSummary struct {
	FundingSource     string `json:"funding_source"`
	Lessons           int    `json:"lessons"`
	AmountBilledCents int64  `json:"amount_billed_cents"`
}

type PeriodSummary struct {
	TotalLessonsAuthorized  int                    `json:"total_lessons_authorized"`
	TotalLessonsBilled      int                    `json:"total_lessons_billed"`
	TotalLessonsRemaining   int                    `json:"total_lessons_remaining"`
	TotalAmountBilledCents  int64                  `json:"total_amount_billed_cents"`
	TotalAmountPendingCents int64                  `json:"total_amount_pending_cents"`
	FundingSourceSummary    []FundingSourceSummary `json:"funding_source_summary"`
}

// SummarizeLineItems is the pure rollup behind the period summary endpoint.
func SummarizeLineItems(items []models.BillingLineItem) PeriodSummary {
	summary := PeriodSummary{FundingSourceSummary: []FundingSourceSummary{}}
	perSource := map[string]*FundingSourceSummary{}
	var order []string
	for i := range items {
		item := &items[i]
		summary.TotalLessonsAuthorized += item.PurchaseOrder.SessionsAuthorized
		switch item.Status {
		case types.LINE_ITEM_INCLUDED, types.LINE_ITEM_BILLED:
			summary.TotalLessonsBilled += item.Units
			summary.TotalAmountBilledCents += item.AmountCents
		case types.LINE_ITEM_PENDING, types.LINE_ITEM_DEFERRED:
			summary.TotalAmountPendingCents += item.AmountCents
		}
		key := item.FundingSource.ShortName
		fs, ok := perSource[key]
		if !ok {
			fs = &FundingSourceSummary{FundingSource: key}
			perSource[key] = fs
			order = append(order, key)
		}
		if item.Status == types.LINE_ITEM_INCLUDED || item.Status == types.LINE_ITEM_BILLED {
			fs.Lessons += item.Units
			fs.AmountBilledCents += item.AmountCents
		}
	}
	summary.TotalLessonsRemaining = summary.TotalLessonsAuthorized - summary.TotalLessonsBilled
	if summary.TotalLessonsRemaining < 0 {
		summary.TotalLessonsRemaining = 0
	}
	for _, key := range order {
		summary.FundingSourceSummary = append(summary.FundingSourceSummary, *perSource[key])
	}
	return summary
}

// GetPeriodSummary loads a period's line items with their POs and rolls
// them up.
func GetPeriodSummary(periodID uuid.UUID) (*PeriodSummary, error) {
	dbi := db.GetDb()
	var items []models.BillingLineItem
	if err := dbi.
		Model(&models.BillingLineItem{}).
		Where("billing_period_id = ?", periodID).
		Preload("PurchaseOrder").
		Preload("FundingSource").
		Find(&items).
		Error; err != nil {
		return nil, err
	}
	summary := SummarizeLineItems(items)
	return &summary, nil
}
