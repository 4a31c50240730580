package common

import (
	"testing"
	"time"

	"swimops/src/models"
	"swimops/src/types"

	"github.com/stretchr/testify/assert"
)

func TestComputePOStats(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -5)
	endingSoon := now.AddDate(0, 0, 3)

	pos := []models.PurchaseOrder{
		{Status: types.PO_PENDING},
		{Status: types.PO_APPROVED_PENDING_AUTH},
		{
			Status:            types.PO_ACTIVE,
			EndDate:           endingSoon,
			DueDate:           &overdue,
			BillingStatus:     types.BILLING_BILLED,
			AmountBilledCents: 34000,
			AmountPaidCents:   10000,
		},
		{
			Status:            types.PO_COMPLETED,
			DueDate:           &overdue,
			BillingStatus:     types.BILLING_PAID,
			AmountBilledCents: 25500,
			AmountPaidCents:   25500,
		},
		{Status: types.PO_CANCELED},
		{Status: types.PO_EXPIRED},
	}

	stats := ComputePOStats(pos, now)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.ApprovedPendingAuth)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, 1, stats.Expired)

	// The paid PO with a past due date is not past due.
	assert.Equal(t, 1, stats.PastDue)
	assert.Equal(t, 1, stats.ExpiringSoon)

	assert.Equal(t, int64(59500), stats.TotalBilledCents)
	assert.Equal(t, int64(35500), stats.TotalPaidCents)
	assert.Equal(t, int64(24000), stats.TotalOutstandingCents)
}

func TestComputePOStatsEmpty(t *testing.T) {
	stats := ComputePOStats(nil, time.Now())
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, int64(0), stats.TotalOutstandingCents)
}

func TestDeclineUpdates(t *testing.T) {
	updates := declineUpdates("no authorization on file")

	assert.Equal(t, types.PO_CANCELED, updates["status"])
	assert.Equal(t, "Declined: no authorization on file", updates["notes"])
}
