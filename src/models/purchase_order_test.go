package models

import (
	"testing"
	"time"

	"swimops/src/types"

	"github.com/stretchr/testify/assert"
)

func TestPurchaseOrderIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 1)

	po := PurchaseOrder{}
	assert.False(t, po.IsOverdue(now), "no due date is never overdue")

	po.DueDate = &future
	assert.False(t, po.IsOverdue(now))

	po.DueDate = &past
	po.BillingStatus = types.BILLING_BILLED
	assert.True(t, po.IsOverdue(now))

	po.BillingStatus = types.BILLING_PAID
	assert.False(t, po.IsOverdue(now), "paid orders are never overdue")
}

func TestPurchaseOrderCanComplete(t *testing.T) {
	po := PurchaseOrder{Status: types.PO_ACTIVE, SessionsAuthorized: 12, SessionsUsed: 11}
	assert.False(t, po.CanComplete())

	po.SessionsUsed = 12
	assert.True(t, po.CanComplete())

	po.Status = types.PO_PENDING
	assert.False(t, po.CanComplete())
}

func TestPurchaseOrderSessionsRemaining(t *testing.T) {
	po := PurchaseOrder{SessionsAuthorized: 12, SessionsUsed: 4}
	assert.Equal(t, 8, po.SessionsRemaining())

	po.SessionsUsed = 15
	assert.Equal(t, 0, po.SessionsRemaining())
}

func TestPurchaseOrderExpiringSoon(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	window := 7 * 24 * time.Hour

	po := PurchaseOrder{Status: types.PO_ACTIVE, EndDate: now.AddDate(0, 0, 3)}
	assert.True(t, po.ExpiringSoon(now, window))

	po.EndDate = now.AddDate(0, 0, 10)
	assert.False(t, po.ExpiringSoon(now, window))

	po.EndDate = now.AddDate(0, 0, -1)
	assert.False(t, po.ExpiringSoon(now, window), "already ended is not expiring")

	po.Status = types.PO_PENDING
	po.EndDate = now.AddDate(0, 0, 3)
	assert.False(t, po.ExpiringSoon(now, window))
}

func TestPurchaseOrderAmountOutstanding(t *testing.T) {
	po := PurchaseOrder{AmountBilledCents: 34000, AmountPaidCents: 10000}
	assert.Equal(t, int64(24000), po.AmountOutstandingCents())

	po.AmountPaidCents = 40000
	assert.Equal(t, int64(0), po.AmountOutstandingCents())
}
