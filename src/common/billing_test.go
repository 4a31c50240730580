package common

import (
	"testing"

	"swimops/src/models"
	"swimops/src/types"

	"github.com/stretchr/testify/assert"
)

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "VMRC_Billing_2026_03.xml", ExportFilename(2026, 3))
	assert.Equal(t, "VMRC_Billing_2025_12.xml", ExportFilename(2025, 12))
}

func lineItem(source string, status types.LineItemStatus, units int, amountCents int64, authorized int) models.BillingLineItem {
	return models.BillingLineItem{
		Units:         units,
		AmountCents:   amountCents,
		Status:        status,
		PurchaseOrder: models.PurchaseOrder{SessionsAuthorized: authorized},
		FundingSource: models.FundingSource{ShortName: source},
	}
}

func TestSummarizeLineItems(t *testing.T) {
	items := []models.BillingLineItem{
		lineItem("vmrc", types.LINE_ITEM_INCLUDED, 4, 34000, 12),
		lineItem("vmrc", types.LINE_ITEM_BILLED, 3, 25500, 12),
		lineItem("cvrc", types.LINE_ITEM_PENDING, 2, 17000, 12),
		lineItem("cvrc", types.LINE_ITEM_NO_SERVICE, 0, 0, 12),
	}
	summary := SummarizeLineItems(items)

	assert.Equal(t, 48, summary.TotalLessonsAuthorized)
	assert.Equal(t, 7, summary.TotalLessonsBilled)
	assert.Equal(t, 41, summary.TotalLessonsRemaining)
	assert.Equal(t, int64(59500), summary.TotalAmountBilledCents)
	assert.Equal(t, int64(17000), summary.TotalAmountPendingCents)

	assert.Len(t, summary.FundingSourceSummary, 2)
	assert.Equal(t, "vmrc", summary.FundingSourceSummary[0].FundingSource)
	assert.Equal(t, 7, summary.FundingSourceSummary[0].Lessons)
	assert.Equal(t, int64(59500), summary.FundingSourceSummary[0].AmountBilledCents)
	assert.Equal(t, "cvrc", summary.FundingSourceSummary[1].FundingSource)
	assert.Equal(t, 0, summary.FundingSourceSummary[1].Lessons)
}

func TestSummarizeLineItemsEmpty(t *testing.T) {
	summary := SummarizeLineItems(nil)
	assert.Equal(t, 0, summary.TotalLessonsAuthorized)
	assert.Equal(t, 0, summary.TotalLessonsRemaining)
	assert.Empty(t, summary.FundingSourceSummary)
	assert.NotNil(t, summary.FundingSourceSummary)
}

func TestCanAdvancePeriod(t *testing.T) {
	steps := [][2]types.BillingPeriodStatus{
		{types.PERIOD_DRAFT, types.PERIOD_GENERATED},
		{types.PERIOD_GENERATED, types.PERIOD_REVIEWED},
		{types.PERIOD_REVIEWED, types.PERIOD_SUBMITTED},
		{types.PERIOD_SUBMITTED, types.PERIOD_PAID},
	}
	for _, step := range steps {
		assert.True(t, CanAdvancePeriod(step[0], step[1]), "%s -> %s", step[0], step[1])
	}

	assert.False(t, CanAdvancePeriod(types.PERIOD_DRAFT, types.PERIOD_REVIEWED), "reviewed requires a generated period")
	assert.False(t, CanAdvancePeriod(types.PERIOD_GENERATED, types.PERIOD_PAID), "paid requires a submitted period")
	assert.False(t, CanAdvancePeriod(types.PERIOD_PAID, types.PERIOD_SUBMITTED), "the flow never moves backwards")
	assert.False(t, CanAdvancePeriod(types.PERIOD_SUBMITTED, types.PERIOD_SUBMITTED))
}
