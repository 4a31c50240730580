package models

import (
	"time"

	"swimops/src/types"

	"github.com/google/uuid"
)

type BillingPeriod struct {
	ID          uuid.UUID                 `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Month       int                       `gorm:"uniqueIndex:idx_billing_month_year" json:"month"`
	Year        int                       `gorm:"uniqueIndex:idx_billing_month_year" json:"year"`
	Status      types.BillingPeriodStatus `gorm:"default:'draft'" json:"status,omitempty"`
	GeneratedAt *time.Time                `json:"generated_at,omitempty"`
	SubmittedAt *time.Time                `json:"submitted_at,omitempty"`

	LineItems []BillingLineItem `gorm:"foreignKey:billing_period_id" json:"line_items,omitempty"`

	types.Timestamps
}

// Bounds returns the half-open [start, end) window of the period.
func (p *BillingPeriod) Bounds() (time.Time, time.Time) {
	start := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

type BillingLineItem struct {
	ID              uuid.UUID            `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	BillingPeriodID uuid.UUID            `gorm:"type:uuid;index" json:"billing_period_id,omitempty"`
	PurchaseOrderID uuid.UUID            `gorm:"type:uuid;index" json:"purchase_order_id,omitempty"`
	SwimmerID       uuid.UUID            `gorm:"type:uuid" json:"swimmer_id,omitempty"`
	FundingSourceID uuid.UUID            `gorm:"type:uuid" json:"funding_source_id,omitempty"`
	Units           int                  `json:"units"`
	RateCents       int64                `json:"rate_cents"`
	AmountCents     int64                `json:"amount_cents"`
	Status          types.LineItemStatus `gorm:"default:'pending'" json:"status,omitempty"`

	PurchaseOrder PurchaseOrder `gorm:"foreignKey:purchase_order_id" json:"purchase_order,omitempty"`
	Swimmer       Swimmer       `gorm:"foreignKey:swimmer_id" json:"swimmer,omitempty"`
	FundingSource FundingSource `gorm:"foreignKey:funding_source_id" json:"funding_source,omitempty"`

	types.Timestamps
}
