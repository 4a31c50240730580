package models

import (
	"time"

	"swimops/src/types"

	"github.com/google/uuid"
)

type PurchaseOrder struct {
	ID                  uuid.UUID             `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	PONumber            string                `gorm:"uniqueIndex" json:"po_number,omitempty"`
	SwimmerID           uuid.UUID             `gorm:"type:uuid;index" json:"swimmer_id,omitempty"`
	FundingSourceID     uuid.UUID             `gorm:"type:uuid;index" json:"funding_source_id,omitempty"`
	Type                types.POType          `gorm:"default:'lessons'" json:"type,omitempty"`
	Status              types.POStatus        `gorm:"default:'pending'" json:"status,omitempty"`
	AuthorizationNumber *string               `json:"authorization_number,omitempty"`
	SessionsAuthorized  int                   `json:"sessions_authorized,omitempty"`
	SessionsBooked      int                   `json:"sessions_booked"`
	SessionsUsed        int                   `json:"sessions_used"`
	RateCents           int64                 `json:"rate_cents,omitempty"`
	StartDate           time.Time             `json:"start_date,omitempty"`
	EndDate             time.Time             `json:"end_date,omitempty"`
	Notes               *string               `json:"notes,omitempty"`
	BillingStatus       types.POBillingStatus `gorm:"default:'unbilled'" json:"billing_status,omitempty"`
	AmountBilledCents   int64                 `json:"amount_billed_cents"`
	AmountPaidCents     int64                 `json:"amount_paid_cents"`
	InvoiceNumber       *string               `json:"invoice_number,omitempty"`
	PaymentReference    *string               `json:"payment_reference,omitempty"`
	DueDate             *time.Time            `json:"due_date,omitempty"`
	BillingNotes        *string               `json:"billing_notes,omitempty"`

	Swimmer       Swimmer       `gorm:"foreignKey:swimmer_id" json:"swimmer,omitempty"`
	FundingSource FundingSource `gorm:"foreignKey:funding_source_id" json:"funding_source,omitempty"`

	types.Timestamps
}

// IsOverdue is derived at read time rather than stored, so a stale
// billing_status can never hide a past-due PO.
func (po *PurchaseOrder) IsOverdue(now time.Time) bool {
	if po.DueDate == nil {
		return false
	}
	return po.DueDate.Before(now) && po.BillingStatus != types.BILLING_PAID
}

// CanComplete gates the manual completed transition.
func (po *PurchaseOrder) CanComplete() bool {
	return po.Status == types.PO_ACTIVE && po.SessionsUsed >= po.SessionsAuthorized
}

func (po *PurchaseOrder) SessionsRemaining() int {
	remaining := po.SessionsAuthorized - po.SessionsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ExpiringSoon flags active POs ending within the renewal window.
func (po *PurchaseOrder) ExpiringSoon(now time.Time, window time.Duration) bool {
	if po.Status != types.PO_ACTIVE {
		return false
	}
	return po.EndDate.After(now) && po.EndDate.Sub(now) <= window
}

func (po *PurchaseOrder) AmountOutstandingCents() int64 {
	out := po.AmountBilledCents - po.AmountPaidCents
	if out < 0 {
		return 0
	}
	return out
}
