package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type SessionStatus string

const (
	SESSION_DRAFT      SessionStatus = "draft"
	SESSION_OPEN       SessionStatus = "open"
	SESSION_REASSIGNED SessionStatus = "reassigned"
	SESSION_COMPLETED  SessionStatus = "completed"
	SESSION_CANCELED   SessionStatus = "cancelled"
)

type BookingStatus string

const (
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_COMPLETED BookingStatus = "completed"
	BOOKING_CANCELED  BookingStatus = "cancelled"
)

type POStatus string

const (
	PO_PENDING               POStatus = "pending"
	PO_APPROVED_PENDING_AUTH POStatus = "approved_pending_auth"
	PO_ACTIVE                POStatus = "active"
	PO_COMPLETED             POStatus = "completed"
	PO_EXPIRED               POStatus = "expired"
	PO_CANCELED              POStatus = "cancelled"
)

type POBillingStatus string

const (
	BILLING_UNBILLED POBillingStatus = "unbilled"
	BILLING_BILLED   POBillingStatus = "billed"
	BILLING_PARTIAL  POBillingStatus = "partial"
	BILLING_PAID     POBillingStatus = "paid"
	BILLING_OVERDUE  POBillingStatus = "overdue"
	BILLING_DISPUTED POBillingStatus = "disputed"
)

type POType string

const (
	PO_TYPE_ASSESSMENT POType = "assessment"
	PO_TYPE_LESSONS    POType = "lessons"
)

type BillingPeriodStatus string

const (
	PERIOD_DRAFT     BillingPeriodStatus = "draft"
	PERIOD_GENERATED BillingPeriodStatus = "generated"
	PERIOD_REVIEWED  BillingPeriodStatus = "reviewed"
	PERIOD_SUBMITTED BillingPeriodStatus = "submitted"
	PERIOD_PAID      BillingPeriodStatus = "paid"
)

type LineItemStatus string

const (
	LINE_ITEM_PENDING    LineItemStatus = "pending"
	LINE_ITEM_INCLUDED   LineItemStatus = "included"
	LINE_ITEM_BILLED     LineItemStatus = "billed"
	LINE_ITEM_NO_SERVICE LineItemStatus = "no_service"
	LINE_ITEM_DEFERRED   LineItemStatus = "deferred"
)

type TimeOffReason string

const (
	REASON_VACATION            TimeOffReason = "vacation"
	REASON_SICK                TimeOffReason = "sick"
	REASON_PERSONAL            TimeOffReason = "personal"
	REASON_FAMILY_EMERGENCY    TimeOffReason = "family_emergency"
	REASON_MEDICAL_APPOINTMENT TimeOffReason = "medical_appointment"
	REASON_OTHER               TimeOffReason = "other"
)

type TimeOffStatus string

const (
	TIMEOFF_PENDING  TimeOffStatus = "pending"
	TIMEOFF_APPROVED TimeOffStatus = "approved"
	TIMEOFF_DECLINED TimeOffStatus = "declined"
)

type TimeEntryStatus string

const (
	TIME_ENTRY_PENDING  TimeEntryStatus = "pending"
	TIME_ENTRY_APPROVED TimeEntryStatus = "approved"
	TIME_ENTRY_REJECTED TimeEntryStatus = "rejected"
)

type EnrollmentStatus string

const (
	ENROLLMENT_WAITLIST EnrollmentStatus = "waitlist"
	ENROLLMENT_PENDING  EnrollmentStatus = "pending"
	ENROLLMENT_ENROLLED EnrollmentStatus = "enrolled"
	ENROLLMENT_DROPPED  EnrollmentStatus = "dropped"
)

type PaymentType string

const (
	PAYMENT_PRIVATE     PaymentType = "private_pay"
	PAYMENT_FUNDED      PaymentType = "funded"
	PAYMENT_SCHOLARSHIP PaymentType = "scholarship"
	PAYMENT_OTHER       PaymentType = "other"
)

const (
	ROLE_ADMIN       = "admin"
	ROLE_INSTRUCTOR  = "instructor"
	ROLE_PARENT      = "parent"
	ROLE_COORDINATOR = "vmrc_coordinator"
)

type Env string

const (
	Local      Env = "local"
	Test       Env = "test"
	Production Env = "production"
)

type UUIDRequestParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type BreakWindow struct {
	Start string `json:"start" binding:"required,clocktime"`
	End   string `json:"end" binding:"required,clocktime"`
}

type GenerateSessionsRequestBody struct {
	Mode            string        `json:"mode" binding:"required,oneof=next_month custom_range weekly_recurring_month"`
	RangeStart      *string       `json:"range_start,omitempty" binding:"omitempty,futuredate"`
	RangeEnd        *string       `json:"range_end,omitempty" binding:"omitempty,futuredate,gtdate=RangeStart"`
	DaysOfWeek      []int         `json:"days_of_week" binding:"required,min=1,dive,min=0,max=6"`
	StartTime       string        `json:"start_time" binding:"required,clocktime"`
	EndTime         string        `json:"end_time" binding:"required,clocktime"`
	DurationMinutes int           `json:"duration_minutes" binding:"required,min=15,max=120"`
	Breaks          []BreakWindow `json:"breaks,omitempty"`
	BlackoutDates   []string      `json:"blackout_dates,omitempty"`
	AdditionalDates []string      `json:"additional_dates,omitempty"`
	InstructorIDs   []string      `json:"instructor_ids" binding:"required,min=1,dive,uuid"`
	Location        string        `json:"location" binding:"required"`
	OpensAt         *string       `json:"opens_at,omitempty" binding:"omitempty"`
}

type SessionSelectionRequestBody struct {
	SessionIDs []string `json:"session_ids,omitempty" binding:"omitempty,dive,uuid"`
	BatchIDs   []string `json:"batch_ids,omitempty" binding:"omitempty,dive,uuid"`
	All        bool     `json:"all,omitempty"`
}

type EditSessionRequestBody struct {
	Date         string  `json:"date" binding:"required"`
	StartTime    string  `json:"start_time" binding:"required,clocktime"`
	EndTime      string  `json:"end_time" binding:"required,clocktime"`
	InstructorID *string `json:"instructor_id,omitempty" binding:"omitempty,uuid"`
}

type CancelSessionRequestBody struct {
	Reason        string `json:"reason,omitempty"`
	NotifyParents *bool  `json:"notify_parents,omitempty"`
}

type ReplaceInstructorRequestBody struct {
	NewInstructorID string `json:"new_instructor_id" binding:"required,uuid"`
	NotifyParents   *bool  `json:"notify_parents,omitempty"`
}

type CancelBookingRequestBody struct {
	Reason string `json:"reason,omitempty"`
}

type BlockCancelRequestBody struct {
	SwimmerID string `json:"swimmer_id" binding:"required,uuid"`
	BatchID   string `json:"batch_id" binding:"required,uuid"`
	Reason    string `json:"reason,omitempty"`
}

type CreatePORequestBody struct {
	PONumber           string  `json:"po_number" binding:"required"`
	SwimmerID          string  `json:"swimmer_id" binding:"required,uuid"`
	FundingSourceID    string  `json:"funding_source_id" binding:"required,uuid"`
	Type               string  `json:"type" binding:"required,oneof=assessment lessons"`
	SessionsAuthorized int     `json:"sessions_authorized" binding:"required,min=1"`
	RateCents          int64   `json:"rate_cents" binding:"required,min=0"`
	StartDate          string  `json:"start_date" binding:"required"`
	EndDate            string  `json:"end_date" binding:"required,gtdate=StartDate"`
	Notes              *string `json:"notes,omitempty"`
}

type UpdatePORequestBody struct {
	SessionsBooked *int    `json:"sessions_booked,omitempty" binding:"omitempty,min=0"`
	EndDate        *string `json:"end_date,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

type ApprovePORequestBody struct {
	AuthorizationNumber *string `json:"authorization_number,omitempty"`
	Notes               *string `json:"notes,omitempty"`
}

type DeclinePORequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

type UpdatePOBillingRequestBody struct {
	BillingStatus    *string `json:"billing_status,omitempty" binding:"omitempty,oneof=unbilled billed partial paid overdue disputed"`
	AmountBilled     *int64  `json:"amount_billed_cents,omitempty" binding:"omitempty,min=0"`
	AmountPaid       *int64  `json:"amount_paid_cents,omitempty" binding:"omitempty,min=0"`
	InvoiceNumber    *string `json:"invoice_number,omitempty"`
	PaymentReference *string `json:"payment_reference,omitempty"`
	DueDate          *string `json:"due_date,omitempty"`
	BillingNotes     *string `json:"billing_notes,omitempty"`
}

type CreateBillingPeriodRequestBody struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required,min=2020"`
}

type UpdateBillingPeriodStatusRequestBody struct {
	Status string `json:"status" binding:"required,oneof=reviewed paid"`
}

type CreateTimeOffRequestBody struct {
	StartDate  string `json:"start_date" binding:"required,futuredate"`
	EndDate    string `json:"end_date" binding:"required,gtdate=StartDate"`
	IsAllDay   *bool  `json:"is_all_day,omitempty"`
	ReasonType string `json:"reason_type" binding:"required,oneof=vacation sick personal family_emergency medical_appointment other"`
	Reason     string `json:"reason,omitempty"`
}

type ReviewTimeOffRequestBody struct {
	Status     string  `json:"status" binding:"required,oneof=approved declined"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

type CreateFundingSourceRequestBody struct {
	Name                  string  `json:"name" binding:"required"`
	ShortName             string  `json:"short_name,omitempty"`
	AllowedEmailDomains   string  `json:"allowed_email_domains,omitempty"`
	AssessmentSessions    *int    `json:"assessment_sessions,omitempty"`
	LessonsPerPO          *int    `json:"lessons_per_po,omitempty"`
	PODurationMonths      *int    `json:"po_duration_months,omitempty"`
	RenewalAlertThreshold *int    `json:"renewal_alert_threshold,omitempty"`
	ContactEmail          *string `json:"contact_email,omitempty" binding:"omitempty,email"`
	ContactPhone          *string `json:"contact_phone,omitempty"`
	Active                *bool   `json:"active,omitempty"`
}

type CreateSwimmerRequestBody struct {
	FirstName       string  `json:"first_name" binding:"required"`
	LastName        string  `json:"last_name" binding:"required"`
	ParentID        string  `json:"parent_id" binding:"required,uuid"`
	DateOfBirth     *string `json:"date_of_birth,omitempty"`
	PaymentType     string  `json:"payment_type" binding:"required,oneof=private_pay funded scholarship other"`
	FundingSourceID *string `json:"funding_source_id,omitempty" binding:"omitempty,uuid"`
	Notes           *string `json:"notes,omitempty"`
}

type UpdateSwimmerRequestBody struct {
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	EnrollmentStatus *string `json:"enrollment_status,omitempty" binding:"omitempty,oneof=waitlist pending enrolled dropped"`
	PaymentType      *string `json:"payment_type,omitempty" binding:"omitempty,oneof=private_pay funded scholarship other"`
	FundingSourceID  *string `json:"funding_source_id,omitempty" binding:"omitempty,uuid"`
	WaiverCompleted  *bool   `json:"waiver_completed,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

type TransferClientRequestBody struct {
	CoordinatorEmail string `json:"coordinator_email" binding:"required,email"`
	CoordinatorName  string `json:"coordinator_name" binding:"required"`
}

type UpdateTimeEntryRequestBody struct {
	Hours  *float64 `json:"hours,omitempty" binding:"omitempty,min=0"`
	Status *string  `json:"status,omitempty" binding:"omitempty,oneof=pending approved rejected"`
}

type ApproveAllTimeEntriesRequestBody struct {
	InstructorID string `json:"instructor_id" binding:"required,uuid"`
	PeriodStart  string `json:"period_start" binding:"required"`
	PeriodEnd    string `json:"period_end" binding:"required,gtdate=PeriodStart"`
}

type LoginRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type RegisterRequestBody struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone,omitempty"`
}

type SessionsQueryFilters struct {
	Status       string `form:"status,omitempty"`
	InstructorID string `form:"instructor_id,omitempty" binding:"omitempty,uuid"`
	MonthYear    string `form:"month_year,omitempty"`
	Location     string `form:"location,omitempty"`
}

type TimeOffQueryFilters struct {
	Status       string `form:"status,omitempty"`
	InstructorID string `form:"instructor_id,omitempty" binding:"omitempty,uuid"`
	StartDate    string `form:"start_date,omitempty"`
	EndDate      string `form:"end_date,omitempty"`
}

type BillingPeriodQueryFilters struct {
	Month  int    `form:"month,omitempty"`
	Year   int    `form:"year,omitempty"`
	Status string `form:"status,omitempty"`
}

type Claims struct {
	Email string   `json:"email"`
	Role  string   `json:"role"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type Identity struct {
	ID    uuid.UUID
	Email string
	Roles []string
}

type Handler func(payload string)
