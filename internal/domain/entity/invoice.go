package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice payment statuses. DRAFT invoices carry no number and may be edited
// or deleted freely; FINALIZED and later statuses are immutable except for the
// payment progression FINALIZED -> SENT -> VIEWED -> PAID and cancellation.
const (
	PaymentStatusDraft     = "DRAFT"
	PaymentStatusFinalized = "FINALIZED"
	PaymentStatusSent      = "SENT"
	PaymentStatusViewed    = "VIEWED"
	PaymentStatusPaid      = "PAID"
	PaymentStatusCancelled = "CANCELLED"
)

// Invoice is the billing header for one dentist covering one or more approved
// work sheets. Number is empty while the invoice is a draft and becomes
// RAC-YYYY-NNN at finalization. Money fields are decimals; Total =
// Subtotal - DiscountAmount + TaxAmount, recomputed server-side on every edit.
type Invoice struct {
	ID             string
	Number         string
	DentistID      string
	IsDraft        bool
	IssueDate      *time.Time // set at finalization
	Subtotal       decimal.Decimal
	DiscountRate   decimal.Decimal // percentage, e.g. 5 means 5%
	DiscountAmount decimal.Decimal
	TaxRate        decimal.Decimal // VAT percentage applied after discount
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	PaymentStatus  string
	PDFPath        string // object key of the rendered PDF, empty until generated
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
