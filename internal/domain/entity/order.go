package entity

import "time"

// Order lifecycle statuses. Transitions are validated by the workflow package;
// these constants must match the CHECK constraint on the orders table.
const (
	OrderStatusPending      = "PENDING"
	OrderStatusInProduction = "IN_PRODUCTION"
	OrderStatusQCPending    = "QC_PENDING"
	OrderStatusQCApproved   = "QC_APPROVED"
	OrderStatusInvoiced     = "INVOICED"
	OrderStatusDelivered    = "DELIVERED"
	OrderStatusCancelled    = "CANCELLED"
)

// Order represents a dentist's commission for one or more prosthetic pieces.
// PatientRef is a pseudonymous reference (initials or chart number), never the
// patient's full identity.
type Order struct {
	ID         string
	Number     string // YYNNN, e.g. 25042; assigned at creation, never reused
	DentistID  string
	PatientRef string
	Status     string
	DueDate    *time.Time
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time // soft delete; nil = active
}

// Deleted reports whether the order has been soft deleted.
func (o *Order) Deleted() bool {
	return o.DeletedAt != nil
}
