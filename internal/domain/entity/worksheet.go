package entity

import "time"

// Work sheet lifecycle statuses. QC_REJECTED loops back to IN_PRODUCTION for
// rework; VOIDED is the administrative dead end (sheet kept for traceability).
const (
	WorkSheetStatusDraft        = "DRAFT"
	WorkSheetStatusInProduction = "IN_PRODUCTION"
	WorkSheetStatusQCPending    = "QC_PENDING"
	WorkSheetStatusQCApproved   = "QC_APPROVED"
	WorkSheetStatusQCRejected   = "QC_REJECTED"
	WorkSheetStatusDelivered    = "DELIVERED"
	WorkSheetStatusVoided       = "VOIDED"
)

// WorkSheet is the production record for an order: which pieces are being made,
// which material lots went into them, and the QC verdict. One active sheet per
// order; its number prefixes the MDR document reference (MDR-<number>).
type WorkSheet struct {
	ID        string
	OrderID   string
	Number    string // always DN-<parent order number>, never stored independently
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
