package entity

import "time"

// Audit actions. One constant per mutating operation; readers filter on these
// values so they must stay stable once written.
const (
	AuditActionOrderCreated      = "ORDER_CREATED"
	AuditActionOrderUpdated      = "ORDER_UPDATED"
	AuditActionOrderCancelled    = "ORDER_CANCELLED"
	AuditActionOrderDeleted      = "ORDER_DELETED"
	AuditActionStatusChanged     = "STATUS_CHANGED"
	AuditActionStockArrival      = "STOCK_ARRIVAL"
	AuditActionStockConsumed     = "STOCK_CONSUMED"
	AuditActionLotCorrected      = "LOT_CORRECTED"
	AuditActionLotDeleted        = "LOT_DELETED"
	AuditActionQCSubmitted       = "QC_SUBMITTED"
	AuditActionInvoiceCreated    = "INVOICE_CREATED"
	AuditActionInvoiceUpdated    = "INVOICE_UPDATED"
	AuditActionInvoiceFinalized  = "INVOICE_FINALIZED"
	AuditActionInvoiceSent       = "INVOICE_SENT"
	AuditActionInvoiceCancelled  = "INVOICE_CANCELLED"
	AuditActionInvoiceDeleted    = "INVOICE_DELETED"
	AuditActionPaymentProgressed = "PAYMENT_PROGRESSED"
	AuditActionDocumentGenerated = "DOCUMENT_GENERATED"
	AuditActionConfigChanged     = "CONFIG_CHANGED"
)

// AuditEntry is one append-only line in the compliance ledger: who did what to
// which entity, with JSON before/after snapshots for corrections. Entries are
// never updated or deleted.
type AuditEntry struct {
	ID         string
	ActorID    string
	ActorRole  string
	Action     string
	EntityType string // orders, worksheets, material_lots, invoices, ...
	EntityID   string
	Before     []byte // JSON snapshot, nil when not applicable
	After      []byte
	Reason     string // free-text justification, required for admin corrections
	CreatedAt  time.Time
}
