package entity

import "time"

// Document types tracked in the register. The Annex XIII statement is the
// MDR conformity declaration generated when a work sheet passes QC.
const (
	DocumentTypeAnnexXIII  = "ANNEX_XIII"
	DocumentTypeInvoicePDF = "INVOICE_PDF"
)

// Document is a register row for a generated PDF: its number, what it belongs
// to, where the rendered file lives and how long it must be retained. The
// register outlives the blobs; RetentionUntil drives the archival policy, not
// automatic deletion.
type Document struct {
	ID             string
	Type           string
	Number         string // MDR-<worksheet number> or the invoice number
	WorksheetID    *string
	InvoiceID      *string
	PDFPath        string // object key in the artifact store
	GeneratedAt    time.Time
	RetentionUntil time.Time
}
