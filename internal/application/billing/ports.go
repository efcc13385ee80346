// Package billing turns approved production into money: invoice aggregation,
// finalization under the year lock, the compensating cancellation path, the
// payment trail and outbound mail.
package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// TxRunner runs fn inside one transaction, handing it transactional variants
// of the repositories billing mutates. Any error from fn rolls the whole unit
// back, including the status flips on sheets and orders.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		orderRepo repository.OrderRepository,
		worksheetRepo repository.WorkSheetRepository,
		emailLogRepo repository.EmailLogRepository,
		auditRepo repository.AuditRepository,
	) error) error
}

// PDFLine is one rendered invoice line.
type PDFLine struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// InvoicePDFData is everything the invoice PDF renders.
type InvoicePDFData struct {
	Number            string
	IssueDate         time.Time
	LabName           string
	LabAddress        string
	MDRRegistrationNo string
	DentistName       string
	ClinicName        string
	DentistAddress    string
	VATNumber         string
	Lines             []PDFLine
	Subtotal          decimal.Decimal
	DiscountRate      decimal.Decimal
	DiscountAmount    decimal.Decimal
	TaxRate           decimal.Decimal
	TaxAmount         decimal.Decimal
	Total             decimal.Decimal
	Notes             string
}

// InvoicePDFGenerator renders the invoice and stores the PDF, returning the
// object key for the register. Wiring may leave it nil; generation is then
// skipped and the invoice keeps an empty PDFPath.
type InvoicePDFGenerator interface {
	RenderInvoice(ctx context.Context, data InvoicePDFData) (pdfPath string, err error)
}

// OutboundEmail is one invoice mail handed to the sender.
type OutboundEmail struct {
	To             string
	Subject        string
	Body           string
	Attachment     []byte
	AttachmentName string
}

// EmailSender delivers invoice mail. The result lands in the email log either
// way; transport details (SMTP, OAuth) live behind this port.
type EmailSender interface {
	Send(ctx context.Context, mail OutboundEmail) error
}

// ArtifactStore reads and purges rendered PDFs by object key.
type ArtifactStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
