package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/audit"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// PDFOrchestrator renders the invoice PDF after finalization commits: gather
// the data, render through the generator port, stamp PDFPath on the invoice
// and register the document. Runs detached from the finalize request; a
// failed render leaves the invoice finalized with an empty PDFPath and the
// renderer can be re-run later.
type PDFOrchestrator struct {
	invoiceRepo  repository.InvoiceRepository
	dentistRepo  repository.DentistRepository
	configRepo   repository.LabConfigRepository
	documentRepo repository.DocumentRepository
	auditRepo    repository.AuditRepository
	generator    InvoicePDFGenerator
}

// NewPDFOrchestrator builds the orchestrator. generator may be nil; every run
// is then skipped with a debug line.
func NewPDFOrchestrator(
	invoiceRepo repository.InvoiceRepository,
	dentistRepo repository.DentistRepository,
	configRepo repository.LabConfigRepository,
	documentRepo repository.DocumentRepository,
	auditRepo repository.AuditRepository,
	generator InvoicePDFGenerator,
) *PDFOrchestrator {
	return &PDFOrchestrator{
		invoiceRepo:  invoiceRepo,
		dentistRepo:  dentistRepo,
		configRepo:   configRepo,
		documentRepo: documentRepo,
		auditRepo:    auditRepo,
		generator:    generator,
	}
}

// ProcessAsync renders in a detached goroutine with its own deadline.
func (o *PDFOrchestrator) ProcessAsync(invoiceID string, actor audit.Actor) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := o.Process(ctx, invoiceID, actor); err != nil {
			log.Warn().Err(err).Str("invoice_id", invoiceID).Msg("invoice pdf generation failed, invoice stands")
		}
	}()
}

// Process is the synchronous core: re-fetch fresh state, render, register.
func (o *PDFOrchestrator) Process(ctx context.Context, invoiceID string, actor audit.Actor) error {
	if o.generator == nil {
		log.Debug().Str("invoice_id", invoiceID).Msg("invoice pdf generator not configured, skipping")
		return nil
	}

	invoice, err := o.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("fetch invoice: %w", err)
	}
	if invoice.IsDraft || invoice.Number == "" {
		log.Debug().Str("invoice_id", invoiceID).Msg("invoice not finalized, skipping pdf")
		return nil
	}
	dentist, err := o.dentistRepo.GetByID(ctx, invoice.DentistID)
	if err != nil {
		return fmt.Errorf("fetch dentist: %w", err)
	}
	cfg, err := o.configRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("fetch lab profile: %w", err)
	}
	items, err := o.invoiceRepo.ListLineItems(ctx, invoice.ID)
	if err != nil {
		return fmt.Errorf("fetch line items: %w", err)
	}

	data := InvoicePDFData{
		Number:            invoice.Number,
		LabName:           cfg.LabName,
		LabAddress:        cfg.Address,
		MDRRegistrationNo: cfg.MDRRegistrationNo,
		DentistName:       dentist.Name,
		ClinicName:        dentist.ClinicName,
		DentistAddress:    dentist.Address,
		VATNumber:         dentist.VATNumber,
		Subtotal:          invoice.Subtotal,
		DiscountRate:      invoice.DiscountRate,
		DiscountAmount:    invoice.DiscountAmount,
		TaxRate:           invoice.TaxRate,
		TaxAmount:         invoice.TaxAmount,
		Total:             invoice.Total,
		Notes:             invoice.Notes,
	}
	if invoice.IssueDate != nil {
		data.IssueDate = *invoice.IssueDate
	}
	for _, it := range items {
		data.Lines = append(data.Lines, PDFLine{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
		})
	}

	pdfPath, err := o.generator.RenderInvoice(ctx, data)
	if err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}

	invoice.PDFPath = pdfPath
	invoice.UpdatedAt = time.Now()
	if err := o.invoiceRepo.Update(ctx, invoice); err != nil {
		return fmt.Errorf("stamp pdf path: %w", err)
	}

	now := time.Now()
	doc := &entity.Document{
		ID:             uuid.New().String(),
		Type:           entity.DocumentTypeInvoicePDF,
		Number:         invoice.Number,
		InvoiceID:      &invoice.ID,
		PDFPath:        pdfPath,
		GeneratedAt:    now,
		RetentionUntil: now.AddDate(cfg.RetentionYears, 0, 0),
	}
	if err := o.documentRepo.Create(ctx, doc); err != nil {
		return fmt.Errorf("register document: %w", err)
	}

	audit.Record(ctx, o.auditRepo, actor, audit.Entry{
		Action:     entity.AuditActionDocumentGenerated,
		EntityType: "documents",
		EntityID:   doc.ID,
		After:      doc,
	})
	log.Info().Str("document", doc.Number).Str("path", pdfPath).Msg("invoice pdf generated")
	return nil
}
