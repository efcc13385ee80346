package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/audit"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// InvoiceUseCase aggregates approved work into invoices. Drafts are freely
// editable and deletable; the moment a number is assigned the invoice is
// frozen except for the payment progression and cancellation.
type InvoiceUseCase struct {
	txRunner      TxRunner
	invoiceRepo   repository.InvoiceRepository
	orderRepo     repository.OrderRepository
	worksheetRepo repository.WorkSheetRepository
	dentistRepo   repository.DentistRepository
	configRepo    repository.LabConfigRepository
	artifacts     ArtifactStore    // nil when no blob store is wired
	pdf           *PDFOrchestrator // nil when rendering is not wired
}

// NewInvoiceUseCase builds the use case. artifacts and pdf may be nil.
func NewInvoiceUseCase(
	txRunner TxRunner,
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	worksheetRepo repository.WorkSheetRepository,
	dentistRepo repository.DentistRepository,
	configRepo repository.LabConfigRepository,
	artifacts ArtifactStore,
	pdf *PDFOrchestrator,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:      txRunner,
		invoiceRepo:   invoiceRepo,
		orderRepo:     orderRepo,
		worksheetRepo: worksheetRepo,
		dentistRepo:   dentistRepo,
		configRepo:    configRepo,
		artifacts:     artifacts,
		pdf:           pdf,
	}
}

// Create builds an invoice for one dentist from QC_APPROVED sheets plus any
// manual lines. Worksheet lines are priced at their frozen selection prices.
// With is_draft=false the invoice finalizes in the same transaction.
func (uc *InvoiceUseCase) Create(ctx context.Context, actor audit.Actor, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if strings.TrimSpace(in.DentistID) == "" {
		return nil, fmt.Errorf("%w: dentist_id is required", domain.ErrInvalidInput)
	}
	dentist, err := uc.dentistRepo.GetByID(ctx, in.DentistID)
	if err != nil {
		return nil, fmt.Errorf("dentist %s: %w", in.DentistID, err)
	}
	cfg, err := uc.configRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	taxRate := cfg.DefaultTaxRate
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	discountRate := cfg.DefaultDiscount
	if in.DiscountRate != nil {
		discountRate = *in.DiscountRate
	}
	if err := validateRate("tax_rate", taxRate); err != nil {
		return nil, err
	}
	if err := validateRate("discount_rate", discountRate); err != nil {
		return nil, err
	}

	items, err := uc.buildLines(ctx, dentist.ID, in.WorksheetIDs, in.ManualItems)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	invoice := &entity.Invoice{
		ID:            uuid.New().String(),
		DentistID:     dentist.ID,
		IsDraft:       true,
		DiscountRate:  discountRate,
		TaxRate:       taxRate,
		PaymentStatus: entity.PaymentStatusDraft,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	invoice.Subtotal, invoice.DiscountAmount, invoice.TaxAmount, invoice.Total = computeTotals(items, discountRate, taxRate)

	finalizeNow := in.IsDraft != nil && !*in.IsDraft

	err = uc.txRunner.Run(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		orderRepo repository.OrderRepository,
		worksheetRepo repository.WorkSheetRepository,
		_ repository.EmailLogRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := invoiceRepo.Create(ctx, invoice); err != nil {
			return err
		}
		for _, item := range items {
			item.InvoiceID = invoice.ID
			if err := invoiceRepo.AddLineItem(ctx, item); err != nil {
				return err
			}
		}
		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionInvoiceCreated,
			EntityType: "invoices",
			EntityID:   invoice.ID,
			After:      invoice,
		})
		if finalizeNow {
			return applyFinalization(ctx, actor, invoiceRepo, orderRepo, worksheetRepo, auditRepo, invoice)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if finalizeNow && uc.pdf != nil {
		uc.pdf.ProcessAsync(invoice.ID, actor)
	}
	return toInvoiceResponse(invoice, items, dentist.Name), nil
}

// Get returns one invoice with its lines.
func (uc *InvoiceUseCase) Get(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := uc.invoiceRepo.ListLineItems(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	name := ""
	if dentist, err := uc.dentistRepo.GetByID(ctx, invoice.DentistID); err == nil {
		name = dentist.Name
	}
	return toInvoiceResponse(invoice, items, name), nil
}

// List returns invoices, newest first, filtered by dentist and payment status.
func (uc *InvoiceUseCase) List(ctx context.Context, in dto.ListInvoicesRequest) ([]dto.InvoiceResponse, error) {
	in.DefaultPage()
	invoices, err := uc.invoiceRepo.List(ctx, repository.InvoiceFilter{
		DentistID:     in.DentistID,
		PaymentStatus: in.PaymentStatus,
		Limit:         in.Limit,
		Offset:        in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, *toInvoiceResponse(inv, nil, ""))
	}
	return out, nil
}

// Update replaces a draft's line set wholesale and recomputes the totals.
// Finalized invoices are immutable.
func (uc *InvoiceUseCase) Update(ctx context.Context, actor audit.Actor, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	current, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := uc.buildLines(ctx, current.DentistID, in.WorksheetIDs, in.ManualItems)
	if err != nil {
		return nil, err
	}

	var updated *entity.Invoice
	err = uc.txRunner.Run(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.OrderRepository,
		_ repository.WorkSheetRepository,
		_ repository.EmailLogRepository,
		auditRepo repository.AuditRepository,
	) error {
		invoice, err := invoiceRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !invoice.IsDraft {
			return fmt.Errorf("%w: invoice %s is finalized, only drafts can be edited", domain.ErrValidationFailed, invoice.Number)
		}
		before := *invoice

		if in.TaxRate != nil {
			if err := validateRate("tax_rate", *in.TaxRate); err != nil {
				return err
			}
			invoice.TaxRate = *in.TaxRate
		}
		if in.DiscountRate != nil {
			if err := validateRate("discount_rate", *in.DiscountRate); err != nil {
				return err
			}
			invoice.DiscountRate = *in.DiscountRate
		}
		if in.Notes != nil {
			invoice.Notes = *in.Notes
		}
		for _, item := range items {
			item.InvoiceID = invoice.ID
		}
		if err := invoiceRepo.ReplaceLineItems(ctx, invoice.ID, items); err != nil {
			return err
		}
		invoice.Subtotal, invoice.DiscountAmount, invoice.TaxAmount, invoice.Total = computeTotals(items, invoice.DiscountRate, invoice.TaxRate)
		invoice.UpdatedAt = time.Now()
		if err := invoiceRepo.Update(ctx, invoice); err != nil {
			return err
		}

		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionInvoiceUpdated,
			EntityType: "invoices",
			EntityID:   invoice.ID,
			Before:     before,
			After:      invoice,
		})
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(updated, items, ""), nil
}

// Delete removes a draft outright, or a cancelled invoice after its reversal
// has run. The rendered PDF is purged from the blob store best effort; the
// document register row stays.
func (uc *InvoiceUseCase) Delete(ctx context.Context, actor audit.Actor, id string) error {
	var purgePath string
	err := uc.txRunner.Run(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.OrderRepository,
		_ repository.WorkSheetRepository,
		_ repository.EmailLogRepository,
		auditRepo repository.AuditRepository,
	) error {
		invoice, err := invoiceRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !invoice.IsDraft && invoice.PaymentStatus != entity.PaymentStatusCancelled {
			return fmt.Errorf("%w: invoice %s must be cancelled before deletion", domain.ErrValidationFailed, invoice.Number)
		}
		if err := invoiceRepo.Delete(ctx, invoice.ID); err != nil {
			return err
		}
		purgePath = invoice.PDFPath
		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionInvoiceDeleted,
			EntityType: "invoices",
			EntityID:   invoice.ID,
			Before:     invoice,
		})
		return nil
	})
	if err != nil {
		return err
	}

	if purgePath != "" && uc.artifacts != nil {
		if err := uc.artifacts.Delete(ctx, purgePath); err != nil {
			log.Warn().Err(err).Str("path", purgePath).Msg("pdf purge failed, blob left behind")
		}
	}
	return nil
}

// buildLines validates the referenced sheets and assembles the full line set:
// imported worksheet lines first, manual lines after, positions running 1..n.
func (uc *InvoiceUseCase) buildLines(ctx context.Context, dentistID string, worksheetIDs []string, manual []dto.ManualLineItemRequest) ([]*entity.InvoiceLineItem, error) {
	items := make([]*entity.InvoiceLineItem, 0, len(worksheetIDs)+len(manual))
	position := 0
	seen := make(map[string]bool, len(worksheetIDs))

	for _, wsID := range worksheetIDs {
		if seen[wsID] {
			return nil, fmt.Errorf("%w: worksheet %s listed twice", domain.ErrInvalidInput, wsID)
		}
		seen[wsID] = true

		sheet, err := uc.worksheetRepo.GetByID(ctx, wsID)
		if err != nil {
			return nil, fmt.Errorf("worksheet %s: %w", wsID, err)
		}
		if sheet.Status != entity.WorkSheetStatusQCApproved {
			return nil, fmt.Errorf("%w: sheet %s is %s, only QC_APPROVED work can be invoiced", domain.ErrValidationFailed, sheet.Number, sheet.Status)
		}
		order, err := uc.orderRepo.GetByID(ctx, sheet.OrderID)
		if err != nil {
			return nil, err
		}
		if order.DentistID != dentistID {
			return nil, fmt.Errorf("%w: sheet %s belongs to a different dentist", domain.ErrValidationFailed, sheet.Number)
		}

		lines, err := uc.worksheetRepo.ListProducts(ctx, sheet.ID)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			position++
			sheetID := sheet.ID
			items = append(items, &entity.InvoiceLineItem{
				ID:          uuid.New().String(),
				WorksheetID: &sheetID,
				Description: l.Description,
				Quantity:    l.Quantity,
				UnitPrice:   l.PriceAtSelection,
				Amount:      l.PriceAtSelection.Mul(decimal.NewFromInt(int64(l.Quantity))),
				Position:    position,
			})
		}
	}

	for _, m := range manual {
		if strings.TrimSpace(m.Description) == "" {
			return nil, fmt.Errorf("%w: manual line description is required", domain.ErrInvalidInput)
		}
		if m.Quantity <= 0 {
			return nil, fmt.Errorf("%w: manual line quantity must be positive", domain.ErrInvalidInput)
		}
		position++
		items = append(items, &entity.InvoiceLineItem{
			ID:          uuid.New().String(),
			Description: m.Description,
			Quantity:    m.Quantity,
			UnitPrice:   m.UnitPrice,
			Amount:      m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity))),
			Position:    position,
		})
	}
	return items, nil
}

// computeTotals runs the exact decimal chain and rounds once at the end.
// Subtotal, discount and tax are rounded for display; the total comes from
// the unrounded chain so cents never drift with the line count.
func computeTotals(items []*entity.InvoiceLineItem, discountRate, taxRate decimal.Decimal) (subtotal, discountAmount, taxAmount, total decimal.Decimal) {
	for _, it := range items {
		subtotal = subtotal.Add(it.Amount)
	}
	hundred := decimal.NewFromInt(100)
	discountAmount = subtotal.Mul(discountRate).Div(hundred)
	taxAmount = subtotal.Sub(discountAmount).Mul(taxRate).Div(hundred)
	total = subtotal.Sub(discountAmount).Add(taxAmount)
	return subtotal.Round(2), discountAmount.Round(2), taxAmount.Round(2), total.Round(2)
}

func validateRate(field string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: %s must be between 0 and 100", domain.ErrInvalidInput, field)
	}
	return nil
}

// ── mappers ───────────────────────────────────────────────────────────────────

func toInvoiceResponse(inv *entity.Invoice, items []*entity.InvoiceLineItem, dentistName string) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		DentistID:      inv.DentistID,
		DentistName:    dentistName,
		IsDraft:        inv.IsDraft,
		Subtotal:       inv.Subtotal,
		DiscountRate:   inv.DiscountRate,
		DiscountAmount: inv.DiscountAmount,
		TaxRate:        inv.TaxRate,
		TaxAmount:      inv.TaxAmount,
		Total:          inv.Total,
		PaymentStatus:  inv.PaymentStatus,
		PDFPath:        inv.PDFPath,
		Notes:          inv.Notes,
	}
	if inv.IssueDate != nil {
		resp.IssueDate = inv.IssueDate.Format("2006-01-02")
	}
	for _, it := range items {
		line := dto.InvoiceLineItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
			Position:    it.Position,
		}
		if it.WorksheetID != nil {
			line.WorksheetID = *it.WorksheetID
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}
