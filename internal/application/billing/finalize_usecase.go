package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/audit"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/numbering"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/workflow"
)

// FinalizeUseCase owns the invoice's hard state changes: number assignment,
// the compensating cancellation and the payment progression. Everything here
// runs under the transaction runner; finalization additionally holds the
// per-year lock so two invoices can never draw the same number.
type FinalizeUseCase struct {
	txRunner TxRunner
	pdf      *PDFOrchestrator // nil when rendering is not wired
}

// NewFinalizeUseCase builds the use case. pdf may be nil.
func NewFinalizeUseCase(txRunner TxRunner, pdf *PDFOrchestrator) *FinalizeUseCase {
	return &FinalizeUseCase{txRunner: txRunner, pdf: pdf}
}

// Finalize assigns the permanent RAC number and runs the delivery flips:
// every referenced sheet moves to DELIVERED, its order to INVOICED, all in
// one transaction with the number assignment.
func (uc *FinalizeUseCase) Finalize(ctx context.Context, actor audit.Actor, id string) (*dto.InvoiceResponse, error) {
	var (
		invoice *entity.Invoice
		items   []*entity.InvoiceLineItem
	)
	err := uc.txRunner.Run(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		orderRepo repository.OrderRepository,
		worksheetRepo repository.WorkSheetRepository,
		_ repository.EmailLogRepository,
		auditRepo repository.AuditRepository,
	) error {
		var err error
		invoice, err = invoiceRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !invoice.IsDraft {
			return fmt.Errorf("%w: invoice %s is already finalized", domain.ErrValidationFailed, invoice.Number)
		}
		if err := applyFinalization(ctx, actor, invoiceRepo, orderRepo, worksheetRepo, auditRepo, invoice); err != nil {
			return err
		}
		items, err = invoiceRepo.ListLineItems(ctx, invoice.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.pdf != nil {
		uc.pdf.ProcessAsync(invoice.ID, actor)
	}
	return toInvoiceResponse(invoice, items, ""), nil
}

// Cancel moves a finalized invoice to CANCELLED and reverses the delivery
// flips: sheets still DELIVERED revert to QC_APPROVED, orders still INVOICED
// likewise. Rows that moved on since (order delivered to the patient) are
// left alone, so the reversal is safe to run against partial state. The
// number stays burned.
func (uc *FinalizeUseCase) Cancel(ctx context.Context, actor audit.Actor, id string, in dto.CancelInvoiceRequest) (*dto.InvoiceResponse, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("%w: a cancellation reason is required", domain.ErrInvalidInput)
	}

	var invoice *entity.Invoice
	err := uc.txRunner.Run(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		orderRepo repository.OrderRepository,
		worksheetRepo repository.WorkSheetRepository,
		_ repository.EmailLogRepository,
		auditRepo repository.AuditRepository,
	) error {
		var err error
		invoice, err = invoiceRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if invoice.IsDraft {
			return fmt.Errorf("%w: drafts are deleted, not cancelled", domain.ErrValidationFailed)
		}
		if invoice.PaymentStatus == entity.PaymentStatusCancelled {
			return fmt.Errorf("%w: invoice %s is already cancelled", domain.ErrValidationFailed, invoice.Number)
		}
		before := *invoice

		items, err := invoiceRepo.ListLineItems(ctx, invoice.ID)
		if err != nil {
			return err
		}
		for _, wsID := range distinctWorksheetIDs(items) {
			sheet, err := worksheetRepo.GetForUpdate(ctx, wsID)
			if err != nil {
				return err
			}
			if sheet.Status == entity.WorkSheetStatusDelivered {
				if err := worksheetRepo.UpdateStatus(ctx, sheet.ID, entity.WorkSheetStatusQCApproved); err != nil {
					return err
				}
			}
			order, err := orderRepo.GetForUpdate(ctx, sheet.OrderID)
			if err != nil {
				return err
			}
			if order.Status == entity.OrderStatusInvoiced {
				if err := orderRepo.UpdateStatus(ctx, order.ID, entity.OrderStatusQCApproved); err != nil {
					return err
				}
			}
		}

		invoice.PaymentStatus = entity.PaymentStatusCancelled
		invoice.UpdatedAt = time.Now()
		if err := invoiceRepo.Update(ctx, invoice); err != nil {
			return err
		}

		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionInvoiceCancelled,
			EntityType: "invoices",
			EntityID:   invoice.ID,
			Before:     before,
			After:      invoice,
			Reason:     in.Reason,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice, nil, ""), nil
}

// MarkViewed records that the dentist opened the invoice: SENT becomes VIEWED.
func (uc *FinalizeUseCase) MarkViewed(ctx context.Context, actor audit.Actor, id string) (*dto.InvoiceResponse, error) {
	return uc.progress(ctx, actor, id, entity.PaymentStatusViewed, []string{entity.PaymentStatusSent})
}

// MarkPaid closes the payment trail. Payment can arrive before any mail goes
// out, so FINALIZED, SENT and VIEWED all qualify.
func (uc *FinalizeUseCase) MarkPaid(ctx context.Context, actor audit.Actor, id string) (*dto.InvoiceResponse, error) {
	return uc.progress(ctx, actor, id, entity.PaymentStatusPaid,
		[]string{entity.PaymentStatusFinalized, entity.PaymentStatusSent, entity.PaymentStatusViewed})
}

// progress is the forward-only payment move shared by MarkViewed and MarkPaid.
func (uc *FinalizeUseCase) progress(ctx context.Context, actor audit.Actor, id, target string, allowedFrom []string) (*dto.InvoiceResponse, error) {
	var invoice *entity.Invoice
	err := uc.txRunner.Run(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.OrderRepository,
		_ repository.WorkSheetRepository,
		_ repository.EmailLogRepository,
		auditRepo repository.AuditRepository,
	) error {
		var err error
		invoice, err = invoiceRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		allowed := false
		for _, from := range allowedFrom {
			if invoice.PaymentStatus == from {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("%w: payment status %s cannot become %s", domain.ErrInvalidTransition, invoice.PaymentStatus, target)
		}
		before := invoice.PaymentStatus

		invoice.PaymentStatus = target
		invoice.UpdatedAt = time.Now()
		if err := invoiceRepo.Update(ctx, invoice); err != nil {
			return err
		}

		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionPaymentProgressed,
			EntityType: "invoices",
			EntityID:   invoice.ID,
			Before:     map[string]string{"payment_status": before},
			After:      map[string]string{"payment_status": target},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice, nil, ""), nil
}

// applyFinalization is the one code path that ever assigns an invoice number.
// Caller holds the invoice row lock; this takes the year lock on top, scans
// the existing numbers and writes everything before the transaction commits.
func applyFinalization(
	ctx context.Context,
	actor audit.Actor,
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	worksheetRepo repository.WorkSheetRepository,
	auditRepo repository.AuditRepository,
	invoice *entity.Invoice,
) error {
	items, err := invoiceRepo.ListLineItems(ctx, invoice.ID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: an invoice needs at least one line item", domain.ErrValidationFailed)
	}

	// 1) Draw the number under the per-year lock
	now := time.Now()
	year := now.Year()
	if err := invoiceRepo.LockYear(ctx, year); err != nil {
		return err
	}
	numbers, err := invoiceRepo.NumbersForYear(ctx, year)
	if err != nil {
		return err
	}
	invoice.Number = numbering.InvoiceNumber(year, numbering.NextInvoiceSeq(numbers, year))

	// 2) Freeze the invoice
	invoice.IsDraft = false
	invoice.IssueDate = &now
	invoice.PaymentStatus = entity.PaymentStatusFinalized
	invoice.UpdatedAt = now
	if err := invoiceRepo.Update(ctx, invoice); err != nil {
		return err
	}

	// 3) Delivery flips on every referenced sheet and its order
	for _, wsID := range distinctWorksheetIDs(items) {
		sheet, err := worksheetRepo.GetForUpdate(ctx, wsID)
		if err != nil {
			return err
		}
		if err := workflow.ValidateWorkSheet(sheet.Status, entity.WorkSheetStatusDelivered); err != nil {
			return err
		}
		if err := worksheetRepo.UpdateStatus(ctx, sheet.ID, entity.WorkSheetStatusDelivered); err != nil {
			return err
		}
		order, err := orderRepo.GetForUpdate(ctx, sheet.OrderID)
		if err != nil {
			return err
		}
		if err := workflow.ValidateOrder(order.Status, entity.OrderStatusInvoiced); err != nil {
			return err
		}
		if err := orderRepo.UpdateStatus(ctx, order.ID, entity.OrderStatusInvoiced); err != nil {
			return err
		}
	}

	audit.Record(ctx, auditRepo, actor, audit.Entry{
		Action:     entity.AuditActionInvoiceFinalized,
		EntityType: "invoices",
		EntityID:   invoice.ID,
		After:      invoice,
	})
	return nil
}

// distinctWorksheetIDs returns the sheet IDs referenced by the line set, in
// first-seen order.
func distinctWorksheetIDs(items []*entity.InvoiceLineItem) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, it := range items {
		if it.WorksheetID == nil || seen[*it.WorksheetID] {
			continue
		}
		seen[*it.WorksheetID] = true
		ids = append(ids, *it.WorksheetID)
	}
	return ids
}
