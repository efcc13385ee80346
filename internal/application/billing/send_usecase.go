package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/audit"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// SendUseCase mails a finalized invoice to the dentist. Every attempt lands
// in the email log, success and failure alike; the first successful send
// moves the payment status to SENT.
type SendUseCase struct {
	txRunner     TxRunner
	invoiceRepo  repository.InvoiceRepository
	dentistRepo  repository.DentistRepository
	emailLogRepo repository.EmailLogRepository
	sender       EmailSender   // nil when no transport is wired
	artifacts    ArtifactStore // nil when no blob store is wired
}

// NewSendUseCase builds the use case. sender and artifacts may be nil.
func NewSendUseCase(
	txRunner TxRunner,
	invoiceRepo repository.InvoiceRepository,
	dentistRepo repository.DentistRepository,
	emailLogRepo repository.EmailLogRepository,
	sender EmailSender,
	artifacts ArtifactStore,
) *SendUseCase {
	return &SendUseCase{
		txRunner:     txRunner,
		invoiceRepo:  invoiceRepo,
		dentistRepo:  dentistRepo,
		emailLogRepo: emailLogRepo,
		sender:       sender,
		artifacts:    artifacts,
	}
}

// Send delivers the invoice PDF by mail. Recipient defaults to the dentist's
// address. Resending an already-sent invoice is allowed and logged; the
// status only moves on the first success.
func (uc *SendUseCase) Send(ctx context.Context, actor audit.Actor, id string, in dto.SendInvoiceRequest) (*dto.EmailLogResponse, error) {
	if uc.sender == nil {
		return nil, errors.New("email transport is not configured")
	}

	invoice, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.IsDraft {
		return nil, fmt.Errorf("%w: finalize the invoice before sending it", domain.ErrValidationFailed)
	}
	switch invoice.PaymentStatus {
	case entity.PaymentStatusFinalized, entity.PaymentStatusSent, entity.PaymentStatusViewed:
	default:
		return nil, fmt.Errorf("%w: invoice %s is %s and cannot be sent", domain.ErrValidationFailed, invoice.Number, invoice.PaymentStatus)
	}

	recipient := strings.TrimSpace(in.Recipient)
	if recipient == "" {
		dentist, err := uc.dentistRepo.GetByID(ctx, invoice.DentistID)
		if err != nil {
			return nil, err
		}
		recipient = strings.TrimSpace(dentist.Email)
	}
	if recipient == "" {
		return nil, fmt.Errorf("%w: no recipient address available", domain.ErrInvalidInput)
	}

	if invoice.PDFPath == "" {
		return nil, fmt.Errorf("%w: invoice %s has no rendered PDF yet", domain.ErrValidationFailed, invoice.Number)
	}
	if uc.artifacts == nil {
		return nil, errors.New("artifact store is not configured")
	}
	pdf, err := uc.artifacts.Get(ctx, invoice.PDFPath)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice pdf: %w", err)
	}

	subject := fmt.Sprintf("Invoice %s", invoice.Number)
	sendErr := uc.sender.Send(ctx, OutboundEmail{
		To:             recipient,
		Subject:        subject,
		Body:           fmt.Sprintf("Please find attached invoice %s, total %s.", invoice.Number, invoice.Total.StringFixed(2)),
		Attachment:     pdf,
		AttachmentName: invoice.Number + ".pdf",
	})

	logRow := &entity.EmailLog{
		ID:        uuid.New().String(),
		InvoiceID: invoice.ID,
		Recipient: recipient,
		Subject:   subject,
		Status:    entity.EmailStatusSent,
		SentAt:    time.Now(),
	}
	if sendErr != nil {
		logRow.Status = entity.EmailStatusFailed
		logRow.Error = sendErr.Error()
	}

	err = uc.txRunner.Run(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.OrderRepository,
		_ repository.WorkSheetRepository,
		emailLogRepo repository.EmailLogRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := emailLogRepo.Create(ctx, logRow); err != nil {
			return err
		}
		if sendErr != nil {
			return nil
		}
		fresh, err := invoiceRepo.GetForUpdate(ctx, invoice.ID)
		if err != nil {
			return err
		}
		if fresh.PaymentStatus == entity.PaymentStatusFinalized {
			fresh.PaymentStatus = entity.PaymentStatusSent
			fresh.UpdatedAt = time.Now()
			if err := invoiceRepo.Update(ctx, fresh); err != nil {
				return err
			}
		}
		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionInvoiceSent,
			EntityType: "invoices",
			EntityID:   invoice.ID,
			After:      map[string]string{"recipient": recipient, "subject": subject},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if sendErr != nil {
		return nil, fmt.Errorf("send invoice %s: %w", invoice.Number, sendErr)
	}

	return toEmailLogResponse(logRow), nil
}

// History lists every send attempt for an invoice, newest first.
func (uc *SendUseCase) History(ctx context.Context, invoiceID string) ([]dto.EmailLogResponse, error) {
	rows, err := uc.emailLogRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EmailLogResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, *toEmailLogResponse(r))
	}
	return out, nil
}

func toEmailLogResponse(l *entity.EmailLog) *dto.EmailLogResponse {
	return &dto.EmailLogResponse{
		ID:        l.ID,
		InvoiceID: l.InvoiceID,
		Recipient: l.Recipient,
		Subject:   l.Subject,
		Status:    l.Status,
		Error:     l.Error,
		SentAt:    l.SentAt.Format(time.RFC3339),
	}
}
