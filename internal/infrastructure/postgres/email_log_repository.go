package postgres

import (
	"context"
	"fmt"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.EmailLogRepository = (*EmailLogRepo)(nil)

// EmailLogRepo implements EmailLogRepository on PostgreSQL (usable with pool or tx).
type EmailLogRepo struct {
	q Querier
}

// NewEmailLogRepository builds the mail log adapter. Pass the pool or a tx (Querier).
func NewEmailLogRepository(q Querier) *EmailLogRepo {
	return &EmailLogRepo{q: q}
}

// Create appends one outbound mail record.
func (r *EmailLogRepo) Create(ctx context.Context, log *entity.EmailLog) error {
	query := `
		INSERT INTO email_logs (id, invoice_id, recipient, subject, status, error, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		log.ID, log.InvoiceID, log.Recipient, log.Subject, log.Status, log.Error, log.SentAt,
	)
	if err != nil {
		return fmt.Errorf("insert email log: %w", err)
	}
	return nil
}

// ListByInvoice returns the send history of one invoice, newest first.
func (r *EmailLogRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.EmailLog, error) {
	query := `
		SELECT id, invoice_id, recipient, subject, status, error, sent_at
		FROM email_logs WHERE invoice_id = $1 ORDER BY sent_at DESC`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.EmailLog
	for rows.Next() {
		var l entity.EmailLog
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Recipient, &l.Subject, &l.Status, &l.Error, &l.SentAt); err != nil {
			return nil, fmt.Errorf("scan email log: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
