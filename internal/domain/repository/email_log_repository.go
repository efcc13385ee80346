package repository

import (
	"context"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// EmailLogRepository defines the persistence port for outbound mail records.
type EmailLogRepository interface {
	Create(ctx context.Context, log *entity.EmailLog) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.EmailLog, error)
}
