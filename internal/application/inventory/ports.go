package inventory

import (
	"context"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// TxRunner runs fn inside one database transaction, handing it repositories
// bound to that transaction. Commit on nil, rollback on error; this is what
// makes consumption atomic.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.MaterialLotRepository,
		consumptionRepo repository.ConsumptionRepository,
		worksheetRepo repository.WorkSheetRepository,
		auditRepo repository.AuditRepository,
	) error) error
}
