package repository

import (
	"context"
	"time"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// AuditFilter narrows ledger reads. Zero values mean no filter.
type AuditFilter struct {
	EntityType string
	EntityID   string
	Action     string
	ActorID    string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// AuditRepository defines the persistence port for the compliance ledger.
// Append and read only. Create must not poison the caller's transaction when
// it fails; implementations isolate the insert (nested transaction or
// savepoint) so the primary action can still commit.
type AuditRepository interface {
	Create(ctx context.Context, e *entity.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]*entity.AuditEntry, error)
}
