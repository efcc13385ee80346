// Package audit writes the compliance ledger from inside use-case
// transactions. Writes are best effort: a failing audit insert is logged and
// swallowed so it can never block a compliance-critical action, while the
// repository isolates the insert so the surrounding transaction stays usable.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// Actor identifies who performs an operation, as supplied by the identity
// provider.
type Actor struct {
	ID   string
	Role string
}

// Entry is what a use case knows about the action; Record fills in ID and
// timestamp.
type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	Before     any
	After      any
	Reason     string
}

// Record appends one ledger line using the transaction-bound repository.
// Failures are logged at warn level and swallowed.
func Record(ctx context.Context, repo repository.AuditRepository, actor Actor, e Entry) {
	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Before:     Snapshot(e.Before),
		After:      Snapshot(e.After),
		Reason:     e.Reason,
		CreatedAt:  time.Now(),
	}
	if err := repo.Create(ctx, entry); err != nil {
		log.Warn().
			Err(err).
			Str("action", e.Action).
			Str("entity_type", e.EntityType).
			Str("entity_id", e.EntityID).
			Msg("audit write failed, continuing")
	}
}

// Snapshot marshals a value for the before/after columns. Nil in, nil out;
// a marshal failure also returns nil rather than blocking the caller.
func Snapshot(v any) []byte {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
