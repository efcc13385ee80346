package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

const auditColumns = "id, actor_id, actor_role, action, entity_type, entity_id, before, after, reason, created_at"

// AuditRepo implements AuditRepository on PostgreSQL (usable with pool or tx).
// Create runs in a nested transaction: when q is already a transaction this
// is a savepoint, so a failed ledger insert rolls back to the savepoint and
// the caller's transaction stays usable instead of being aborted wholesale.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository builds the ledger adapter. Pass the pool or a tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create appends one ledger line.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	sub, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin audit insert: %w", err)
	}
	defer func() { _ = sub.Rollback(ctx) }()

	query := `
		INSERT INTO audit_log (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = sub.Exec(ctx, query,
		e.ID, e.ActorID, e.ActorRole, e.Action, e.EntityType, e.EntityID,
		e.Before, e.After, e.Reason, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	if err := sub.Commit(ctx); err != nil {
		return fmt.Errorf("commit audit insert: %w", err)
	}
	return nil
}

// List returns ledger lines matching the filter, newest first.
func (r *AuditRepo) List(ctx context.Context, filter repository.AuditFilter) ([]*entity.AuditEntry, error) {
	conds := []string{}
	args := []any{}
	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.EntityType != "" {
		add("entity_type = $%d", filter.EntityType)
	}
	if filter.EntityID != "" {
		add("entity_id = $%d", filter.EntityID)
	}
	if filter.Action != "" {
		add("action = $%d", filter.Action)
	}
	if filter.ActorID != "" {
		add("actor_id = $%d", filter.ActorID)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", *filter.To)
	}

	query := `SELECT ` + auditColumns + ` FROM audit_log`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorRole, &e.Action, &e.EntityType, &e.EntityID,
			&e.Before, &e.After, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
