package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = "id, number, dentist_id, patient_ref, status, due_date, notes, created_at, updated_at, deleted_at"

// OrderRepo implements OrderRepository on PostgreSQL (usable with pool or tx).
// All reads exclude soft-deleted rows; traceability queries that must see
// deleted orders live on the consumption repository instead.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository builds the order adapter. Pass the pool or a tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persists a new order.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.Number, order.DentistID, order.PatientRef, order.Status,
		order.DueDate, order.Notes, order.CreatedAt, order.UpdatedAt, order.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: order number %s", domain.ErrConflict, order.Number)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID fetches an active order by ID.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND deleted_at IS NULL`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "order "+id)
}

// GetByNumber fetches an active order by its business number.
func (r *OrderRepo) GetByNumber(ctx context.Context, number string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE number = $1 AND deleted_at IS NULL`
	return r.scanOne(r.q.QueryRow(ctx, query, number), "order "+number)
}

// GetForUpdate fetches an active order and locks the row until the
// transaction ends, serializing concurrent status flips.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "order "+id)
}

// Update rewrites the mutable order fields.
func (r *OrderRepo) Update(ctx context.Context, order *entity.Order) error {
	query := `
		UPDATE orders
		SET dentist_id = $2, patient_ref = $3, status = $4, due_date = $5, notes = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL`
	cmd, err := r.q.Exec(ctx, query,
		order.ID, order.DentistID, order.PatientRef, order.Status,
		order.DueDate, order.Notes, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s", domain.ErrNotFound, order.ID)
	}
	return nil
}

// UpdateStatus flips just the status column.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	return nil
}

// List returns active orders matching the filter, newest first.
func (r *OrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	conds := []string{"deleted_at IS NULL"}
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.DentistID != "" {
		args = append(args, filter.DentistID)
		conds = append(conds, fmt.Sprintf("dentist_id = $%d", len(args)))
	}
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT `+orderColumns+` FROM orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.Number, &o.DentistID, &o.PatientRef, &o.Status,
			&o.DueDate, &o.Notes, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// SoftDelete hides the order from reads while keeping the row for
// traceability joins.
func (r *OrderRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("soft delete order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	return nil
}

// HardDelete removes the row entirely. Only reachable for orders that never
// produced a work sheet.
func (r *OrderRepo) HardDelete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: order %s is still referenced", domain.ErrConflict, id)
		}
		return fmt.Errorf("delete order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *OrderRepo) scanOne(row pgx.Row, ref string) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.Number, &o.DentistID, &o.PatientRef, &o.Status,
		&o.DueDate, &o.Notes, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("get %s: %w", ref, err)
	}
	return &o, nil
}
