package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.WorkSheetRepository = (*WorkSheetRepo)(nil)

const worksheetColumns = "id, order_id, number, status, created_at, updated_at"

// WorkSheetRepo implements WorkSheetRepository on PostgreSQL (usable with pool
// or tx). Covers the sheet header plus its product lines.
type WorkSheetRepo struct {
	q Querier
}

// NewWorkSheetRepository builds the work sheet adapter. Pass the pool or a tx (Querier).
func NewWorkSheetRepository(q Querier) *WorkSheetRepo {
	return &WorkSheetRepo{q: q}
}

// Create persists a new work sheet. One sheet per order is enforced by the
// unique constraint on order_id.
func (r *WorkSheetRepo) Create(ctx context.Context, sheet *entity.WorkSheet) error {
	query := `
		INSERT INTO worksheets (` + worksheetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		sheet.ID, sheet.OrderID, sheet.Number, sheet.Status, sheet.CreatedAt, sheet.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: order %s already has a work sheet", domain.ErrConflict, sheet.OrderID)
		}
		return fmt.Errorf("insert worksheet: %w", err)
	}
	return nil
}

// GetByID fetches a work sheet by ID.
func (r *WorkSheetRepo) GetByID(ctx context.Context, id string) (*entity.WorkSheet, error) {
	query := `SELECT ` + worksheetColumns + ` FROM worksheets WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "worksheet "+id)
}

// GetByOrderID fetches the sheet belonging to an order.
func (r *WorkSheetRepo) GetByOrderID(ctx context.Context, orderID string) (*entity.WorkSheet, error) {
	query := `SELECT ` + worksheetColumns + ` FROM worksheets WHERE order_id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, orderID), "worksheet for order "+orderID)
}

// GetForUpdate fetches a work sheet and locks the row until the transaction
// ends, serializing concurrent status flips.
func (r *WorkSheetRepo) GetForUpdate(ctx context.Context, id string) (*entity.WorkSheet, error) {
	query := `SELECT ` + worksheetColumns + ` FROM worksheets WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "worksheet "+id)
}

// UpdateStatus flips just the status column.
func (r *WorkSheetRepo) UpdateStatus(ctx context.Context, id, status string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE worksheets SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update worksheet status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: worksheet %s", domain.ErrNotFound, id)
	}
	return nil
}

// List returns work sheets, newest first, optionally filtered by status.
func (r *WorkSheetRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.WorkSheet, error) {
	query := `SELECT ` + worksheetColumns + ` FROM worksheets`
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list worksheets: %w", err)
	}
	defer rows.Close()
	var list []*entity.WorkSheet
	for rows.Next() {
		var w entity.WorkSheet
		if err := rows.Scan(&w.ID, &w.OrderID, &w.Number, &w.Status, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan worksheet: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

// ExistsByOrder reports whether the order ever produced a work sheet.
func (r *WorkSheetRepo) ExistsByOrder(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM worksheets WHERE order_id = $1)`, orderID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("worksheet exists: %w", err)
	}
	return exists, nil
}

// AddProduct appends one product line to the sheet.
func (r *WorkSheetRepo) AddProduct(ctx context.Context, line *entity.WorksheetProduct) error {
	query := `
		INSERT INTO worksheet_products (id, worksheet_id, product_id, description, teeth, quantity, price_at_selection, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.WorksheetID, line.ProductID, line.Description, line.Teeth,
		line.Quantity, line.PriceAtSelection, line.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert worksheet product: %w", err)
	}
	return nil
}

// ListProducts returns the sheet's product lines in insertion order.
func (r *WorkSheetRepo) ListProducts(ctx context.Context, worksheetID string) ([]*entity.WorksheetProduct, error) {
	query := `
		SELECT id, worksheet_id, product_id, description, teeth, quantity, price_at_selection, created_at
		FROM worksheet_products WHERE worksheet_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, worksheetID)
	if err != nil {
		return nil, fmt.Errorf("list worksheet products: %w", err)
	}
	defer rows.Close()
	var list []*entity.WorksheetProduct
	for rows.Next() {
		var p entity.WorksheetProduct
		if err := rows.Scan(&p.ID, &p.WorksheetID, &p.ProductID, &p.Description, &p.Teeth,
			&p.Quantity, &p.PriceAtSelection, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan worksheet product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ReplaceProducts swaps the whole line set. Only called while the sheet is
// still DRAFT, so no consumption or invoice rows can reference the lines yet.
func (r *WorkSheetRepo) ReplaceProducts(ctx context.Context, worksheetID string, lines []*entity.WorksheetProduct) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM worksheet_products WHERE worksheet_id = $1`, worksheetID); err != nil {
		return fmt.Errorf("clear worksheet products: %w", err)
	}
	for _, line := range lines {
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		line.WorksheetID = worksheetID
		if err := r.AddProduct(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *WorkSheetRepo) scanOne(row pgx.Row, ref string) (*entity.WorkSheet, error) {
	var w entity.WorkSheet
	err := row.Scan(&w.ID, &w.OrderID, &w.Number, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("get %s: %w", ref, err)
	}
	return &w, nil
}
