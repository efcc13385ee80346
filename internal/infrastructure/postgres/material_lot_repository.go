package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.MaterialLotRepository = (*MaterialLotRepo)(nil)

const lotColumns = "id, material_id, lot_number, supplier, arrival_date, expiry_date, quantity_received, quantity_available, status, created_at, updated_at"

// MaterialLotRepo implements MaterialLotRepository on PostgreSQL (usable with
// pool or tx). The FIFO query mirrors the eligibility rules of the domain
// inventory package.
type MaterialLotRepo struct {
	q Querier
}

// NewMaterialLotRepository builds the lot adapter. Pass the pool or a tx (Querier).
func NewMaterialLotRepository(q Querier) *MaterialLotRepo {
	return &MaterialLotRepo{q: q}
}

// Create persists a newly arrived lot. (material_id, lot_number) is unique.
func (r *MaterialLotRepo) Create(ctx context.Context, lot *entity.MaterialLot) error {
	query := `
		INSERT INTO material_lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.MaterialID, lot.LotNumber, lot.Supplier, lot.ArrivalDate, lot.ExpiryDate,
		lot.QuantityReceived, lot.QuantityAvailable, lot.Status, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lot %s", domain.ErrDuplicateLot, lot.LotNumber)
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID fetches a lot by ID.
func (r *MaterialLotRepo) GetByID(ctx context.Context, id string) (*entity.MaterialLot, error) {
	query := `SELECT ` + lotColumns + ` FROM material_lots WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "lot "+id)
}

// GetForUpdate fetches a lot and locks the row until the transaction ends.
func (r *MaterialLotRepo) GetForUpdate(ctx context.Context, id string) (*entity.MaterialLot, error) {
	query := `SELECT ` + lotColumns + ` FROM material_lots WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "lot "+id)
}

// GetByMaterialAndNumber fetches a lot by its natural key.
func (r *MaterialLotRepo) GetByMaterialAndNumber(ctx context.Context, materialID, lotNumber string) (*entity.MaterialLot, error) {
	query := `SELECT ` + lotColumns + ` FROM material_lots WHERE material_id = $1 AND lot_number = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, materialID, lotNumber), "lot "+lotNumber)
}

// ListByMaterial returns all lots of one material, oldest arrival first.
func (r *MaterialLotRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.MaterialLot, error) {
	query := `SELECT ` + lotColumns + ` FROM material_lots WHERE material_id = $1 ORDER BY arrival_date, created_at`
	rows, err := r.q.Query(ctx, query, materialID)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListEligibleForUpdate returns the FIFO candidates for one material, oldest
// arrival first, and locks them until the transaction ends. Two concurrent
// consumptions of the same material serialize here instead of both
// decrementing the same lot.
func (r *MaterialLotRepo) ListEligibleForUpdate(ctx context.Context, materialID string, now time.Time) ([]*entity.MaterialLot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM material_lots
		WHERE material_id = $1
		  AND status = $2
		  AND quantity_available > 0
		  AND (expiry_date IS NULL OR expiry_date > $3)
		ORDER BY arrival_date, created_at
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, materialID, entity.LotStatusAvailable, now)
	if err != nil {
		return nil, fmt.Errorf("list eligible lots: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// Update rewrites the mutable lot fields.
func (r *MaterialLotRepo) Update(ctx context.Context, lot *entity.MaterialLot) error {
	query := `
		UPDATE material_lots
		SET supplier = $2, arrival_date = $3, expiry_date = $4, quantity_received = $5,
		    quantity_available = $6, status = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		lot.ID, lot.Supplier, lot.ArrivalDate, lot.ExpiryDate, lot.QuantityReceived,
		lot.QuantityAvailable, lot.Status, lot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: lot %s", domain.ErrNotFound, lot.ID)
	}
	return nil
}

// Delete removes a lot. The use case refuses beforehand when consumption rows
// exist; the FK check is the backstop.
func (r *MaterialLotRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM material_lots WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: lot %s is still referenced", domain.ErrConflict, id)
		}
		return fmt.Errorf("delete lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: lot %s", domain.ErrNotFound, id)
	}
	return nil
}

// AvailableTotals returns one row per catalog material with its summed
// AVAILABLE quantity. The LEFT JOIN keeps materials with no lots at all in
// the result with a zero total, so low-stock ranking can flag them.
func (r *MaterialLotRepo) AvailableTotals(ctx context.Context) ([]repository.MaterialStockRow, error) {
	query := `
		SELECT m.id, m.code, m.name, m.unit,
		       COALESCE(SUM(l.quantity_available) FILTER (WHERE l.status = $1), 0)
		FROM materials m
		LEFT JOIN material_lots l ON l.material_id = m.id
		GROUP BY m.id, m.code, m.name, m.unit
		ORDER BY m.code`
	rows, err := r.q.Query(ctx, query, entity.LotStatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("available totals: %w", err)
	}
	defer rows.Close()
	var list []repository.MaterialStockRow
	for rows.Next() {
		var row repository.MaterialStockRow
		if err := rows.Scan(&row.MaterialID, &row.MaterialCode, &row.MaterialName, &row.Unit, &row.Total); err != nil {
			return nil, fmt.Errorf("scan stock row: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// ListExpiring returns AVAILABLE lots whose expiry date falls on or before the
// horizon, soonest first.
func (r *MaterialLotRepo) ListExpiring(ctx context.Context, horizon time.Time) ([]repository.ExpiringLotRow, error) {
	query := `
		SELECT l.id, l.lot_number, m.id, m.code, m.name, m.unit, l.expiry_date, l.quantity_available
		FROM material_lots l
		JOIN materials m ON m.id = l.material_id
		WHERE l.status = $1
		  AND l.quantity_available > 0
		  AND l.expiry_date IS NOT NULL
		  AND l.expiry_date <= $2
		ORDER BY l.expiry_date`
	rows, err := r.q.Query(ctx, query, entity.LotStatusAvailable, horizon)
	if err != nil {
		return nil, fmt.Errorf("list expiring lots: %w", err)
	}
	defer rows.Close()
	var list []repository.ExpiringLotRow
	for rows.Next() {
		var row repository.ExpiringLotRow
		if err := rows.Scan(&row.LotID, &row.LotNumber, &row.MaterialID, &row.MaterialCode,
			&row.MaterialName, &row.Unit, &row.ExpiryDate, &row.QuantityAvailable); err != nil {
			return nil, fmt.Errorf("scan expiring lot: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

func (r *MaterialLotRepo) scanOne(row pgx.Row, ref string) (*entity.MaterialLot, error) {
	var l entity.MaterialLot
	err := row.Scan(&l.ID, &l.MaterialID, &l.LotNumber, &l.Supplier, &l.ArrivalDate, &l.ExpiryDate,
		&l.QuantityReceived, &l.QuantityAvailable, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("get %s: %w", ref, err)
	}
	return &l, nil
}

func (r *MaterialLotRepo) scanAll(rows pgx.Rows) ([]*entity.MaterialLot, error) {
	var list []*entity.MaterialLot
	for rows.Next() {
		var l entity.MaterialLot
		if err := rows.Scan(&l.ID, &l.MaterialID, &l.LotNumber, &l.Supplier, &l.ArrivalDate, &l.ExpiryDate,
			&l.QuantityReceived, &l.QuantityAvailable, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
