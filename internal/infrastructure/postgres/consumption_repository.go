package postgres

import (
	"context"
	"fmt"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.ConsumptionRepository = (*ConsumptionRepo)(nil)

// ConsumptionRepo implements ConsumptionRepository on PostgreSQL (usable with
// pool or tx). The table is append-only; there is no update or delete here,
// and the trace joins deliberately ignore the orders soft-delete flag because
// a recall must reach every device ever made.
type ConsumptionRepo struct {
	q Querier
}

// NewConsumptionRepository builds the traceability adapter. Pass the pool or a tx (Querier).
func NewConsumptionRepository(q Querier) *ConsumptionRepo {
	return &ConsumptionRepo{q: q}
}

// Create appends one consumption row to the ledger.
func (r *ConsumptionRepo) Create(ctx context.Context, wm *entity.WorksheetMaterial) error {
	query := `
		INSERT INTO worksheet_materials (id, worksheet_id, material_id, lot_id, quantity_used, recorded_by, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		wm.ID, wm.WorksheetID, wm.MaterialID, wm.LotID, wm.QuantityUsed, wm.RecordedBy, wm.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert consumption: %w", err)
	}
	return nil
}

// ListByWorksheet returns the raw consumption rows of one sheet in recording order.
func (r *ConsumptionRepo) ListByWorksheet(ctx context.Context, worksheetID string) ([]*entity.WorksheetMaterial, error) {
	query := `
		SELECT id, worksheet_id, material_id, lot_id, quantity_used, recorded_by, recorded_at
		FROM worksheet_materials WHERE worksheet_id = $1 ORDER BY recorded_at, id`
	rows, err := r.q.Query(ctx, query, worksheetID)
	if err != nil {
		return nil, fmt.Errorf("list consumptions: %w", err)
	}
	defer rows.Close()
	var list []*entity.WorksheetMaterial
	for rows.Next() {
		var wm entity.WorksheetMaterial
		if err := rows.Scan(&wm.ID, &wm.WorksheetID, &wm.MaterialID, &wm.LotID,
			&wm.QuantityUsed, &wm.RecordedBy, &wm.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan consumption: %w", err)
		}
		list = append(list, &wm)
	}
	return list, rows.Err()
}

// ExistsForLot reports whether any consumption ever referenced the lot.
func (r *ConsumptionRepo) ExistsForLot(ctx context.Context, lotID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM worksheet_materials WHERE lot_id = $1)`, lotID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("consumption exists for lot: %w", err)
	}
	return exists, nil
}

// ExistsForMaterial reports whether any consumption ever referenced the material.
func (r *ConsumptionRepo) ExistsForMaterial(ctx context.Context, materialID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM worksheet_materials WHERE material_id = $1)`, materialID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("consumption exists for material: %w", err)
	}
	return exists, nil
}

// ForwardTrace answers "which devices contain this lot": every consumption of
// every lot carrying the number, joined down to the dentist. Matching is by
// lot number because that is what a supplier recall notice quotes; the
// material columns disambiguate when two suppliers reuse a number.
func (r *ConsumptionRepo) ForwardTrace(ctx context.Context, lotNumber string) ([]repository.ForwardTraceRow, error) {
	query := `
		SELECT m.code, m.name, l.id, l.lot_number,
		       w.id, w.number, o.number, o.patient_ref, d.name,
		       wm.quantity_used, wm.recorded_at
		FROM worksheet_materials wm
		JOIN material_lots l ON l.id = wm.lot_id
		JOIN materials m     ON m.id = wm.material_id
		JOIN worksheets w    ON w.id = wm.worksheet_id
		JOIN orders o        ON o.id = w.order_id
		JOIN dentists d      ON d.id = o.dentist_id
		WHERE l.lot_number = $1
		ORDER BY wm.recorded_at, wm.id`
	rows, err := r.q.Query(ctx, query, lotNumber)
	if err != nil {
		return nil, fmt.Errorf("forward trace: %w", err)
	}
	defer rows.Close()
	var list []repository.ForwardTraceRow
	for rows.Next() {
		var row repository.ForwardTraceRow
		if err := rows.Scan(&row.MaterialCode, &row.MaterialName, &row.LotID, &row.LotNumber,
			&row.WorksheetID, &row.WorksheetNumber, &row.OrderNumber, &row.PatientRef, &row.DentistName,
			&row.QuantityUsed, &row.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan forward trace row: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// ReverseTrace answers "what went into this device": every consumed lot of one
// sheet with the fields the Annex XIII statement prints.
func (r *ConsumptionRepo) ReverseTrace(ctx context.Context, worksheetID string) ([]repository.ReverseTraceRow, error) {
	query := `
		SELECT m.id, m.code, m.name, m.manufacturer, m.unit,
		       l.id, l.lot_number, l.supplier, l.expiry_date,
		       wm.quantity_used, wm.recorded_by, wm.recorded_at
		FROM worksheet_materials wm
		JOIN materials m     ON m.id = wm.material_id
		JOIN material_lots l ON l.id = wm.lot_id
		WHERE wm.worksheet_id = $1
		ORDER BY wm.recorded_at, wm.id`
	rows, err := r.q.Query(ctx, query, worksheetID)
	if err != nil {
		return nil, fmt.Errorf("reverse trace: %w", err)
	}
	defer rows.Close()
	var list []repository.ReverseTraceRow
	for rows.Next() {
		var row repository.ReverseTraceRow
		if err := rows.Scan(&row.MaterialID, &row.MaterialCode, &row.MaterialName, &row.Manufacturer, &row.Unit,
			&row.LotID, &row.LotNumber, &row.Supplier, &row.ExpiryDate,
			&row.QuantityUsed, &row.RecordedBy, &row.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan reverse trace row: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
