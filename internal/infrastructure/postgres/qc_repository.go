package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.QCRepository = (*QCRepo)(nil)

// QCRepo implements QCRepository on PostgreSQL (usable with pool or tx). One
// row per work sheet; the checklist lives in five boolean columns so the
// CHECK constraints on result stay expressible in plain SQL.
type QCRepo struct {
	q Querier
}

// NewQCRepository builds the QC adapter. Pass the pool or a tx (Querier).
func NewQCRepository(q Querier) *QCRepo {
	return &QCRepo{q: q}
}

// Create persists the first verdict for a sheet.
func (r *QCRepo) Create(ctx context.Context, qc *entity.QualityControl) error {
	query := `
		INSERT INTO quality_controls (id, worksheet_id, marginal_integrity, occlusion_checked, proximal_contacts,
			shade_match, surface_finish, result, inspector_id, notes, action_required, checked_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		qc.ID, qc.WorksheetID,
		qc.Checklist.MarginalIntegrity, qc.Checklist.OcclusionChecked, qc.Checklist.ProximalContacts,
		qc.Checklist.ShadeMatch, qc.Checklist.SurfaceFinish,
		qc.Result, qc.InspectorID, qc.Notes, qc.ActionRequired, qc.CheckedAt, qc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: worksheet %s already has a QC record", domain.ErrConflict, qc.WorksheetID)
		}
		return fmt.Errorf("insert qc: %w", err)
	}
	return nil
}

// Update rewrites the verdict row after a rework resubmission.
func (r *QCRepo) Update(ctx context.Context, qc *entity.QualityControl) error {
	query := `
		UPDATE quality_controls
		SET marginal_integrity = $2, occlusion_checked = $3, proximal_contacts = $4, shade_match = $5,
		    surface_finish = $6, result = $7, inspector_id = $8, notes = $9, action_required = $10,
		    checked_at = $11, updated_at = $12
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		qc.ID,
		qc.Checklist.MarginalIntegrity, qc.Checklist.OcclusionChecked, qc.Checklist.ProximalContacts,
		qc.Checklist.ShadeMatch, qc.Checklist.SurfaceFinish,
		qc.Result, qc.InspectorID, qc.Notes, qc.ActionRequired, qc.CheckedAt, qc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update qc: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: qc record %s", domain.ErrNotFound, qc.ID)
	}
	return nil
}

// GetByWorksheet fetches the verdict for a sheet.
func (r *QCRepo) GetByWorksheet(ctx context.Context, worksheetID string) (*entity.QualityControl, error) {
	query := `
		SELECT id, worksheet_id, marginal_integrity, occlusion_checked, proximal_contacts,
		       shade_match, surface_finish, result, inspector_id, notes, action_required, checked_at, updated_at
		FROM quality_controls WHERE worksheet_id = $1`
	var qc entity.QualityControl
	err := r.q.QueryRow(ctx, query, worksheetID).Scan(
		&qc.ID, &qc.WorksheetID,
		&qc.Checklist.MarginalIntegrity, &qc.Checklist.OcclusionChecked, &qc.Checklist.ProximalContacts,
		&qc.Checklist.ShadeMatch, &qc.Checklist.SurfaceFinish,
		&qc.Result, &qc.InspectorID, &qc.Notes, &qc.ActionRequired, &qc.CheckedAt, &qc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: qc for worksheet %s", domain.ErrNotFound, worksheetID)
		}
		return nil, fmt.Errorf("get qc: %w", err)
	}
	return &qc, nil
}
