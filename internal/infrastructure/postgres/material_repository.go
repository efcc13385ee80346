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

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

const materialColumns = "id, code, name, type, manufacturer, biocompatible, ce_marked, unit, created_at, updated_at"

// MaterialRepo implements MaterialRepository on PostgreSQL (usable with pool or tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository builds the material catalog adapter. Pass the pool or a tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

// Create persists a new catalog material.
func (r *MaterialRepo) Create(ctx context.Context, material *entity.Material) error {
	query := `
		INSERT INTO materials (` + materialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		material.ID, material.Code, material.Name, material.Type, material.Manufacturer,
		material.Biocompatible, material.CEMarked, material.Unit, material.CreatedAt, material.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: material code %s", domain.ErrDuplicateCode, material.Code)
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// GetByID fetches a material by ID.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "material "+id)
}

// GetByCode fetches a material by its unique code.
func (r *MaterialRepo) GetByCode(ctx context.Context, code string) (*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE code = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, code), "material "+code)
}

// Update rewrites the mutable catalog fields. Code stays immutable.
func (r *MaterialRepo) Update(ctx context.Context, material *entity.Material) error {
	query := `
		UPDATE materials
		SET name = $2, type = $3, manufacturer = $4, biocompatible = $5, ce_marked = $6, unit = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		material.ID, material.Name, material.Type, material.Manufacturer,
		material.Biocompatible, material.CEMarked, material.Unit, material.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: material %s", domain.ErrNotFound, material.ID)
	}
	return nil
}

// List returns materials ordered by code, optionally filtered by type.
func (r *MaterialRepo) List(ctx context.Context, materialType string, limit, offset int) ([]*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials`
	args := []any{}
	if materialType != "" {
		args = append(args, materialType)
		query += " WHERE type = $1"
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY code LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		var m entity.Material
		if err := rows.Scan(&m.ID, &m.Code, &m.Name, &m.Type, &m.Manufacturer,
			&m.Biocompatible, &m.CEMarked, &m.Unit, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Delete removes a material. The use case refuses beforehand when consumption
// rows exist; the FK check is the backstop.
func (r *MaterialRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: material %s is still referenced", domain.ErrConflict, id)
		}
		return fmt.Errorf("delete material: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: material %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *MaterialRepo) scanOne(row pgx.Row, ref string) (*entity.Material, error) {
	var m entity.Material
	err := row.Scan(&m.ID, &m.Code, &m.Name, &m.Type, &m.Manufacturer,
		&m.Biocompatible, &m.CEMarked, &m.Unit, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("get %s: %w", ref, err)
	}
	return &m, nil
}
