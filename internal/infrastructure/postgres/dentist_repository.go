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

var _ repository.DentistRepository = (*DentistRepo)(nil)

const dentistColumns = "id, name, clinic_name, email, phone, address, vat_number, requires_invoicing, created_at, updated_at"

// DentistRepo implements DentistRepository on PostgreSQL (usable with pool or tx).
type DentistRepo struct {
	q Querier
}

// NewDentistRepository builds the dentist adapter. Pass the pool or a tx (Querier).
func NewDentistRepository(q Querier) *DentistRepo {
	return &DentistRepo{q: q}
}

// Create persists a new client practice.
func (r *DentistRepo) Create(ctx context.Context, dentist *entity.Dentist) error {
	query := `
		INSERT INTO dentists (` + dentistColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		dentist.ID, dentist.Name, dentist.ClinicName, dentist.Email, dentist.Phone,
		dentist.Address, dentist.VATNumber, dentist.RequiresInvoicing, dentist.CreatedAt, dentist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dentist: %w", err)
	}
	return nil
}

// GetByID fetches a dentist by ID.
func (r *DentistRepo) GetByID(ctx context.Context, id string) (*entity.Dentist, error) {
	query := `SELECT ` + dentistColumns + ` FROM dentists WHERE id = $1`
	var d entity.Dentist
	err := r.q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Name, &d.ClinicName, &d.Email, &d.Phone,
		&d.Address, &d.VATNumber, &d.RequiresInvoicing, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: dentist %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get dentist: %w", err)
	}
	return &d, nil
}

// Update rewrites the dentist's profile.
func (r *DentistRepo) Update(ctx context.Context, dentist *entity.Dentist) error {
	query := `
		UPDATE dentists
		SET name = $2, clinic_name = $3, email = $4, phone = $5, address = $6,
		    vat_number = $7, requires_invoicing = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		dentist.ID, dentist.Name, dentist.ClinicName, dentist.Email, dentist.Phone,
		dentist.Address, dentist.VATNumber, dentist.RequiresInvoicing, dentist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update dentist: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: dentist %s", domain.ErrNotFound, dentist.ID)
	}
	return nil
}

// List returns dentists ordered by name.
func (r *DentistRepo) List(ctx context.Context, limit, offset int) ([]*entity.Dentist, error) {
	query := `SELECT ` + dentistColumns + ` FROM dentists ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list dentists: %w", err)
	}
	defer rows.Close()
	var list []*entity.Dentist
	for rows.Next() {
		var d entity.Dentist
		if err := rows.Scan(&d.ID, &d.Name, &d.ClinicName, &d.Email, &d.Phone,
			&d.Address, &d.VATNumber, &d.RequiresInvoicing, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan dentist: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// Delete removes a dentist. The use case refuses beforehand when orders
// exist; the FK check is the backstop.
func (r *DentistRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM dentists WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: dentist %s has orders on file", domain.ErrConflict, id)
		}
		return fmt.Errorf("delete dentist: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: dentist %s", domain.ErrNotFound, id)
	}
	return nil
}
