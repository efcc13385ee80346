package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.LabConfigRepository = (*LabConfigRepo)(nil)

const labConfigColumns = "id, lab_name, mdr_registration_no, address, email, phone, default_tax_rate, default_discount, retention_years, updated_at"

// LabConfigRepo implements LabConfigRepository on PostgreSQL (usable with pool
// or tx). The table holds exactly one row with id 1.
type LabConfigRepo struct {
	q Querier
}

// NewLabConfigRepository builds the lab profile adapter. Pass the pool or a tx (Querier).
func NewLabConfigRepository(q Querier) *LabConfigRepo {
	return &LabConfigRepo{q: q}
}

// Get returns the profile, seeding the row with defaults on first read so a
// fresh database never surfaces not-found here. Retention starts at the MDR
// minimum of ten years.
func (r *LabConfigRepo) Get(ctx context.Context) (*entity.LabConfig, error) {
	cfg, err := r.fetch(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get lab config: %w", err)
	}

	seed := `
		INSERT INTO lab_config (id, lab_name, mdr_registration_no, address, email, phone,
			default_tax_rate, default_discount, retention_years, updated_at)
		VALUES (1, '', '', '', '', '', 0, 0, 10, now())
		ON CONFLICT (id) DO NOTHING`
	if _, err := r.q.Exec(ctx, seed); err != nil {
		return nil, fmt.Errorf("seed lab config: %w", err)
	}
	cfg, err = r.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("get lab config after seed: %w", err)
	}
	return cfg, nil
}

// Update rewrites the profile.
func (r *LabConfigRepo) Update(ctx context.Context, cfg *entity.LabConfig) error {
	query := `
		UPDATE lab_config
		SET lab_name = $1, mdr_registration_no = $2, address = $3, email = $4, phone = $5,
		    default_tax_rate = $6, default_discount = $7, retention_years = $8, updated_at = $9
		WHERE id = 1`
	_, err := r.q.Exec(ctx, query,
		cfg.LabName, cfg.MDRRegistrationNo, cfg.Address, cfg.Email, cfg.Phone,
		cfg.DefaultTaxRate, cfg.DefaultDiscount, cfg.RetentionYears, cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lab config: %w", err)
	}
	return nil
}

func (r *LabConfigRepo) fetch(ctx context.Context) (*entity.LabConfig, error) {
	var cfg entity.LabConfig
	err := r.q.QueryRow(ctx, `SELECT `+labConfigColumns+` FROM lab_config WHERE id = 1`).Scan(
		&cfg.ID, &cfg.LabName, &cfg.MDRRegistrationNo, &cfg.Address, &cfg.Email, &cfg.Phone,
		&cfg.DefaultTaxRate, &cfg.DefaultDiscount, &cfg.RetentionYears, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
