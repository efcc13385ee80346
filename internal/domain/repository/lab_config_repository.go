package repository

import (
	"context"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// LabConfigRepository defines the persistence port for the single-row lab
// profile. Get creates the row with defaults when it does not exist yet, so
// callers never see ErrNotFound here.
type LabConfigRepository interface {
	Get(ctx context.Context) (*entity.LabConfig, error)
	Update(ctx context.Context, cfg *entity.LabConfig) error
}
