package repository

import (
	"context"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// MaterialRepository defines the persistence port for the material catalog.
// Delete is a plain hard delete; the use case checks traceability references
// first and refuses when any exist.
type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	GetByCode(ctx context.Context, code string) (*entity.Material, error)
	Update(ctx context.Context, material *entity.Material) error
	List(ctx context.Context, materialType string, limit, offset int) ([]*entity.Material, error)
	Delete(ctx context.Context, id string) error
}
