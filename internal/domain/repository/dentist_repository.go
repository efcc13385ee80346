package repository

import (
	"context"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// DentistRepository defines the persistence port for client practices.
type DentistRepository interface {
	Create(ctx context.Context, dentist *entity.Dentist) error
	GetByID(ctx context.Context, id string) (*entity.Dentist, error)
	Update(ctx context.Context, dentist *entity.Dentist) error
	List(ctx context.Context, limit, offset int) ([]*entity.Dentist, error)
	Delete(ctx context.Context, id string) error
}
