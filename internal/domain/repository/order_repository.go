package repository

import (
	"context"
	"time"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// OrderFilter narrows order listings. Zero values mean no filter.
type OrderFilter struct {
	Status    string
	DentistID string
	Limit     int
	Offset    int
}

// OrderRepository defines the persistence port for Order (DIP). Reads exclude
// soft-deleted rows; GetForUpdate locks the row for the rest of the
// transaction so status flips serialize.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByNumber(ctx context.Context, number string) (*entity.Order, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	HardDelete(ctx context.Context, id string) error
}
