package repository

import (
	"context"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// WorkSheetRepository defines the persistence port for WorkSheet and its
// product lines. ReplaceProducts swaps the whole line set; callers only use it
// while the sheet is still DRAFT.
type WorkSheetRepository interface {
	Create(ctx context.Context, sheet *entity.WorkSheet) error
	GetByID(ctx context.Context, id string) (*entity.WorkSheet, error)
	GetByOrderID(ctx context.Context, orderID string) (*entity.WorkSheet, error)
	GetForUpdate(ctx context.Context, id string) (*entity.WorkSheet, error)
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, status string, limit, offset int) ([]*entity.WorkSheet, error)
	ExistsByOrder(ctx context.Context, orderID string) (bool, error)

	AddProduct(ctx context.Context, line *entity.WorksheetProduct) error
	ListProducts(ctx context.Context, worksheetID string) ([]*entity.WorksheetProduct, error)
	ReplaceProducts(ctx context.Context, worksheetID string, lines []*entity.WorksheetProduct) error
}
