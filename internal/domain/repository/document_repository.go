package repository

import (
	"context"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// DocumentFilter narrows register reads. Zero values mean no filter.
type DocumentFilter struct {
	Type        string
	WorksheetID string
	InvoiceID   string
	Limit       int
	Offset      int
}

// DocumentRepository defines the persistence port for the generated-document
// register. Register rows are never deleted, even when the underlying blob is
// purged, so the retention trail stays complete.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]*entity.Document, error)
}
