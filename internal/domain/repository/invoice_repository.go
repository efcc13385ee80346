package repository

import (
	"context"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// InvoiceFilter narrows invoice listings. Zero values mean no filter.
type InvoiceFilter struct {
	DentistID     string
	PaymentStatus string
	Limit         int
	Offset        int
}

// InvoiceRepository defines the persistence port for invoices and their line
// items. LockYear takes the per-year advisory lock that serializes number
// assignment; it must be called inside the finalize transaction, before
// NumbersForYear, and releases with the transaction.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
	Delete(ctx context.Context, id string) error

	AddLineItem(ctx context.Context, item *entity.InvoiceLineItem) error
	ListLineItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceLineItem, error)
	ReplaceLineItems(ctx context.Context, invoiceID string, items []*entity.InvoiceLineItem) error

	LockYear(ctx context.Context, year int) error
	NumbersForYear(ctx context.Context, year int) ([]string, error)
}
