package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/numbering"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)
var _ repository.EmailLogRepository = (*EmailLogRepo)(nil)

// InvoiceRepo is the in-memory InvoiceRepository.
type InvoiceRepo struct {
	access
}

func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	r.lock()
	defer r.unlock()
	if err := r.checkNumber(invoice); err != nil {
		return err
	}
	c := *invoice
	r.s.invoices[invoice.ID] = &c
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	r.lock()
	defer r.unlock()
	return r.get(id)
}

func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	r.lock()
	defer r.unlock()
	return r.get(id)
}

func (r *InvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	r.lock()
	defer r.unlock()
	if _, ok := r.s.invoices[invoice.ID]; !ok {
		return fmt.Errorf("%w: invoice %s", domain.ErrNotFound, invoice.ID)
	}
	if err := r.checkNumber(invoice); err != nil {
		return err
	}
	c := *invoice
	r.s.invoices[invoice.ID] = &c
	return nil
}

func (r *InvoiceRepo) List(ctx context.Context, filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	r.lock()
	defer r.unlock()
	var list []*entity.Invoice
	for _, inv := range r.s.invoices {
		if filter.DentistID != "" && inv.DentistID != filter.DentistID {
			continue
		}
		if filter.PaymentStatus != "" && inv.PaymentStatus != filter.PaymentStatus {
			continue
		}
		c := *inv
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, filter.Limit, filter.Offset), nil
}

func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	r.lock()
	defer r.unlock()
	if _, ok := r.s.invoices[id]; !ok {
		return fmt.Errorf("%w: invoice %s", domain.ErrNotFound, id)
	}
	delete(r.s.invoices, id)
	delete(r.s.invoiceLines, id)
	return nil
}

func (r *InvoiceRepo) AddLineItem(ctx context.Context, item *entity.InvoiceLineItem) error {
	r.lock()
	defer r.unlock()
	c := *item
	r.s.invoiceLines[item.InvoiceID] = append(r.s.invoiceLines[item.InvoiceID], &c)
	return nil
}

func (r *InvoiceRepo) ListLineItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceLineItem, error) {
	r.lock()
	defer r.unlock()
	list := cloneSlice(r.s.invoiceLines[invoiceID])
	sort.Slice(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	return list, nil
}

func (r *InvoiceRepo) ReplaceLineItems(ctx context.Context, invoiceID string, items []*entity.InvoiceLineItem) error {
	r.lock()
	defer r.unlock()
	replaced := make([]*entity.InvoiceLineItem, 0, len(items))
	for _, item := range items {
		c := *item
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		c.InvoiceID = invoiceID
		replaced = append(replaced, &c)
	}
	r.s.invoiceLines[invoiceID] = replaced
	return nil
}

// LockYear is a no-op: the transaction runner's store lock already serializes
// finalizations, which is exactly what the advisory lock buys on postgres.
func (r *InvoiceRepo) LockYear(ctx context.Context, year int) error {
	return nil
}

func (r *InvoiceRepo) NumbersForYear(ctx context.Context, year int) ([]string, error) {
	r.lock()
	defer r.unlock()
	prefix := numbering.InvoicePrefix(year)
	var numbers []string
	for _, inv := range r.s.invoices {
		if strings.HasPrefix(inv.Number, prefix) {
			numbers = append(numbers, inv.Number)
		}
	}
	return numbers, nil
}

func (r *InvoiceRepo) get(id string) (*entity.Invoice, error) {
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, fmt.Errorf("%w: invoice %s", domain.ErrNotFound, id)
	}
	c := *inv
	return &c, nil
}

func (r *InvoiceRepo) checkNumber(invoice *entity.Invoice) error {
	if invoice.Number == "" {
		return nil
	}
	for _, other := range r.s.invoices {
		if other.ID != invoice.ID && other.Number == invoice.Number {
			return fmt.Errorf("%w: invoice number %s", domain.ErrConflict, invoice.Number)
		}
	}
	return nil
}

// EmailLogRepo is the in-memory EmailLogRepository.
type EmailLogRepo struct {
	access
}

func (r *EmailLogRepo) Create(ctx context.Context, log *entity.EmailLog) error {
	r.lock()
	defer r.unlock()
	c := *log
	r.s.emailLogs = append(r.s.emailLogs, &c)
	return nil
}

func (r *EmailLogRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.EmailLog, error) {
	r.lock()
	defer r.unlock()
	var list []*entity.EmailLog
	for _, l := range r.s.emailLogs {
		if l.InvoiceID == invoiceID {
			c := *l
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SentAt.After(list[j].SentAt) })
	return list, nil
}
