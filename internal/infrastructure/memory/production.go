package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)
var _ repository.WorkSheetRepository = (*WorkSheetRepo)(nil)
var _ repository.QCRepository = (*QCRepo)(nil)
var _ repository.CounterRepository = (*CounterRepo)(nil)

// OrderRepo is the in-memory OrderRepository. Reads exclude soft-deleted rows,
// matching the postgres adapter.
type OrderRepo struct {
	access
}

func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	r.lock()
	defer r.unlock()
	for _, o := range r.s.orders {
		if o.Number == order.Number {
			return fmt.Errorf("%w: order number %s", domain.ErrConflict, order.Number)
		}
	}
	c := *order
	r.s.orders[order.ID] = &c
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	r.lock()
	defer r.unlock()
	return r.get(id)
}

func (r *OrderRepo) GetByNumber(ctx context.Context, number string) (*entity.Order, error) {
	r.lock()
	defer r.unlock()
	for _, o := range r.s.orders {
		if o.Number == number && o.DeletedAt == nil {
			c := *o
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, number)
}

// GetForUpdate is a plain read here: the transaction runner already holds the
// store for the whole callback.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	r.lock()
	defer r.unlock()
	return r.get(id)
}

func (r *OrderRepo) Update(ctx context.Context, order *entity.Order) error {
	r.lock()
	defer r.unlock()
	if _, err := r.get(order.ID); err != nil {
		return err
	}
	c := *order
	r.s.orders[order.ID] = &c
	return nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.lock()
	defer r.unlock()
	o, ok := r.s.orders[id]
	if !ok || o.DeletedAt != nil {
		return fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (r *OrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	r.lock()
	defer r.unlock()
	var list []*entity.Order
	for _, o := range r.s.orders {
		if o.DeletedAt != nil {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.DentistID != "" && o.DentistID != filter.DentistID {
			continue
		}
		c := *o
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, filter.Limit, filter.Offset), nil
}

func (r *OrderRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	r.lock()
	defer r.unlock()
	o, ok := r.s.orders[id]
	if !ok || o.DeletedAt != nil {
		return fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	o.DeletedAt = &at
	o.UpdatedAt = at
	return nil
}

func (r *OrderRepo) HardDelete(ctx context.Context, id string) error {
	r.lock()
	defer r.unlock()
	if _, ok := r.s.orders[id]; !ok {
		return fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	delete(r.s.orders, id)
	return nil
}

func (r *OrderRepo) get(id string) (*entity.Order, error) {
	o, ok := r.s.orders[id]
	if !ok || o.DeletedAt != nil {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	c := *o
	return &c, nil
}

// WorkSheetRepo is the in-memory WorkSheetRepository.
type WorkSheetRepo struct {
	access
}

func (r *WorkSheetRepo) Create(ctx context.Context, sheet *entity.WorkSheet) error {
	r.lock()
	defer r.unlock()
	for _, w := range r.s.worksheets {
		if w.OrderID == sheet.OrderID {
			return fmt.Errorf("%w: order %s already has a work sheet", domain.ErrConflict, sheet.OrderID)
		}
	}
	c := *sheet
	r.s.worksheets[sheet.ID] = &c
	return nil
}

func (r *WorkSheetRepo) GetByID(ctx context.Context, id string) (*entity.WorkSheet, error) {
	r.lock()
	defer r.unlock()
	return r.get(id)
}

func (r *WorkSheetRepo) GetByOrderID(ctx context.Context, orderID string) (*entity.WorkSheet, error) {
	r.lock()
	defer r.unlock()
	for _, w := range r.s.worksheets {
		if w.OrderID == orderID {
			c := *w
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: worksheet for order %s", domain.ErrNotFound, orderID)
}

func (r *WorkSheetRepo) GetForUpdate(ctx context.Context, id string) (*entity.WorkSheet, error) {
	r.lock()
	defer r.unlock()
	return r.get(id)
}

func (r *WorkSheetRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.lock()
	defer r.unlock()
	w, ok := r.s.worksheets[id]
	if !ok {
		return fmt.Errorf("%w: worksheet %s", domain.ErrNotFound, id)
	}
	w.Status = status
	w.UpdatedAt = time.Now()
	return nil
}

func (r *WorkSheetRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.WorkSheet, error) {
	r.lock()
	defer r.unlock()
	var list []*entity.WorkSheet
	for _, w := range r.s.worksheets {
		if status != "" && w.Status != status {
			continue
		}
		c := *w
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

func (r *WorkSheetRepo) ExistsByOrder(ctx context.Context, orderID string) (bool, error) {
	r.lock()
	defer r.unlock()
	for _, w := range r.s.worksheets {
		if w.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (r *WorkSheetRepo) AddProduct(ctx context.Context, line *entity.WorksheetProduct) error {
	r.lock()
	defer r.unlock()
	c := *line
	r.s.sheetLines[line.WorksheetID] = append(r.s.sheetLines[line.WorksheetID], &c)
	return nil
}

func (r *WorkSheetRepo) ListProducts(ctx context.Context, worksheetID string) ([]*entity.WorksheetProduct, error) {
	r.lock()
	defer r.unlock()
	return cloneSlice(r.s.sheetLines[worksheetID]), nil
}

func (r *WorkSheetRepo) ReplaceProducts(ctx context.Context, worksheetID string, lines []*entity.WorksheetProduct) error {
	r.lock()
	defer r.unlock()
	replaced := make([]*entity.WorksheetProduct, 0, len(lines))
	for _, line := range lines {
		c := *line
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		c.WorksheetID = worksheetID
		replaced = append(replaced, &c)
	}
	r.s.sheetLines[worksheetID] = replaced
	return nil
}

func (r *WorkSheetRepo) get(id string) (*entity.WorkSheet, error) {
	w, ok := r.s.worksheets[id]
	if !ok {
		return nil, fmt.Errorf("%w: worksheet %s", domain.ErrNotFound, id)
	}
	c := *w
	return &c, nil
}

// QCRepo is the in-memory QCRepository, keyed by worksheet ID since each sheet
// has at most one verdict row.
type QCRepo struct {
	access
}

func (r *QCRepo) Create(ctx context.Context, qc *entity.QualityControl) error {
	r.lock()
	defer r.unlock()
	if _, exists := r.s.qcs[qc.WorksheetID]; exists {
		return fmt.Errorf("%w: worksheet %s already has a QC record", domain.ErrConflict, qc.WorksheetID)
	}
	c := *qc
	r.s.qcs[qc.WorksheetID] = &c
	return nil
}

func (r *QCRepo) Update(ctx context.Context, qc *entity.QualityControl) error {
	r.lock()
	defer r.unlock()
	if _, exists := r.s.qcs[qc.WorksheetID]; !exists {
		return fmt.Errorf("%w: qc record %s", domain.ErrNotFound, qc.ID)
	}
	c := *qc
	r.s.qcs[qc.WorksheetID] = &c
	return nil
}

func (r *QCRepo) GetByWorksheet(ctx context.Context, worksheetID string) (*entity.QualityControl, error) {
	r.lock()
	defer r.unlock()
	qc, ok := r.s.qcs[worksheetID]
	if !ok {
		return nil, fmt.Errorf("%w: qc for worksheet %s", domain.ErrNotFound, worksheetID)
	}
	c := *qc
	return &c, nil
}

// CounterRepo is the in-memory CounterRepository.
type CounterRepo struct {
	access
}

func (r *CounterRepo) NextValue(ctx context.Context, key string) (int, error) {
	r.lock()
	defer r.unlock()
	r.s.counters[key]++
	return r.s.counters[key], nil
}
