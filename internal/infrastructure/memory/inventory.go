package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.MaterialLotRepository = (*MaterialLotRepo)(nil)
var _ repository.ConsumptionRepository = (*ConsumptionRepo)(nil)

// MaterialLotRepo is the in-memory MaterialLotRepository. Eligibility and
// ordering mirror the postgres FIFO query.
type MaterialLotRepo struct {
	access
}

func (r *MaterialLotRepo) Create(ctx context.Context, lot *entity.MaterialLot) error {
	r.lock()
	defer r.unlock()
	for _, l := range r.s.lots {
		if l.MaterialID == lot.MaterialID && l.LotNumber == lot.LotNumber {
			return fmt.Errorf("%w: lot %s", domain.ErrDuplicateLot, lot.LotNumber)
		}
	}
	c := *lot
	r.s.lots[lot.ID] = &c
	return nil
}

func (r *MaterialLotRepo) GetByID(ctx context.Context, id string) (*entity.MaterialLot, error) {
	r.lock()
	defer r.unlock()
	return r.get(id)
}

func (r *MaterialLotRepo) GetForUpdate(ctx context.Context, id string) (*entity.MaterialLot, error) {
	r.lock()
	defer r.unlock()
	return r.get(id)
}

func (r *MaterialLotRepo) GetByMaterialAndNumber(ctx context.Context, materialID, lotNumber string) (*entity.MaterialLot, error) {
	r.lock()
	defer r.unlock()
	for _, l := range r.s.lots {
		if l.MaterialID == materialID && l.LotNumber == lotNumber {
			c := *l
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: lot %s", domain.ErrNotFound, lotNumber)
}

func (r *MaterialLotRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.MaterialLot, error) {
	r.lock()
	defer r.unlock()
	var list []*entity.MaterialLot
	for _, l := range r.s.lots {
		if l.MaterialID == materialID {
			c := *l
			list = append(list, &c)
		}
	}
	sortByArrival(list)
	return list, nil
}

func (r *MaterialLotRepo) ListEligibleForUpdate(ctx context.Context, materialID string, now time.Time) ([]*entity.MaterialLot, error) {
	r.lock()
	defer r.unlock()
	var list []*entity.MaterialLot
	for _, l := range r.s.lots {
		if l.MaterialID != materialID || l.Status != entity.LotStatusAvailable {
			continue
		}
		if !l.QuantityAvailable.IsPositive() || l.Expired(now) {
			continue
		}
		c := *l
		list = append(list, &c)
	}
	sortByArrival(list)
	return list, nil
}

func (r *MaterialLotRepo) Update(ctx context.Context, lot *entity.MaterialLot) error {
	r.lock()
	defer r.unlock()
	if _, ok := r.s.lots[lot.ID]; !ok {
		return fmt.Errorf("%w: lot %s", domain.ErrNotFound, lot.ID)
	}
	c := *lot
	r.s.lots[lot.ID] = &c
	return nil
}

func (r *MaterialLotRepo) Delete(ctx context.Context, id string) error {
	r.lock()
	defer r.unlock()
	if _, ok := r.s.lots[id]; !ok {
		return fmt.Errorf("%w: lot %s", domain.ErrNotFound, id)
	}
	delete(r.s.lots, id)
	return nil
}

func (r *MaterialLotRepo) AvailableTotals(ctx context.Context) ([]repository.MaterialStockRow, error) {
	r.lock()
	defer r.unlock()
	var list []repository.MaterialStockRow
	for _, m := range r.s.materials {
		total := decimal.Zero
		for _, l := range r.s.lots {
			if l.MaterialID == m.ID && l.Status == entity.LotStatusAvailable {
				total = total.Add(l.QuantityAvailable)
			}
		}
		list = append(list, repository.MaterialStockRow{
			MaterialID:   m.ID,
			MaterialCode: m.Code,
			MaterialName: m.Name,
			Unit:         m.Unit,
			Total:        total,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].MaterialCode < list[j].MaterialCode })
	return list, nil
}

func (r *MaterialLotRepo) ListExpiring(ctx context.Context, horizon time.Time) ([]repository.ExpiringLotRow, error) {
	r.lock()
	defer r.unlock()
	var list []repository.ExpiringLotRow
	for _, l := range r.s.lots {
		if l.Status != entity.LotStatusAvailable || !l.QuantityAvailable.IsPositive() {
			continue
		}
		if l.ExpiryDate == nil || l.ExpiryDate.After(horizon) {
			continue
		}
		m, ok := r.s.materials[l.MaterialID]
		if !ok {
			continue
		}
		list = append(list, repository.ExpiringLotRow{
			LotID:             l.ID,
			LotNumber:         l.LotNumber,
			MaterialID:        m.ID,
			MaterialCode:      m.Code,
			MaterialName:      m.Name,
			Unit:              m.Unit,
			ExpiryDate:        *l.ExpiryDate,
			QuantityAvailable: l.QuantityAvailable,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ExpiryDate.Before(list[j].ExpiryDate) })
	return list, nil
}

func (r *MaterialLotRepo) get(id string) (*entity.MaterialLot, error) {
	l, ok := r.s.lots[id]
	if !ok {
		return nil, fmt.Errorf("%w: lot %s", domain.ErrNotFound, id)
	}
	c := *l
	return &c, nil
}

func sortByArrival(list []*entity.MaterialLot) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].ArrivalDate.Equal(list[j].ArrivalDate) {
			return list[i].ArrivalDate.Before(list[j].ArrivalDate)
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

// ConsumptionRepo is the in-memory ConsumptionRepository. Append-only, like
// the real ledger; the trace queries join across the store maps and, like the
// postgres adapter, see soft-deleted orders.
type ConsumptionRepo struct {
	access
}

func (r *ConsumptionRepo) Create(ctx context.Context, wm *entity.WorksheetMaterial) error {
	r.lock()
	defer r.unlock()
	c := *wm
	r.s.consumptions = append(r.s.consumptions, &c)
	return nil
}

func (r *ConsumptionRepo) ListByWorksheet(ctx context.Context, worksheetID string) ([]*entity.WorksheetMaterial, error) {
	r.lock()
	defer r.unlock()
	var list []*entity.WorksheetMaterial
	for _, wm := range r.s.consumptions {
		if wm.WorksheetID == worksheetID {
			c := *wm
			list = append(list, &c)
		}
	}
	return list, nil
}

func (r *ConsumptionRepo) ExistsForLot(ctx context.Context, lotID string) (bool, error) {
	r.lock()
	defer r.unlock()
	for _, wm := range r.s.consumptions {
		if wm.LotID == lotID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ConsumptionRepo) ExistsForMaterial(ctx context.Context, materialID string) (bool, error) {
	r.lock()
	defer r.unlock()
	for _, wm := range r.s.consumptions {
		if wm.MaterialID == materialID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ConsumptionRepo) ForwardTrace(ctx context.Context, lotNumber string) ([]repository.ForwardTraceRow, error) {
	r.lock()
	defer r.unlock()
	var list []repository.ForwardTraceRow
	for _, wm := range r.s.consumptions {
		lot, ok := r.s.lots[wm.LotID]
		if !ok || lot.LotNumber != lotNumber {
			continue
		}
		m := r.s.materials[wm.MaterialID]
		w := r.s.worksheets[wm.WorksheetID]
		if m == nil || w == nil {
			continue
		}
		o := r.s.orders[w.OrderID]
		if o == nil {
			continue
		}
		row := repository.ForwardTraceRow{
			MaterialCode:    m.Code,
			MaterialName:    m.Name,
			LotID:           lot.ID,
			LotNumber:       lot.LotNumber,
			WorksheetID:     w.ID,
			WorksheetNumber: w.Number,
			OrderNumber:     o.Number,
			PatientRef:      o.PatientRef,
			QuantityUsed:    wm.QuantityUsed,
			RecordedAt:      wm.RecordedAt,
		}
		if d := r.s.dentists[o.DentistID]; d != nil {
			row.DentistName = d.Name
		}
		list = append(list, row)
	}
	return list, nil
}

func (r *ConsumptionRepo) ReverseTrace(ctx context.Context, worksheetID string) ([]repository.ReverseTraceRow, error) {
	r.lock()
	defer r.unlock()
	var list []repository.ReverseTraceRow
	for _, wm := range r.s.consumptions {
		if wm.WorksheetID != worksheetID {
			continue
		}
		m := r.s.materials[wm.MaterialID]
		lot := r.s.lots[wm.LotID]
		if m == nil || lot == nil {
			continue
		}
		list = append(list, repository.ReverseTraceRow{
			MaterialID:   m.ID,
			MaterialCode: m.Code,
			MaterialName: m.Name,
			Manufacturer: m.Manufacturer,
			Unit:         m.Unit,
			LotID:        lot.ID,
			LotNumber:    lot.LotNumber,
			Supplier:     lot.Supplier,
			ExpiryDate:   lot.ExpiryDate,
			QuantityUsed: wm.QuantityUsed,
			RecordedBy:   wm.RecordedBy,
			RecordedAt:   wm.RecordedAt,
		})
	}
	return list, nil
}
