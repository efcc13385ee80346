package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	domInventory "github.com/Magneteek/SmileLAB-sub002/internal/domain/inventory"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// AlertsUseCase produces the two stock warnings the dashboard polls: lots
// approaching expiry and materials running low.
type AlertsUseCase struct {
	lotRepo repository.MaterialLotRepository
}

// NewAlertsUseCase builds the use case.
func NewAlertsUseCase(lotRepo repository.MaterialLotRepository) *AlertsUseCase {
	return &AlertsUseCase{lotRepo: lotRepo}
}

// ExpiringWithin lists AVAILABLE stocked lots whose expiry falls inside the
// window, soonest first, classified critical under 7 days, warning to 30,
// info beyond.
func (uc *AlertsUseCase) ExpiringWithin(ctx context.Context, days int) ([]dto.ExpiringAlertResponse, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", domain.ErrInvalidInput)
	}
	now := time.Now()
	rows, err := uc.lotRepo.ListExpiring(ctx, now.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpiringAlertResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ExpiringAlertResponse{
			LotID:             r.LotID,
			LotNumber:         r.LotNumber,
			MaterialCode:      r.MaterialCode,
			MaterialName:      r.MaterialName,
			ExpiryDate:        r.ExpiryDate.Format("2006-01-02"),
			DaysLeft:          int(r.ExpiryDate.Sub(now).Hours() / 24),
			Severity:          domInventory.ExpirySeverity(r.ExpiryDate, now),
			QuantityAvailable: r.QuantityAvailable,
			Unit:              r.Unit,
		})
	}
	return out, nil
}

// LowStock flags materials whose summed available quantity sits below the
// threshold, worst first.
func (uc *AlertsUseCase) LowStock(ctx context.Context, threshold decimal.Decimal) ([]dto.LowStockAlertResponse, error) {
	if !threshold.IsPositive() {
		return nil, fmt.Errorf("%w: threshold must be positive", domain.ErrInvalidInput)
	}
	rows, err := uc.lotRepo.AvailableTotals(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]repository.MaterialStockRow, len(rows))
	stocks := make([]domInventory.MaterialStock, 0, len(rows))
	for _, r := range rows {
		byID[r.MaterialID] = r
		stocks = append(stocks, domInventory.MaterialStock{MaterialID: r.MaterialID, Total: r.Total})
	}

	ranked := domInventory.RankLowStock(stocks, threshold)
	out := make([]dto.LowStockAlertResponse, 0, len(ranked))
	for _, a := range ranked {
		row := byID[a.MaterialID]
		out = append(out, dto.LowStockAlertResponse{
			MaterialID:         a.MaterialID,
			MaterialCode:       row.MaterialCode,
			MaterialName:       row.MaterialName,
			Available:          a.Total,
			Threshold:          threshold,
			PercentOfThreshold: a.PercentOfThreshold,
			Unit:               row.Unit,
		})
	}
	return out, nil
}
