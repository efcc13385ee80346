package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// MaterialStockRow is the raw per-material availability sum, joined with
// catalog fields so alert output needs no second lookup.
type MaterialStockRow struct {
	MaterialID   string
	MaterialCode string
	MaterialName string
	Unit         string
	Total        decimal.Decimal
}

// ExpiringLotRow is the raw result for expiry alerting: the lot plus the
// catalog fields the alert renders.
type ExpiringLotRow struct {
	LotID             string
	LotNumber         string
	MaterialID        string
	MaterialCode      string
	MaterialName      string
	Unit              string
	ExpiryDate        time.Time
	QuantityAvailable decimal.Decimal
}

// MaterialLotRepository defines the persistence port for physical stock lots.
// ListEligibleForUpdate returns the FIFO candidates for one material ordered
// arrival-first and locks them for the rest of the transaction, so two
// concurrent consumptions of the same material serialize instead of both
// decrementing the same lot.
type MaterialLotRepository interface {
	Create(ctx context.Context, lot *entity.MaterialLot) error
	GetByID(ctx context.Context, id string) (*entity.MaterialLot, error)
	GetForUpdate(ctx context.Context, id string) (*entity.MaterialLot, error)
	GetByMaterialAndNumber(ctx context.Context, materialID, lotNumber string) (*entity.MaterialLot, error)
	ListByMaterial(ctx context.Context, materialID string) ([]*entity.MaterialLot, error)
	ListEligibleForUpdate(ctx context.Context, materialID string, now time.Time) ([]*entity.MaterialLot, error)
	Update(ctx context.Context, lot *entity.MaterialLot) error
	Delete(ctx context.Context, id string) error

	// AvailableTotals returns one row per catalog material with the summed
	// AVAILABLE quantity, zero included, so low-stock ranking can flag
	// materials that have no lots at all.
	AvailableTotals(ctx context.Context) ([]MaterialStockRow, error)
	ListExpiring(ctx context.Context, horizon time.Time) ([]ExpiringLotRow, error)
}
