package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// ForwardTraceRow answers "which devices contain this lot": one row per
// consumption, joined down to the dentist so a recall list is ready to use.
// Lot numbers are only unique per material, so the material identifies which
// lot was actually hit when two suppliers reuse a number.
type ForwardTraceRow struct {
	MaterialCode    string
	MaterialName    string
	LotID           string
	LotNumber       string
	WorksheetID     string
	WorksheetNumber string
	OrderNumber     string
	PatientRef      string
	DentistName     string
	QuantityUsed    decimal.Decimal
	RecordedAt      time.Time
}

// ReverseTraceRow answers "what went into this device": one row per consumed
// lot with everything the Annex XIII statement prints.
type ReverseTraceRow struct {
	MaterialID   string
	MaterialCode string
	MaterialName string
	Manufacturer string
	Unit         string
	LotID        string
	LotNumber    string
	Supplier     string
	ExpiryDate   *time.Time
	QuantityUsed decimal.Decimal
	RecordedBy   string
	RecordedAt   time.Time
}

// ConsumptionRepository defines the persistence port for WorksheetMaterial,
// the append-only traceability ledger. There is deliberately no Update or
// Delete: rows are written once and kept forever.
type ConsumptionRepository interface {
	Create(ctx context.Context, wm *entity.WorksheetMaterial) error
	ListByWorksheet(ctx context.Context, worksheetID string) ([]*entity.WorksheetMaterial, error)
	ExistsForLot(ctx context.Context, lotID string) (bool, error)
	ExistsForMaterial(ctx context.Context, materialID string) (bool, error)

	ForwardTrace(ctx context.Context, lotNumber string) ([]ForwardTraceRow, error)
	ReverseTrace(ctx context.Context, worksheetID string) ([]ReverseTraceRow, error)
}
