package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/audit"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	domInventory "github.com/Magneteek/SmileLAB-sub002/internal/domain/inventory"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// ConsumeUseCase is the consumption engine: FIFO selection, lot decrement,
// traceability row and audit entry as one transaction. Either all four happen
// or none do; a traceability row always points at a real lot that could cover
// it at the time.
type ConsumeUseCase struct {
	txRunner     TxRunner
	materialRepo repository.MaterialRepository
}

// NewConsumeUseCase builds the use case.
func NewConsumeUseCase(txRunner TxRunner, materialRepo repository.MaterialRepository) *ConsumeUseCase {
	return &ConsumeUseCase{txRunner: txRunner, materialRepo: materialRepo}
}

// Consume books quantity of a material against a work sheet. The sheet must
// be IN_PRODUCTION; the eligible lots are locked for the duration, so two
// technicians consuming the same material serialize instead of both emptying
// the same lot.
func (uc *ConsumeUseCase) Consume(ctx context.Context, actor audit.Actor, worksheetID string, in dto.ConsumeRequest) (*dto.ConsumptionResponse, error) {
	if in.MaterialID == "" {
		return nil, fmt.Errorf("%w: material_id is required", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	if _, err := uc.materialRepo.GetByID(ctx, in.MaterialID); err != nil {
		return nil, err
	}

	var resp *dto.ConsumptionResponse
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.MaterialLotRepository,
		consumptionRepo repository.ConsumptionRepository,
		worksheetRepo repository.WorkSheetRepository,
		auditRepo repository.AuditRepository,
	) error {
		// 1) Gate on the sheet: material only flows into active production.
		sheet, err := worksheetRepo.GetByID(ctx, worksheetID)
		if err != nil {
			return err
		}
		if sheet.Status != entity.WorkSheetStatusInProduction {
			return fmt.Errorf("%w: worksheet %s is %s, consumption requires IN_PRODUCTION",
				domain.ErrValidationFailed, sheet.Number, sheet.Status)
		}

		// 2) FIFO selection over the locked candidates.
		now := time.Now()
		candidates, err := lotRepo.ListEligibleForUpdate(ctx, in.MaterialID, now)
		if err != nil {
			return err
		}
		lot, err := domInventory.SelectFIFO(candidates, in.Quantity, now)
		if err != nil {
			return err
		}

		// 3) Decrement, flipping to DEPLETED when the lot runs dry.
		lot.QuantityAvailable = lot.QuantityAvailable.Sub(in.Quantity)
		if lot.QuantityAvailable.IsZero() {
			lot.Status = entity.LotStatusDepleted
		}
		lot.UpdatedAt = now
		if err := lotRepo.Update(ctx, lot); err != nil {
			return err
		}

		// 4) The immutable traceability row.
		wm := &entity.WorksheetMaterial{
			ID:           uuid.New().String(),
			WorksheetID:  worksheetID,
			MaterialID:   in.MaterialID,
			LotID:        lot.ID,
			QuantityUsed: in.Quantity,
			RecordedBy:   actor.ID,
			RecordedAt:   now,
		}
		if err := consumptionRepo.Create(ctx, wm); err != nil {
			return err
		}

		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionStockConsumed,
			EntityType: "worksheet_materials",
			EntityID:   wm.ID,
			After:      wm,
		})

		resp = &dto.ConsumptionResponse{
			WorksheetID:   worksheetID,
			MaterialID:    in.MaterialID,
			LotID:         lot.ID,
			LotNumber:     lot.LotNumber,
			QuantityUsed:  in.Quantity,
			LotRemaining:  lot.QuantityAvailable,
			LotStatus:     lot.Status,
			TraceRecordID: wm.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
