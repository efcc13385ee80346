package inventory

import (
	"context"
	"time"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// TraceUseCase answers the two regulatory questions: which devices contain a
// lot (forward, for recalls) and which lots went into a device (reverse, for
// the Annex XIII statement). Read-only; rows survive lot depletion and expiry
// because the ledger is never pruned.
type TraceUseCase struct {
	worksheetRepo   repository.WorkSheetRepository
	consumptionRepo repository.ConsumptionRepository
}

// NewTraceUseCase builds the use case.
func NewTraceUseCase(worksheetRepo repository.WorkSheetRepository, consumptionRepo repository.ConsumptionRepository) *TraceUseCase {
	return &TraceUseCase{worksheetRepo: worksheetRepo, consumptionRepo: consumptionRepo}
}

// Forward lists every device a lot number went into. An unknown lot number is
// not an error: the recall answer is simply "nothing affected".
func (uc *TraceUseCase) Forward(ctx context.Context, lotNumber string) ([]dto.ForwardTraceResponse, error) {
	rows, err := uc.consumptionRepo.ForwardTrace(ctx, lotNumber)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ForwardTraceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ForwardTraceResponse{
			MaterialCode:    r.MaterialCode,
			MaterialName:    r.MaterialName,
			LotNumber:       r.LotNumber,
			WorksheetNumber: r.WorksheetNumber,
			OrderNumber:     r.OrderNumber,
			PatientRef:      r.PatientRef,
			DentistName:     r.DentistName,
			QuantityUsed:    r.QuantityUsed,
			RecordedAt:      r.RecordedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// Reverse lists everything consumed into one work sheet.
func (uc *TraceUseCase) Reverse(ctx context.Context, worksheetID string) ([]dto.ReverseTraceResponse, error) {
	if _, err := uc.worksheetRepo.GetByID(ctx, worksheetID); err != nil {
		return nil, err
	}
	rows, err := uc.consumptionRepo.ReverseTrace(ctx, worksheetID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReverseTraceResponse, 0, len(rows))
	for _, r := range rows {
		resp := dto.ReverseTraceResponse{
			MaterialCode: r.MaterialCode,
			MaterialName: r.MaterialName,
			Manufacturer: r.Manufacturer,
			LotNumber:    r.LotNumber,
			Supplier:     r.Supplier,
			QuantityUsed: r.QuantityUsed,
			Unit:         r.Unit,
			RecordedAt:   r.RecordedAt.Format(time.RFC3339),
		}
		if r.ExpiryDate != nil {
			resp.ExpiryDate = r.ExpiryDate.Format("2006-01-02")
		}
		out = append(out, resp)
	}
	return out, nil
}
