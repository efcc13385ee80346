package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/audit"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/rbac"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// LotUseCase covers the lot ledger outside consumption: arrivals, admin
// corrections and deletes. Everything that mutates runs in a transaction and
// lands in the audit ledger.
type LotUseCase struct {
	txRunner     TxRunner
	materialRepo repository.MaterialRepository
	lotRepo      repository.MaterialLotRepository
}

// NewLotUseCase builds the use case.
func NewLotUseCase(txRunner TxRunner, materialRepo repository.MaterialRepository, lotRepo repository.MaterialLotRepository) *LotUseCase {
	return &LotUseCase{txRunner: txRunner, materialRepo: materialRepo, lotRepo: lotRepo}
}

// RecordArrival books a new physical lot into stock. (material, lot number)
// must be unused; quantity available starts equal to quantity received.
func (uc *LotUseCase) RecordArrival(ctx context.Context, actor audit.Actor, materialID string, in dto.RecordArrivalRequest) (*dto.LotResponse, error) {
	if strings.TrimSpace(in.LotNumber) == "" {
		return nil, fmt.Errorf("%w: lot number is required", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	if _, err := uc.materialRepo.GetByID(ctx, materialID); err != nil {
		return nil, err
	}
	var expiry *time.Time
	if in.ExpiryDate != "" {
		t, err := time.Parse("2006-01-02", in.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("%w: expiry_date must be YYYY-MM-DD", domain.ErrInvalidInput)
		}
		expiry = &t
	}

	now := time.Now()
	lot := &entity.MaterialLot{
		ID:                uuid.New().String(),
		MaterialID:        materialID,
		LotNumber:         strings.TrimSpace(in.LotNumber),
		Supplier:          in.Supplier,
		ArrivalDate:       now,
		ExpiryDate:        expiry,
		QuantityReceived:  in.Quantity,
		QuantityAvailable: in.Quantity,
		Status:            entity.LotStatusAvailable,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.MaterialLotRepository,
		_ repository.ConsumptionRepository,
		_ repository.WorkSheetRepository,
		auditRepo repository.AuditRepository,
	) error {
		// The unique index backs this check up under concurrent arrivals.
		existing, _ := lotRepo.GetByMaterialAndNumber(ctx, materialID, lot.LotNumber)
		if existing != nil {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateLot, lot.LotNumber)
		}
		if err := lotRepo.Create(ctx, lot); err != nil {
			return err
		}
		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionStockArrival,
			EntityType: "material_lots",
			EntityID:   lot.ID,
			After:      lot,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toLotResponse(lot), nil
}

// CorrectLot is the admin-only patch path for a lot record. A reason is
// mandatory and the before/after snapshots go to the ledger.
func (uc *LotUseCase) CorrectLot(ctx context.Context, actor audit.Actor, lotID string, in dto.CorrectLotRequest) (*dto.LotResponse, error) {
	if err := rbac.Require(actor.Role, rbac.CapInventoryCorrect); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("%w: a correction reason is required", domain.ErrInvalidInput)
	}

	var corrected *entity.MaterialLot
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.MaterialLotRepository,
		_ repository.ConsumptionRepository,
		_ repository.WorkSheetRepository,
		auditRepo repository.AuditRepository,
	) error {
		lot, err := lotRepo.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		before := *lot

		if in.Status != nil {
			switch *in.Status {
			case entity.LotStatusAvailable, entity.LotStatusDepleted, entity.LotStatusExpired, entity.LotStatusRecalled:
				lot.Status = *in.Status
			default:
				return fmt.Errorf("%w: unknown lot status %q", domain.ErrInvalidInput, *in.Status)
			}
		}
		if in.QuantityAvailable != nil {
			q := *in.QuantityAvailable
			if q.IsNegative() || q.GreaterThan(lot.QuantityReceived) {
				return fmt.Errorf("%w: available must stay within 0..%s", domain.ErrValidationFailed, lot.QuantityReceived.String())
			}
			lot.QuantityAvailable = q
		}
		if in.ExpiryDate != nil {
			if *in.ExpiryDate == "" {
				lot.ExpiryDate = nil
			} else {
				t, err := time.Parse("2006-01-02", *in.ExpiryDate)
				if err != nil {
					return fmt.Errorf("%w: expiry_date must be YYYY-MM-DD", domain.ErrInvalidInput)
				}
				lot.ExpiryDate = &t
			}
		}
		if in.Supplier != nil {
			lot.Supplier = *in.Supplier
		}
		lot.UpdatedAt = time.Now()

		if err := lotRepo.Update(ctx, lot); err != nil {
			return err
		}
		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionLotCorrected,
			EntityType: "material_lots",
			EntityID:   lot.ID,
			Before:     before,
			After:      lot,
			Reason:     in.Reason,
		})
		corrected = lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toLotResponse(corrected), nil
}

// DeleteLot hard-deletes a lot nothing ever consumed from. One traceability
// row makes the lot permanent.
func (uc *LotUseCase) DeleteLot(ctx context.Context, actor audit.Actor, lotID string) error {
	if err := rbac.Require(actor.Role, rbac.CapInventoryCorrect); err != nil {
		return err
	}
	return uc.txRunner.Run(ctx, func(
		lotRepo repository.MaterialLotRepository,
		consumptionRepo repository.ConsumptionRepository,
		_ repository.WorkSheetRepository,
		auditRepo repository.AuditRepository,
	) error {
		lot, err := lotRepo.GetByID(ctx, lotID)
		if err != nil {
			return err
		}
		used, err := consumptionRepo.ExistsForLot(ctx, lotID)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("%w: lot %s has traceability records", domain.ErrComplianceViolation, lot.LotNumber)
		}
		if err := lotRepo.Delete(ctx, lotID); err != nil {
			return err
		}
		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionLotDeleted,
			EntityType: "material_lots",
			EntityID:   lotID,
			Before:     lot,
		})
		return nil
	})
}

// Get returns one lot.
func (uc *LotUseCase) Get(ctx context.Context, lotID string) (*dto.LotResponse, error) {
	lot, err := uc.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	return toLotResponse(lot), nil
}

// ListByMaterial returns all lots of a material, arrivals first.
func (uc *LotUseCase) ListByMaterial(ctx context.Context, materialID string) ([]dto.LotResponse, error) {
	if _, err := uc.materialRepo.GetByID(ctx, materialID); err != nil {
		return nil, err
	}
	lots, err := uc.lotRepo.ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, *toLotResponse(l))
	}
	return out, nil
}

func toLotResponse(l *entity.MaterialLot) *dto.LotResponse {
	resp := &dto.LotResponse{
		ID:                l.ID,
		MaterialID:        l.MaterialID,
		LotNumber:         l.LotNumber,
		Supplier:          l.Supplier,
		ArrivalDate:       l.ArrivalDate.Format("2006-01-02"),
		QuantityReceived:  l.QuantityReceived,
		QuantityAvailable: l.QuantityAvailable,
		Status:            l.Status,
	}
	if l.ExpiryDate != nil {
		resp.ExpiryDate = l.ExpiryDate.Format("2006-01-02")
	}
	return resp
}
