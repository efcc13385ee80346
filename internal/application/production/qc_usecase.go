package production

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/audit"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/workflow"
)

// QCUseCase takes the inspection verdict and runs its consequences: the
// sheet/order flips, the optional auto-delivery for dentists who skip
// invoicing, and the Annex XIII statement kicked off after an approval.
type QCUseCase struct {
	txRunner      TxRunner
	worksheetRepo repository.WorkSheetRepository
	orderRepo     repository.OrderRepository
	dentistRepo   repository.DentistRepository
	qcRepo        repository.QCRepository
	annex         *AnnexOrchestrator // nil when document generation is not wired
}

// NewQCUseCase builds the use case. annex may be nil.
func NewQCUseCase(
	txRunner TxRunner,
	worksheetRepo repository.WorkSheetRepository,
	orderRepo repository.OrderRepository,
	dentistRepo repository.DentistRepository,
	qcRepo repository.QCRepository,
	annex *AnnexOrchestrator,
) *QCUseCase {
	return &QCUseCase{
		txRunner:      txRunner,
		worksheetRepo: worksheetRepo,
		orderRepo:     orderRepo,
		dentistRepo:   dentistRepo,
		qcRepo:        qcRepo,
		annex:         annex,
	}
}

// Submit records the verdict for a QC_PENDING sheet. APPROVED and CONDITIONAL
// approve the piece, REJECTED sends it back to the bench. The verdict row is
// upserted so a rework loop overwrites the previous one. Document generation
// after an approval is deliberately outside the transaction; its failure
// never unwinds the verdict.
func (uc *QCUseCase) Submit(ctx context.Context, actor audit.Actor, worksheetID string, in dto.SubmitQCRequest) (*dto.QCResponse, error) {
	checklist := entity.QCChecklist{
		MarginalIntegrity: in.Checklist.MarginalIntegrity,
		OcclusionChecked:  in.Checklist.OcclusionChecked,
		ProximalContacts:  in.Checklist.ProximalContacts,
		ShadeMatch:        in.Checklist.ShadeMatch,
		SurfaceFinish:     in.Checklist.SurfaceFinish,
	}
	if err := workflow.ValidateQCSubmission(checklist, in.Result, in.Notes, in.ActionRequired); err != nil {
		return nil, err
	}

	// Resolve the dentist up front; RequiresInvoicing decides auto-delivery.
	sheetPeek, err := uc.worksheetRepo.GetByID(ctx, worksheetID)
	if err != nil {
		return nil, err
	}
	orderPeek, err := uc.orderRepo.GetByID(ctx, sheetPeek.OrderID)
	if err != nil {
		return nil, err
	}
	dentist, err := uc.dentistRepo.GetByID(ctx, orderPeek.DentistID)
	if err != nil {
		return nil, fmt.Errorf("dentist %s: %w", orderPeek.DentistID, err)
	}

	var (
		record        *entity.QualityControl
		sheetStatus   string
		orderStatus   string
		autoDelivered bool
	)
	err = uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		worksheetRepo repository.WorkSheetRepository,
		qcRepo repository.QCRepository,
		_ repository.CounterRepository,
		auditRepo repository.AuditRepository,
	) error {
		sheet, err := worksheetRepo.GetForUpdate(ctx, worksheetID)
		if err != nil {
			return err
		}
		if sheet.Status != entity.WorkSheetStatusQCPending {
			return fmt.Errorf("%w: sheet %s is %s, qc submission requires QC_PENDING", domain.ErrInvalidTransition, sheet.Number, sheet.Status)
		}
		order, err := orderRepo.GetForUpdate(ctx, sheet.OrderID)
		if err != nil {
			return err
		}

		// 1) Upsert the verdict; a rework loop resubmits against the same row
		now := time.Now()
		previous, err := qcRepo.GetByWorksheet(ctx, sheet.ID)
		switch {
		case err == nil:
			record = previous
		case errors.Is(err, domain.ErrNotFound):
			record = &entity.QualityControl{ID: uuid.New().String(), WorksheetID: sheet.ID}
		default:
			return err
		}
		var before *entity.QualityControl
		if previous != nil {
			b := *previous
			before = &b
		}
		record.Checklist = checklist
		record.Result = in.Result
		record.InspectorID = actor.ID
		record.Notes = in.Notes
		record.ActionRequired = in.ActionRequired
		record.CheckedAt = now
		record.UpdatedAt = now
		if previous == nil {
			if err := qcRepo.Create(ctx, record); err != nil {
				return err
			}
		} else {
			if err := qcRepo.Update(ctx, record); err != nil {
				return err
			}
		}

		// 2) Flip both levels per the verdict
		sheetTarget, orderTarget := workflow.QCOutcome(in.Result)
		if err := workflow.ValidateWorkSheet(sheet.Status, sheetTarget); err != nil {
			return err
		}
		if err := workflow.ValidateOrder(order.Status, orderTarget); err != nil {
			return err
		}
		if err := worksheetRepo.UpdateStatus(ctx, sheet.ID, sheetTarget); err != nil {
			return err
		}
		if err := orderRepo.UpdateStatus(ctx, order.ID, orderTarget); err != nil {
			return err
		}
		sheetStatus, orderStatus = sheetTarget, orderTarget

		// 3) Auto-delivery for dentists the lab never invoices
		if sheetTarget == entity.WorkSheetStatusQCApproved && !dentist.RequiresInvoicing {
			if err := worksheetRepo.UpdateStatus(ctx, sheet.ID, entity.WorkSheetStatusDelivered); err != nil {
				return err
			}
			if err := orderRepo.UpdateStatus(ctx, order.ID, entity.OrderStatusDelivered); err != nil {
				return err
			}
			sheetStatus, orderStatus = entity.WorkSheetStatusDelivered, entity.OrderStatusDelivered
			autoDelivered = true
		}

		entry := audit.Entry{
			Action:     entity.AuditActionQCSubmitted,
			EntityType: "quality_controls",
			EntityID:   record.ID,
			After:      record,
		}
		if before != nil {
			entry.Before = before
		}
		audit.Record(ctx, auditRepo, actor, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The statement renders outside the verdict's transaction.
	if sheetStatus != entity.WorkSheetStatusQCRejected && uc.annex != nil {
		uc.annex.ProcessAsync(worksheetID, actor)
	}

	resp := toQCResponse(record)
	resp.WorksheetStatus = sheetStatus
	resp.OrderStatus = orderStatus
	resp.AutoDelivered = autoDelivered
	return resp, nil
}

// Get returns the stored verdict for a sheet.
func (uc *QCUseCase) Get(ctx context.Context, worksheetID string) (*dto.QCResponse, error) {
	record, err := uc.qcRepo.GetByWorksheet(ctx, worksheetID)
	if err != nil {
		return nil, err
	}
	sheet, err := uc.worksheetRepo.GetByID(ctx, worksheetID)
	if err != nil {
		return nil, err
	}
	order, err := uc.orderRepo.GetByID(ctx, sheet.OrderID)
	if err != nil {
		return nil, err
	}
	resp := toQCResponse(record)
	resp.WorksheetStatus = sheet.Status
	resp.OrderStatus = order.Status
	return resp, nil
}

func toQCResponse(qc *entity.QualityControl) *dto.QCResponse {
	return &dto.QCResponse{
		ID:          qc.ID,
		WorksheetID: qc.WorksheetID,
		Checklist: dto.QCChecklistDTO{
			MarginalIntegrity: qc.Checklist.MarginalIntegrity,
			OcclusionChecked:  qc.Checklist.OcclusionChecked,
			ProximalContacts:  qc.Checklist.ProximalContacts,
			ShadeMatch:        qc.Checklist.ShadeMatch,
			SurfaceFinish:     qc.Checklist.SurfaceFinish,
		},
		Result:         qc.Result,
		InspectorID:    qc.InspectorID,
		Notes:          qc.Notes,
		ActionRequired: qc.ActionRequired,
		CheckedAt:      qc.CheckedAt.Format(time.RFC3339),
	}
}
