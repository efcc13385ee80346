package production

import (
	"context"
	"fmt"
	"strings"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/audit"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/rbac"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/workflow"
)

// statusSnapshot is the audit payload for lifecycle moves: both levels in one
// row so a reviewer sees the pair change together.
type statusSnapshot struct {
	Worksheet string `json:"worksheet"`
	Order     string `json:"order"`
}

// TransitionUseCase moves a sheet and its parent order through the lifecycle.
// Every move validates both graphs, flips both rows in one transaction and
// leaves a STATUS_CHANGED entry.
type TransitionUseCase struct {
	txRunner TxRunner
}

// NewTransitionUseCase builds the use case.
func NewTransitionUseCase(txRunner TxRunner) *TransitionUseCase {
	return &TransitionUseCase{txRunner: txRunner}
}

// StartProduction puts a sheet on the bench: sheet and order move to
// IN_PRODUCTION, which opens the consumption gate. This is also the rework
// entry after a rejection, where the order is already back at IN_PRODUCTION
// and only the sheet still travels.
func (uc *TransitionUseCase) StartProduction(ctx context.Context, actor audit.Actor, worksheetID string) (*dto.TransitionResponse, error) {
	return uc.move(ctx, actor, worksheetID, entity.WorkSheetStatusInProduction, entity.OrderStatusInProduction)
}

// SubmitToQC hands the finished piece to inspection: both levels move to
// QC_PENDING and consumption closes.
func (uc *TransitionUseCase) SubmitToQC(ctx context.Context, actor audit.Actor, worksheetID string) (*dto.TransitionResponse, error) {
	return uc.move(ctx, actor, worksheetID, entity.WorkSheetStatusQCPending, entity.OrderStatusQCPending)
}

// Deliver records the physical handover. The sheet may already be DELIVERED
// when invoicing got there first; then only the order still moves.
func (uc *TransitionUseCase) Deliver(ctx context.Context, actor audit.Actor, worksheetID string) (*dto.TransitionResponse, error) {
	var resp *dto.TransitionResponse
	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		worksheetRepo repository.WorkSheetRepository,
		_ repository.QCRepository,
		_ repository.CounterRepository,
		auditRepo repository.AuditRepository,
	) error {
		sheet, err := worksheetRepo.GetForUpdate(ctx, worksheetID)
		if err != nil {
			return err
		}
		order, err := orderRepo.GetForUpdate(ctx, sheet.OrderID)
		if err != nil {
			return err
		}
		before := statusSnapshot{Worksheet: sheet.Status, Order: order.Status}

		if sheet.Status != entity.WorkSheetStatusDelivered {
			if err := workflow.ValidateWorkSheet(sheet.Status, entity.WorkSheetStatusDelivered); err != nil {
				return err
			}
			if err := worksheetRepo.UpdateStatus(ctx, sheet.ID, entity.WorkSheetStatusDelivered); err != nil {
				return err
			}
			sheet.Status = entity.WorkSheetStatusDelivered
		}
		if err := workflow.ValidateOrder(order.Status, entity.OrderStatusDelivered); err != nil {
			return err
		}
		if err := orderRepo.UpdateStatus(ctx, order.ID, entity.OrderStatusDelivered); err != nil {
			return err
		}
		order.Status = entity.OrderStatusDelivered

		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionStatusChanged,
			EntityType: "worksheets",
			EntityID:   sheet.ID,
			Before:     before,
			After:      statusSnapshot{Worksheet: sheet.Status, Order: order.Status},
		})
		resp = toTransitionResponse(sheet, order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Void is the admin override: the sheet is written off from any non-terminal
// state and the parent order is cancelled when its graph still allows it.
// Consumed lots stay consumed.
func (uc *TransitionUseCase) Void(ctx context.Context, actor audit.Actor, worksheetID string, in dto.VoidWorksheetRequest) (*dto.TransitionResponse, error) {
	if err := rbac.Require(actor.Role, rbac.CapProductionVoid); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("%w: a void reason is required", domain.ErrInvalidInput)
	}

	var resp *dto.TransitionResponse
	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		worksheetRepo repository.WorkSheetRepository,
		_ repository.QCRepository,
		_ repository.CounterRepository,
		auditRepo repository.AuditRepository,
	) error {
		sheet, err := worksheetRepo.GetForUpdate(ctx, worksheetID)
		if err != nil {
			return err
		}
		order, err := orderRepo.GetForUpdate(ctx, sheet.OrderID)
		if err != nil {
			return err
		}
		before := statusSnapshot{Worksheet: sheet.Status, Order: order.Status}

		if err := workflow.ValidateWorkSheet(sheet.Status, entity.WorkSheetStatusVoided); err != nil {
			return err
		}
		if err := worksheetRepo.UpdateStatus(ctx, sheet.ID, entity.WorkSheetStatusVoided); err != nil {
			return err
		}
		sheet.Status = entity.WorkSheetStatusVoided

		if workflow.CanTransitionOrder(order.Status, entity.OrderStatusCancelled) {
			if err := orderRepo.UpdateStatus(ctx, order.ID, entity.OrderStatusCancelled); err != nil {
				return err
			}
			order.Status = entity.OrderStatusCancelled
		}

		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionStatusChanged,
			EntityType: "worksheets",
			EntityID:   sheet.ID,
			Before:     before,
			After:      statusSnapshot{Worksheet: sheet.Status, Order: order.Status},
			Reason:     in.Reason,
		})
		resp = toTransitionResponse(sheet, order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// move flips sheet and order together after validating both graphs.
func (uc *TransitionUseCase) move(ctx context.Context, actor audit.Actor, worksheetID, sheetTarget, orderTarget string) (*dto.TransitionResponse, error) {
	var resp *dto.TransitionResponse
	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		worksheetRepo repository.WorkSheetRepository,
		_ repository.QCRepository,
		_ repository.CounterRepository,
		auditRepo repository.AuditRepository,
	) error {
		sheet, err := worksheetRepo.GetForUpdate(ctx, worksheetID)
		if err != nil {
			return err
		}
		order, err := orderRepo.GetForUpdate(ctx, sheet.OrderID)
		if err != nil {
			return err
		}
		before := statusSnapshot{Worksheet: sheet.Status, Order: order.Status}

		if err := workflow.ValidateWorkSheet(sheet.Status, sheetTarget); err != nil {
			return err
		}
		// The sheet drives the move. The order travels with it unless a
		// rejection already put it at the target ahead of the sheet.
		if order.Status != orderTarget {
			if err := workflow.ValidateOrder(order.Status, orderTarget); err != nil {
				return err
			}
			if err := orderRepo.UpdateStatus(ctx, order.ID, orderTarget); err != nil {
				return err
			}
			order.Status = orderTarget
		}
		if err := worksheetRepo.UpdateStatus(ctx, sheet.ID, sheetTarget); err != nil {
			return err
		}
		sheet.Status = sheetTarget

		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionStatusChanged,
			EntityType: "worksheets",
			EntityID:   sheet.ID,
			Before:     before,
			After:      statusSnapshot{Worksheet: sheet.Status, Order: order.Status},
		})
		resp = toTransitionResponse(sheet, order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func toTransitionResponse(sheet *entity.WorkSheet, order *entity.Order) *dto.TransitionResponse {
	return &dto.TransitionResponse{
		WorksheetID:     sheet.ID,
		WorksheetNumber: sheet.Number,
		WorksheetStatus: sheet.Status,
		OrderID:         order.ID,
		OrderNumber:     order.Number,
		OrderStatus:     order.Status,
	}
}
