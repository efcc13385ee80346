package production

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/audit"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/numbering"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/workflow"
)

// OrderUseCase covers order intake and the order-level bookkeeping around it.
// Status moves live in TransitionUseCase; intake is the only place an order
// number is ever issued.
type OrderUseCase struct {
	txRunner      TxRunner
	orderRepo     repository.OrderRepository
	worksheetRepo repository.WorkSheetRepository
	dentistRepo   repository.DentistRepository
	productRepo   repository.ProductRepository
}

// NewOrderUseCase builds the use case.
func NewOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	worksheetRepo repository.WorkSheetRepository,
	dentistRepo repository.DentistRepository,
	productRepo repository.ProductRepository,
) *OrderUseCase {
	return &OrderUseCase{
		txRunner:      txRunner,
		orderRepo:     orderRepo,
		worksheetRepo: worksheetRepo,
		dentistRepo:   dentistRepo,
		productRepo:   productRepo,
	}
}

// Create is the intake operation: one order, its work sheet and the product
// lines land together. The order number comes from the per-year counter, the
// sheet number is derived from it.
func (uc *OrderUseCase) Create(ctx context.Context, actor audit.Actor, in dto.CreateOrderRequest) (*dto.OrderDetailResponse, error) {
	if strings.TrimSpace(in.DentistID) == "" {
		return nil, fmt.Errorf("%w: dentist_id is required", domain.ErrInvalidInput)
	}
	if len(in.Products) == 0 {
		return nil, fmt.Errorf("%w: at least one product line is required", domain.ErrInvalidInput)
	}
	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	dentist, err := uc.dentistRepo.GetByID(ctx, in.DentistID)
	if err != nil {
		return nil, fmt.Errorf("dentist %s: %w", in.DentistID, err)
	}

	lines, err := uc.resolveLines(ctx, in.Products)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &entity.Order{
		ID:         uuid.New().String(),
		DentistID:  dentist.ID,
		PatientRef: strings.TrimSpace(in.PatientRef),
		Status:     entity.OrderStatusPending,
		DueDate:    dueDate,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	sheet := &entity.WorkSheet{
		ID:        uuid.New().String(),
		OrderID:   order.ID,
		Status:    entity.WorkSheetStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		worksheetRepo repository.WorkSheetRepository,
		_ repository.QCRepository,
		counterRepo repository.CounterRepository,
		auditRepo repository.AuditRepository,
	) error {
		// 1) Issue the year-scoped number atomically
		seq, err := counterRepo.NextValue(ctx, numbering.OrderCounterKey(now.Year()))
		if err != nil {
			return fmt.Errorf("order counter: %w", err)
		}
		order.Number = numbering.OrderNumber(now.Year(), seq)
		sheet.Number = numbering.WorksheetNumber(order.Number)

		// 2) Order and sheet
		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		if err := worksheetRepo.Create(ctx, sheet); err != nil {
			return err
		}

		// 3) Product lines with their price snapshots
		for i := range lines {
			lines[i].ID = uuid.New().String()
			lines[i].WorksheetID = sheet.ID
			lines[i].CreatedAt = now
			if err := worksheetRepo.AddProduct(ctx, lines[i]); err != nil {
				return err
			}
		}

		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionOrderCreated,
			EntityType: "orders",
			EntityID:   order.ID,
			After:      order,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return uc.detailResponse(order, sheet, lines), nil
}

// Get returns one order with its sheet and product lines.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*dto.OrderDetailResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sheet, lines, err := uc.loadSheet(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return uc.detailResponse(order, sheet, lines), nil
}

// GetByNumber resolves an order by its public YYNNN number.
func (uc *OrderUseCase) GetByNumber(ctx context.Context, number string) (*dto.OrderDetailResponse, error) {
	order, err := uc.orderRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	sheet, lines, err := uc.loadSheet(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return uc.detailResponse(order, sheet, lines), nil
}

// List returns orders, newest first, filtered by status and dentist.
func (uc *OrderUseCase) List(ctx context.Context, in dto.ListOrdersRequest) ([]dto.OrderResponse, error) {
	in.DefaultPage()
	orders, err := uc.orderRepo.List(ctx, repository.OrderFilter{
		Status:    in.Status,
		DentistID: in.DentistID,
		Limit:     in.Limit,
		Offset:    in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out, nil
}

// Update patches the order's descriptive fields. Product lines may be swapped
// wholesale, but only while the sheet has not left DRAFT. Terminal orders are
// read-only.
func (uc *OrderUseCase) Update(ctx context.Context, actor audit.Actor, id string, in dto.UpdateOrderRequest) (*dto.OrderDetailResponse, error) {
	var newLines []*entity.WorksheetProduct
	if in.Products != nil {
		if len(*in.Products) == 0 {
			return nil, fmt.Errorf("%w: at least one product line is required", domain.ErrInvalidInput)
		}
		var err error
		newLines, err = uc.resolveLines(ctx, *in.Products)
		if err != nil {
			return nil, err
		}
	}

	var (
		updated *entity.Order
		sheet   *entity.WorkSheet
	)
	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		worksheetRepo repository.WorkSheetRepository,
		_ repository.QCRepository,
		_ repository.CounterRepository,
		auditRepo repository.AuditRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if workflow.OrderTerminal(order.Status) {
			return fmt.Errorf("%w: order %s is %s and can no longer be edited", domain.ErrValidationFailed, order.Number, order.Status)
		}
		before := *order

		if in.PatientRef != nil {
			order.PatientRef = strings.TrimSpace(*in.PatientRef)
		}
		if in.DueDate != nil {
			due, err := parseDueDate(*in.DueDate)
			if err != nil {
				return err
			}
			order.DueDate = due
		}
		if in.Notes != nil {
			order.Notes = *in.Notes
		}
		order.UpdatedAt = time.Now()
		if err := orderRepo.Update(ctx, order); err != nil {
			return err
		}

		sheet, err = worksheetRepo.GetByOrderID(ctx, order.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if newLines != nil {
			if sheet == nil {
				return fmt.Errorf("%w: order %s has no work sheet", domain.ErrValidationFailed, order.Number)
			}
			if sheet.Status != entity.WorkSheetStatusDraft {
				return fmt.Errorf("%w: sheet %s is %s, product lines are frozen after DRAFT", domain.ErrValidationFailed, sheet.Number, sheet.Status)
			}
			now := time.Now()
			for i := range newLines {
				newLines[i].ID = uuid.New().String()
				newLines[i].WorksheetID = sheet.ID
				newLines[i].CreatedAt = now
			}
			if err := worksheetRepo.ReplaceProducts(ctx, sheet.ID, newLines); err != nil {
				return err
			}
		}

		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionOrderUpdated,
			EntityType: "orders",
			EntityID:   order.ID,
			Before:     before,
			After:      order,
		})
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	lines := newLines
	if lines == nil && sheet != nil {
		lines, err = uc.worksheetRepo.ListProducts(ctx, sheet.ID)
		if err != nil {
			return nil, err
		}
	}
	return uc.detailResponse(updated, sheet, lines), nil
}

// Cancel stops an order before invoicing and voids its sheet. Consumed lots
// are never restocked; the traceability rows stand regardless of how the
// order ends.
func (uc *OrderUseCase) Cancel(ctx context.Context, actor audit.Actor, id string, in dto.CancelOrderRequest) error {
	if strings.TrimSpace(in.Reason) == "" {
		return fmt.Errorf("%w: a cancellation reason is required", domain.ErrInvalidInput)
	}
	return uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		worksheetRepo repository.WorkSheetRepository,
		_ repository.QCRepository,
		_ repository.CounterRepository,
		auditRepo repository.AuditRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		before := *order
		if err := workflow.ValidateOrder(order.Status, entity.OrderStatusCancelled); err != nil {
			return err
		}
		if err := orderRepo.UpdateStatus(ctx, order.ID, entity.OrderStatusCancelled); err != nil {
			return err
		}
		order.Status = entity.OrderStatusCancelled

		sheet, err := worksheetRepo.GetByOrderID(ctx, order.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if sheet != nil && workflow.CanTransitionWorkSheet(sheet.Status, entity.WorkSheetStatusVoided) {
			if err := worksheetRepo.UpdateStatus(ctx, sheet.ID, entity.WorkSheetStatusVoided); err != nil {
				return err
			}
		}

		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionOrderCancelled,
			EntityType: "orders",
			EntityID:   order.ID,
			Before:     before,
			After:      order,
			Reason:     in.Reason,
		})
		return nil
	})
}

// Delete removes a finished order from the books: soft once the sheet exists,
// hard only for orders that never got children. Active orders must be
// cancelled first.
func (uc *OrderUseCase) Delete(ctx context.Context, actor audit.Actor, id string) error {
	return uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		worksheetRepo repository.WorkSheetRepository,
		_ repository.QCRepository,
		_ repository.CounterRepository,
		auditRepo repository.AuditRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !workflow.OrderTerminal(order.Status) {
			return fmt.Errorf("%w: order %s is %s, cancel it before deleting", domain.ErrValidationFailed, order.Number, order.Status)
		}

		hasSheet, err := worksheetRepo.ExistsByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if hasSheet {
			if err := orderRepo.SoftDelete(ctx, order.ID, time.Now()); err != nil {
				return err
			}
		} else {
			if err := orderRepo.HardDelete(ctx, order.ID); err != nil {
				return err
			}
		}

		audit.Record(ctx, auditRepo, actor, audit.Entry{
			Action:     entity.AuditActionOrderDeleted,
			EntityType: "orders",
			EntityID:   order.ID,
			Before:     order,
		})
		return nil
	})
}

// resolveLines validates the requested lines against the catalog and builds
// the sheet lines with their price snapshots. IDs are assigned at insert time.
func (uc *OrderUseCase) resolveLines(ctx context.Context, reqs []dto.OrderProductRequest) ([]*entity.WorksheetProduct, error) {
	lines := make([]*entity.WorksheetProduct, 0, len(reqs))
	for _, r := range reqs {
		if r.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for product %s", domain.ErrInvalidInput, r.ProductID)
		}
		product, err := uc.productRepo.GetByID(ctx, r.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", r.ProductID, err)
		}
		if !product.Active {
			return nil, fmt.Errorf("%w: product %s is inactive", domain.ErrValidationFailed, product.Code)
		}
		lines = append(lines, &entity.WorksheetProduct{
			ProductID:        product.ID,
			Description:      product.Name,
			Teeth:            strings.TrimSpace(r.Teeth),
			Quantity:         r.Quantity,
			PriceAtSelection: product.Price,
		})
	}
	return lines, nil
}

func (uc *OrderUseCase) loadSheet(ctx context.Context, orderID string) (*entity.WorkSheet, []*entity.WorksheetProduct, error) {
	sheet, err := uc.worksheetRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	lines, err := uc.worksheetRepo.ListProducts(ctx, sheet.ID)
	if err != nil {
		return nil, nil, err
	}
	return sheet, lines, nil
}

func (uc *OrderUseCase) detailResponse(order *entity.Order, sheet *entity.WorkSheet, lines []*entity.WorksheetProduct) *dto.OrderDetailResponse {
	resp := &dto.OrderDetailResponse{OrderResponse: toOrderResponse(order)}
	if sheet != nil {
		ws := toWorksheetResponse(sheet, lines)
		resp.Worksheet = &ws
	}
	return resp
}

func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%w: due_date must be YYYY-MM-DD", domain.ErrInvalidInput)
	}
	return &t, nil
}

// ── mappers ───────────────────────────────────────────────────────────────────

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:         o.ID,
		Number:     o.Number,
		DentistID:  o.DentistID,
		PatientRef: o.PatientRef,
		Status:     o.Status,
		Notes:      o.Notes,
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
	}
	if o.DueDate != nil {
		resp.DueDate = o.DueDate.Format("2006-01-02")
	}
	return resp
}

func toWorksheetResponse(ws *entity.WorkSheet, lines []*entity.WorksheetProduct) dto.WorksheetResponse {
	resp := dto.WorksheetResponse{
		ID:      ws.ID,
		OrderID: ws.OrderID,
		Number:  ws.Number,
		Status:  ws.Status,
	}
	for _, l := range lines {
		resp.Products = append(resp.Products, dto.WorksheetProductResponse{
			ID:               l.ID,
			ProductID:        l.ProductID,
			Description:      l.Description,
			Teeth:            l.Teeth,
			Quantity:         l.Quantity,
			PriceAtSelection: l.PriceAtSelection,
		})
	}
	return resp
}
