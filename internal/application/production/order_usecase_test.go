package production_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/audit"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/production"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/numbering"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/rbac"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
	"github.com/Magneteek/SmileLAB-sub002/internal/infrastructure/memory"
)

var (
	ctx        = context.Background()
	office     = audit.Actor{ID: "user-office", Role: rbac.RoleOffice}
	technician = audit.Actor{ID: "user-tech", Role: rbac.RoleTechnician}
	inspector  = audit.Actor{ID: "user-qc", Role: rbac.RoleQC}
	admin      = audit.Actor{ID: "user-admin", Role: rbac.RoleAdmin}
)

func TestCreateOrder_IntakeBuildsTheWholeChain(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)

	resp, err := f.orders.Create(ctx, office, dto.CreateOrderRequest{
		DentistID:  d.ID,
		PatientRef: "PT-0042",
		DueDate:    "2026-09-15",
		Products:   []dto.OrderProductRequest{{ProductID: p.ID, Teeth: "11,21", Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, numbering.OrderNumber(time.Now().Year(), 1), resp.Number)
	assert.Equal(t, entity.OrderStatusPending, resp.Status)
	assert.Equal(t, "2026-09-15", resp.DueDate)

	require.NotNil(t, resp.Worksheet, "the sheet is born with the order")
	assert.Equal(t, "DN-"+resp.Number, resp.Worksheet.Number)
	assert.Equal(t, entity.WorkSheetStatusDraft, resp.Worksheet.Status)

	require.Len(t, resp.Worksheet.Products, 1)
	line := resp.Worksheet.Products[0]
	assert.Equal(t, p.ID, line.ProductID)
	assert.Equal(t, p.Name, line.Description)
	assert.Equal(t, "11,21", line.Teeth)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.PriceAtSelection.Equal(p.Price), "catalog price is frozen on the line")

	byNumber, err := f.orders.GetByNumber(ctx, resp.Number)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, byNumber.ID)

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionOrderCreated})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, resp.ID, entries[0].EntityID)
}

func TestCreateOrder_ConcurrentIntakeDrawsDistinctNumbers(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)

	const n = 20
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.orders.Create(ctx, office, dto.CreateOrderRequest{
				DentistID: d.ID,
				Products:  []dto.OrderProductRequest{{ProductID: p.ID, Quantity: 1}},
			})
			if err != nil {
				t.Errorf("intake: %v", err)
				return
			}
			numbers <- resp.Number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, n)
	for num := range numbers {
		assert.False(t, seen[num], "number %s was issued twice", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}

func TestCreateOrder_ValidatesInput(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)
	line := dto.OrderProductRequest{ProductID: p.ID, Quantity: 1}

	_, err := f.orders.Create(ctx, office, dto.CreateOrderRequest{Products: []dto.OrderProductRequest{line}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "dentist is required")

	_, err = f.orders.Create(ctx, office, dto.CreateOrderRequest{DentistID: d.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "an order without lines is meaningless")

	_, err = f.orders.Create(ctx, office, dto.CreateOrderRequest{
		DentistID: d.ID,
		DueDate:   "15/09/2026",
		Products:  []dto.OrderProductRequest{line},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "due date must be YYYY-MM-DD")

	_, err = f.orders.Create(ctx, office, dto.CreateOrderRequest{
		DentistID: d.ID,
		Products:  []dto.OrderProductRequest{{ProductID: p.ID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "zero quantity")
}

func TestCreateOrder_UnknownDentist(t *testing.T) {
	f := newFixture()
	p := f.seedProduct(t, "CR-ZR", "150.00", true)

	_, err := f.orders.Create(ctx, office, dto.CreateOrderRequest{
		DentistID: uuid.New().String(),
		Products:  []dto.OrderProductRequest{{ProductID: p.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateOrder_InactiveProductRefused(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	retired := f.seedProduct(t, "MW-OLD", "80.00", false)

	_, err := f.orders.Create(ctx, office, dto.CreateOrderRequest{
		DentistID: d.ID,
		Products:  []dto.OrderProductRequest{{ProductID: retired.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)

	_, err := f.orders.Create(ctx, office, dto.CreateOrderRequest{
		DentistID: d.ID,
		Products:  []dto.OrderProductRequest{{ProductID: uuid.New().String(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateOrder_PatchesDescriptiveFields(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)
	created := f.intake(t, d.ID, p.ID)

	ref := "PT-0099"
	notes := "shade B1 per photo"
	resp, err := f.orders.Update(ctx, office, created.ID, dto.UpdateOrderRequest{
		PatientRef: &ref,
		Notes:      &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, "PT-0099", resp.PatientRef)
	assert.Equal(t, "shade B1 per photo", resp.Notes)
	require.NotNil(t, resp.Worksheet)
	assert.Len(t, resp.Worksheet.Products, 1, "lines are untouched by a descriptive patch")

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionOrderUpdated})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdateOrder_SwapsLinesWhileDraft(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	crown := f.seedProduct(t, "CR-ZR", "150.00", true)
	bridge := f.seedProduct(t, "BR-3U", "420.00", true)
	created := f.intake(t, d.ID, crown.ID)

	resp, err := f.orders.Update(ctx, office, created.ID, dto.UpdateOrderRequest{
		Products: &[]dto.OrderProductRequest{{ProductID: bridge.ID, Teeth: "14,15,16", Quantity: 1}},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Worksheet)
	require.Len(t, resp.Worksheet.Products, 1, "the swap is wholesale")
	assert.Equal(t, bridge.ID, resp.Worksheet.Products[0].ProductID)
	assert.True(t, resp.Worksheet.Products[0].PriceAtSelection.Equal(bridge.Price))
}

func TestUpdateOrder_LinesFrozenOnceProductionStarts(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	crown := f.seedProduct(t, "CR-ZR", "150.00", true)
	bridge := f.seedProduct(t, "BR-3U", "420.00", true)
	created := f.intake(t, d.ID, crown.ID)

	_, err := f.moves.StartProduction(ctx, technician, created.Worksheet.ID)
	require.NoError(t, err)

	_, err = f.orders.Update(ctx, office, created.ID, dto.UpdateOrderRequest{
		Products: &[]dto.OrderProductRequest{{ProductID: bridge.ID, Quantity: 1}},
	})
	require.Error(t, err, "the sheet left DRAFT, its lines are frozen")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	notes := "rush case"
	_, err = f.orders.Update(ctx, office, created.ID, dto.UpdateOrderRequest{Notes: &notes})
	assert.NoError(t, err, "descriptive fields stay editable on the bench")
}

func TestUpdateOrder_TerminalOrderReadOnly(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)
	created := f.intake(t, d.ID, p.ID)

	require.NoError(t, f.orders.Cancel(ctx, office, created.ID, dto.CancelOrderRequest{Reason: "patient declined treatment"}))

	notes := "too late"
	_, err := f.orders.Update(ctx, office, created.ID, dto.UpdateOrderRequest{Notes: &notes})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestCancelOrder_RequiresReason(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)
	created := f.intake(t, d.ID, p.ID)

	err := f.orders.Cancel(ctx, office, created.ID, dto.CancelOrderRequest{Reason: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCancelOrder_VoidsTheSheet(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)
	created := f.intake(t, d.ID, p.ID)

	require.NoError(t, f.orders.Cancel(ctx, office, created.ID, dto.CancelOrderRequest{Reason: "patient declined treatment"}))

	assert.Equal(t, entity.OrderStatusCancelled, f.orderStatus(t, created.ID))
	assert.Equal(t, entity.WorkSheetStatusVoided, f.sheetStatus(t, created.Worksheet.ID))

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionOrderCancelled})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "patient declined treatment", entries[0].Reason)
}

func TestCancelOrder_DeliveredOrderRefused(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	order, _ := f.seedPair(t, d.ID, entity.OrderStatusDelivered, entity.WorkSheetStatusDelivered)

	err := f.orders.Cancel(ctx, office, order.ID, dto.CancelOrderRequest{Reason: "never mind"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "delivered work cannot be uncancelled into existence")
}

func TestDeleteOrder_ActiveOrderRefused(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)
	created := f.intake(t, d.ID, p.ID)

	err := f.orders.Delete(ctx, admin, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestDeleteOrder_SoftDeleteKeepsTheBooks(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)
	created := f.intake(t, d.ID, p.ID)
	require.NoError(t, f.orders.Cancel(ctx, office, created.ID, dto.CancelOrderRequest{Reason: "duplicate intake"}))

	require.NoError(t, f.orders.Delete(ctx, admin, created.ID))

	_, err := f.orders.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "soft-deleted orders vanish from reads")

	_, err = f.store.WorkSheets().GetByOrderID(ctx, created.ID)
	assert.NoError(t, err, "the sheet stays for traceability")

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionOrderDeleted})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDeleteOrder_HardDeleteWithoutChildren(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	now := time.Now()
	orphan := &entity.Order{
		ID:        uuid.New().String(),
		Number:    nextTestNumber(),
		DentistID: d.ID,
		Status:    entity.OrderStatusCancelled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.store.Orders().Create(ctx, orphan))

	require.NoError(t, f.orders.Delete(ctx, admin, orphan.ID))

	_, err := f.store.Orders().GetByID(ctx, orphan.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListOrders_FiltersByStatusAndDentist(t *testing.T) {
	f := newFixture()
	dA := f.seedDentist(t, true)
	dB := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)
	first := f.intake(t, dA.ID, p.ID)
	f.intake(t, dB.ID, p.ID)

	_, err := f.moves.StartProduction(ctx, technician, first.Worksheet.ID)
	require.NoError(t, err)

	pending, err := f.orders.List(ctx, dto.ListOrdersRequest{Status: entity.OrderStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, dB.ID, pending[0].DentistID)

	mine, err := f.orders.List(ctx, dto.ListOrdersRequest{DentistID: dA.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)
}

// ── fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	store  *memory.Store
	orders *production.OrderUseCase
	moves  *production.TransitionUseCase
	qc     *production.QCUseCase
}

func newFixture() *fixture {
	s := memory.NewStore()
	runner := memory.NewProductionTxRunner(s)
	return &fixture{
		store:  s,
		orders: production.NewOrderUseCase(runner, s.Orders(), s.WorkSheets(), s.Dentists(), s.Products()),
		moves:  production.NewTransitionUseCase(runner),
		qc:     production.NewQCUseCase(runner, s.WorkSheets(), s.Orders(), s.Dentists(), s.QCs(), nil),
	}
}

func (f *fixture) seedDentist(t *testing.T, invoiced bool) *entity.Dentist {
	t.Helper()
	d := &entity.Dentist{
		ID:                uuid.New().String(),
		Name:              "Dr. Ozolins",
		Email:             "ozolins@example.com",
		RequiresInvoicing: invoiced,
	}
	require.NoError(t, f.store.Dentists().Create(ctx, d))
	return d
}

func (f *fixture) seedProduct(t *testing.T, code, price string, active bool) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:     uuid.New().String(),
		Code:   code,
		Name:   "Product " + code,
		Price:  decimal.RequireFromString(price),
		Active: active,
	}
	require.NoError(t, f.store.Products().Create(ctx, p))
	return p
}

// intake runs a one-line order through the real intake path.
func (f *fixture) intake(t *testing.T, dentistID, productID string) *dto.OrderDetailResponse {
	t.Helper()
	resp, err := f.orders.Create(ctx, office, dto.CreateOrderRequest{
		DentistID: dentistID,
		Products:  []dto.OrderProductRequest{{ProductID: productID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Worksheet)
	return resp
}

// seedPair plants an order and its sheet directly at the given statuses,
// bypassing the graph, for tests that start mid-flow.
func (f *fixture) seedPair(t *testing.T, dentistID, orderStatus, sheetStatus string) (*entity.Order, *entity.WorkSheet) {
	t.Helper()
	now := time.Now()
	o := &entity.Order{
		ID:        uuid.New().String(),
		Number:    nextTestNumber(),
		DentistID: dentistID,
		Status:    orderStatus,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.store.Orders().Create(ctx, o))
	w := &entity.WorkSheet{
		ID:        uuid.New().String(),
		OrderID:   o.ID,
		Number:    "DN-" + o.Number,
		Status:    sheetStatus,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.store.WorkSheets().Create(ctx, w))
	return o, w
}

func (f *fixture) orderStatus(t *testing.T, id string) string {
	t.Helper()
	o, err := f.store.Orders().GetByID(ctx, id)
	require.NoError(t, err)
	return o.Status
}

func (f *fixture) sheetStatus(t *testing.T, id string) string {
	t.Helper()
	w, err := f.store.WorkSheets().GetByID(ctx, id)
	require.NoError(t, err)
	return w.Status
}

var testSeq atomic.Int64

func nextTestNumber() string {
	return fmt.Sprintf("99%03d", testSeq.Add(1))
}
