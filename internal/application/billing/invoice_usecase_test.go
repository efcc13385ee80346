package billing_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/audit"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/billing"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/rbac"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
	"github.com/Magneteek/SmileLAB-sub002/internal/infrastructure/memory"
)

var (
	ctx    = context.Background()
	office = audit.Actor{ID: "user-office", Role: rbac.RoleOffice}
	admin  = audit.Actor{ID: "user-admin", Role: rbac.RoleAdmin}
)

func TestCreateInvoice_ImportsSheetLinesAtFrozenPrices(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, "ozolins@example.com")
	ws := f.seedApprovedSheet(t, d.ID, "150.00", 2)

	resp, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{
		DentistID:    d.ID,
		WorksheetIDs: []string{ws.ID},
		ManualItems:  []dto.ManualLineItemRequest{{Description: "Express shipping", Quantity: 1, UnitPrice: decimal.RequireFromString("12.00")}},
	})
	require.NoError(t, err)

	assert.True(t, resp.IsDraft, "invoices are born as drafts")
	assert.Empty(t, resp.Number, "drafts carry no number")
	assert.Equal(t, entity.PaymentStatusDraft, resp.PaymentStatus)

	require.Len(t, resp.Items, 2)
	imported, manual := resp.Items[0], resp.Items[1]
	assert.Equal(t, 1, imported.Position)
	assert.Equal(t, ws.ID, imported.WorksheetID)
	assert.True(t, imported.UnitPrice.Equal(decimal.RequireFromString("150.00")), "the frozen selection price, not the catalog")
	assert.True(t, imported.Amount.Equal(decimal.RequireFromString("300.00")))
	assert.Equal(t, 2, manual.Position)
	assert.Empty(t, manual.WorksheetID)
	assert.True(t, manual.Amount.Equal(decimal.RequireFromString("12.00")))

	assert.Equal(t, entity.WorkSheetStatusQCApproved, f.sheetStatus(t, ws.ID), "drafting flips nothing")

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionInvoiceCreated})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateInvoice_RoundsOnceAtTheEnd(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, "ozolins@example.com")
	ws := f.seedApprovedSheet(t, d.ID, "150.00", 2)
	tax := decimal.RequireFromString("21")
	discount := decimal.RequireFromString("5")

	resp, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{
		DentistID:    d.ID,
		WorksheetIDs: []string{ws.ID},
		ManualItems:  []dto.ManualLineItemRequest{{Description: "Repair", Quantity: 1, UnitPrice: decimal.RequireFromString("35.50")}},
		TaxRate:      &tax,
		DiscountRate: &discount,
	})
	require.NoError(t, err)

	// 335.50 - 16.775 = 318.725; +21% = 385.65725. Summing the displayed
	// cents instead would land on 385.65.
	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("335.50")), "subtotal %s", resp.Subtotal)
	assert.True(t, resp.DiscountAmount.Equal(decimal.RequireFromString("16.78")), "discount %s", resp.DiscountAmount)
	assert.True(t, resp.TaxAmount.Equal(decimal.RequireFromString("66.93")), "tax %s", resp.TaxAmount)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("385.66")), "total %s", resp.Total)
}

func TestCreateInvoice_RatesDefaultFromLabConfig(t *testing.T) {
	f := newFixture()
	cfg, err := f.store.LabConfig().Get(ctx)
	require.NoError(t, err)
	cfg.DefaultTaxRate = decimal.RequireFromString("21")
	cfg.DefaultDiscount = decimal.RequireFromString("2.5")
	require.NoError(t, f.store.LabConfig().Update(ctx, cfg))

	d := f.seedDentist(t, "ozolins@example.com")
	ws := f.seedApprovedSheet(t, d.ID, "100.00", 1)

	resp, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{DentistID: d.ID, WorksheetIDs: []string{ws.ID}})
	require.NoError(t, err)

	assert.True(t, resp.TaxRate.Equal(decimal.RequireFromString("21")))
	assert.True(t, resp.DiscountRate.Equal(decimal.RequireFromString("2.5")))
}

func TestCreateInvoice_RefusesUnapprovedSheet(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, "ozolins@example.com")
	ws := f.seedSheetAt(t, d.ID, entity.OrderStatusInProduction, entity.WorkSheetStatusInProduction, "150.00", 1)

	_, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{DentistID: d.ID, WorksheetIDs: []string{ws.ID}})
	require.Error(t, err, "work on the bench cannot be billed")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestCreateInvoice_RefusesForeignSheet(t *testing.T) {
	f := newFixture()
	dA := f.seedDentist(t, "a@example.com")
	dB := f.seedDentist(t, "b@example.com")
	wsB := f.seedApprovedSheet(t, dB.ID, "150.00", 1)

	_, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{DentistID: dA.ID, WorksheetIDs: []string{wsB.ID}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestCreateInvoice_RefusesDuplicateSheetInRequest(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, "ozolins@example.com")
	ws := f.seedApprovedSheet(t, d.ID, "150.00", 1)

	_, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{DentistID: d.ID, WorksheetIDs: []string{ws.ID, ws.ID}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateInvoice_ValidatesRatesAndManualLines(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, "ozolins@example.com")
	ws := f.seedApprovedSheet(t, d.ID, "150.00", 1)
	over := decimal.RequireFromString("101")

	_, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{
		DentistID: d.ID, WorksheetIDs: []string{ws.ID}, TaxRate: &over,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "rates are percentages")

	_, err = f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{
		DentistID:   d.ID,
		ManualItems: []dto.ManualLineItemRequest{{Description: "  ", Quantity: 1, UnitPrice: decimal.NewFromInt(5)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "manual lines need a description")

	_, err = f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{
		DentistID:   d.ID,
		ManualItems: []dto.ManualLineItemRequest{{Description: "Adjustment", Quantity: 0, UnitPrice: decimal.NewFromInt(5)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "zero quantity")
}

func TestCreateInvoice_UnknownDentist(t *testing.T) {
	f := newFixture()

	_, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{DentistID: uuid.New().String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateInvoice_FinalizeImmediately(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, "ozolins@example.com")
	ws := f.seedApprovedSheet(t, d.ID, "150.00", 1)
	draft := false

	resp, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{
		DentistID:    d.ID,
		WorksheetIDs: []string{ws.ID},
		IsDraft:      &draft,
	})
	require.NoError(t, err)

	assert.False(t, resp.IsDraft)
	assert.NotEmpty(t, resp.Number, "is_draft=false numbers the invoice in the same transaction")
	assert.Equal(t, entity.PaymentStatusFinalized, resp.PaymentStatus)
	assert.Equal(t, entity.WorkSheetStatusDelivered, f.sheetStatus(t, ws.ID))
}

func TestUpdateInvoice_ReplacesLinesAndRecomputes(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, "ozolins@example.com")
	ws := f.seedApprovedSheet(t, d.ID, "150.00", 1)
	created, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{DentistID: d.ID, WorksheetIDs: []string{ws.ID}})
	require.NoError(t, err)

	tax := decimal.RequireFromString("21")
	resp, err := f.invoices.Update(ctx, office, created.ID, dto.UpdateInvoiceRequest{
		ManualItems: []dto.ManualLineItemRequest{{Description: "Full remake", Quantity: 1, UnitPrice: decimal.RequireFromString("200.00")}},
		TaxRate:     &tax,
	})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1, "the line set is replaced wholesale")
	assert.Equal(t, "Full remake", resp.Items[0].Description)
	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("200.00")))
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("242.00")))

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionInvoiceUpdated})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdateInvoice_FinalizedIsImmutable(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, "ozolins@example.com")
	ws := f.seedApprovedSheet(t, d.ID, "150.00", 1)
	created, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{DentistID: d.ID, WorksheetIDs: []string{ws.ID}})
	require.NoError(t, err)
	_, err = f.finalize.Finalize(ctx, office, created.ID)
	require.NoError(t, err)

	notes := "late edit"
	_, err = f.invoices.Update(ctx, office, created.ID, dto.UpdateInvoiceRequest{Notes: &notes})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestDeleteInvoice_DraftRemovedWithLines(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, "ozolins@example.com")
	ws := f.seedApprovedSheet(t, d.ID, "150.00", 1)
	created, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{DentistID: d.ID, WorksheetIDs: []string{ws.ID}})
	require.NoError(t, err)

	require.NoError(t, f.invoices.Delete(ctx, admin, created.ID))

	_, err = f.invoices.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	items, err := f.store.Invoices().ListLineItems(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, items, "lines go with the header")

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionInvoiceDeleted})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDeleteInvoice_FinalizedMustBeCancelledFirst(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, "ozolins@example.com")
	ws := f.seedApprovedSheet(t, d.ID, "150.00", 1)
	created, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{DentistID: d.ID, WorksheetIDs: []string{ws.ID}})
	require.NoError(t, err)
	_, err = f.finalize.Finalize(ctx, office, created.ID)
	require.NoError(t, err)

	err = f.invoices.Delete(ctx, admin, created.ID)
	require.Error(t, err, "a numbered invoice cannot silently vanish")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	_, err = f.finalize.Cancel(ctx, admin, created.ID, dto.CancelInvoiceRequest{Reason: "billing error"})
	require.NoError(t, err)
	assert.NoError(t, f.invoices.Delete(ctx, admin, created.ID), "cancelled invoices may be purged")
}

func TestListInvoices_FiltersByPaymentStatus(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, "ozolins@example.com")
	wsA := f.seedApprovedSheet(t, d.ID, "150.00", 1)
	wsB := f.seedApprovedSheet(t, d.ID, "80.00", 1)
	first, err := f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{DentistID: d.ID, WorksheetIDs: []string{wsA.ID}})
	require.NoError(t, err)
	_, err = f.invoices.Create(ctx, office, dto.CreateInvoiceRequest{DentistID: d.ID, WorksheetIDs: []string{wsB.ID}})
	require.NoError(t, err)
	_, err = f.finalize.Finalize(ctx, office, first.ID)
	require.NoError(t, err)

	finalized, err := f.invoices.List(ctx, dto.ListInvoicesRequest{PaymentStatus: entity.PaymentStatusFinalized})
	require.NoError(t, err)
	require.Len(t, finalized, 1)
	assert.Equal(t, first.ID, finalized[0].ID)
}

// ── fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	invoices *billing.InvoiceUseCase
	finalize *billing.FinalizeUseCase
}

func newFixture() *fixture {
	s := memory.NewStore()
	runner := memory.NewBillingTxRunner(s)
	return &fixture{
		store:    s,
		invoices: billing.NewInvoiceUseCase(runner, s.Invoices(), s.Orders(), s.WorkSheets(), s.Dentists(), s.LabConfig(), nil, nil),
		finalize: billing.NewFinalizeUseCase(runner, nil),
	}
}

func (f *fixture) seedDentist(t *testing.T, email string) *entity.Dentist {
	t.Helper()
	d := &entity.Dentist{
		ID:                uuid.New().String(),
		Name:              "Dr. Ozolins",
		Email:             email,
		RequiresInvoicing: true,
	}
	require.NoError(t, f.store.Dentists().Create(ctx, d))
	return d
}

// seedApprovedSheet plants an order and sheet at QC_APPROVED with one priced
// product line, ready for billing.
func (f *fixture) seedApprovedSheet(t *testing.T, dentistID, price string, qty int) *entity.WorkSheet {
	t.Helper()
	return f.seedSheetAt(t, dentistID, entity.OrderStatusQCApproved, entity.WorkSheetStatusQCApproved, price, qty)
}

func (f *fixture) seedSheetAt(t *testing.T, dentistID, orderStatus, sheetStatus, price string, qty int) *entity.WorkSheet {
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
	require.NoError(t, f.store.WorkSheets().AddProduct(ctx, &entity.WorksheetProduct{
		ID:               uuid.New().String(),
		WorksheetID:      w.ID,
		ProductID:        uuid.New().String(),
		Description:      "Zirconia crown",
		Quantity:         qty,
		PriceAtSelection: decimal.RequireFromString(price),
		CreatedAt:        now,
	}))
	return w
}

func (f *fixture) sheetStatus(t *testing.T, id string) string {
	t.Helper()
	w, err := f.store.WorkSheets().GetByID(ctx, id)
	require.NoError(t, err)
	return w.Status
}

func (f *fixture) orderStatus(t *testing.T, id string) string {
	t.Helper()
	o, err := f.store.Orders().GetByID(ctx, id)
	require.NoError(t, err)
	return o.Status
}

var testSeq atomic.Int64

func nextTestNumber() string {
	return fmt.Sprintf("98%03d", testSeq.Add(1))
}
