package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

func TestRecordArrival_BooksFullQuantity(t *testing.T) {
	f := newFixture()
	mat := f.seedMaterial(t, "PM-B1")

	resp, err := f.lots.RecordArrival(ctx, admin, mat.ID, dto.RecordArrivalRequest{
		LotNumber:  "LOT-881",
		Supplier:   "Ivoclar",
		Quantity:   decimal.NewFromInt(25),
		ExpiryDate: "2026-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.LotStatusAvailable, resp.Status)
	assert.True(t, resp.QuantityAvailable.Equal(resp.QuantityReceived), "available starts equal to received")
	assert.Equal(t, "2026-06-30", resp.ExpiryDate)

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionStockArrival})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordArrival_DuplicatePerMaterialOnly(t *testing.T) {
	f := newFixture()
	matA := f.seedMaterial(t, "ZR-A2")
	matB := f.seedMaterial(t, "ZR-A3")
	in := dto.RecordArrivalRequest{LotNumber: "LOT-1", Quantity: decimal.NewFromInt(10)}

	_, err := f.lots.RecordArrival(ctx, admin, matA.ID, in)
	require.NoError(t, err)

	_, err = f.lots.RecordArrival(ctx, admin, matA.ID, in)
	require.Error(t, err, "same lot number on the same material")
	assert.ErrorIs(t, err, domain.ErrDuplicateLot)

	_, err = f.lots.RecordArrival(ctx, admin, matB.ID, in)
	assert.NoError(t, err, "suppliers reuse lot numbers across materials")
}

func TestRecordArrival_RejectsBadInput(t *testing.T) {
	f := newFixture()
	mat := f.seedMaterial(t, "ZR-A2")

	_, err := f.lots.RecordArrival(ctx, admin, mat.ID, dto.RecordArrivalRequest{Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "missing lot number")

	_, err = f.lots.RecordArrival(ctx, admin, mat.ID, dto.RecordArrivalRequest{LotNumber: "L", Quantity: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "zero quantity")

	_, err = f.lots.RecordArrival(ctx, admin, mat.ID, dto.RecordArrivalRequest{
		LotNumber: "L", Quantity: decimal.NewFromInt(1), ExpiryDate: "30/06/2026",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "expiry must be YYYY-MM-DD")
}

func TestCorrectLot_RequiresReason(t *testing.T) {
	f := newFixture()
	mat := f.seedMaterial(t, "ZR-A2")
	lot := f.seedLot(t, mat.ID, "L-1", date("2025-01-01"), 10, nil)

	status := entity.LotStatusExpired
	_, err := f.lots.CorrectLot(ctx, admin, lot.ID, dto.CorrectLotRequest{Status: &status})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCorrectLot_TechnicianForbidden(t *testing.T) {
	f := newFixture()
	mat := f.seedMaterial(t, "ZR-A2")
	lot := f.seedLot(t, mat.ID, "L-1", date("2025-01-01"), 10, nil)

	_, err := f.lots.CorrectLot(ctx, technician, lot.ID, dto.CorrectLotRequest{Reason: "stocktake"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCorrectLot_AvailableCappedByReceived(t *testing.T) {
	f := newFixture()
	mat := f.seedMaterial(t, "ZR-A2")
	lot := f.seedLot(t, mat.ID, "L-1", date("2025-01-01"), 20, nil)

	over := decimal.NewFromInt(30)
	_, err := f.lots.CorrectLot(ctx, admin, lot.ID, dto.CorrectLotRequest{
		QuantityAvailable: &over,
		Reason:            "stocktake",
	})
	require.Error(t, err, "a correction can never create stock beyond what was received")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestCorrectLot_RecallTakesLotOutOfRotation(t *testing.T) {
	f := newFixture()
	mat := f.seedMaterial(t, "ZR-A2")
	sheet := f.seedSheet(t, entity.WorkSheetStatusInProduction)
	lot := f.seedLot(t, mat.ID, "L-1", date("2025-01-01"), 10, nil)

	status := entity.LotStatusRecalled
	resp, err := f.lots.CorrectLot(ctx, admin, lot.ID, dto.CorrectLotRequest{
		Status: &status,
		Reason: "supplier recall notice 2025-117",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.LotStatusRecalled, resp.Status)

	// The recalled lot no longer feeds FIFO.
	_, err = f.consume.Consume(ctx, technician, sheet.ID, dto.ConsumeRequest{
		MaterialID: mat.ID,
		Quantity:   decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionLotCorrected})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "supplier recall notice 2025-117", entries[0].Reason)
	assert.NotEmpty(t, entries[0].Before, "before snapshot goes to the ledger")
}

func TestDeleteLot_BlockedByTraceability(t *testing.T) {
	f := newFixture()
	mat := f.seedMaterial(t, "ZR-A2")
	sheet := f.seedSheet(t, entity.WorkSheetStatusInProduction)
	lot := f.seedLot(t, mat.ID, "L-1", date("2025-01-01"), 10, nil)

	_, err := f.consume.Consume(ctx, technician, sheet.ID, dto.ConsumeRequest{
		MaterialID: mat.ID,
		Quantity:   decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	err = f.lots.DeleteLot(ctx, admin, lot.ID)
	require.Error(t, err, "one consumption makes the lot permanent")
	assert.ErrorIs(t, err, domain.ErrComplianceViolation)
}

func TestDeleteLot_RemovesUntouchedLot(t *testing.T) {
	f := newFixture()
	mat := f.seedMaterial(t, "ZR-A2")
	lot := f.seedLot(t, mat.ID, "L-1", date("2025-01-01"), 10, nil)

	require.NoError(t, f.lots.DeleteLot(ctx, admin, lot.ID))

	_, err := f.store.Lots().GetByID(ctx, lot.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionLotDeleted})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
