package production_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

func TestStartProduction_OpensTheBench(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)
	created := f.intake(t, d.ID, p.ID)

	resp, err := f.moves.StartProduction(ctx, technician, created.Worksheet.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.WorkSheetStatusInProduction, resp.WorksheetStatus)
	assert.Equal(t, entity.OrderStatusInProduction, resp.OrderStatus)
	assert.Equal(t, entity.WorkSheetStatusInProduction, f.sheetStatus(t, created.Worksheet.ID))
	assert.Equal(t, entity.OrderStatusInProduction, f.orderStatus(t, created.ID))

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionStatusChanged})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStartProduction_RefusedOnceInQC(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	_, sheet := f.seedPair(t, d.ID, entity.OrderStatusQCPending, entity.WorkSheetStatusQCPending)

	_, err := f.moves.StartProduction(ctx, technician, sheet.ID)
	require.Error(t, err, "a piece under inspection is off the bench")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStartProduction_ReentersAfterRejection(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	order, sheet := f.seedPair(t, d.ID, entity.OrderStatusInProduction, entity.WorkSheetStatusQCRejected)

	resp, err := f.moves.StartProduction(ctx, technician, sheet.ID)
	require.NoError(t, err, "a rejected sheet goes back to the bench")
	assert.Equal(t, entity.WorkSheetStatusInProduction, resp.WorksheetStatus)
	assert.Equal(t, entity.OrderStatusInProduction, resp.OrderStatus)

	resp, err = f.moves.SubmitToQC(ctx, technician, sheet.ID)
	require.NoError(t, err, "the rework loop closes at the QC gate")
	assert.Equal(t, entity.WorkSheetStatusQCPending, resp.WorksheetStatus)
	assert.Equal(t, entity.OrderStatusQCPending, f.orderStatus(t, order.ID))
}

func TestSubmitToQC_HandsOverForInspection(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)
	created := f.intake(t, d.ID, p.ID)
	_, err := f.moves.StartProduction(ctx, technician, created.Worksheet.ID)
	require.NoError(t, err)

	resp, err := f.moves.SubmitToQC(ctx, technician, created.Worksheet.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.WorkSheetStatusQCPending, resp.WorksheetStatus)
	assert.Equal(t, entity.OrderStatusQCPending, resp.OrderStatus)
}

func TestSubmitToQC_RequiresBenchWork(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)
	created := f.intake(t, d.ID, p.ID)

	_, err := f.moves.SubmitToQC(ctx, technician, created.Worksheet.ID)
	require.Error(t, err, "nothing was produced yet")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDeliver_MovesBothFromApproval(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	order, sheet := f.seedPair(t, d.ID, entity.OrderStatusQCApproved, entity.WorkSheetStatusQCApproved)

	resp, err := f.moves.Deliver(ctx, office, sheet.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.WorkSheetStatusDelivered, resp.WorksheetStatus)
	assert.Equal(t, entity.OrderStatusDelivered, resp.OrderStatus)
	assert.Equal(t, entity.OrderStatusDelivered, f.orderStatus(t, order.ID))
}

func TestDeliver_AfterInvoicingOnlyTheOrderMoves(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	order, sheet := f.seedPair(t, d.ID, entity.OrderStatusInvoiced, entity.WorkSheetStatusDelivered)

	resp, err := f.moves.Deliver(ctx, office, sheet.ID)
	require.NoError(t, err, "invoicing already marked the sheet delivered")

	assert.Equal(t, entity.WorkSheetStatusDelivered, resp.WorksheetStatus)
	assert.Equal(t, entity.OrderStatusDelivered, f.orderStatus(t, order.ID))
}

func TestDeliver_RefusedBeforeApproval(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	_, sheet := f.seedPair(t, d.ID, entity.OrderStatusInProduction, entity.WorkSheetStatusInProduction)

	_, err := f.moves.Deliver(ctx, office, sheet.ID)
	require.Error(t, err, "no handover without a QC verdict")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestVoid_AdminOnly(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	_, sheet := f.seedPair(t, d.ID, entity.OrderStatusInProduction, entity.WorkSheetStatusInProduction)

	_, err := f.moves.Void(ctx, technician, sheet.ID, dto.VoidWorksheetRequest{Reason: "broke during glazing"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestVoid_RequiresReason(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	_, sheet := f.seedPair(t, d.ID, entity.OrderStatusInProduction, entity.WorkSheetStatusInProduction)

	_, err := f.moves.Void(ctx, admin, sheet.ID, dto.VoidWorksheetRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVoid_WritesOffSheetAndCancelsOrder(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	order, sheet := f.seedPair(t, d.ID, entity.OrderStatusQCPending, entity.WorkSheetStatusQCPending)

	resp, err := f.moves.Void(ctx, admin, sheet.ID, dto.VoidWorksheetRequest{Reason: "fractured on divest"})
	require.NoError(t, err)

	assert.Equal(t, entity.WorkSheetStatusVoided, resp.WorksheetStatus)
	assert.Equal(t, entity.OrderStatusCancelled, resp.OrderStatus)
	assert.Equal(t, entity.OrderStatusCancelled, f.orderStatus(t, order.ID))

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionStatusChanged})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fractured on divest", entries[0].Reason)
}

func TestVoid_DeliveredSheetRefused(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	_, sheet := f.seedPair(t, d.ID, entity.OrderStatusDelivered, entity.WorkSheetStatusDelivered)

	_, err := f.moves.Void(ctx, admin, sheet.ID, dto.VoidWorksheetRequest{Reason: "too late"})
	require.Error(t, err, "delivered devices are written off via complaint, not void")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
