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

func TestSubmitQC_CleanApproval(t *testing.T) {
	f := newFixture()
	created := f.toQCPending(t, true)

	resp, err := f.qc.Submit(ctx, inspector, created.Worksheet.ID, dto.SubmitQCRequest{
		Checklist: fullChecklist(),
		Result:    entity.QCResultApproved,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.QCResultApproved, resp.Result)
	assert.Equal(t, inspector.ID, resp.InspectorID)
	assert.Equal(t, entity.WorkSheetStatusQCApproved, resp.WorksheetStatus)
	assert.Equal(t, entity.OrderStatusQCApproved, resp.OrderStatus)
	assert.False(t, resp.AutoDelivered)

	assert.Equal(t, entity.WorkSheetStatusQCApproved, f.sheetStatus(t, created.Worksheet.ID))
	assert.Equal(t, entity.OrderStatusQCApproved, f.orderStatus(t, created.ID))

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionQCSubmitted})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSubmitQC_ApprovalNeedsCleanChecklist(t *testing.T) {
	f := newFixture()
	created := f.toQCPending(t, true)

	_, err := f.qc.Submit(ctx, inspector, created.Worksheet.ID, dto.SubmitQCRequest{
		Checklist: flawedChecklist(),
		Result:    entity.QCResultApproved,
	})
	require.Error(t, err, "a failed check rules out a full approval")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestSubmitQC_ConditionalNeedsNotes(t *testing.T) {
	f := newFixture()
	created := f.toQCPending(t, true)

	_, err := f.qc.Submit(ctx, inspector, created.Worksheet.ID, dto.SubmitQCRequest{
		Checklist: flawedChecklist(),
		Result:    entity.QCResultConditional,
	})
	assert.ErrorIs(t, err, domain.ErrValidationFailed, "the concession must be written down")

	resp, err := f.qc.Submit(ctx, inspector, created.Worksheet.ID, dto.SubmitQCRequest{
		Checklist: flawedChecklist(),
		Result:    entity.QCResultConditional,
		Notes:     "shade 0.5 off, dentist accepted by phone",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.WorkSheetStatusQCApproved, resp.WorksheetStatus, "a conditional pass approves the piece")
}

func TestSubmitQC_RejectionNeedsAction(t *testing.T) {
	f := newFixture()
	created := f.toQCPending(t, true)

	_, err := f.qc.Submit(ctx, inspector, created.Worksheet.ID, dto.SubmitQCRequest{
		Checklist: flawedChecklist(),
		Result:    entity.QCResultRejected,
	})
	assert.ErrorIs(t, err, domain.ErrValidationFailed, "the bench needs to know what to fix")
}

func TestSubmitQC_RejectionSendsWorkBack(t *testing.T) {
	f := newFixture()
	created := f.toQCPending(t, true)

	resp, err := f.qc.Submit(ctx, inspector, created.Worksheet.ID, dto.SubmitQCRequest{
		Checklist:      flawedChecklist(),
		Result:         entity.QCResultRejected,
		ActionRequired: "refire and adjust shade",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.WorkSheetStatusQCRejected, resp.WorksheetStatus)
	assert.Equal(t, entity.OrderStatusInProduction, resp.OrderStatus, "the order goes back with the piece")
	assert.Equal(t, entity.WorkSheetStatusQCRejected, f.sheetStatus(t, created.Worksheet.ID))
	assert.Equal(t, entity.OrderStatusInProduction, f.orderStatus(t, created.ID))
}

func TestSubmitQC_RequiresPendingSheet(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, true)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)
	created := f.intake(t, d.ID, p.ID)
	_, err := f.moves.StartProduction(ctx, technician, created.Worksheet.ID)
	require.NoError(t, err)

	_, err = f.qc.Submit(ctx, inspector, created.Worksheet.ID, dto.SubmitQCRequest{
		Checklist: fullChecklist(),
		Result:    entity.QCResultApproved,
	})
	require.Error(t, err, "the piece never reached the gate")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSubmitQC_AutoDeliversUninvoicedDentists(t *testing.T) {
	f := newFixture()
	created := f.toQCPending(t, false)

	resp, err := f.qc.Submit(ctx, inspector, created.Worksheet.ID, dto.SubmitQCRequest{
		Checklist: fullChecklist(),
		Result:    entity.QCResultApproved,
	})
	require.NoError(t, err)

	assert.True(t, resp.AutoDelivered, "no invoice will ever gate this delivery")
	assert.Equal(t, entity.WorkSheetStatusDelivered, resp.WorksheetStatus)
	assert.Equal(t, entity.OrderStatusDelivered, resp.OrderStatus)
	assert.Equal(t, entity.WorkSheetStatusDelivered, f.sheetStatus(t, created.Worksheet.ID))
	assert.Equal(t, entity.OrderStatusDelivered, f.orderStatus(t, created.ID))
}

func TestSubmitQC_ReworkOverwritesTheVerdict(t *testing.T) {
	f := newFixture()
	created := f.toQCPending(t, true)

	first, err := f.qc.Submit(ctx, inspector, created.Worksheet.ID, dto.SubmitQCRequest{
		Checklist:      flawedChecklist(),
		Result:         entity.QCResultRejected,
		ActionRequired: "refire and adjust shade",
	})
	require.NoError(t, err)

	_, err = f.moves.StartProduction(ctx, technician, created.Worksheet.ID)
	require.NoError(t, err)
	_, err = f.moves.SubmitToQC(ctx, technician, created.Worksheet.ID)
	require.NoError(t, err)

	second, err := f.qc.Submit(ctx, inspector, created.Worksheet.ID, dto.SubmitQCRequest{
		Checklist: fullChecklist(),
		Result:    entity.QCResultApproved,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "one sheet, one verdict row")
	assert.Equal(t, entity.QCResultApproved, second.Result)

	stored, err := f.store.QCs().GetByWorksheet(ctx, created.Worksheet.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.QCResultApproved, stored.Result)
	assert.Empty(t, stored.ActionRequired, "the old rejection does not linger")

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionQCSubmitted})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotEmpty(t, entries[0].Before, "the resubmission carries the old verdict")
}

func TestGetQC_ReturnsTheStoredVerdict(t *testing.T) {
	f := newFixture()
	created := f.toQCPending(t, true)
	_, err := f.qc.Submit(ctx, inspector, created.Worksheet.ID, dto.SubmitQCRequest{
		Checklist: fullChecklist(),
		Result:    entity.QCResultApproved,
	})
	require.NoError(t, err)

	got, err := f.qc.Get(ctx, created.Worksheet.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.QCResultApproved, got.Result)
	assert.Equal(t, inspector.ID, got.InspectorID)
	assert.Equal(t, entity.WorkSheetStatusQCApproved, got.WorksheetStatus)
}

func TestFullPath_DraftToDelivered(t *testing.T) {
	f := newFixture()
	created := f.toQCPending(t, true)

	_, err := f.qc.Submit(ctx, inspector, created.Worksheet.ID, dto.SubmitQCRequest{
		Checklist: fullChecklist(),
		Result:    entity.QCResultApproved,
	})
	require.NoError(t, err)

	resp, err := f.moves.Deliver(ctx, office, created.Worksheet.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.WorkSheetStatusDelivered, resp.WorksheetStatus)
	assert.Equal(t, entity.OrderStatusDelivered, resp.OrderStatus)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// toQCPending drives a fresh one-line order to the QC gate through the real
// transitions.
func (f *fixture) toQCPending(t *testing.T, invoiced bool) *dto.OrderDetailResponse {
	t.Helper()
	d := f.seedDentist(t, invoiced)
	p := f.seedProduct(t, "CR-ZR", "150.00", true)
	created := f.intake(t, d.ID, p.ID)
	_, err := f.moves.StartProduction(ctx, technician, created.Worksheet.ID)
	require.NoError(t, err)
	_, err = f.moves.SubmitToQC(ctx, technician, created.Worksheet.ID)
	require.NoError(t, err)
	return created
}

func fullChecklist() dto.QCChecklistDTO {
	return dto.QCChecklistDTO{
		MarginalIntegrity: true,
		OcclusionChecked:  true,
		ProximalContacts:  true,
		ShadeMatch:        true,
		SurfaceFinish:     true,
	}
}

func flawedChecklist() dto.QCChecklistDTO {
	c := fullChecklist()
	c.ShadeMatch = false
	return c
}
