package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/workflow"
)

func TestValidateQCSubmission_ApprovedNeedsCleanChecklist(t *testing.T) {
	err := workflow.ValidateQCSubmission(allPass(), entity.QCResultApproved, "", "")
	assert.NoError(t, err, "5/5 checklist approves without notes")

	c := allPass()
	c.ShadeMatch = false
	err = workflow.ValidateQCSubmission(c, entity.QCResultApproved, "", "")
	require.Error(t, err, "4/5 cannot be APPROVED")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestValidateQCSubmission_ConditionalNeedsNotes(t *testing.T) {
	c := allPass()
	c.SurfaceFinish = false

	err := workflow.ValidateQCSubmission(c, entity.QCResultConditional, "minor polish pending, released on dentist request", "")
	assert.NoError(t, err)

	err = workflow.ValidateQCSubmission(c, entity.QCResultConditional, "   ", "")
	require.Error(t, err, "CONDITIONAL without notes must fail")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestValidateQCSubmission_ConditionalNeedsFourPasses(t *testing.T) {
	c := allPass()
	c.ShadeMatch = false
	c.SurfaceFinish = false

	err := workflow.ValidateQCSubmission(c, entity.QCResultConditional, "some notes", "")
	require.Error(t, err, "3/5 is below the conditional floor")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestValidateQCSubmission_ConditionalWithFullChecklist(t *testing.T) {
	// 5/5 still qualifies as "at least 4"; the inspector may downgrade.
	err := workflow.ValidateQCSubmission(allPass(), entity.QCResultConditional, "released pending shade photo", "")
	assert.NoError(t, err)
}

func TestValidateQCSubmission_RejectedNeedsFailureAndAction(t *testing.T) {
	c := allPass()
	c.MarginalIntegrity = false

	err := workflow.ValidateQCSubmission(c, entity.QCResultRejected, "", "re-sinter and re-check margin on 24")
	assert.NoError(t, err)

	err = workflow.ValidateQCSubmission(allPass(), entity.QCResultRejected, "", "redo")
	require.Error(t, err, "cannot reject a clean checklist")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	err = workflow.ValidateQCSubmission(c, entity.QCResultRejected, "", "")
	require.Error(t, err, "rejection without an action is useless to production")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestValidateQCSubmission_UnknownResult(t *testing.T) {
	err := workflow.ValidateQCSubmission(allPass(), "MAYBE", "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestQCOutcome(t *testing.T) {
	ws, ord := workflow.QCOutcome(entity.QCResultApproved)
	assert.Equal(t, entity.WorkSheetStatusQCApproved, ws)
	assert.Equal(t, entity.OrderStatusQCApproved, ord)

	ws, ord = workflow.QCOutcome(entity.QCResultConditional)
	assert.Equal(t, entity.WorkSheetStatusQCApproved, ws, "conditional releases the sheet like an approval")
	assert.Equal(t, entity.OrderStatusQCApproved, ord)

	ws, ord = workflow.QCOutcome(entity.QCResultRejected)
	assert.Equal(t, entity.WorkSheetStatusQCRejected, ws)
	assert.Equal(t, entity.OrderStatusInProduction, ord)
}

// ── helper ────────────────────────────────────────────────────────────────────

func allPass() entity.QCChecklist {
	return entity.QCChecklist{
		MarginalIntegrity: true,
		OcclusionChecked:  true,
		ProximalContacts:  true,
		ShadeMatch:        true,
		SurfaceFinish:     true,
	}
}
