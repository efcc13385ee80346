package workflow

import (
	"fmt"
	"strings"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// ValidateQCSubmission enforces the release rules: APPROVED needs a clean
// 5/5 checklist, CONDITIONAL needs at least 4/5 plus a justification in
// notes, REJECTED needs at least one failed check plus an action for
// production. Anything else is ErrValidationFailed.
func ValidateQCSubmission(checklist entity.QCChecklist, result, notes, actionRequired string) error {
	passed := checklist.PassCount()
	switch result {
	case entity.QCResultApproved:
		if passed != 5 {
			return fmt.Errorf("%w: APPROVED requires all 5 checks to pass, got %d", domain.ErrValidationFailed, passed)
		}
	case entity.QCResultConditional:
		if passed < 4 {
			return fmt.Errorf("%w: CONDITIONAL requires at least 4 checks to pass, got %d", domain.ErrValidationFailed, passed)
		}
		if strings.TrimSpace(notes) == "" {
			return fmt.Errorf("%w: CONDITIONAL requires notes explaining the concession", domain.ErrValidationFailed)
		}
	case entity.QCResultRejected:
		if passed == 5 {
			return fmt.Errorf("%w: REJECTED requires at least one failed check", domain.ErrValidationFailed)
		}
		if strings.TrimSpace(actionRequired) == "" {
			return fmt.Errorf("%w: REJECTED requires an action for production", domain.ErrValidationFailed)
		}
	default:
		return fmt.Errorf("%w: unknown QC result %q", domain.ErrValidationFailed, result)
	}
	return nil
}

// QCOutcome gives the worksheet and order statuses a QC result leads to.
// Orders have no rejected state, so a rejection sends the order back to
// IN_PRODUCTION for rework.
func QCOutcome(result string) (worksheetStatus, orderStatus string) {
	if result == entity.QCResultRejected {
		return entity.WorkSheetStatusQCRejected, entity.OrderStatusInProduction
	}
	return entity.WorkSheetStatusQCApproved, entity.OrderStatusQCApproved
}
