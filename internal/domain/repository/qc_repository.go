package repository

import (
	"context"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// QCRepository defines the persistence port for QC verdicts. One row per
// worksheet; resubmission after a rejection updates the existing row, and the
// existence check runs inside the submission transaction.
type QCRepository interface {
	Create(ctx context.Context, qc *entity.QualityControl) error
	Update(ctx context.Context, qc *entity.QualityControl) error
	GetByWorksheet(ctx context.Context, worksheetID string) (*entity.QualityControl, error)
}
