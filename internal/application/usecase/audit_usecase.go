package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// AuditUseCase is the read side of the compliance ledger. There is no write
// side here; entries are only appended from inside the mutating use cases.
type AuditUseCase struct {
	auditRepo repository.AuditRepository
}

// NewAuditUseCase builds the use case.
func NewAuditUseCase(auditRepo repository.AuditRepository) *AuditUseCase {
	return &AuditUseCase{auditRepo: auditRepo}
}

// List returns ledger lines, newest first.
func (uc *AuditUseCase) List(ctx context.Context, in dto.ListAuditRequest) ([]dto.AuditEntryResponse, error) {
	in.DefaultPage()
	filter := repository.AuditFilter{
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		Action:     in.Action,
		ActorID:    in.ActorID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	var err error
	if filter.From, err = parseDayBound("from", in.From); err != nil {
		return nil, err
	}
	if filter.To, err = parseDayBound("to", in.To); err != nil {
		return nil, err
	}
	// The to day is inclusive; the repository bound is created_at < To.
	if filter.To != nil {
		end := filter.To.AddDate(0, 0, 1)
		filter.To = &end
	}

	entries, err := uc.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAuditEntryResponse(e))
	}
	return out, nil
}

func parseDayBound(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", domain.ErrInvalidInput, field)
	}
	return &t, nil
}

func toAuditEntryResponse(e *entity.AuditEntry) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		ID:         e.ID,
		ActorID:    e.ActorID,
		ActorRole:  e.ActorRole,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Before:     e.Before,
		After:      e.After,
		Reason:     e.Reason,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}
