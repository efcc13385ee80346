package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// MaterialUseCase is the catalog CRUD for raw materials. Deletion is gated on
// traceability: a material that ever went into a device stays forever.
type MaterialUseCase struct {
	materialRepo    repository.MaterialRepository
	lotRepo         repository.MaterialLotRepository
	consumptionRepo repository.ConsumptionRepository
}

// NewMaterialUseCase builds the use case.
func NewMaterialUseCase(
	materialRepo repository.MaterialRepository,
	lotRepo repository.MaterialLotRepository,
	consumptionRepo repository.ConsumptionRepository,
) *MaterialUseCase {
	return &MaterialUseCase{
		materialRepo:    materialRepo,
		lotRepo:         lotRepo,
		consumptionRepo: consumptionRepo,
	}
}

// Create registers a new catalog material. The code must be unique.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Unit) == "" {
		return nil, fmt.Errorf("%w: code, name and unit are required", domain.ErrInvalidInput)
	}
	existing, _ := uc.materialRepo.GetByCode(ctx, in.Code)
	if existing != nil {
		return nil, fmt.Errorf("%w: material code %s", domain.ErrDuplicateCode, in.Code)
	}
	now := time.Now()
	m := &entity.Material{
		ID:            uuid.New().String(),
		Code:          strings.TrimSpace(in.Code),
		Name:          strings.TrimSpace(in.Name),
		Type:          in.Type,
		Manufacturer:  in.Manufacturer,
		Biocompatible: in.Biocompatible,
		CEMarked:      in.CEMarked,
		Unit:          strings.TrimSpace(in.Unit),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.materialRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return toMaterialResponse(m), nil
}

// Update patches mutable catalog fields. The code never changes once issued.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	m, err := uc.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		m.Type = *in.Type
	}
	if in.Manufacturer != nil {
		m.Manufacturer = *in.Manufacturer
	}
	if in.Biocompatible != nil {
		m.Biocompatible = *in.Biocompatible
	}
	if in.CEMarked != nil {
		m.CEMarked = *in.CEMarked
	}
	if in.Unit != nil {
		m.Unit = strings.TrimSpace(*in.Unit)
	}
	m.UpdatedAt = time.Now()
	if err := uc.materialRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return toMaterialResponse(m), nil
}

// Get returns one material.
func (uc *MaterialUseCase) Get(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	m, err := uc.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMaterialResponse(m), nil
}

// List returns the catalog, optionally by type.
func (uc *MaterialUseCase) List(ctx context.Context, materialType string, page dto.PageRequest) ([]dto.MaterialResponse, error) {
	page.DefaultPage()
	materials, err := uc.materialRepo.List(ctx, materialType, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MaterialResponse, 0, len(materials))
	for _, m := range materials {
		out = append(out, *toMaterialResponse(m))
	}
	return out, nil
}

// Delete removes a material that was never consumed into a device. Any
// traceability reference makes it permanent; remaining unused lots must be
// deleted first.
func (uc *MaterialUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.materialRepo.GetByID(ctx, id); err != nil {
		return err
	}
	used, err := uc.consumptionRepo.ExistsForMaterial(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: material has traceability records", domain.ErrComplianceViolation)
	}
	lots, err := uc.lotRepo.ListByMaterial(ctx, id)
	if err != nil {
		return err
	}
	if len(lots) > 0 {
		return fmt.Errorf("%w: material still has %d lots, delete them first", domain.ErrConflict, len(lots))
	}
	return uc.materialRepo.Delete(ctx, id)
}

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	return &dto.MaterialResponse{
		ID:            m.ID,
		Code:          m.Code,
		Name:          m.Name,
		Type:          m.Type,
		Manufacturer:  m.Manufacturer,
		Biocompatible: m.Biocompatible,
		CEMarked:      m.CEMarked,
		Unit:          m.Unit,
	}
}
