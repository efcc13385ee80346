package usecase

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

// DentistUseCase is CRUD for the client practices. RequiresInvoicing defaults
// to true; courtesy accounts flip it off and their work auto-delivers after
// QC.
type DentistUseCase struct {
	dentistRepo repository.DentistRepository
	orderRepo   repository.OrderRepository
}

// NewDentistUseCase builds the use case.
func NewDentistUseCase(dentistRepo repository.DentistRepository, orderRepo repository.OrderRepository) *DentistUseCase {
	return &DentistUseCase{dentistRepo: dentistRepo, orderRepo: orderRepo}
}

// Create registers a practice.
func (uc *DentistUseCase) Create(ctx context.Context, in dto.CreateDentistRequest) (*dto.DentistResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	requires := true
	if in.RequiresInvoicing != nil {
		requires = *in.RequiresInvoicing
	}
	now := time.Now()
	dentist := &entity.Dentist{
		ID:                uuid.New().String(),
		Name:              strings.TrimSpace(in.Name),
		ClinicName:        in.ClinicName,
		Email:             in.Email,
		Phone:             in.Phone,
		Address:           in.Address,
		VATNumber:         in.VATNumber,
		RequiresInvoicing: requires,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.dentistRepo.Create(ctx, dentist); err != nil {
		return nil, err
	}
	return toDentistResponse(dentist), nil
}

// Get returns one practice.
func (uc *DentistUseCase) Get(ctx context.Context, id string) (*dto.DentistResponse, error) {
	dentist, err := uc.dentistRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDentistResponse(dentist), nil
}

// List returns practices ordered by name.
func (uc *DentistUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.DentistResponse, error) {
	page.DefaultPage()
	dentists, err := uc.dentistRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DentistResponse, 0, len(dentists))
	for _, d := range dentists {
		out = append(out, *toDentistResponse(d))
	}
	return out, nil
}

// Update patches the fields present in the request.
func (uc *DentistUseCase) Update(ctx context.Context, id string, in dto.UpdateDentistRequest) (*dto.DentistResponse, error) {
	dentist, err := uc.dentistRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		dentist.Name = strings.TrimSpace(*in.Name)
	}
	if in.ClinicName != nil {
		dentist.ClinicName = *in.ClinicName
	}
	if in.Email != nil {
		dentist.Email = *in.Email
	}
	if in.Phone != nil {
		dentist.Phone = *in.Phone
	}
	if in.Address != nil {
		dentist.Address = *in.Address
	}
	if in.VATNumber != nil {
		dentist.VATNumber = *in.VATNumber
	}
	if in.RequiresInvoicing != nil {
		dentist.RequiresInvoicing = *in.RequiresInvoicing
	}
	dentist.UpdatedAt = time.Now()
	if err := uc.dentistRepo.Update(ctx, dentist); err != nil {
		return nil, err
	}
	return toDentistResponse(dentist), nil
}

// Delete removes a practice that never placed an order.
func (uc *DentistUseCase) Delete(ctx context.Context, id string) error {
	dentist, err := uc.dentistRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	orders, err := uc.orderRepo.List(ctx, repository.OrderFilter{DentistID: dentist.ID, Limit: 1})
	if err != nil {
		return err
	}
	if len(orders) > 0 {
		return fmt.Errorf("%w: dentist %s has orders on file", domain.ErrConflict, dentist.Name)
	}
	return uc.dentistRepo.Delete(ctx, id)
}

func toDentistResponse(d *entity.Dentist) *dto.DentistResponse {
	return &dto.DentistResponse{
		ID:                d.ID,
		Name:              d.Name,
		ClinicName:        d.ClinicName,
		Email:             d.Email,
		Phone:             d.Phone,
		Address:           d.Address,
		VATNumber:         d.VATNumber,
		RequiresInvoicing: d.RequiresInvoicing,
	}
}
