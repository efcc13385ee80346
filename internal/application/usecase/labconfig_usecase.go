package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/audit"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// LabConfigUseCase reads and edits the single-row lab profile. The profile is
// printed on every generated document, so every change is audited.
type LabConfigUseCase struct {
	configRepo repository.LabConfigRepository
	auditRepo  repository.AuditRepository
}

// NewLabConfigUseCase builds the use case.
func NewLabConfigUseCase(configRepo repository.LabConfigRepository, auditRepo repository.AuditRepository) *LabConfigUseCase {
	return &LabConfigUseCase{configRepo: configRepo, auditRepo: auditRepo}
}

// Get returns the profile, creating the default row on first read.
func (uc *LabConfigUseCase) Get(ctx context.Context) (*dto.LabConfigResponse, error) {
	cfg, err := uc.configRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	return toLabConfigResponse(cfg), nil
}

// Update patches the profile fields present in the request.
func (uc *LabConfigUseCase) Update(ctx context.Context, actor audit.Actor, in dto.UpdateLabConfigRequest) (*dto.LabConfigResponse, error) {
	cfg, err := uc.configRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	before := *cfg

	if in.LabName != nil {
		cfg.LabName = *in.LabName
	}
	if in.MDRRegistrationNo != nil {
		cfg.MDRRegistrationNo = *in.MDRRegistrationNo
	}
	if in.Address != nil {
		cfg.Address = *in.Address
	}
	if in.Email != nil {
		cfg.Email = *in.Email
	}
	if in.Phone != nil {
		cfg.Phone = *in.Phone
	}
	if in.DefaultTaxRate != nil {
		if in.DefaultTaxRate.IsNegative() {
			return nil, fmt.Errorf("%w: default_tax_rate cannot be negative", domain.ErrInvalidInput)
		}
		cfg.DefaultTaxRate = *in.DefaultTaxRate
	}
	if in.DefaultDiscount != nil {
		if in.DefaultDiscount.IsNegative() {
			return nil, fmt.Errorf("%w: default_discount cannot be negative", domain.ErrInvalidInput)
		}
		cfg.DefaultDiscount = *in.DefaultDiscount
	}
	if in.RetentionYears != nil {
		if *in.RetentionYears < 1 {
			return nil, fmt.Errorf("%w: retention_years must be at least 1", domain.ErrInvalidInput)
		}
		cfg.RetentionYears = *in.RetentionYears
	}
	cfg.UpdatedAt = time.Now()
	if err := uc.configRepo.Update(ctx, cfg); err != nil {
		return nil, err
	}

	audit.Record(ctx, uc.auditRepo, actor, audit.Entry{
		Action:     entity.AuditActionConfigChanged,
		EntityType: "lab_config",
		EntityID:   "1",
		Before:     before,
		After:      cfg,
	})
	return toLabConfigResponse(cfg), nil
}

func toLabConfigResponse(cfg *entity.LabConfig) *dto.LabConfigResponse {
	return &dto.LabConfigResponse{
		LabName:           cfg.LabName,
		MDRRegistrationNo: cfg.MDRRegistrationNo,
		Address:           cfg.Address,
		Email:             cfg.Email,
		Phone:             cfg.Phone,
		DefaultTaxRate:    cfg.DefaultTaxRate,
		DefaultDiscount:   cfg.DefaultDiscount,
		RetentionYears:    cfg.RetentionYears,
	}
}
