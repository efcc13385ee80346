package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.DentistRepository = (*DentistRepo)(nil)
var _ repository.ProductRepository = (*ProductRepo)(nil)
var _ repository.MaterialRepository = (*MaterialRepo)(nil)
var _ repository.LabConfigRepository = (*LabConfigRepo)(nil)

// DentistRepo is the in-memory DentistRepository.
type DentistRepo struct {
	access
}

func (r *DentistRepo) Create(ctx context.Context, dentist *entity.Dentist) error {
	r.lock()
	defer r.unlock()
	c := *dentist
	r.s.dentists[dentist.ID] = &c
	return nil
}

func (r *DentistRepo) GetByID(ctx context.Context, id string) (*entity.Dentist, error) {
	r.lock()
	defer r.unlock()
	d, ok := r.s.dentists[id]
	if !ok {
		return nil, fmt.Errorf("%w: dentist %s", domain.ErrNotFound, id)
	}
	c := *d
	return &c, nil
}

func (r *DentistRepo) Update(ctx context.Context, dentist *entity.Dentist) error {
	r.lock()
	defer r.unlock()
	if _, ok := r.s.dentists[dentist.ID]; !ok {
		return fmt.Errorf("%w: dentist %s", domain.ErrNotFound, dentist.ID)
	}
	c := *dentist
	r.s.dentists[dentist.ID] = &c
	return nil
}

func (r *DentistRepo) List(ctx context.Context, limit, offset int) ([]*entity.Dentist, error) {
	r.lock()
	defer r.unlock()
	var list []*entity.Dentist
	for _, d := range r.s.dentists {
		c := *d
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

func (r *DentistRepo) Delete(ctx context.Context, id string) error {
	r.lock()
	defer r.unlock()
	if _, ok := r.s.dentists[id]; !ok {
		return fmt.Errorf("%w: dentist %s", domain.ErrNotFound, id)
	}
	delete(r.s.dentists, id)
	return nil
}

// ProductRepo is the in-memory ProductRepository.
type ProductRepo struct {
	access
}

func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	r.lock()
	defer r.unlock()
	for _, p := range r.s.products {
		if p.Code == product.Code {
			return fmt.Errorf("%w: product code %s", domain.ErrDuplicateCode, product.Code)
		}
	}
	c := *product
	r.s.products[product.ID] = &c
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.lock()
	defer r.unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	c := *p
	return &c, nil
}

func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	r.lock()
	defer r.unlock()
	for _, p := range r.s.products {
		if p.Code == code {
			c := *p
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, code)
}

func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	r.lock()
	defer r.unlock()
	if _, ok := r.s.products[product.ID]; !ok {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, product.ID)
	}
	c := *product
	r.s.products[product.ID] = &c
	return nil
}

func (r *ProductRepo) List(ctx context.Context, includeInactive bool, limit, offset int) ([]*entity.Product, error) {
	r.lock()
	defer r.unlock()
	var list []*entity.Product
	for _, p := range r.s.products {
		if !includeInactive && !p.Active {
			continue
		}
		c := *p
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return page(list, limit, offset), nil
}

// Delete refuses when any work sheet line references the product, mirroring
// the FK constraint.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	r.lock()
	defer r.unlock()
	if _, ok := r.s.products[id]; !ok {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	for _, lines := range r.s.sheetLines {
		for _, line := range lines {
			if line.ProductID == id {
				return fmt.Errorf("%w: product %s is still referenced", domain.ErrConflict, id)
			}
		}
	}
	delete(r.s.products, id)
	return nil
}

// MaterialRepo is the in-memory MaterialRepository.
type MaterialRepo struct {
	access
}

func (r *MaterialRepo) Create(ctx context.Context, material *entity.Material) error {
	r.lock()
	defer r.unlock()
	for _, m := range r.s.materials {
		if m.Code == material.Code {
			return fmt.Errorf("%w: material code %s", domain.ErrDuplicateCode, material.Code)
		}
	}
	c := *material
	r.s.materials[material.ID] = &c
	return nil
}

func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	r.lock()
	defer r.unlock()
	m, ok := r.s.materials[id]
	if !ok {
		return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, id)
	}
	c := *m
	return &c, nil
}

func (r *MaterialRepo) GetByCode(ctx context.Context, code string) (*entity.Material, error) {
	r.lock()
	defer r.unlock()
	for _, m := range r.s.materials {
		if m.Code == code {
			c := *m
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, code)
}

func (r *MaterialRepo) Update(ctx context.Context, material *entity.Material) error {
	r.lock()
	defer r.unlock()
	if _, ok := r.s.materials[material.ID]; !ok {
		return fmt.Errorf("%w: material %s", domain.ErrNotFound, material.ID)
	}
	c := *material
	r.s.materials[material.ID] = &c
	return nil
}

func (r *MaterialRepo) List(ctx context.Context, materialType string, limit, offset int) ([]*entity.Material, error) {
	r.lock()
	defer r.unlock()
	var list []*entity.Material
	for _, m := range r.s.materials {
		if materialType != "" && m.Type != materialType {
			continue
		}
		c := *m
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return page(list, limit, offset), nil
}

// Delete refuses when any lot of the material exists, mirroring the FK
// constraint.
func (r *MaterialRepo) Delete(ctx context.Context, id string) error {
	r.lock()
	defer r.unlock()
	if _, ok := r.s.materials[id]; !ok {
		return fmt.Errorf("%w: material %s", domain.ErrNotFound, id)
	}
	for _, l := range r.s.lots {
		if l.MaterialID == id {
			return fmt.Errorf("%w: material %s is still referenced", domain.ErrConflict, id)
		}
	}
	delete(r.s.materials, id)
	return nil
}

// LabConfigRepo is the in-memory LabConfigRepository.
type LabConfigRepo struct {
	access
}

func (r *LabConfigRepo) Get(ctx context.Context) (*entity.LabConfig, error) {
	r.lock()
	defer r.unlock()
	if r.s.labConfig == nil {
		r.s.labConfig = &entity.LabConfig{
			ID:              1,
			DefaultTaxRate:  decimal.Zero,
			DefaultDiscount: decimal.Zero,
			RetentionYears:  10,
		}
	}
	c := *r.s.labConfig
	return &c, nil
}

func (r *LabConfigRepo) Update(ctx context.Context, cfg *entity.LabConfig) error {
	r.lock()
	defer r.unlock()
	c := *cfg
	c.ID = 1
	r.s.labConfig = &c
	return nil
}
