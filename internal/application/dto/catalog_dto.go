package dto

import "github.com/shopspring/decimal"

// CreateDentistRequest body for POST /api/dentists.
type CreateDentistRequest struct {
	Name              string `json:"name"`
	ClinicName        string `json:"clinic_name,omitempty"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Address           string `json:"address,omitempty"`
	VATNumber         string `json:"vat_number,omitempty"`
	RequiresInvoicing *bool  `json:"requires_invoicing,omitempty"` // defaults to true
}

// UpdateDentistRequest body for PUT /api/dentists/:id. Pointer fields are
// patched only when present.
type UpdateDentistRequest struct {
	Name              *string `json:"name,omitempty"`
	ClinicName        *string `json:"clinic_name,omitempty"`
	Email             *string `json:"email,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	Address           *string `json:"address,omitempty"`
	VATNumber         *string `json:"vat_number,omitempty"`
	RequiresInvoicing *bool   `json:"requires_invoicing,omitempty"`
}

// DentistResponse dentist in responses.
type DentistResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	ClinicName        string `json:"clinic_name,omitempty"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Address           string `json:"address,omitempty"`
	VATNumber         string `json:"vat_number,omitempty"`
	RequiresInvoicing bool   `json:"requires_invoicing"`
}

// CreateProductRequest body for POST /api/products.
type CreateProductRequest struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// UpdateProductRequest body for PUT /api/products/:id.
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Active      *bool            `json:"active,omitempty"`
}

// ProductResponse catalog product in responses.
type ProductResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
}

// UpdateLabConfigRequest body for PUT /api/config.
type UpdateLabConfigRequest struct {
	LabName           *string          `json:"lab_name,omitempty"`
	MDRRegistrationNo *string          `json:"mdr_registration_no,omitempty"`
	Address           *string          `json:"address,omitempty"`
	Email             *string          `json:"email,omitempty"`
	Phone             *string          `json:"phone,omitempty"`
	DefaultTaxRate    *decimal.Decimal `json:"default_tax_rate,omitempty"`
	DefaultDiscount   *decimal.Decimal `json:"default_discount,omitempty"`
	RetentionYears    *int             `json:"retention_years,omitempty"`
}

// LabConfigResponse the lab profile.
type LabConfigResponse struct {
	LabName           string          `json:"lab_name"`
	MDRRegistrationNo string          `json:"mdr_registration_no,omitempty"`
	Address           string          `json:"address,omitempty"`
	Email             string          `json:"email,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	DefaultTaxRate    decimal.Decimal `json:"default_tax_rate"`
	DefaultDiscount   decimal.Decimal `json:"default_discount"`
	RetentionYears    int             `json:"retention_years"`
}
