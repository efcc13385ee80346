package dto

import "github.com/shopspring/decimal"

// OrderProductRequest one prosthetic line at order intake.
type OrderProductRequest struct {
	ProductID string `json:"product_id"`
	Teeth     string `json:"teeth,omitempty"` // FDI positions, comma separated
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest body for POST /api/orders. Creates the order, its work
// sheet and the product lines in one shot.
type CreateOrderRequest struct {
	DentistID  string                `json:"dentist_id"`
	PatientRef string                `json:"patient_ref,omitempty"`
	DueDate    string                `json:"due_date,omitempty"` // YYYY-MM-DD
	Notes      string                `json:"notes,omitempty"`
	Products   []OrderProductRequest `json:"products"`
}

// UpdateOrderRequest body for PUT /api/orders/:id. Status is not editable
// here; transitions have their own endpoints. Products replaces the sheet's
// lines wholesale and is only accepted while the sheet is still DRAFT.
type UpdateOrderRequest struct {
	PatientRef *string                `json:"patient_ref,omitempty"`
	DueDate    *string                `json:"due_date,omitempty"` // YYYY-MM-DD, empty string clears
	Notes      *string                `json:"notes,omitempty"`
	Products   *[]OrderProductRequest `json:"products,omitempty"`
}

// CancelOrderRequest body for POST /api/orders/:id/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// VoidWorksheetRequest body for POST /api/worksheets/:id/void. Admin override.
type VoidWorksheetRequest struct {
	Reason string `json:"reason"`
}

// TransitionResponse statuses of sheet and order after a lifecycle move.
type TransitionResponse struct {
	WorksheetID     string `json:"worksheet_id"`
	WorksheetNumber string `json:"worksheet_number"`
	WorksheetStatus string `json:"worksheet_status"`
	OrderID         string `json:"order_id"`
	OrderNumber     string `json:"order_number"`
	OrderStatus     string `json:"order_status"`
}

// ListOrdersRequest query for GET /api/orders.
type ListOrdersRequest struct {
	Status    string `query:"status"`
	DentistID string `query:"dentist_id"`
	PageRequest
}

// OrderResponse order in responses.
type OrderResponse struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	DentistID  string `json:"dentist_id"`
	PatientRef string `json:"patient_ref,omitempty"`
	Status     string `json:"status"`
	DueDate    string `json:"due_date,omitempty"`
	Notes      string `json:"notes,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// WorksheetProductResponse one prosthetic line on a sheet.
type WorksheetProductResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Description      string          `json:"description"`
	Teeth            string          `json:"teeth,omitempty"`
	Quantity         int             `json:"quantity"`
	PriceAtSelection decimal.Decimal `json:"price_at_selection"`
}

// WorksheetResponse work sheet with its product lines.
type WorksheetResponse struct {
	ID       string                     `json:"id"`
	OrderID  string                     `json:"order_id"`
	Number   string                     `json:"number"`
	Status   string                     `json:"status"`
	Products []WorksheetProductResponse `json:"products,omitempty"`
}

// OrderDetailResponse order plus its work sheet.
type OrderDetailResponse struct {
	OrderResponse
	Worksheet *WorksheetResponse `json:"worksheet,omitempty"`
}
