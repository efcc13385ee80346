package dto

import "github.com/shopspring/decimal"

// ManualLineItemRequest a free-form billed line (adjustments, shipping).
type ManualLineItemRequest struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest body for POST /api/invoices. Worksheet lines are
// imported from the referenced sheets at their frozen selection prices;
// manual lines are appended after them. Rates default to the lab profile
// when nil.
type CreateInvoiceRequest struct {
	DentistID    string                  `json:"dentist_id"`
	WorksheetIDs []string                `json:"worksheet_ids"`
	ManualItems  []ManualLineItemRequest `json:"manual_items,omitempty"`
	TaxRate      *decimal.Decimal        `json:"tax_rate,omitempty"`
	DiscountRate *decimal.Decimal        `json:"discount_rate,omitempty"`
	Notes        string                  `json:"notes,omitempty"`
	IsDraft      *bool                   `json:"is_draft,omitempty"` // defaults to true
}

// UpdateInvoiceRequest body for PUT /api/invoices/:id. Replaces the line set
// wholesale and recomputes totals; only legal while the invoice is a draft.
type UpdateInvoiceRequest struct {
	WorksheetIDs []string                `json:"worksheet_ids"`
	ManualItems  []ManualLineItemRequest `json:"manual_items,omitempty"`
	TaxRate      *decimal.Decimal        `json:"tax_rate,omitempty"`
	DiscountRate *decimal.Decimal        `json:"discount_rate,omitempty"`
	Notes        *string                 `json:"notes,omitempty"`
}

// CancelInvoiceRequest body for POST /api/invoices/:id/cancel.
type CancelInvoiceRequest struct {
	Reason string `json:"reason"`
}

// SendInvoiceRequest body for POST /api/invoices/:id/send. Recipient defaults
// to the dentist's email.
type SendInvoiceRequest struct {
	Recipient string `json:"recipient,omitempty"`
}

// ListInvoicesRequest query for GET /api/invoices.
type ListInvoicesRequest struct {
	DentistID     string `query:"dentist_id"`
	PaymentStatus string `query:"payment_status"`
	PageRequest
}

// InvoiceLineItemResponse one billed line.
type InvoiceLineItemResponse struct {
	ID          string          `json:"id"`
	WorksheetID string          `json:"worksheet_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	Position    int             `json:"position"`
}

// InvoiceResponse invoice with lines for GET /api/invoices/:id.
type InvoiceResponse struct {
	ID             string                    `json:"id"`
	Number         string                    `json:"number,omitempty"` // empty for drafts
	DentistID      string                    `json:"dentist_id"`
	DentistName    string                    `json:"dentist_name,omitempty"`
	IsDraft        bool                      `json:"is_draft"`
	IssueDate      string                    `json:"issue_date,omitempty"`
	Subtotal       decimal.Decimal           `json:"subtotal"`
	DiscountRate   decimal.Decimal           `json:"discount_rate"`
	DiscountAmount decimal.Decimal           `json:"discount_amount"`
	TaxRate        decimal.Decimal           `json:"tax_rate"`
	TaxAmount      decimal.Decimal           `json:"tax_amount"`
	Total          decimal.Decimal           `json:"total"`
	PaymentStatus  string                    `json:"payment_status"`
	PDFPath        string                    `json:"pdf_path,omitempty"`
	Notes          string                    `json:"notes,omitempty"`
	Items          []InvoiceLineItemResponse `json:"items,omitempty"`
}

// EmailLogResponse one outbound mail record.
type EmailLogResponse struct {
	ID        string `json:"id"`
	InvoiceID string `json:"invoice_id"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	SentAt    string `json:"sent_at"`
}
