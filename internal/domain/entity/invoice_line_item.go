package entity

import "github.com/shopspring/decimal"

// InvoiceLineItem is one billed line. Lines referencing a work sheet carry its
// ID so invoiced work can be traced back to production; free-form lines
// (adjustments, shipping) leave WorksheetID nil. Amount = Quantity * UnitPrice.
type InvoiceLineItem struct {
	ID          string
	InvoiceID   string
	WorksheetID *string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	Position    int // stable display order within the invoice
}
