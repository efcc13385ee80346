package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorksheetProduct is one prosthetic line on a work sheet: a catalog product,
// the FDI tooth positions it covers and the price frozen at selection time so
// later catalog edits never change what gets invoiced.
type WorksheetProduct struct {
	ID               string
	WorksheetID      string
	ProductID        string
	Description      string // snapshot of the product name at selection
	Teeth            string // FDI notation, comma separated: "11,12,21"
	Quantity         int
	PriceAtSelection decimal.Decimal
	CreatedAt        time.Time
}
