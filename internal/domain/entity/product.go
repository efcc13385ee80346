package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry for a type of prosthetic work the lab sells
// (crown, bridge unit, veneer, ...). Price is the current list price; work
// sheets snapshot it at selection so catalog edits never rewrite history.
type Product struct {
	ID          string
	Code        string // unique short code, e.g. CR-ZR
	Name        string
	Description string
	Price       decimal.Decimal
	Active      bool // inactive products stay resolvable but are hidden from selection
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
