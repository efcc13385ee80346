package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot statuses. DEPLETED is set automatically when available quantity reaches
// zero; EXPIRED and RECALLED are manual corrections. Only AVAILABLE lots are
// eligible for FIFO selection.
const (
	LotStatusAvailable = "AVAILABLE"
	LotStatusDepleted  = "DEPLETED"
	LotStatusExpired   = "EXPIRED"
	LotStatusRecalled  = "RECALLED"
)

// MaterialLot is one physical batch of a material as received from a supplier.
// (MaterialID, LotNumber) is unique. QuantityAvailable only ever decreases
// through consumption; the invariant 0 <= available <= received holds at all
// times. Quantities are decimals, not floats, so repeated small consumptions
// never drift.
type MaterialLot struct {
	ID                string
	MaterialID        string
	LotNumber         string
	Supplier          string
	ArrivalDate       time.Time
	ExpiryDate        *time.Time // nil = does not expire
	QuantityReceived  decimal.Decimal
	QuantityAvailable decimal.Decimal
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Expired reports whether the lot's expiry date has passed at the given time.
// Lots without an expiry date never expire.
func (l *MaterialLot) Expired(now time.Time) bool {
	return l.ExpiryDate != nil && !l.ExpiryDate.After(now)
}
