package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorksheetMaterial records that a specific quantity of a specific lot went
// into a specific work sheet. This row is the regulatory traceability record:
// it is append-only, never updated, never deleted, and survives the lot being
// depleted, expired or recalled later.
type WorksheetMaterial struct {
	ID           string
	WorksheetID  string
	MaterialID   string
	LotID        string
	QuantityUsed decimal.Decimal
	RecordedBy   string // user ID of the technician who consumed
	RecordedAt   time.Time
}
