package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LabConfig is the single-row lab profile: identity printed on documents plus
// billing defaults. Read with get-or-create semantics so a fresh database
// behaves sensibly before anyone fills it in.
type LabConfig struct {
	ID                int // always 1
	LabName           string
	MDRRegistrationNo string
	Address           string
	Email             string
	Phone             string
	DefaultTaxRate    decimal.Decimal
	DefaultDiscount   decimal.Decimal
	RetentionYears    int // MDR document retention period, default 10
	UpdatedAt         time.Time
}
