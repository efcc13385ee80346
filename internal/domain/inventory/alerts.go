package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// Expiry alert severities.
const (
	SeverityCritical = "critical" // under 7 days
	SeverityWarning  = "warning"  // 7 to 30 days
	SeverityInfo     = "info"     // over 30 days
)

// ExpirySeverity classifies how urgent a lot's expiry is. Days are counted as
// whole 24h periods remaining; a lot expiring later today counts as 0 days.
func ExpirySeverity(expiry, now time.Time) string {
	days := int(expiry.Sub(now).Hours() / 24)
	switch {
	case days < 7:
		return SeverityCritical
	case days <= 30:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// ExpiringLot is one alert line: the lot plus its classification.
type ExpiringLot struct {
	Lot      *entity.MaterialLot
	DaysLeft int
	Severity string
}

// ExpiringWithin filters lots to those expiring inside the window and
// classifies them. Only AVAILABLE lots with stock left and an expiry date are
// considered; sorted soonest first.
func ExpiringWithin(lots []*entity.MaterialLot, days int, now time.Time) []ExpiringLot {
	var out []ExpiringLot
	horizon := now.AddDate(0, 0, days)
	for _, l := range lots {
		if l.Status != entity.LotStatusAvailable || !l.QuantityAvailable.IsPositive() || l.ExpiryDate == nil {
			continue
		}
		if l.ExpiryDate.After(horizon) {
			continue
		}
		out = append(out, ExpiringLot{
			Lot:      l,
			DaysLeft: int(l.ExpiryDate.Sub(now).Hours() / 24),
			Severity: ExpirySeverity(*l.ExpiryDate, now),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Lot.ExpiryDate.Before(*out[j].Lot.ExpiryDate)
	})
	return out
}

// MaterialStock is the available total for one material across its lots.
type MaterialStock struct {
	MaterialID string
	Total      decimal.Decimal
}

// LowStockAlert flags a material below the threshold. PercentOfThreshold is
// Total/threshold as a percentage; 0 means fully out.
type LowStockAlert struct {
	MaterialID         string
	Total              decimal.Decimal
	PercentOfThreshold decimal.Decimal
}

// RankLowStock flags materials whose available total is below the threshold,
// worst first (lowest percentage of threshold). A non-positive threshold
// flags nothing.
func RankLowStock(stocks []MaterialStock, threshold decimal.Decimal) []LowStockAlert {
	if !threshold.IsPositive() {
		return nil
	}
	hundred := decimal.NewFromInt(100)
	var out []LowStockAlert
	for _, s := range stocks {
		if s.Total.GreaterThanOrEqual(threshold) {
			continue
		}
		out = append(out, LowStockAlert{
			MaterialID:         s.MaterialID,
			Total:              s.Total,
			PercentOfThreshold: s.Total.Div(threshold).Mul(hundred).Round(1),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PercentOfThreshold.LessThan(out[j].PercentOfThreshold)
	})
	return out
}
