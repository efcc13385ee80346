// Package inventory holds the pure stock rules: FIFO lot selection and the
// alert classifications. Storage adapters encode the same rules in SQL; this
// package is the reference semantics and what the in-memory fakes run.
package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// Eligible reports whether a lot may satisfy new consumption: AVAILABLE,
// something left, and not past expiry.
func Eligible(l *entity.MaterialLot, now time.Time) bool {
	return l.Status == entity.LotStatusAvailable &&
		l.QuantityAvailable.IsPositive() &&
		!l.Expired(now)
}

// SelectFIFO picks the oldest eligible lot by arrival date and checks it can
// cover the needed quantity on its own. No multi-lot splitting: if the oldest
// lot is short the call fails with ErrInsufficientStock even when newer lots
// could cover the remainder, so stock keeps rotating strictly oldest-first.
func SelectFIFO(lots []*entity.MaterialLot, needed decimal.Decimal, now time.Time) (*entity.MaterialLot, error) {
	if !needed.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}

	var eligible []*entity.MaterialLot
	for _, l := range lots {
		if Eligible(l, now) {
			eligible = append(eligible, l)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: no available lot", domain.ErrInsufficientStock)
	}

	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].ArrivalDate.Before(eligible[j].ArrivalDate)
	})

	oldest := eligible[0]
	if oldest.QuantityAvailable.LessThan(needed) {
		return nil, fmt.Errorf("%w: oldest lot %s has %s, need %s",
			domain.ErrInsufficientStock, oldest.LotNumber,
			oldest.QuantityAvailable.String(), needed.String())
	}
	return oldest, nil
}
