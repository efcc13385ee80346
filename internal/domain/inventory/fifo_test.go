package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/inventory"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func TestSelectFIFO_PicksOldestLot(t *testing.T) {
	l1 := lot("L1", "2025-01-01", 10, entity.LotStatusAvailable, nil)
	l2 := lot("L2", "2025-02-01", 10, entity.LotStatusAvailable, nil)

	chosen, err := inventory.SelectFIFO([]*entity.MaterialLot{l2, l1}, decimal.NewFromInt(5), testNow)
	require.NoError(t, err)
	assert.Equal(t, "L1", chosen.LotNumber, "the January lot arrived first")
}

func TestSelectFIFO_NoSplitAcrossLots(t *testing.T) {
	l1 := lot("L1", "2025-01-01", 3, entity.LotStatusAvailable, nil)
	l2 := lot("L2", "2025-02-01", 50, entity.LotStatusAvailable, nil)

	_, err := inventory.SelectFIFO([]*entity.MaterialLot{l1, l2}, decimal.NewFromInt(5), testNow)
	require.Error(t, err, "oldest lot has 3, needing 5 must fail even though L2 has 50")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestSelectFIFO_SkipsExpiredAndInactive(t *testing.T) {
	past := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	expired := lot("OLD", "2024-06-01", 10, entity.LotStatusAvailable, &past)
	recalled := lot("REC", "2024-07-01", 10, entity.LotStatusRecalled, nil)
	good := lot("GOOD", "2025-01-01", 10, entity.LotStatusAvailable, nil)

	chosen, err := inventory.SelectFIFO([]*entity.MaterialLot{expired, recalled, good}, decimal.NewFromInt(2), testNow)
	require.NoError(t, err)
	assert.Equal(t, "GOOD", chosen.LotNumber)
}

func TestSelectFIFO_NoEligibleLot(t *testing.T) {
	depleted := lot("D", "2025-01-01", 0, entity.LotStatusDepleted, nil)
	_, err := inventory.SelectFIFO([]*entity.MaterialLot{depleted}, decimal.NewFromInt(1), testNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestSelectFIFO_RejectsNonPositiveQuantity(t *testing.T) {
	l := lot("L", "2025-01-01", 10, entity.LotStatusAvailable, nil)
	_, err := inventory.SelectFIFO([]*entity.MaterialLot{l}, decimal.Zero, testNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSelectFIFO_ExactQuantityMatch(t *testing.T) {
	l := lot("L", "2025-01-01", 5, entity.LotStatusAvailable, nil)
	chosen, err := inventory.SelectFIFO([]*entity.MaterialLot{l}, decimal.NewFromInt(5), testNow)
	require.NoError(t, err, "consuming exactly what is left is allowed")
	assert.Equal(t, "L", chosen.LotNumber)
}

// ── helper ────────────────────────────────────────────────────────────────────

func lot(number, arrival string, avail int64, status string, expiry *time.Time) *entity.MaterialLot {
	arr, _ := time.Parse("2006-01-02", arrival)
	return &entity.MaterialLot{
		ID:                "lot-" + number,
		MaterialID:        "mat-1",
		LotNumber:         number,
		ArrivalDate:       arr,
		ExpiryDate:        expiry,
		QuantityReceived:  decimal.NewFromInt(avail),
		QuantityAvailable: decimal.NewFromInt(avail),
		Status:            status,
	}
}
