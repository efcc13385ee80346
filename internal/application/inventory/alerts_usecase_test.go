package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	domInventory "github.com/Magneteek/SmileLAB-sub002/internal/domain/inventory"
)

func TestExpiringWithin_WindowSortedSoonestFirst(t *testing.T) {
	f := newFixture()
	mat := f.seedMaterial(t, "ZR-A2")
	in3 := time.Now().AddDate(0, 0, 3)
	in20 := time.Now().AddDate(0, 0, 20)
	in40 := time.Now().AddDate(0, 0, 40)
	f.seedLot(t, mat.ID, "FAR", date("2025-01-01"), 10, &in40)
	f.seedLot(t, mat.ID, "MID", date("2025-01-02"), 10, &in20)
	f.seedLot(t, mat.ID, "SOON", date("2025-01-03"), 10, &in3)
	f.seedLot(t, mat.ID, "NEVER", date("2025-01-04"), 10, nil)

	alerts, err := f.alerts.ExpiringWithin(ctx, 30)
	require.NoError(t, err)
	require.Len(t, alerts, 2, "the 40-day lot and the undated lot stay out")
	assert.Equal(t, "SOON", alerts[0].LotNumber)
	assert.Equal(t, "MID", alerts[1].LotNumber)
	assert.Equal(t, domInventory.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, domInventory.SeverityWarning, alerts[1].Severity)
}

func TestExpiringWithin_SkipsDepletedAndRecalled(t *testing.T) {
	f := newFixture()
	mat := f.seedMaterial(t, "ZR-A2")
	soon := time.Now().AddDate(0, 0, 5)
	gone := f.seedLot(t, mat.ID, "GONE", date("2025-01-01"), 10, &soon)
	gone.QuantityAvailable = decimal.Zero
	gone.Status = entity.LotStatusDepleted
	require.NoError(t, f.store.Lots().Update(ctx, gone))
	recalled := f.seedLot(t, mat.ID, "REC", date("2025-01-02"), 10, &soon)
	recalled.Status = entity.LotStatusRecalled
	require.NoError(t, f.store.Lots().Update(ctx, recalled))

	alerts, err := f.alerts.ExpiringWithin(ctx, 30)
	require.NoError(t, err)
	assert.Empty(t, alerts, "only stocked AVAILABLE lots are worth a warning")
}

func TestExpiringWithin_RejectsNonPositiveWindow(t *testing.T) {
	f := newFixture()
	_, err := f.alerts.ExpiringWithin(ctx, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLowStock_RanksWorstFirst(t *testing.T) {
	f := newFixture()
	scarce := f.seedMaterial(t, "AL-CR")
	low := f.seedMaterial(t, "PM-B1")
	plenty := f.seedMaterial(t, "ZR-A2")
	f.seedLot(t, scarce.ID, "S-1", date("2025-01-01"), 2, nil)
	f.seedLot(t, low.ID, "L-1", date("2025-01-01"), 8, nil)
	f.seedLot(t, plenty.ID, "P-1", date("2025-01-01"), 40, nil)

	alerts, err := f.alerts.LowStock(ctx, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "AL-CR", alerts[0].MaterialCode, "2 of 10 is worse than 8 of 10")
	assert.Equal(t, "PM-B1", alerts[1].MaterialCode)
	assert.True(t, alerts[0].PercentOfThreshold.Equal(decimal.NewFromInt(20)))
}

func TestLowStock_FlagsMaterialsWithNoLotsAtAll(t *testing.T) {
	f := newFixture()
	empty := f.seedMaterial(t, "CE-EM")

	alerts, err := f.alerts.LowStock(ctx, decimal.NewFromInt(5))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, empty.ID, alerts[0].MaterialID)
	assert.True(t, alerts[0].Available.IsZero())
}

func TestLowStock_RejectsNonPositiveThreshold(t *testing.T) {
	f := newFixture()
	_, err := f.alerts.LowStock(ctx, decimal.Zero)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
