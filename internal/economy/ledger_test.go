package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/steading/internal/sim"
)

func TestNewLedgerStartingStocks(t *testing.T) {
	l := NewLedger()

	assert.Equal(t, 10.0, l.Stock(Wood))
	assert.Equal(t, 10.0, l.Stock(Wine))
	assert.Equal(t, 10.0, l.Stock(Rock))
	assert.Equal(t, 12.0, l.Stock(Food))
	assert.Equal(t, 0.0, l.Stock(Steel))
	assert.Equal(t, 0.0, l.Stock(BuilderMaterials))
	assert.Equal(t, 1, l.StorageUnits)
	assert.Equal(t, 125.0, l.Capacity())
}

func TestAdjustClampsAtCapacity(t *testing.T) {
	l := NewLedger()

	require.NoError(t, l.Adjust(Wood, 500))
	assert.Equal(t, l.Capacity(), l.Stock(Wood))

	// Another storehouse raises the cap and leaves room again.
	l.StorageUnits++
	require.NoError(t, l.Adjust(Wood, 500))
	assert.Equal(t, 200.0, l.Stock(Wood))
}

func TestCurrencyIsNeverCapped(t *testing.T) {
	l := NewLedger()

	require.NoError(t, l.Adjust(Wine, 100000))
	assert.Equal(t, 100010.0, l.Stock(Wine))
}

func TestAdjustFloorsAtZero(t *testing.T) {
	l := NewLedger()

	require.NoError(t, l.Adjust(Food, -12))
	assert.Equal(t, 0.0, l.Stock(Food))

	require.NoError(t, l.Adjust(Food, -5))
	assert.Equal(t, 0.0, l.Stock(Food))
}

func TestAdjustUnknownResource(t *testing.T) {
	l := NewLedger()

	err := l.Adjust(Resource("mithril"), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, sim.ErrInvalidReference)
}

func TestSpendIsAllOrNothing(t *testing.T) {
	l := NewLedger()

	err := l.Spend(map[Resource]float64{Wood: 8, Rock: 20})
	require.ErrorIs(t, err, sim.ErrUnaffordable)
	assert.Equal(t, 10.0, l.Stock(Wood), "failed spend must not touch stocks")
	assert.Equal(t, 10.0, l.Stock(Rock))

	require.NoError(t, l.Spend(map[Resource]float64{Wood: 8, Rock: 10}))
	assert.Equal(t, 2.0, l.Stock(Wood))
	assert.Equal(t, 0.0, l.Stock(Rock))
}

func TestTotalNonCurrency(t *testing.T) {
	l := NewLedger()

	// wood 10 + rock 10 + food 12, wine excluded
	assert.InDelta(t, 32.0, l.TotalNonCurrency(), 1e-9)

	require.NoError(t, l.Adjust(Wine, 1000))
	assert.InDelta(t, 32.0, l.TotalNonCurrency(), 1e-9)
}

func TestScaledCost(t *testing.T) {
	def, ok := BuildingByID(Sawmill)
	require.True(t, ok)

	base := ScaledCost(def, 0)
	assert.Equal(t, 15.0, base[Wood])
	assert.Equal(t, 5.0, base[Rock])

	scaled := ScaledCost(def, 2)
	assert.InDelta(t, 18.0, scaled[Wood], 1e-9)
	assert.InDelta(t, 6.0, scaled[Rock], 1e-9)

	store, ok := BuildingByID(Storehouse)
	require.True(t, ok)
	flat := ScaledCost(store, 7)
	assert.Equal(t, 20.0, flat[Wood])
	assert.Equal(t, 15.0, flat[Rock])
}

func TestOrdinalsAreStable(t *testing.T) {
	seen := make(map[int]Resource)
	for _, r := range All {
		o := Ordinal(r)
		_, dup := seen[o]
		require.False(t, dup, "duplicate ordinal for %s", r)
		seen[o] = r
	}
	assert.True(t, Known(Wood))
	assert.False(t, Known(Resource("vibranium")))
}
