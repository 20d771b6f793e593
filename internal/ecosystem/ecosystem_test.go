package ecosystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/steading/internal/economy"
)

func TestNewModelStartingHealth(t *testing.T) {
	m := NewModel()

	assert.Equal(t, 5.0, m.Health[Forest])
	assert.Equal(t, 0.0, m.Health[Rivers])
	assert.Equal(t, 8.0, m.Health[Soil])
	assert.Equal(t, 2.0, m.Health[Air])
	assert.Equal(t, 100.0, m.Biodiversity)
}

func TestWorkerLoadFactor(t *testing.T) {
	assert.InDelta(t, 0.75, WorkerLoadFactor(0, 1.0), 1e-9)
	assert.InDelta(t, 1.0, WorkerLoadFactor(5, 1.0), 1e-9)
	assert.InDelta(t, 1.25, WorkerLoadFactor(10, 1.0), 1e-9)
	assert.InDelta(t, 1.25, WorkerLoadFactor(40, 1.0), 1e-9, "load tapers past ten workers")
	assert.InDelta(t, 1.0, WorkerLoadFactor(10, 0.8), 1e-9)
}

func TestTickRegeneratesIdleBiomes(t *testing.T) {
	m := NewModel()

	m.Tick(nil, 0, 1.0)

	assert.InDelta(t, 5.6, m.Health[Forest], 1e-9)
	assert.InDelta(t, 0.6, m.Health[Rivers], 1e-9)
	assert.InDelta(t, 8.6, m.Health[Soil], 1e-9)
	assert.InDelta(t, 2.6, m.Health[Air], 1e-9)
	assert.Equal(t, 0.0, m.Pollution)
}

func TestTickSawmillDamagesForestAndAir(t *testing.T) {
	m := NewModel()
	counts := map[economy.Building]int{economy.Sawmill: 2}

	m.Tick(counts, 0, 1.0)

	// 2 units x -0.6 x factor 0.75, then +0.6 regen.
	assert.InDelta(t, 5.0-0.9+0.6, m.Health[Forest], 1e-9)
	assert.InDelta(t, 2.0-0.225+0.6, m.Health[Air], 1e-9)
	assert.InDelta(t, 0.25*2*0.75, m.Pollution, 1e-9)
}

func TestHealthStaysInBounds(t *testing.T) {
	m := NewModel()
	counts := map[economy.Building]int{
		economy.Sawmill: 50,
		economy.Quarry:  50,
		economy.SandPit: 50,
		economy.ClayPit: 50,
	}

	for day := 0; day < 400; day++ {
		m.Tick(counts, 25, 1.2)
		for _, b := range Biomes {
			require.GreaterOrEqual(t, m.Health[b], 0.0)
			require.LessOrEqual(t, m.Health[b], 100.0)
		}
		require.LessOrEqual(t, m.Pollution, 100.0)
		require.GreaterOrEqual(t, m.Biodiversity, 0.0)
	}
	assert.Equal(t, Critical, m.Status())
}

func TestRegenStopsAtSoftCeiling(t *testing.T) {
	m := NewModel()
	for _, b := range Biomes {
		m.Health[b] = 89.8
	}

	m.Tick(nil, 0, 1.0)
	for _, b := range Biomes {
		assert.InDelta(t, 90.4, m.Health[b], 1e-9)
	}

	m.Tick(nil, 0, 1.0)
	for _, b := range Biomes {
		assert.InDelta(t, 90.4, m.Health[b], 1e-9, "no regen at or above the ceiling")
	}
}

func TestBiodiversityReflectsPollution(t *testing.T) {
	m := NewModel()
	for _, b := range Biomes {
		m.Health[b] = 80
	}

	m.Tick(map[economy.Building]int{economy.ClayPit: 40}, 10, 1.0)

	// Pollution: 0.25 x 40 x 1.25 = 12.5.
	assert.InDelta(t, 12.5, m.Pollution, 1e-9)
	assert.InDelta(t, m.OverallHealth()-0.25*12.5, m.Biodiversity, 1e-9)
}

func TestProductionModifierTiers(t *testing.T) {
	m := NewModel()

	set := func(h float64) {
		for _, b := range Biomes {
			m.Health[b] = h
		}
	}

	set(85)
	assert.Equal(t, 1.2, m.ProductionModifier())
	assert.Equal(t, Healthy, m.Status())

	set(60)
	assert.Equal(t, 1.0, m.ProductionModifier())
	assert.Equal(t, Stable, m.Status())

	set(55)
	assert.Equal(t, 0.8, m.ProductionModifier())
	assert.Equal(t, Degraded, m.Status())

	set(35)
	assert.Equal(t, 0.6, m.ProductionModifier())
	assert.Equal(t, Critical, m.Status())
}

func TestDamageClampsAtZero(t *testing.T) {
	m := NewModel()

	m.Damage(Forest, 3)
	assert.InDelta(t, 2.0, m.Health[Forest], 1e-9)

	m.Damage(Forest, 50)
	assert.Equal(t, 0.0, m.Health[Forest])
}
