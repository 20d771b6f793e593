// Package ecosystem tracks per-biome health under industrial load and
// derives the pollution, biodiversity, and production modifier the rest
// of the simulation reads. The daily tick is fully deterministic: the
// same buildings and workers always move health the same way.
// See design doc Section 4.2.
package ecosystem

import (
	"math"

	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/sim"
)

// Biome identifies one tracked habitat.
type Biome string

const (
	Forest Biome = "forest"
	Rivers Biome = "rivers"
	Soil   Biome = "soil"
	Air    Biome = "air"
)

// Biomes lists every biome in stable display order.
var Biomes = []Biome{Forest, Rivers, Soil, Air}

// Status is the ordinal label derived from overall health.
type Status string

const (
	Healthy  Status = "healthy"
	Stable   Status = "stable"
	Degraded Status = "degraded"
	Critical Status = "critical"
)

// Health values live on a 0..100 scale.
const (
	minHealth = 0.0
	maxHealth = 100.0

	// Regeneration pulls damaged biomes up a little each day, but never
	// past the soft ceiling.
	regenPerDay = 0.6
	regenCeil   = 90.0
)

// buildingImpact is the per-unit daily biome damage of each extraction
// structure. Wheat fields and herbalist huts tread lightly enough that
// they carry no entry.
var buildingImpact = map[economy.Building]map[Biome]float64{
	economy.Sawmill: {Forest: -0.6, Air: -0.15},
	economy.Quarry:  {Soil: -0.4, Air: -0.25},
	economy.SandPit: {Soil: -0.55, Rivers: -0.35},
	economy.ClayPit: {Soil: -0.35},
}

// Model holds biome health plus the derived pollution and biodiversity.
type Model struct {
	Health       map[Biome]float64
	Pollution    float64
	Biodiversity float64
}

// NewModel returns the day-zero ecosystem: already scarred by the
// settlement's founding, with clean air metrics.
func NewModel() *Model {
	return &Model{
		Health: map[Biome]float64{
			Forest: 5.0,
			Rivers: 0.0,
			Soil:   8.0,
			Air:    2.0,
		},
		Pollution:    0,
		Biodiversity: 100,
	}
}

// WorkerLoadFactor scales industrial impact by crew size. The marginal
// load of each worker tapers off past ten.
func WorkerLoadFactor(totalWorkers int, industryPenalty float64) float64 {
	if totalWorkers > 10 {
		totalWorkers = 10
	}
	return (0.75 + 0.05*float64(totalWorkers)) * industryPenalty
}

// Tick applies one day of building damage, soft regeneration, and
// recomputes pollution and biodiversity.
func (m *Model) Tick(counts map[economy.Building]int, totalWorkers int, industryPenalty float64) {
	factor := WorkerLoadFactor(totalWorkers, industryPenalty)

	for b, impacts := range buildingImpact {
		count := counts[b]
		if count == 0 {
			continue
		}
		for biome, impact := range impacts {
			m.Health[biome] += impact * float64(count) * factor
		}
	}

	for _, b := range Biomes {
		if m.Health[b] < regenCeil {
			m.Health[b] += regenPerDay
		}
		m.Health[b] = sim.Clamp(m.Health[b], minHealth, maxHealth)
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	m.Pollution = math.Min(100, 0.25*float64(total)*factor)
	m.Biodiversity = math.Max(0, m.OverallHealth()-0.25*m.Pollution)
}

// Damage applies an immediate hit to one biome, clamped at zero.
func (m *Model) Damage(b Biome, amount float64) {
	m.Health[b] = math.Max(minHealth, m.Health[b]-amount)
}

// OverallHealth is the mean across all biomes.
func (m *Model) OverallHealth() float64 {
	var sum float64
	for _, b := range Biomes {
		sum += m.Health[b]
	}
	return sum / float64(len(Biomes))
}

// Status buckets overall health into its ordinal label.
func (m *Model) Status() Status {
	switch h := m.OverallHealth(); {
	case h >= 80:
		return Healthy
	case h >= 60:
		return Stable
	case h >= 40:
		return Degraded
	default:
		return Critical
	}
}

// ProductionModifier maps overall health onto the output multiplier every
// extraction and passive-production path applies.
func (m *Model) ProductionModifier() float64 {
	switch h := m.OverallHealth(); {
	case h >= 80:
		return 1.2
	case h >= 60:
		return 1.0
	case h >= 40:
		return 0.8
	default:
		return 0.6
	}
}
