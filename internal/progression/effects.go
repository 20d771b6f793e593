// Package progression owns the technology graph, the secret lore entries,
// and the closed set of effects both can carry. Unlocks are one-shot:
// each entry moves Locked to Available to Unlocked exactly once, and its
// effects apply exactly once. See design doc Section 4.4.
package progression

import (
	"math"

	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/sim"
)

// EffectKind enumerates every effect an unlock can carry. The set is
// closed: Apply dispatches exhaustively and there is no escape hatch for
// ad-hoc behavior.
type EffectKind int

const (
	// FoodProductionFloor raises the food multiplier to at least Value.
	FoodProductionFloor EffectKind = iota
	// MiningEfficiencyFloor raises the extraction layer to at least Value.
	MiningEfficiencyFloor
	// CraftSpeedFloor raises the craft multiplier to at least Value.
	CraftSpeedFloor
	// ResearchBonusFloor raises the sacrifice yield to at least Value.
	ResearchBonusFloor
	// CraftSpeedCompound multiplies the craft multiplier by Value and
	// stacks with other compounds.
	CraftSpeedCompound
	// HappinessBonus adds Value happiness once, on unlock.
	HappinessBonus
	// TrendDamp lowers the market trend damp to at most Value.
	TrendDamp
	// ResourceGrant credits Value units of Grant through the ledger.
	ResourceGrant
)

// Effect pairs a kind with its payload.
type Effect struct {
	Kind  EffectKind
	Value float64
	Grant economy.Resource
}

// Modifiers are the floating multiplier layers unlocks adjust. CraftSpeed,
// ResearchBonus, and FoodProduction persist in saves because compounds
// and one-shot state cannot be rebuilt; MiningEfficiency and TrendDamp
// are pure floors and re-derive from the unlocked set on load.
type Modifiers struct {
	CraftSpeed       float64
	ResearchBonus    float64
	FoodProduction   float64
	MiningEfficiency float64
	TrendDamp        float64
}

// NewModifiers returns the neutral multiplier set.
func NewModifiers() Modifiers {
	return Modifiers{
		CraftSpeed:       1,
		ResearchBonus:    1,
		FoodProduction:   1,
		MiningEfficiency: 1,
		TrendDamp:        1,
	}
}

// Target is the state an applying effect may mutate.
type Target struct {
	Mods      *Modifiers
	Ledger    *economy.Ledger
	Happiness *float64
}

// Apply dispatches one effect onto the target.
func (e Effect) Apply(t Target) {
	switch e.Kind {
	case FoodProductionFloor:
		t.Mods.FoodProduction = math.Max(t.Mods.FoodProduction, e.Value)
	case MiningEfficiencyFloor:
		t.Mods.MiningEfficiency = math.Max(t.Mods.MiningEfficiency, e.Value)
	case CraftSpeedFloor:
		t.Mods.CraftSpeed = math.Max(t.Mods.CraftSpeed, e.Value)
	case ResearchBonusFloor:
		t.Mods.ResearchBonus = math.Max(t.Mods.ResearchBonus, e.Value)
	case CraftSpeedCompound:
		t.Mods.CraftSpeed *= e.Value
	case HappinessBonus:
		*t.Happiness = sim.Clamp(*t.Happiness+e.Value, 0, 100)
	case TrendDamp:
		t.Mods.TrendDamp = math.Min(t.Mods.TrendDamp, e.Value)
	case ResourceGrant:
		t.Ledger.Adjust(e.Grant, e.Value)
	}
}

// Idempotent reports whether re-applying the effect cannot change state a
// restored save already carries. Restore re-applies only these kinds.
func (k EffectKind) Idempotent() bool {
	switch k {
	case FoodProductionFloor, MiningEfficiencyFloor, CraftSpeedFloor,
		ResearchBonusFloor, TrendDamp:
		return true
	}
	return false
}
