package progression

import (
	"fmt"

	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/sim"
)

// State is the unlock lifecycle of a technology or secret. Availability
// is recomputed on demand from prerequisites, stocks, and research
// progress; Unlocked is terminal.
type State int

const (
	Locked State = iota
	Available
	Unlocked
)

func (s State) String() string {
	switch s {
	case Available:
		return "available"
	case Unlocked:
		return "unlocked"
	}
	return "locked"
}

// Technology is a node in the prerequisite graph. Research is a progress
// threshold: a gate that is checked, never spent. Cost is debited.
type Technology struct {
	ID          string
	Name        string
	Description string
	Cost        map[economy.Resource]float64
	Research    float64
	Requires    []string
	Effects     []Effect
}

// Secret is a lore entry: a one-shot discovery with no prerequisite
// edges. Its research threshold is a gate, like a technology's.
type Secret struct {
	ID          string
	Name        string
	Description string
	Cost        map[economy.Resource]float64
	Research    float64
	Effect      Effect
}

func technologies() []Technology {
	return []Technology{
		{
			ID:          "basic_agriculture",
			Name:        "Basic Agriculture",
			Description: "Crop rotation and irrigation for steadier harvests.",
			Research:    20,
			Effects:     []Effect{{Kind: FoodProductionFloor, Value: 1.5}},
		},
		{
			ID:          "advanced_mining",
			Name:        "Advanced Mining",
			Description: "Reinforced shafts and better picks for every extraction crew.",
			Cost:        map[economy.Resource]float64{economy.Instrument: 5},
			Research:    40,
			Requires:    []string{"basic_agriculture"},
			Effects:     []Effect{{Kind: MiningEfficiencyFloor, Value: 1.6}},
		},
		{
			ID:          "ecology",
			Name:        "Ecology",
			Description: "Understanding the land well enough to live with it.",
			Research:    60,
			Requires:    []string{"basic_agriculture"},
			Effects:     []Effect{{Kind: HappinessBonus, Value: 2}},
		},
		{
			ID:          "industrial_revolution",
			Name:        "Industrial Revolution",
			Description: "Steam, steel, and the end of doing everything by hand.",
			Cost:        map[economy.Resource]float64{economy.Steel: 20, economy.Coal: 30},
			Research:    100,
			Requires:    []string{"advanced_mining"},
			Effects:     []Effect{{Kind: CraftSpeedCompound, Value: 1.5}},
		},
	}
}

func secrets() []Secret {
	return []Secret{
		{
			ID:          "seed_of_prosperity",
			Name:        "Seed of Prosperity",
			Description: "A grain that never fails, found in the oldest field.",
			Cost:        map[economy.Resource]float64{economy.Food: 50},
			Research:    10,
			Effect:      Effect{Kind: FoodProductionFloor, Value: 2.0},
		},
		{
			ID:          "memory_crystal",
			Name:        "Memory Crystal",
			Description: "A stone that remembers every price ever paid.",
			Cost:        map[economy.Resource]float64{economy.Rock: 30, economy.Water: 20},
			Research:    0,
			Effect:      Effect{Kind: TrendDamp, Value: 0.98},
		},
		{
			ID:          "forge_of_souls",
			Name:        "Forge of Souls",
			Description: "The buried forge the first settlers would not speak of.",
			Cost:        map[economy.Resource]float64{economy.Steel: 10, economy.Coal: 20},
			Research:    30,
			Effect:      Effect{Kind: CraftSpeedCompound, Value: 1.1},
		},
	}
}

// Tree owns both progression graphs and their unlock state.
type Tree struct {
	techs       map[string]Technology
	techOrder   []string
	secrets     map[string]Secret
	secretOrder []string

	unlockedTechs   map[string]bool
	unlockedSecrets map[string]bool
}

// NewTree builds the compiled-in registries. Edge validity is covered by
// the registry tests, so construction itself cannot fail.
func NewTree() *Tree {
	t := &Tree{
		techs:           make(map[string]Technology),
		secrets:         make(map[string]Secret),
		unlockedTechs:   make(map[string]bool),
		unlockedSecrets: make(map[string]bool),
	}
	for _, tech := range technologies() {
		t.techs[tech.ID] = tech
		t.techOrder = append(t.techOrder, tech.ID)
	}
	for _, s := range secrets() {
		t.secrets[s.ID] = s
		t.secretOrder = append(t.secretOrder, s.ID)
	}
	return t
}

// Technologies returns the registry in stable order.
func (t *Tree) Technologies() []Technology {
	out := make([]Technology, 0, len(t.techOrder))
	for _, id := range t.techOrder {
		out = append(out, t.techs[id])
	}
	return out
}

// Secrets returns the lore registry in stable order.
func (t *Tree) Secrets() []Secret {
	out := make([]Secret, 0, len(t.secretOrder))
	for _, id := range t.secretOrder {
		out = append(out, t.secrets[id])
	}
	return out
}

// IsUnlocked reports whether id names an unlocked technology or a
// discovered secret.
func (t *Tree) IsUnlocked(id string) bool {
	return t.unlockedTechs[id] || t.unlockedSecrets[id]
}

// TechState computes the lifecycle state of one technology.
func (t *Tree) TechState(id string, l *economy.Ledger, research float64) (State, error) {
	tech, ok := t.techs[id]
	if !ok {
		return Locked, fmt.Errorf("technology %q: %w", id, sim.ErrInvalidReference)
	}
	if t.unlockedTechs[id] {
		return Unlocked, nil
	}
	for _, req := range tech.Requires {
		if !t.unlockedTechs[req] {
			return Locked, nil
		}
	}
	if research < tech.Research || !l.Affordable(tech.Cost) {
		return Locked, nil
	}
	return Available, nil
}

// SecretState computes the lifecycle state of one secret.
func (t *Tree) SecretState(id string, l *economy.Ledger, research float64) (State, error) {
	s, ok := t.secrets[id]
	if !ok {
		return Locked, fmt.Errorf("secret %q: %w", id, sim.ErrInvalidReference)
	}
	if t.unlockedSecrets[id] {
		return Unlocked, nil
	}
	if research < s.Research || !l.Affordable(s.Cost) {
		return Locked, nil
	}
	return Available, nil
}

// Research unlocks one technology: prerequisite edges, research gate,
// atomic cost debit, then a single application of its effects.
func (t *Tree) Research(id string, l *economy.Ledger, research float64, tgt Target) error {
	tech, ok := t.techs[id]
	if !ok {
		return fmt.Errorf("technology %q: %w", id, sim.ErrInvalidReference)
	}
	if t.unlockedTechs[id] {
		return fmt.Errorf("technology %q already researched: %w", id, sim.ErrPrerequisiteUnmet)
	}
	for _, req := range tech.Requires {
		if !t.unlockedTechs[req] {
			return fmt.Errorf("technology %q requires %q: %w", id, req, sim.ErrPrerequisiteUnmet)
		}
	}
	if research < tech.Research {
		return fmt.Errorf("technology %q needs %.0f research progress: %w", id, tech.Research, sim.ErrUnaffordable)
	}
	if err := l.Spend(tech.Cost); err != nil {
		return fmt.Errorf("technology %q: %w", id, err)
	}
	t.unlockedTechs[id] = true
	for _, e := range tech.Effects {
		e.Apply(tgt)
	}
	return nil
}

// Discover unlocks one secret the same way.
func (t *Tree) Discover(id string, l *economy.Ledger, research float64, tgt Target) error {
	s, ok := t.secrets[id]
	if !ok {
		return fmt.Errorf("secret %q: %w", id, sim.ErrInvalidReference)
	}
	if t.unlockedSecrets[id] {
		return fmt.Errorf("secret %q already discovered: %w", id, sim.ErrPrerequisiteUnmet)
	}
	if research < s.Research {
		return fmt.Errorf("secret %q needs %.0f research progress: %w", id, s.Research, sim.ErrUnaffordable)
	}
	if err := l.Spend(s.Cost); err != nil {
		return fmt.Errorf("secret %q: %w", id, err)
	}
	t.unlockedSecrets[id] = true
	s.Effect.Apply(tgt)
	return nil
}

// UnlockedTechs returns unlocked technology ids in registry order.
func (t *Tree) UnlockedTechs() []string {
	var out []string
	for _, id := range t.techOrder {
		if t.unlockedTechs[id] {
			out = append(out, id)
		}
	}
	return out
}

// DiscoveredSecrets returns discovered secret ids in registry order.
func (t *Tree) DiscoveredSecrets() []string {
	var out []string
	for _, id := range t.secretOrder {
		if t.unlockedSecrets[id] {
			out = append(out, id)
		}
	}
	return out
}

// DiscoveredCount returns how many secrets have been discovered.
func (t *Tree) DiscoveredCount() int {
	return len(t.unlockedSecrets)
}

// RestoreUnlocked marks saved unlocks without spending or applying
// anything, then re-applies only the idempotent effects so derived
// modifier layers come back. Persisted layers overwrite afterward.
func (t *Tree) RestoreUnlocked(techs, secrets []string, tgt Target) error {
	for _, id := range techs {
		if _, ok := t.techs[id]; !ok {
			return fmt.Errorf("saved technology %q: %w", id, sim.ErrInvalidReference)
		}
		t.unlockedTechs[id] = true
	}
	for _, id := range secrets {
		if _, ok := t.secrets[id]; !ok {
			return fmt.Errorf("saved secret %q: %w", id, sim.ErrInvalidReference)
		}
		t.unlockedSecrets[id] = true
	}
	t.reapplyIdempotent(tgt)
	return nil
}

func (t *Tree) reapplyIdempotent(tgt Target) {
	for _, id := range t.techOrder {
		if !t.unlockedTechs[id] {
			continue
		}
		for _, e := range t.techs[id].Effects {
			if e.Kind.Idempotent() {
				e.Apply(tgt)
			}
		}
	}
	for _, id := range t.secretOrder {
		if !t.unlockedSecrets[id] {
			continue
		}
		if e := t.secrets[id].Effect; e.Kind.Idempotent() {
			e.Apply(tgt)
		}
	}
}
