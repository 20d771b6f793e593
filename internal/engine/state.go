// Save-state capture and restore. The persisted form is lossless for
// everything the rules read; purely derived values (prices, production
// modifiers, the mining layer, trend damp) are recomputed on load.
// See design doc Section 6.
package engine

import (
	"fmt"

	"github.com/talgya/steading/internal/characters"
	"github.com/talgya/steading/internal/config"
	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/ecosystem"
	"github.com/talgya/steading/internal/entropy"
	"github.com/talgya/steading/internal/events"
	"github.com/talgya/steading/internal/progression"
	"github.com/talgya/steading/internal/sim"
)

// CharacterState is the persisted slice of one roster figure.
type CharacterState struct {
	ID           characters.ID `json:"id"`
	Relationship int           `json:"relationship"`
	Quests       []string      `json:"quests"`
	Memory       []string      `json:"memory"`
}

// GameState is the persisted form of an Engine as of a completed day.
// The seed and the event calendar ride along so a restored world keeps
// its windows and its future rolls instead of re-rolling them.
type GameState struct {
	Day              int             `json:"day"`
	Seed             int64           `json:"seed"`
	MultiplierMode   int             `json:"multiplier_mode"`
	ResearchProgress float64         `json:"research_progress"`
	ResearchComplete bool            `json:"research_complete"`
	VictoryAchieved  bool            `json:"victory_achieved"`
	VictoryCategory  VictoryCategory `json:"victory_category,omitempty"`
	Happiness        float64         `json:"happiness"`
	EcoPenalty       float64         `json:"eco_industry_penalty"`

	CraftSpeed     float64 `json:"craft_speed_multiplier"`
	ResearchBonus  float64 `json:"research_bonus"`
	FoodProduction float64 `json:"food_production_multiplier"`

	Resources    map[economy.Resource]float64 `json:"resources"`
	StorageUnits int                          `json:"storage_units"`

	Buildings   map[economy.Building]int `json:"buildings"`
	Population  int                      `json:"population"`
	IdleWorkers int                      `json:"idle_workers"`
	Workers     map[economy.Building]int `json:"workers"`

	BiomeHealth  map[ecosystem.Biome]float64 `json:"biome_health"`
	Pollution    float64                     `json:"pollution"`
	Biodiversity float64                     `json:"biodiversity"`

	ResearchedTechs   []string         `json:"researched_techs"`
	DiscoveredSecrets []string         `json:"discovered_secrets"`
	Achievements      []string         `json:"unlocked_achievements"`
	Characters        []CharacterState `json:"characters"`

	Calendar events.Calendar `json:"event_windows"`
}

// Serialize captures the engine into its persisted form.
func (e *Engine) Serialize() GameState {
	st := GameState{
		Day:              e.Day,
		Seed:             e.src.Seed(),
		MultiplierMode:   e.MultiplierMode,
		ResearchProgress: e.ResearchProgress,
		ResearchComplete: e.ResearchComplete,
		VictoryAchieved:  e.VictoryAchieved,
		VictoryCategory:  e.VictoryCategory,
		Happiness:        e.Happiness,
		EcoPenalty:       e.EcoPenalty,
		CraftSpeed:       e.Mods.CraftSpeed,
		ResearchBonus:    e.Mods.ResearchBonus,
		FoodProduction:   e.Mods.FoodProduction,
		Resources:        e.Ledger.Snapshot(),
		StorageUnits:     e.Ledger.StorageUnits,
		Buildings:        copyCounts(e.Buildings),
		Population:       e.Population,
		IdleWorkers:      e.IdleWorkers,
		Workers:          copyCounts(e.Workers),
		BiomeHealth:      make(map[ecosystem.Biome]float64, len(ecosystem.Biomes)),
		Pollution:        e.Eco.Pollution,
		Biodiversity:     e.Eco.Biodiversity,
		Calendar:         e.Calendar,
	}
	st.ResearchedTechs = e.Tree.UnlockedTechs()
	st.DiscoveredSecrets = e.Tree.DiscoveredSecrets()
	st.Achievements = e.UnlockedAchievements()
	for _, b := range ecosystem.Biomes {
		st.BiomeHealth[b] = e.Eco.Health[b]
	}
	for _, c := range e.Roster {
		st.Characters = append(st.Characters, CharacterState{
			ID:           c.ID,
			Relationship: c.Relationship,
			Quests:       append([]string(nil), c.Quests...),
			Memory:       append([]string(nil), c.Memory...),
		})
	}
	return st
}

// Restore rebuilds an engine from a saved state. Any unknown id or
// malformed shape aborts with an error so the caller can start fresh
// instead of running a corrupted world.
func Restore(cfg config.Config, st GameState) (*Engine, error) {
	src := entropy.NewSource(st.Seed)
	e := &Engine{
		Day:              st.Day,
		MultiplierMode:   st.MultiplierMode,
		ResearchProgress: st.ResearchProgress,
		ResearchComplete: st.ResearchComplete,
		VictoryAchieved:  st.VictoryAchieved,
		VictoryCategory:  st.VictoryCategory,
		Happiness:        st.Happiness,
		EcoPenalty:       st.EcoPenalty,
		Population:       st.Population,
		Workers:          make(map[economy.Building]int),
		Buildings:        make(map[economy.Building]int),
		Ledger:           economy.NewLedger(),
		Market:           economy.NewMarket(),
		Eco:              ecosystem.NewModel(),
		Tree:             progression.NewTree(),
		Mods:             progression.NewModifiers(),
		Roster:           characters.Roster(),
		Calendar:         st.Calendar,
		Achievements:     defaultAchievements(),
		cfg:              cfg,
		src:              src,
	}

	if st.MultiplierMode < 0 || st.MultiplierMode >= len(multipliers) {
		return nil, fmt.Errorf("multiplier mode %d: %w", st.MultiplierMode, sim.ErrInvalidReference)
	}
	if st.Population < 1 {
		return nil, fmt.Errorf("population %d: %w", st.Population, sim.ErrInvalidQuantity)
	}

	for r, amount := range st.Resources {
		if err := e.Ledger.SetStock(r, amount); err != nil {
			return nil, err
		}
	}
	if st.StorageUnits < 1 {
		return nil, fmt.Errorf("storage units %d: %w", st.StorageUnits, sim.ErrInvalidQuantity)
	}
	e.Ledger.StorageUnits = st.StorageUnits

	for id, count := range st.Buildings {
		if _, ok := economy.BuildingByID(id); !ok {
			return nil, fmt.Errorf("saved building %q: %w", id, sim.ErrInvalidReference)
		}
		if count < 0 {
			return nil, fmt.Errorf("building count %d for %s: %w", count, id, sim.ErrInvalidQuantity)
		}
		e.Buildings[id] = count
	}
	for id, n := range st.Workers {
		if _, ok := economy.BuildingByID(id); !ok || id == economy.Storehouse {
			return nil, fmt.Errorf("saved workers for %q: %w", id, sim.ErrInvalidReference)
		}
		if n < 0 {
			return nil, fmt.Errorf("worker count %d for %s: %w", n, id, sim.ErrInvalidQuantity)
		}
		e.Workers[id] = n
	}
	if e.totalWorkers() > e.Population {
		return nil, fmt.Errorf("%d workers exceed population %d: %w",
			e.totalWorkers(), e.Population, sim.ErrInvalidQuantity)
	}
	e.IdleWorkers = e.Population - e.totalWorkers()

	for b, h := range st.BiomeHealth {
		if _, ok := e.Eco.Health[b]; !ok {
			return nil, fmt.Errorf("saved biome %q: %w", b, sim.ErrInvalidReference)
		}
		e.Eco.Health[b] = sim.Clamp(h, 0, 100)
	}
	e.Eco.Pollution = st.Pollution
	e.Eco.Biodiversity = st.Biodiversity

	// Re-derive the floor-only modifier layers from the unlocked set,
	// then overwrite the persisted layers with their saved values.
	if err := e.Tree.RestoreUnlocked(st.ResearchedTechs, st.DiscoveredSecrets, e.effectTarget()); err != nil {
		return nil, err
	}
	for _, id := range st.Achievements {
		found := false
		for _, a := range e.Achievements {
			if a.ID == id {
				a.Unlocked = true
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("saved achievement %q: %w", id, sim.ErrInvalidReference)
		}
	}
	e.Mods.CraftSpeed = st.CraftSpeed
	e.Mods.ResearchBonus = st.ResearchBonus
	e.Mods.FoodProduction = st.FoodProduction

	for _, cs := range st.Characters {
		c, err := e.character(cs.ID)
		if err != nil {
			return nil, err
		}
		for _, q := range cs.Quests {
			if _, ok := characters.QuestByID(q); !ok {
				return nil, fmt.Errorf("saved quest %q: %w", q, sim.ErrInvalidReference)
			}
		}
		c.Relationship = sim.Clamp(cs.Relationship, characters.MinRelationship, characters.MaxRelationship)
		c.Quests = append([]string(nil), cs.Quests...)
		c.Memory = append([]string(nil), cs.Memory...)
	}
	return e, nil
}

func copyCounts(src map[economy.Building]int) map[economy.Building]int {
	out := make(map[economy.Building]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
