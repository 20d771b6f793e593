// Extraction actions, construction, worker assignment, and crafting.
// See design doc Section 4.6.
package engine

import (
	"fmt"

	"github.com/talgya/steading/internal/characters"
	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/sim"
)

// MiningAction is one direct-extraction choice.
type MiningAction struct {
	ID     int
	Name   string
	Yields map[economy.Resource]float64
}

// MiningActions is the fixed action list in menu order.
var MiningActions = []MiningAction{
	{ID: 1, Name: "Fell timber", Yields: map[economy.Resource]float64{economy.Wood: 5, economy.Wine: 1}},
	{ID: 2, Name: "Work the vineyard", Yields: map[economy.Resource]float64{economy.Wood: 1, economy.Wine: 3}},
	{ID: 3, Name: "Quarry stone", Yields: map[economy.Resource]float64{economy.Rock: 3}},
	{ID: 4, Name: "Tend the fields", Yields: map[economy.Resource]float64{economy.Food: 3, economy.Water: 3}},
	{ID: 5, Name: "Dig sand", Yields: map[economy.Resource]float64{economy.Sand: 3}},
	{ID: 6, Name: "Cut clay", Yields: map[economy.Resource]float64{economy.Clay: 3}},
}

func miningActionByID(id int) (MiningAction, bool) {
	for _, a := range MiningActions {
		if a.ID == id {
			return a, true
		}
	}
	return MiningAction{}, false
}

// Recipe converts input stocks, and sometimes research progress, into
// outputs. Research listed on a recipe is spent, unlike the thresholds
// guarding technologies.
type Recipe struct {
	ID       string
	Name     string
	Inputs   map[economy.Resource]float64
	Research float64
	Outputs  map[economy.Resource]float64
	Unlock   string
}

// Recipes is the crafting registry in menu order.
var Recipes = []Recipe{
	{ID: "coal", Name: "Charcoal",
		Inputs:  map[economy.Resource]float64{economy.Wood: 1},
		Outputs: map[economy.Resource]float64{economy.Coal: 1}},
	{ID: "steel", Name: "Steel",
		Inputs:  map[economy.Resource]float64{economy.Coal: 1, economy.Iron: 1},
		Outputs: map[economy.Resource]float64{economy.Steel: 1.5}},
	{ID: "bronze", Name: "Bronze",
		Inputs:  map[economy.Resource]float64{economy.Copper: 7, economy.Tin: 3, economy.Food: 1},
		Outputs: map[economy.Resource]float64{economy.Bronze: 10}},
	{ID: "acid", Name: "Sulfuric Acid",
		Inputs:  map[economy.Resource]float64{economy.Sulfur: 1, economy.Water: 1},
		Outputs: map[economy.Resource]float64{economy.SulfuricAcid: 0.5}},
	{ID: "chlorine", Name: "Chlorine",
		Inputs:  map[economy.Resource]float64{economy.Salt: 1},
		Outputs: map[economy.Resource]float64{economy.Chlorine: 1}},
	{ID: "instrument", Name: "Instruments",
		Inputs:  map[economy.Resource]float64{economy.Bronze: 1, economy.Wood: 1},
		Outputs: map[economy.Resource]float64{economy.Instrument: 1}},
	{ID: "ancient_tool", Name: "Ancient Tool",
		Inputs:   map[economy.Resource]float64{economy.Instrument: 2, economy.Steel: 1},
		Research: 20,
		Outputs:  map[economy.Resource]float64{economy.AncientTool: 1},
		Unlock:   "forge_of_souls"},
}

func recipeByID(id string) (Recipe, bool) {
	for _, r := range Recipes {
		if r.ID == id {
			return r, true
		}
	}
	return Recipe{}, false
}

// Mine runs one extraction action at the current batch size. Output
// scales with hostility, morale, the mining layer, and ecosystem health,
// and every action also triggers the settlement's passive production.
func (e *Engine) Mine(actionID int) error {
	action, ok := miningActionByID(actionID)
	if !ok {
		return fmt.Errorf("mining action %d: %w", actionID, sim.ErrInvalidReference)
	}

	scale := float64(e.CurrentMultiplier()) *
		e.Calendar.HostilityModifier(e.Day) *
		e.happinessModifier() *
		e.Mods.MiningEfficiency
	eco := e.Eco.ProductionModifier()

	if action.ID == 1 {
		e.reactAll("deforestation", characters.TraitEnvironmentalist)
	}
	for r, amount := range action.Yields {
		e.Ledger.Adjust(r, amount*scale*eco)
	}
	e.produceFromBuildings(eco)
	return nil
}

// produceFromBuildings credits each structure's daily yield: per-unit
// output scaled by ecosystem health and a worker bonus that saturates at
// five workers per structure type.
func (e *Engine) produceFromBuildings(eco float64) {
	for _, def := range economy.BuildingDefs {
		count := e.Buildings[def.ID]
		if count == 0 || len(def.Output) == 0 {
			continue
		}
		workers := e.Workers[def.ID]
		if workers > 5 {
			workers = 5
		}
		bonus := 1.0 + 0.15*float64(workers)
		for r, base := range def.Output {
			amount := base * float64(count) * eco * bonus
			if r == economy.Food {
				amount *= e.Mods.FoodProduction
			}
			e.Ledger.Adjust(r, amount)
		}
	}
}

// Build constructs one structure at the count-scaled cost. Storehouses
// extend storage instead of joining the producing stock.
func (e *Engine) Build(id economy.Building) error {
	def, ok := economy.BuildingByID(id)
	if !ok {
		return fmt.Errorf("building %q: %w", id, sim.ErrInvalidReference)
	}
	cost := economy.ScaledCost(def, e.Buildings[id])
	if err := e.Ledger.Spend(cost); err != nil {
		return fmt.Errorf("build %s: %w", def.Name, err)
	}

	if id == economy.Storehouse {
		e.Ledger.StorageUnits++
		e.recordEvent("construction", "storehouse raised, capacity now %.0f", e.Ledger.Capacity())
		return nil
	}

	e.Buildings[id]++
	switch id {
	case economy.Sawmill:
		e.reactAll("build_sawmill", characters.TraitEnvironmentalist)
	case economy.HerbalistHut:
		e.reactAll("build_herbalist", characters.TraitScholar)
	}
	e.recordEvent("construction", "%s built, now %d", def.Name, e.Buildings[id])
	return nil
}

// AssignWorkers sets the crew of one structure type to n. Growing a crew
// draws only from idle villagers; shrinking always succeeds.
func (e *Engine) AssignWorkers(id economy.Building, n int) error {
	def, ok := economy.BuildingByID(id)
	if !ok || id == economy.Storehouse {
		return fmt.Errorf("assign workers to %q: %w", id, sim.ErrInvalidReference)
	}
	if n < 0 {
		return fmt.Errorf("worker count %d: %w", n, sim.ErrInvalidQuantity)
	}
	if e.Buildings[id] == 0 {
		return fmt.Errorf("no %s built yet: %w", def.Name, sim.ErrPrerequisiteUnmet)
	}
	if delta := n - e.Workers[id]; delta > e.IdleWorkers {
		return fmt.Errorf("need %d idle villagers, have %d: %w", delta, e.IdleWorkers, sim.ErrUnaffordable)
	}

	e.Workers[id] = n
	e.IdleWorkers = e.Population - e.totalWorkers()
	return nil
}

// Craft runs one recipe at the current batch size. The scale applies to
// inputs and outputs alike, every input is checked before anything is
// spent, and recipe research is debited from progress.
func (e *Engine) Craft(recipeID string) error {
	rec, ok := recipeByID(recipeID)
	if !ok {
		return fmt.Errorf("recipe %q: %w", recipeID, sim.ErrInvalidReference)
	}
	if rec.Unlock != "" && !e.Tree.IsUnlocked(rec.Unlock) {
		return fmt.Errorf("recipe %s is still sealed: %w", rec.Name, sim.ErrPrerequisiteUnmet)
	}

	scale := float64(e.CurrentMultiplier()) *
		e.Calendar.HostilityModifier(e.Day) *
		e.Mods.CraftSpeed

	cost := make(map[economy.Resource]float64, len(rec.Inputs))
	for r, amount := range rec.Inputs {
		cost[r] = amount * scale
	}
	if !e.Ledger.Affordable(cost) {
		return fmt.Errorf("craft %s: %w", rec.Name, sim.ErrUnaffordable)
	}
	if e.ResearchProgress < rec.Research*scale {
		return fmt.Errorf("craft %s needs %.1f research progress: %w",
			rec.Name, rec.Research*scale, sim.ErrUnaffordable)
	}

	e.Ledger.Spend(cost)
	e.ResearchProgress -= rec.Research * scale
	for r, amount := range rec.Outputs {
		e.Ledger.Adjust(r, amount*scale)
	}
	return nil
}
