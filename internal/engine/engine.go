// Package engine owns the settlement simulation: one Engine instance is
// one world, and every rule that moves its state lives behind its
// methods. Days advance in two halves: OpenDay runs the environment
// phases, player actions happen in between, CloseDay settles consumption,
// population, and victory. See design doc Section 4.
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

// multipliers are the batch sizes the player can cycle through for
// extraction and crafting.
var multipliers = [...]int{1, 10, 100}

const maxEventLog = 200

// Event is a notable occurrence recorded during a day-step.
type Event struct {
	Day         int    `json:"day"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Engine holds one world. All methods are single-goroutine: callers that
// share an Engine across goroutines serialize access themselves.
type Engine struct {
	Day              int
	MultiplierMode   int
	ResearchProgress float64
	ResearchComplete bool
	VictoryAchieved  bool
	VictoryCategory  VictoryCategory
	Happiness        float64
	EcoPenalty       float64

	Population  int
	IdleWorkers int
	Workers     map[economy.Building]int
	Buildings   map[economy.Building]int

	Ledger   *economy.Ledger
	Market   *economy.Market
	Eco      *ecosystem.Model
	Tree     *progression.Tree
	Mods     progression.Modifiers
	Roster   []*characters.Character
	Calendar events.Calendar

	Achievements []*Achievement
	Events       []Event

	cfg     config.Config
	src     *entropy.Source
	dayOpen bool
}

// New creates a day-zero world from its tuning. The seed fixes the event
// calendar and the whole roll stream, so equal configs build equal worlds.
func New(cfg config.Config) *Engine {
	src := entropy.NewSource(cfg.Seed)
	e := &Engine{
		Happiness:    50,
		EcoPenalty:   1,
		Population:   cfg.BasePopulation,
		Workers:      make(map[economy.Building]int),
		Buildings:    make(map[economy.Building]int),
		Ledger:       economy.NewLedger(),
		Market:       economy.NewMarket(),
		Eco:          ecosystem.NewModel(),
		Tree:         progression.NewTree(),
		Mods:         progression.NewModifiers(),
		Roster:       characters.Roster(),
		Calendar:     events.NewCalendar(src),
		Achievements: defaultAchievements(),
		cfg:          cfg,
		src:          src,
	}
	e.IdleWorkers = e.Population
	e.applyDifficulty(cfg.Difficulty)
	return e
}

// applyDifficulty shifts the starting conditions. Normal is the baseline.
func (e *Engine) applyDifficulty(d config.Difficulty) {
	switch d {
	case config.Easy:
		e.Ledger.Adjust(economy.Food, 25)
		e.Ledger.Adjust(economy.Wood, 20)
		e.Ledger.Adjust(economy.Wine, 15)
		e.EcoPenalty = 0.8
		e.Happiness += 10
	case config.Hard:
		e.Ledger.Adjust(economy.Food, -5)
		e.EcoPenalty = 1.2
		e.Happiness -= 5
	}
}

// Seed returns the world seed.
func (e *Engine) Seed() int64 {
	return e.src.Seed()
}

// CurrentMultiplier returns the active batch size.
func (e *Engine) CurrentMultiplier() int {
	return multipliers[e.MultiplierMode]
}

// CycleMultiplier advances the batch size to the next step, wrapping.
func (e *Engine) CycleMultiplier() int {
	e.MultiplierMode = (e.MultiplierMode + 1) % len(multipliers)
	return e.CurrentMultiplier()
}

// happinessModifier scales extraction output by morale, within 20% either
// way of neutral.
func (e *Engine) happinessModifier() float64 {
	return sim.Clamp(1.0+(e.Happiness-50)*0.005, 0.8, 1.2)
}

// totalWorkers sums assigned workers across all structures.
func (e *Engine) totalWorkers() int {
	total := 0
	for _, n := range e.Workers {
		total += n
	}
	return total
}

// totalBuildings sums producing structures; storehouses count separately.
func (e *Engine) totalBuildings() int {
	total := 0
	for _, n := range e.Buildings {
		total += n
	}
	return total
}

// effectTarget is the mutation surface unlock effects apply onto.
func (e *Engine) effectTarget() progression.Target {
	return progression.Target{
		Mods:      &e.Mods,
		Ledger:    e.Ledger,
		Happiness: &e.Happiness,
	}
}

// reactAll routes a player action to every roster character carrying the
// trait that cares about it.
func (e *Engine) reactAll(action, trait string) {
	for _, c := range e.Roster {
		if c.HasTrait(trait) {
			c.ReactToAction(action)
		}
	}
}

// recordEvent appends to the bounded event log.
func (e *Engine) recordEvent(category, format string, args ...any) {
	e.Events = append(e.Events, Event{
		Day:         e.Day,
		Description: fmt.Sprintf(format, args...),
		Category:    category,
	})
	if len(e.Events) > maxEventLog {
		e.Events = e.Events[len(e.Events)-maxEventLog:]
	}
}

// character finds a roster member by id.
func (e *Engine) character(id characters.ID) (*characters.Character, error) {
	for _, c := range e.Roster {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("character %q: %w", id, sim.ErrInvalidReference)
}
