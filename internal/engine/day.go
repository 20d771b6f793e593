// The day cycle. OpenDay runs the environment phases before the player
// acts; CloseDay advances the calendar and settles consumption, morale,
// population, and victory. See design doc Section 4.7.
package engine

import (
	"log/slog"
	"math"

	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/ecosystem"
	"github.com/talgya/steading/internal/events"
)

// Starvation and birth odds, rolled once per closed day.
const (
	starvationChance = 0.1
	birthChance      = 0.12
	birthThreshold   = 70.0
)

// DayReport summarizes what closing a day did.
type DayReport struct {
	Day          int             `json:"day"`
	FoodConsumed float64         `json:"food_consumed"`
	Famine       bool            `json:"famine"`
	Starved      bool            `json:"starved"`
	Born         bool            `json:"born"`
	Happiness    float64         `json:"happiness"`
	Victory      bool            `json:"victory"`
	Category     VictoryCategory `json:"category,omitempty"`
	AutosaveDue  bool            `json:"autosave_due"`
}

// OpenDay runs the environment phases for the current day: the ecosystem
// tick, achievement checks, and the random event roll. It is idempotent
// within a day; the second call reports no event.
func (e *Engine) OpenDay() (events.RandomEvent, bool) {
	if e.dayOpen {
		return events.RandomEvent{}, false
	}
	e.dayOpen = true

	e.Eco.Tick(e.Buildings, e.totalWorkers(), e.EcoPenalty)
	e.checkAchievements()

	ev, ok := events.Roll(e.src)
	if !ok {
		return events.RandomEvent{}, false
	}
	for r, delta := range ev.Deltas {
		e.Ledger.Adjust(r, delta)
	}
	if ev.ForestDamage > 0 {
		e.Eco.Damage(ecosystem.Forest, ev.ForestDamage)
	}
	e.recordEvent("omen", "%s", ev.Name)
	return ev, true
}

// CloseDay advances the calendar and settles the day.
func (e *Engine) CloseDay() DayReport {
	e.Day++
	e.dayOpen = false

	rep := DayReport{Day: e.Day}
	e.settleFood(&rep)
	e.settleMorale()
	e.settleBirths(&rep)
	rep.Happiness = e.Happiness

	if e.checkVictory() {
		rep.Victory = true
		rep.Category = e.VictoryCategory
	}
	rep.AutosaveDue = e.cfg.AutosaveEvery > 0 && e.Day%e.cfg.AutosaveEvery == 0

	slog.Info("day closed",
		"day", e.Day,
		"population", e.Population,
		"happiness", math.Round(e.Happiness*10)/10,
		"eco", math.Round(e.Eco.OverallHealth()*10)/10,
		"food", math.Round(e.Ledger.Stock(economy.Food)*10)/10,
	)
	return rep
}

// settleFood feeds the settlement or takes the famine toll.
func (e *Engine) settleFood(rep *DayReport) {
	need := float64(e.Population) * e.cfg.FoodPerCapita
	stock := e.Ledger.Stock(economy.Food)

	if stock >= need {
		e.Ledger.Adjust(economy.Food, -need)
		e.Happiness = math.Min(100, e.Happiness+0.5)
		rep.FoodConsumed = need
		return
	}

	deficit := need - stock
	rep.FoodConsumed = stock
	rep.Famine = true
	e.Ledger.Adjust(economy.Food, -stock)
	e.Happiness = math.Max(0, e.Happiness-2.5-deficit*0.5)

	if e.src.Float() < starvationChance {
		if e.Population > 1 {
			e.Population--
			e.reconcileWorkers()
			rep.Starved = true
			e.recordEvent("hardship", "a villager was lost to famine")
			slog.Warn("villager starved", "day", e.Day, "population", e.Population)
		}
	}
}

// settleMorale relaxes happiness toward the neutral baseline.
func (e *Engine) settleMorale() {
	decay := e.cfg.HappinessDecay
	if e.Happiness > 50 {
		e.Happiness = math.Max(50, e.Happiness-decay)
	} else if e.Happiness < 50 {
		e.Happiness = math.Min(50, e.Happiness+decay)
	}
}

// settleBirths grows the settlement when morale stays high.
func (e *Engine) settleBirths(rep *DayReport) {
	if e.Happiness >= birthThreshold && e.src.Float() < birthChance {
		e.Population++
		e.IdleWorkers++
		rep.Born = true
		e.recordEvent("hearth", "a child was born")
	}
}

// reconcileWorkers pulls assigned workers back to the fields when the
// population shrinks, so assigned plus idle always equals population.
func (e *Engine) reconcileWorkers() {
	total := e.totalWorkers()
	for _, def := range economy.BuildingDefs {
		if total <= e.Population {
			break
		}
		for e.Workers[def.ID] > 0 && total > e.Population {
			e.Workers[def.ID]--
			total--
		}
	}
	e.IdleWorkers = e.Population - total
}
