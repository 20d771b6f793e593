// Read models for the console and the HTTP surface.
package engine

import (
	"github.com/talgya/steading/internal/characters"
	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/ecosystem"
)

// Snapshot is the settlement overview presentation layers consume.
type Snapshot struct {
	Day              int              `json:"day"`
	Seed             int64            `json:"seed"`
	Population       int              `json:"population"`
	IdleWorkers      int              `json:"idle_workers"`
	Happiness        float64          `json:"happiness"`
	Multiplier       int              `json:"multiplier"`
	StorageCapacity  float64          `json:"storage_capacity"`
	ResearchProgress float64          `json:"research_progress"`
	ResearchComplete bool             `json:"research_complete"`
	VictoryAchieved  bool             `json:"victory_achieved"`
	VictoryCategory  VictoryCategory  `json:"victory_category,omitempty"`
	Hostility        float64          `json:"hostility"`
	EcoHealth        float64          `json:"eco_health"`
	EcoStatus        ecosystem.Status `json:"eco_status"`
	Pollution        float64          `json:"pollution"`
	Biodiversity     float64          `json:"biodiversity"`
}

// Snapshot assembles the settlement overview for the current day.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Day:              e.Day,
		Seed:             e.src.Seed(),
		Population:       e.Population,
		IdleWorkers:      e.IdleWorkers,
		Happiness:        e.Happiness,
		Multiplier:       e.CurrentMultiplier(),
		StorageCapacity:  e.Ledger.Capacity(),
		ResearchProgress: e.ResearchProgress,
		ResearchComplete: e.ResearchComplete,
		VictoryAchieved:  e.VictoryAchieved,
		VictoryCategory:  e.VictoryCategory,
		Hostility:        e.Calendar.HostilityModifier(e.Day),
		EcoHealth:        e.Eco.OverallHealth(),
		EcoStatus:        e.Eco.Status(),
		Pollution:        e.Eco.Pollution,
		Biodiversity:     e.Eco.Biodiversity,
	}
}

// PriceQuote pairs a resource with its smoothed price and current stock.
type PriceQuote struct {
	Resource economy.Resource `json:"resource"`
	Price    float64          `json:"price"`
	Stock    float64          `json:"stock"`
}

// Prices quotes every registered resource in display order.
func (e *Engine) Prices() []PriceQuote {
	out := make([]PriceQuote, 0, len(economy.All))
	for _, r := range economy.All {
		price, err := e.QuotePrice(r)
		if err != nil {
			continue
		}
		out = append(out, PriceQuote{Resource: r, Price: price, Stock: e.Ledger.Stock(r)})
	}
	return out
}

// CharacterView is the presentation slice of one roster figure.
type CharacterView struct {
	ID           characters.ID   `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Relationship int             `json:"relationship"`
	Tier         characters.Tier `json:"tier"`
	OpenQuests   []string        `json:"open_quests"`
}

// Characters lists the roster for display.
func (e *Engine) Characters() []CharacterView {
	out := make([]CharacterView, 0, len(e.Roster))
	for _, c := range e.Roster {
		out = append(out, CharacterView{
			ID:           c.ID,
			Name:         c.Name,
			Description:  c.Description,
			Relationship: c.Relationship,
			Tier:         c.Tier(),
			OpenQuests:   append([]string(nil), c.Quests...),
		})
	}
	return out
}

// RecentEvents returns up to n of the newest log entries, newest last.
func (e *Engine) RecentEvents(n int) []Event {
	if n <= 0 || n >= len(e.Events) {
		n = len(e.Events)
	}
	return append([]Event(nil), e.Events[len(e.Events)-n:]...)
}
