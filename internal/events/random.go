package events

import (
	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/entropy"
)

// DailyChance is the probability that a random event fires on a day.
const DailyChance = 0.12

// RandomEvent is an immediate occurrence applying resource deltas; the
// wildfire additionally burns the forest biome.
type RandomEvent struct {
	Name         string
	Deltas       map[economy.Resource]float64
	ForestDamage float64
}

// table is the fixed pool a daily roll picks from uniformly.
var table = []RandomEvent{
	{
		Name:   "Soaking rains lift the harvest",
		Deltas: map[economy.Resource]float64{economy.Food: 8},
	},
	{
		Name:   "A storm batters the settlement",
		Deltas: map[economy.Resource]float64{economy.Wood: -5, economy.Rock: -4},
	},
	{
		Name:   "A trade caravan passes through",
		Deltas: map[economy.Resource]float64{economy.Wine: 14},
	},
	{
		Name:         "Wildfire in the woods",
		Deltas:       map[economy.Resource]float64{economy.Wood: -10, economy.Food: -4},
		ForestDamage: 5,
	},
	{
		Name:   "Prospectors strike a new ore deposit",
		Deltas: map[economy.Resource]float64{economy.Iron: 6, economy.Coal: 4},
	},
}

// Roll consumes one chance roll and, when it hits, one pick roll.
func Roll(src *entropy.Source) (RandomEvent, bool) {
	if src.Float() >= DailyChance {
		return RandomEvent{}, false
	}
	return table[src.Pick(len(table))], true
}
