// Achievements, victory conditions, and end-of-game legacy scoring.
// See design doc Section 4.7.
package engine

import (
	"log/slog"

	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/progression"
)

// Achievement is a one-shot milestone. Rewards are ordinary unlock
// effects, applied once when the milestone first holds.
type Achievement struct {
	ID       string
	Name     string
	Hint     string
	Unlocked bool
	Rewards  []progression.Effect
}

func defaultAchievements() []*Achievement {
	return []*Achievement{
		{
			ID:   "first_settlement",
			Name: "First Settlement",
			Hint: "Raise three producing structures.",
			Rewards: []progression.Effect{
				{Kind: progression.ResourceGrant, Grant: economy.BuilderMaterials, Value: 10},
			},
		},
		{
			ID:   "master_crafter",
			Name: "Master Crafter",
			Hint: "Hold twenty instruments at once.",
			Rewards: []progression.Effect{
				{Kind: progression.CraftSpeedFloor, Value: 1.2},
			},
		},
		{
			ID:   "ecological_balance",
			Name: "Ecological Balance",
			Hint: "Bring overall ecosystem health to eighty.",
		},
		{
			ID:   "tech_pioneer",
			Name: "Technology Pioneer",
			Hint: "Push research progress past fifty.",
			Rewards: []progression.Effect{
				{Kind: progression.ResearchBonusFloor, Value: 1.5},
			},
		},
	}
}

// checkAchievements evaluates every milestone against the current state.
func (e *Engine) checkAchievements() {
	e.maybeUnlock("first_settlement", e.totalBuildings() >= 3)
	e.maybeUnlock("master_crafter", e.Ledger.Stock(economy.Instrument) >= 20)
	e.maybeUnlock("ecological_balance", e.Eco.OverallHealth() >= 80)
	e.maybeUnlock("tech_pioneer", e.ResearchProgress >= 50)
}

func (e *Engine) maybeUnlock(id string, condition bool) {
	for _, a := range e.Achievements {
		if a.ID != id || a.Unlocked || !condition {
			continue
		}
		a.Unlocked = true
		for _, reward := range a.Rewards {
			reward.Apply(e.effectTarget())
		}
		e.recordEvent("legacy", "achievement earned: %s", a.Name)
		slog.Info("achievement earned", "id", id, "day", e.Day)
		return
	}
}

// UnlockedAchievements returns earned achievement ids in registry order.
func (e *Engine) UnlockedAchievements() []string {
	var out []string
	for _, a := range e.Achievements {
		if a.Unlocked {
			out = append(out, a.ID)
		}
	}
	return out
}

// VictoryCategory names the win conditions in check priority order.
type VictoryCategory string

const (
	VictoryTechnological VictoryCategory = "technological"
	VictoryEconomic      VictoryCategory = "economic"
	VictoryEcological    VictoryCategory = "ecological"
	VictoryCultural      VictoryCategory = "cultural"
)

var victoryOrder = []VictoryCategory{
	VictoryTechnological, VictoryEconomic, VictoryEcological, VictoryCultural,
}

// Victory thresholds.
const (
	economicVictoryStock = 650.0
	ecologicalVictory    = 85.0
	culturalVictory      = 2
)

// checkVictory latches the first satisfied condition. Once achieved, the
// category never changes, whatever happens to the world afterward.
func (e *Engine) checkVictory() bool {
	if e.VictoryAchieved {
		return false
	}
	switch {
	case e.ResearchComplete:
		e.VictoryCategory = VictoryTechnological
	case e.Ledger.TotalNonCurrency() > economicVictoryStock:
		e.VictoryCategory = VictoryEconomic
	case e.Eco.OverallHealth() > ecologicalVictory:
		e.VictoryCategory = VictoryEcological
	case e.Tree.DiscoveredCount() >= culturalVictory:
		e.VictoryCategory = VictoryCultural
	default:
		return false
	}
	e.VictoryAchieved = true
	e.recordEvent("legacy", "victory: %s", e.VictoryCategory)
	slog.Info("victory achieved", "category", e.VictoryCategory, "day", e.Day)
	return true
}

// Legacy is the end-of-game scoring result.
type Legacy struct {
	Category VictoryCategory             `json:"category"`
	Title    string                      `json:"title"`
	Score    float64                     `json:"score"`
	Scores   map[VictoryCategory]float64 `json:"scores"`
}

type legacyTitle struct {
	threshold float64
	title     string
}

var legacyTitles = map[VictoryCategory][]legacyTitle{
	VictoryTechnological: {
		{90, "Grand Innovator"},
		{70, "Technology Leader"},
		{50, "Inventor"},
	},
	VictoryEconomic: {
		{1000, "Trade Baron"},
		{500, "Master of Coin"},
		{200, "Shrewd Trader"},
	},
	VictoryEcological: {
		{85, "Wise Warden"},
		{70, "Friend of the Wild"},
		{50, "Green Builder"},
	},
	VictoryCultural: {
		{80, "Cultural Icon"},
		{60, "Enlightener"},
		{40, "Keeper of Stories"},
	},
}

// FinalLegacy scores the run along every track and names the strongest.
// A healthy ecosystem lifts the economic and cultural tracks.
func (e *Engine) FinalLegacy() Legacy {
	scores := map[VictoryCategory]float64{
		VictoryTechnological: e.ResearchProgress,
		VictoryEconomic: e.Ledger.TotalNonCurrency()*0.1 +
			e.Ledger.Stock(economy.Wine)*0.05,
		VictoryEcological: e.Eco.OverallHealth(),
		VictoryCultural:   float64(len(e.UnlockedAchievements())) * 25,
	}
	if scores[VictoryEcological] > 70 {
		scores[VictoryEconomic] *= 1.2
		scores[VictoryCultural] *= 1.1
	}

	best := victoryOrder[0]
	for _, cat := range victoryOrder[1:] {
		if scores[cat] > scores[best] {
			best = cat
		}
	}

	title := "Survivor"
	for _, t := range legacyTitles[best] {
		if scores[best] >= t.threshold {
			title = t.title
			break
		}
	}
	return Legacy{Category: best, Title: title, Score: scores[best], Scores: scores}
}
