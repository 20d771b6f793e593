// Research progress and the unlock wrappers around the progression tree.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/steading/internal/characters"
	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/sim"
)

const researchYieldPerUnit = 0.02

// SacrificeForResearch converts the entire stock of one resource into
// research progress. Completion latches at 100 and immediately counts
// toward victory.
func (e *Engine) SacrificeForResearch(r economy.Resource) (float64, error) {
	if !economy.Known(r) {
		return 0, fmt.Errorf("sacrifice %q: %w", r, sim.ErrInvalidReference)
	}
	stock := e.Ledger.Stock(r)
	if stock <= 0 {
		return 0, fmt.Errorf("no %s to sacrifice: %w", r, sim.ErrUnaffordable)
	}

	gain := stock * researchYieldPerUnit * e.Mods.ResearchBonus
	e.Ledger.Adjust(r, -stock)
	e.ResearchProgress += gain

	if e.ResearchProgress >= 100 && !e.ResearchComplete {
		e.ResearchComplete = true
		e.recordEvent("research", "the great work is complete")
		slog.Info("research complete", "day", e.Day, "progress", e.ResearchProgress)
		e.checkVictory()
	}
	return gain, nil
}

// ResearchTechnology unlocks one node of the technology graph.
func (e *Engine) ResearchTechnology(id string) error {
	err := e.Tree.Research(id, e.Ledger, e.ResearchProgress, e.effectTarget())
	if err != nil {
		return err
	}
	if id == "ecology" {
		e.reactAll("research_ecology", characters.TraitEnvironmentalist)
	}
	e.recordEvent("research", "technology researched: %s", id)
	slog.Info("technology researched", "id", id, "day", e.Day)
	return nil
}

// DiscoverSecret unlocks one lore entry.
func (e *Engine) DiscoverSecret(id string) error {
	err := e.Tree.Discover(id, e.Ledger, e.ResearchProgress, e.effectTarget())
	if err != nil {
		return err
	}
	e.recordEvent("lore", "secret discovered: %s", id)
	slog.Info("secret discovered", "id", id, "day", e.Day)
	return nil
}
