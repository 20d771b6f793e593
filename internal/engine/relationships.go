// Relationship dynamics: conversation, personal trade, and quests with
// the settlement's notable figures. See design doc Section 4.5.
package engine

import (
	"fmt"

	"github.com/talgya/steading/internal/characters"
	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/ecosystem"
	"github.com/talgya/steading/internal/sim"
)

// Talk spends a moment with one character and warms the relationship a
// little, until the figure already adores the player.
func (e *Engine) Talk(id characters.ID) (string, error) {
	c, err := e.character(id)
	if err != nil {
		return "", err
	}
	return c.Talk(), nil
}

// CharacterOffers returns a figure's personal price list, gated on
// standing.
func (e *Engine) CharacterOffers(id characters.ID) ([]characters.TradeOffer, error) {
	c, err := e.character(id)
	if err != nil {
		return nil, err
	}
	return c.Offers()
}

// BuyFromCharacter purchases amount units from one figure's price list.
// The charge is the market quote scaled by the offer's multiplier and any
// loyalty discount, exactly as displayed; a completed trade warms the
// relationship.
func (e *Engine) BuyFromCharacter(id characters.ID, r economy.Resource, amount float64) error {
	c, err := e.character(id)
	if err != nil {
		return err
	}
	offers, err := c.Offers()
	if err != nil {
		return err
	}

	var offer *characters.TradeOffer
	for i := range offers {
		if offers[i].Resource == r {
			offer = &offers[i]
			break
		}
	}
	if offer == nil {
		return fmt.Errorf("%s does not deal in %s: %w", c.Name, r, sim.ErrInvalidReference)
	}

	if err := e.Market.TradeAt(e.Ledger, r, amount, true, c.OfferMult(*offer), e.priceEnv(r)); err != nil {
		return err
	}
	c.RecordTrade()
	e.recordEvent("trade", "bought %g %s from %s", amount, r, c.Name)
	return nil
}

// CompleteQuest closes one of a figure's open quests when its condition
// holds, then credits the grants through the ledger.
func (e *Engine) CompleteQuest(id characters.ID, questID string) error {
	c, err := e.character(id)
	if err != nil {
		return err
	}
	q, err := c.CompleteQuest(questID, e.questEnv())
	if err != nil {
		return err
	}

	for r, amount := range q.Grants {
		e.Ledger.Adjust(r, amount)
	}
	e.ResearchProgress += q.ResearchGrant
	e.recordEvent("quest", "%s completed for %s", q.Title, c.Name)
	return nil
}

// questEnv snapshots the world for quest conditions.
func (e *Engine) questEnv() characters.QuestEnv {
	return characters.QuestEnv{
		ForestHealth: e.Eco.Health[ecosystem.Forest],
		Biodiversity: e.Eco.Biodiversity,
		OreStock: e.Ledger.Stock(economy.Iron) +
			e.Ledger.Stock(economy.Tin) +
			e.Ledger.Stock(economy.Copper),
		InstrumentStock:  e.Ledger.Stock(economy.Instrument),
		SecretsFound:     e.Tree.DiscoveredCount(),
		ResearchProgress: e.ResearchProgress,
	}
}
