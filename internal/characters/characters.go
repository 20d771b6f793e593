// Package characters models the settlement's notable figures: bounded
// affinity scores, trait-conditioned reactions with memories, tiered
// standing, personal trade offers, and completable quests.
// See design doc Section 4.5.
package characters

import (
	"fmt"
	"strings"

	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/sim"
)

// ID identifies one notable figure.
type ID string

const (
	ForestElder     ID = "forest_elder"
	MountainMaster  ID = "mountain_master"
	KnowledgeKeeper ID = "knowledge_keeper"
)

// Trait names used by reaction conditioning.
const (
	TraitEnvironmentalist = "environmentalist"
	TraitScholar          = "scholar"
	TraitBlacksmith       = "blacksmith"
)

// Affinity bounds and thresholds.
const (
	MinRelationship = -100
	MaxRelationship = 100

	// TradeThreshold is the standing a character requires before opening
	// their offers; LoyalThreshold earns the loyalty discount.
	TradeThreshold = 20
	LoyalThreshold = 60

	loyalDiscount = 0.98
	talkGain      = 5
	talkCeiling   = 80
	tradeGoodwill = 2
)

// Character is one notable figure. Relationship is the player-keyed
// affinity; Memory is an append-only record of what the player did.
type Character struct {
	ID           ID
	Name         string
	Description  string
	Traits       []string
	Skills       map[string]int
	Relationship int
	Memory       []string
	Quests       []string
}

// Roster builds the three figures at their day-zero standing.
func Roster() []*Character {
	return []*Character{
		{
			ID:           ForestElder,
			Name:         "Forest Elder",
			Description:  "Keeper of the old groves, slow to trust an axe.",
			Traits:       []string{TraitEnvironmentalist, "wise", "patient"},
			Skills:       map[string]int{"wisdom": 8, "ecology": 9, "diplomacy": 7},
			Relationship: 50,
			Quests:       []string{"protect_grove", "restore_biodiversity"},
		},
		{
			ID:           MountainMaster,
			Name:         "Mountain Master",
			Description:  "Runs the deep shafts and respects results over words.",
			Traits:       []string{"pragmatic", TraitBlacksmith, "progressive"},
			Skills:       map[string]int{"mining": 9, "crafting": 7, "strength": 8},
			Relationship: 30,
			Quests:       []string{"find_rare_ores", "improve_tools"},
		},
		{
			ID:           KnowledgeKeeper,
			Name:         "Knowledge Keeper",
			Description:  "Guards what is written and trades in what is not.",
			Traits:       []string{TraitScholar, "curious", "traditionalist"},
			Skills:       map[string]int{"knowledge": 10, "research": 8, "medicine": 6},
			Relationship: 40,
			Quests:       []string{"explore_ruins", "recover_knowledge"},
		},
	}
}

// actionImpact is the fixed reaction table. Actions missing here score
// zero before trait conditioning.
var actionImpact = map[string]int{
	"deforestation":     -25,
	"build_sawmill":     -10,
	"build_herbalist":   15,
	"research_ecology":  20,
	"pollute_river":     -30,
	"cleanup_pollution": 25,
	"build_forge":       10,
}

// HasTrait reports whether the character carries a trait.
func (c *Character) HasTrait(trait string) bool {
	for _, t := range c.Traits {
		if t == trait {
			return true
		}
	}
	return false
}

// ReactToAction applies the trait-conditioned impact of a player action
// and records grudges or gratitude in memory.
func (c *Character) ReactToAction(action string) {
	impact := actionImpact[action]
	if c.HasTrait(TraitEnvironmentalist) && strings.Contains(action, "deforest") {
		impact *= 2
		c.Memory = append(c.Memory, "player_destroyed_nature")
	}
	if c.HasTrait(TraitBlacksmith) && strings.Contains(action, "build_forge") {
		impact += 20
		c.Memory = append(c.Memory, "player_built_forge")
	}
	c.Relationship = sim.Clamp(c.Relationship+impact, MinRelationship, MaxRelationship)
}

// Tier is the named standing bucket.
type Tier string

const (
	TierAdores     Tier = "adores you"
	TierRespects   Tier = "respects you"
	TierFriendly   Tier = "friendly"
	TierNeutral    Tier = "neutral"
	TierWary       Tier = "wary"
	TierDispleased Tier = "displeased"
	TierHostile    Tier = "hostile"
	TierHateful    Tier = "hateful"
)

// Tier buckets the relationship score.
func (c *Character) Tier() Tier {
	switch r := c.Relationship; {
	case r >= 80:
		return TierAdores
	case r >= 60:
		return TierRespects
	case r >= 40:
		return TierFriendly
	case r >= 20:
		return TierNeutral
	case r >= 0:
		return TierWary
	case r >= -20:
		return TierDispleased
	case r >= -40:
		return TierHostile
	}
	return TierHateful
}

// Talk is a friendly exchange. It warms the relationship a little until
// the character already adores the player.
func (c *Character) Talk() string {
	if c.Relationship < talkCeiling {
		c.Relationship = sim.Clamp(c.Relationship+talkGain, MinRelationship, MaxRelationship)
	}
	return c.greeting()
}

func (c *Character) greeting() string {
	switch c.Tier() {
	case TierAdores, TierRespects:
		return fmt.Sprintf("%s greets you warmly.", c.Name)
	case TierFriendly, TierNeutral:
		return fmt.Sprintf("%s nods as you approach.", c.Name)
	case TierWary, TierDispleased:
		return fmt.Sprintf("%s eyes you with suspicion.", c.Name)
	}
	return fmt.Sprintf("%s turns away from you.", c.Name)
}

// TradeOffer is one line of a character's personal price list. PriceMult
// scales the market quote; the charge matches the display exactly.
type TradeOffer struct {
	Resource  economy.Resource
	PriceMult float64
}

var tradeOffers = map[ID][]TradeOffer{
	ForestElder: {
		{Resource: economy.Wood, PriceMult: 0.85},
		{Resource: economy.Herbs, PriceMult: 1.25},
	},
	MountainMaster: {
		{Resource: economy.Rock, PriceMult: 0.75},
		{Resource: economy.Instrument, PriceMult: 1.45},
	},
	KnowledgeKeeper: {
		{Resource: economy.Food, PriceMult: 1.1},
		{Resource: economy.AncientTool, PriceMult: 3.2},
	},
}

// Offers returns the character's price list, gated on standing.
func (c *Character) Offers() ([]TradeOffer, error) {
	if c.Relationship < TradeThreshold {
		return nil, fmt.Errorf("%s will not trade at standing %d: %w",
			c.Name, c.Relationship, sim.ErrPrerequisiteUnmet)
	}
	offers := tradeOffers[c.ID]
	out := make([]TradeOffer, len(offers))
	copy(out, offers)
	return out, nil
}

// OfferMult returns the effective price multiplier for one offer,
// including the loyalty discount.
func (c *Character) OfferMult(offer TradeOffer) float64 {
	mult := offer.PriceMult
	if c.Relationship >= LoyalThreshold {
		mult *= loyalDiscount
	}
	return mult
}

// RecordTrade warms the relationship after a completed trade.
func (c *Character) RecordTrade() {
	c.Relationship = sim.Clamp(c.Relationship+tradeGoodwill, MinRelationship, MaxRelationship)
}
