package characters

import (
	"fmt"

	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/sim"
)

// QuestEnv is the world snapshot quest conditions read. The engine builds
// it; quests never reach into live state.
type QuestEnv struct {
	ForestHealth     float64
	Biodiversity     float64
	OreStock         float64
	InstrumentStock  float64
	SecretsFound     int
	ResearchProgress float64
}

// Quest is a standing favor: a condition over the world, a relationship
// reward, and grants the engine credits on completion.
type Quest struct {
	ID            string
	Title         string
	Hint          string
	Met           func(QuestEnv) bool
	Relationship  int
	Grants        map[economy.Resource]float64
	ResearchGrant float64
}

var questDefs = map[string]Quest{
	"protect_grove": {
		ID:           "protect_grove",
		Title:        "Protect the Ancient Grove",
		Hint:         "Bring the forest back to flourishing health.",
		Met:          func(e QuestEnv) bool { return e.ForestHealth >= 80 },
		Relationship: 25,
		Grants:       map[economy.Resource]float64{economy.AncientTool: 1},
	},
	"restore_biodiversity": {
		ID:           "restore_biodiversity",
		Title:        "Let the Wild Return",
		Hint:         "Raise biodiversity until the valley hums again.",
		Met:          func(e QuestEnv) bool { return e.Biodiversity >= 70 },
		Relationship: 20,
		Grants:       map[economy.Resource]float64{economy.Herbs: 10},
	},
	"find_rare_ores": {
		ID:           "find_rare_ores",
		Title:        "Prove the Deep Veins",
		Hint:         "Stockpile thirty units of iron, tin, and copper combined.",
		Met:          func(e QuestEnv) bool { return e.OreStock >= 30 },
		Relationship: 20,
		Grants:       map[economy.Resource]float64{economy.Steel: 5},
	},
	"improve_tools": {
		ID:           "improve_tools",
		Title:        "Outfit the Crews",
		Hint:         "Keep ten instruments in the storehouse.",
		Met:          func(e QuestEnv) bool { return e.InstrumentStock >= 10 },
		Relationship: 15,
		Grants:       map[economy.Resource]float64{economy.Rock: 20},
	},
	"explore_ruins": {
		ID:            "explore_ruins",
		Title:         "Walk the Old Halls",
		Hint:          "Uncover at least one of the valley's secrets.",
		Met:           func(e QuestEnv) bool { return e.SecretsFound >= 1 },
		Relationship:  20,
		ResearchGrant: 10,
	},
	"recover_knowledge": {
		ID:           "recover_knowledge",
		Title:        "Recover What Was Written",
		Hint:         "Push research progress past sixty.",
		Met:          func(e QuestEnv) bool { return e.ResearchProgress >= 60 },
		Relationship: 20,
		Grants:       map[economy.Resource]float64{economy.Wine: 15},
	},
}

// QuestByID looks up a quest definition.
func QuestByID(id string) (Quest, bool) {
	q, ok := questDefs[id]
	return q, ok
}

// OpenQuests returns the definitions of the character's open quests.
func (c *Character) OpenQuests() []Quest {
	out := make([]Quest, 0, len(c.Quests))
	for _, id := range c.Quests {
		if q, ok := questDefs[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

// CompleteQuest closes one open quest when its condition holds: the quest
// leaves the character's list and the relationship reward lands. The
// returned quest carries the grants for the engine to credit.
func (c *Character) CompleteQuest(id string, env QuestEnv) (Quest, error) {
	idx := -1
	for i, open := range c.Quests {
		if open == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Quest{}, fmt.Errorf("%s holds no quest %q: %w", c.Name, id, sim.ErrInvalidReference)
	}
	q, ok := questDefs[id]
	if !ok {
		return Quest{}, fmt.Errorf("quest %q: %w", id, sim.ErrInvalidReference)
	}
	if !q.Met(env) {
		return Quest{}, fmt.Errorf("quest %q condition not met: %w", q.Title, sim.ErrPrerequisiteUnmet)
	}

	c.Quests = append(c.Quests[:idx], c.Quests[idx+1:]...)
	c.Relationship = sim.Clamp(c.Relationship+q.Relationship, MinRelationship, MaxRelationship)
	return q, nil
}
