package economy

// Building identifies a constructible structure type.
type Building string

const (
	Sawmill      Building = "les"
	HerbalistHut Building = "sob"
	Quarry       Building = "kam"
	WheatField   Building = "pol"
	SandPit      Building = "pes"
	ClayPit      Building = "gli"
	Storehouse   Building = "store"
)

// BuildingDef describes one structure type. Output is the per-unit daily
// yield; the storehouse has none, it extends storage instead.
type BuildingDef struct {
	ID       Building
	Name     string
	BaseCost map[Resource]float64
	Output   map[Resource]float64
}

// BuildingDefs is the construction registry in stable display order.
var BuildingDefs = []BuildingDef{
	{
		ID:       Sawmill,
		Name:     "Sawmill",
		BaseCost: map[Resource]float64{Wood: 15, Rock: 5},
		Output:   map[Resource]float64{Wood: 2},
	},
	{
		ID:       HerbalistHut,
		Name:     "Herbalist Hut",
		BaseCost: map[Resource]float64{Wood: 10, Rock: 3, Herbs: 2},
		Output:   map[Resource]float64{Wine: 1, Herbs: 0.5},
	},
	{
		ID:       Quarry,
		Name:     "Quarry",
		BaseCost: map[Resource]float64{Wood: 8, Rock: 10},
		Output:   map[Resource]float64{Rock: 2},
	},
	{
		ID:       WheatField,
		Name:     "Wheat Field",
		BaseCost: map[Resource]float64{Wood: 5, Water: 10},
		Output:   map[Resource]float64{Food: 3},
	},
	{
		ID:       SandPit,
		Name:     "Sand Pit",
		BaseCost: map[Resource]float64{Wood: 12, Rock: 8},
		Output:   map[Resource]float64{Sand: 2},
	},
	{
		ID:       ClayPit,
		Name:     "Clay Pit",
		BaseCost: map[Resource]float64{Wood: 10, Rock: 6},
		Output:   map[Resource]float64{Clay: 2},
	},
	{
		ID:       Storehouse,
		Name:     "Storehouse",
		BaseCost: map[Resource]float64{Wood: 20, Rock: 15},
	},
}

var buildingIndex = func() map[Building]BuildingDef {
	m := make(map[Building]BuildingDef, len(BuildingDefs))
	for _, def := range BuildingDefs {
		m[def.ID] = def
	}
	return m
}()

// BuildingByID looks up a structure definition.
func BuildingByID(id Building) (BuildingDef, bool) {
	def, ok := buildingIndex[id]
	return def, ok
}

// ScaledCost returns the construction cost after count scaling: each
// existing unit raises the cost by 10%. The storehouse never scales.
func ScaledCost(def BuildingDef, count int) map[Resource]float64 {
	cost := make(map[Resource]float64, len(def.BaseCost))
	scale := 1.0
	if def.ID != Storehouse {
		scale = 1.0 + 0.1*float64(count)
	}
	for r, amt := range def.BaseCost {
		cost[r] = amt * scale
	}
	return cost
}
