// Package economy defines the resource registry, the capped stock ledger,
// and the market that prices and executes trades. Wine is the currency:
// it mediates every trade and is the one stock exempt from storage caps.
// See design doc Section 4.
package economy

// Resource identifies a storable or tradeable good.
type Resource string

const (
	Wood             Resource = "wood"
	Wine             Resource = "wine"
	Rock             Resource = "rock"
	Food             Resource = "food"
	Water            Resource = "water"
	Coal             Resource = "coal"
	Steel            Resource = "steel"
	Bronze           Resource = "bronze"
	Instrument       Resource = "instrument"
	Sand             Resource = "sand"
	Clay             Resource = "clay"
	Herbs            Resource = "herbs"
	Iron             Resource = "iron"
	Tin              Resource = "tin"
	Copper           Resource = "copper"
	Nickel           Resource = "nickel"
	Lead             Resource = "lead"
	Sulfur           Resource = "sulfur"
	Salt             Resource = "salt"
	SulfuricAcid     Resource = "sulfuric_acid"
	Chlorine         Resource = "chlorine"
	AncientTool      Resource = "ancient_tool"
	BuilderMaterials Resource = "builder_materials"
)

// Currency is the stock that pays for trades and is never capped.
const Currency = Wine

// All lists every registered resource in stable display order.
var All = []Resource{
	Wood, Wine, Rock, Food, Water, Coal, Steel, Bronze, Instrument,
	Sand, Clay, Herbs, Iron, Tin, Copper, Nickel, Lead, Sulfur, Salt,
	SulfuricAcid, Chlorine, AncientTool, BuilderMaterials,
}

// basePrices anchors the market price of each resource. Resources missing
// here (builder materials) price at the default anchor of 1.0.
var basePrices = map[Resource]float64{
	Wood:         1.0,
	Wine:         2.0,
	Rock:         1.5,
	Food:         1.0,
	Water:        0.5,
	Coal:         3.0,
	Steel:        8.0,
	Bronze:       6.0,
	Instrument:   12.0,
	Sand:         0.8,
	Clay:         0.9,
	Herbs:        2.5,
	Iron:         3.5,
	Tin:          3.0,
	Copper:       3.0,
	Nickel:       3.5,
	Lead:         2.5,
	Sulfur:       1.4,
	Salt:         0.7,
	SulfuricAcid: 5.0,
	Chlorine:     4.0,
	AncientTool:  40.0,
}

var ordinals = func() map[Resource]int {
	m := make(map[Resource]int, len(All))
	for i, r := range All {
		m[r] = i
	}
	return m
}()

// Known reports whether id names a registered resource.
func Known(id Resource) bool {
	_, ok := ordinals[id]
	return ok
}

// Ordinal returns a stable small integer for a registered resource, used
// to key per-resource noise channels.
func Ordinal(r Resource) int {
	return ordinals[r]
}

// BasePrice returns the production-cost anchor for a resource.
func BasePrice(r Resource) float64 {
	if p, ok := basePrices[r]; ok {
		return p
	}
	return 1.0
}
