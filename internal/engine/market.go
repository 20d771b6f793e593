// Market wiring: the engine derives the day's price environment and
// routes trades through the ledger. See design doc Section 4.3.
package engine

import (
	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/sim"
)

// Trend drift moves slowly around neutral and stays inside hard rails;
// jitter is the small per-resource daily wobble on top.
const (
	trendAmplitude = 0.3
	trendFloor     = 0.7
	trendCeiling   = 1.3
	noiseAmplitude = 0.04
)

// trendModifier is the slow market drift for a day, dampened once the
// memory crystal is held.
func (e *Engine) trendModifier(day int) float64 {
	drift := 1.0 + trendAmplitude*e.src.TrendDrift(day)
	return sim.Clamp(drift, trendFloor, trendCeiling) * e.Mods.TrendDamp
}

// priceEnv assembles the quoting environment for one resource today.
// Everything in it derives from the seed and the day, so quoting the same
// resource twice on the same day prices identically.
func (e *Engine) priceEnv(r economy.Resource) economy.PriceEnv {
	return economy.PriceEnv{
		EventMod: e.Calendar.MarketModifier(e.Day),
		Trend:    e.trendModifier(e.Day),
		Noise:    1.0 + noiseAmplitude*e.src.Jitter(e.Day, economy.Ordinal(r)),
	}
}

// QuotePrice returns today's smoothed price for one resource.
func (e *Engine) QuotePrice(r economy.Resource) (float64, error) {
	return e.Market.Quote(e.Ledger, r, e.priceEnv(r))
}

// BuyResource purchases amount units on the open market with currency.
func (e *Engine) BuyResource(r economy.Resource, amount float64) error {
	return e.Market.Trade(e.Ledger, r, amount, true, e.priceEnv(r))
}

// SellResource sells amount units on the open market for currency.
func (e *Engine) SellResource(r economy.Resource, amount float64) error {
	return e.Market.Trade(e.Ledger, r, amount, false, e.priceEnv(r))
}
