package economy

import (
	"fmt"

	"github.com/talgya/steading/internal/sim"
)

const (
	priceFloor   = 0.1
	historyLimit = 20

	// The currency circulates instead of sitting in the storehouse, so
	// its saturation is judged against a much larger effective capacity.
	currencyCapacityFactor = 10
)

// PriceEnv carries the day-scoped modifiers the engine derives before
// asking for a quote: the scheduled-event modifier, the slow trend drift,
// and the per-resource jitter. All three are pure functions of the world
// seed and the day, so quoting is stable within a day and across restores.
type PriceEnv struct {
	EventMod float64
	Trend    float64
	Noise    float64
}

// Market prices resources against the ledger and executes trades. Prices
// are derived, not stored: only the bounded quote history carries over
// between calls, and it rebuilds naturally after a restore.
type Market struct {
	history map[Resource][]float64
}

// NewMarket returns an empty-history market.
func NewMarket() *Market {
	return &Market{history: make(map[Resource][]float64, len(All))}
}

// saturation judges stock pressure against effective capacity. Glut
// crushes the price, scarcity spikes it.
func saturation(l *Ledger, r Resource) float64 {
	capacity := l.Capacity()
	if r == Currency {
		capacity *= currencyCapacityFactor
	}
	if capacity < 1 {
		capacity = 1
	}
	ratio := l.Stock(r) / capacity
	switch {
	case ratio > 0.9:
		return 0.6
	case ratio < 0.15:
		return 1.9
	case ratio < 0.3:
		return 1.3
	default:
		return 1.0
	}
}

// Quote returns the smoothed price of one resource: the instantaneous
// price averaged with the recent history mean. Every quote appends to the
// history window and evicts beyond the limit.
func (m *Market) Quote(l *Ledger, r Resource, env PriceEnv) (float64, error) {
	if !Known(r) {
		return 0, fmt.Errorf("quote %q: %w", r, sim.ErrInvalidReference)
	}
	price := BasePrice(r) * saturation(l, r) * env.EventMod * env.Trend * env.Noise
	if price < priceFloor {
		price = priceFloor
	}

	h := append(m.history[r], price)
	if len(h) > historyLimit {
		h = h[len(h)-historyLimit:]
	}
	m.history[r] = h

	var sum float64
	for _, p := range h {
		sum += p
	}
	return (price + sum/float64(len(h))) / 2, nil
}

// Trade executes a buy or sell of amount units at the quoted price. A
// rejected trade leaves both stocks untouched.
func (m *Market) Trade(l *Ledger, r Resource, amount float64, buying bool, env PriceEnv) error {
	return m.TradeAt(l, r, amount, buying, 1.0, env)
}

// TradeAt executes a trade at the quoted price scaled by priceMult, so a
// character's offer charges exactly what it displays.
func (m *Market) TradeAt(l *Ledger, r Resource, amount float64, buying bool, priceMult float64, env PriceEnv) error {
	if amount <= 0 {
		return fmt.Errorf("trade %g %s: %w", amount, r, sim.ErrInvalidQuantity)
	}
	price, err := m.Quote(l, r, env)
	if err != nil {
		return err
	}
	total := price * priceMult * amount

	if buying {
		if l.Stock(Currency) < total {
			return fmt.Errorf("buy %g %s for %.2f %s: %w", amount, r, total, Currency, sim.ErrUnaffordable)
		}
		l.Adjust(Currency, -total)
		l.Adjust(r, amount)
		return nil
	}

	if l.Stock(r) < amount {
		return fmt.Errorf("sell %g %s with %g in stock: %w", amount, r, l.Stock(r), sim.ErrUnaffordable)
	}
	l.Adjust(r, -amount)
	l.Adjust(Currency, total)
	return nil
}
