package economy

import (
	"fmt"
	"math"

	"github.com/talgya/steading/internal/sim"
)

// Storage capacity: a fixed base plus a fixed amount per storehouse unit.
const (
	StorageBase    = 50.0
	StoragePerUnit = 75.0
)

// Ledger holds the settlement's stocks and its storehouse count. Credits
// to non-currency stocks clamp at capacity; debits floor at zero, and
// callers pre-check affordability so a debit never overdraws. Research
// progress is a scalar owned by the engine, never a ledger entry.
type Ledger struct {
	stocks       map[Resource]float64
	StorageUnits int
}

// NewLedger returns a ledger with day-zero stocks and one storehouse.
func NewLedger() *Ledger {
	stocks := make(map[Resource]float64, len(All))
	for _, r := range All {
		stocks[r] = 0
	}
	stocks[Wood] = 10
	stocks[Wine] = 10
	stocks[Rock] = 10
	stocks[Food] = 12
	return &Ledger{stocks: stocks, StorageUnits: 1}
}

// Capacity returns the storage cap applied to non-currency stocks.
func (l *Ledger) Capacity() float64 {
	return StorageBase + StoragePerUnit*float64(l.StorageUnits)
}

// Stock returns the current amount of a resource. Unknown ids read as 0.
func (l *Ledger) Stock(r Resource) float64 {
	return l.stocks[r]
}

// Adjust applies a delta to one stock. Positive deltas on non-currency
// resources clamp to capacity; negative deltas floor at zero.
func (l *Ledger) Adjust(r Resource, delta float64) error {
	if !Known(r) {
		return fmt.Errorf("adjust %q: %w", r, sim.ErrInvalidReference)
	}
	next := l.stocks[r] + delta
	if delta > 0 && r != Currency {
		next = math.Min(next, l.Capacity())
	}
	l.stocks[r] = math.Max(next, 0)
	return nil
}

// SetStock overwrites one stock without cap or floor checks. Meant for
// restoring a saved world, not for play.
func (l *Ledger) SetStock(r Resource, amount float64) error {
	if !Known(r) {
		return fmt.Errorf("set %q: %w", r, sim.ErrInvalidReference)
	}
	l.stocks[r] = amount
	return nil
}

// Affordable reports whether every stock covers its cost entry.
func (l *Ledger) Affordable(cost map[Resource]float64) bool {
	for r, amt := range cost {
		if l.stocks[r] < amt {
			return false
		}
	}
	return true
}

// Spend debits a full cost map. Callers check Affordable first; Spend is
// all-or-nothing only because of that contract.
func (l *Ledger) Spend(cost map[Resource]float64) error {
	if !l.Affordable(cost) {
		return fmt.Errorf("spend: %w", sim.ErrUnaffordable)
	}
	for r, amt := range cost {
		if err := l.Adjust(r, -amt); err != nil {
			return err
		}
	}
	return nil
}

// TotalNonCurrency sums every stock except the currency.
func (l *Ledger) TotalNonCurrency() float64 {
	var total float64
	for r, amt := range l.stocks {
		if r != Currency {
			total += amt
		}
	}
	return total
}

// Snapshot returns a copy of all stocks keyed by resource.
func (l *Ledger) Snapshot() map[Resource]float64 {
	out := make(map[Resource]float64, len(l.stocks))
	for r, amt := range l.stocks {
		out[r] = amt
	}
	return out
}
