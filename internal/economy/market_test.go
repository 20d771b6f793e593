package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/steading/internal/sim"
)

func neutralEnv() PriceEnv {
	return PriceEnv{EventMod: 1, Trend: 1, Noise: 1}
}

func TestQuoteScarcitySpike(t *testing.T) {
	m := NewMarket()
	l := NewLedger()

	// Steel stock is 0, far under 15% of capacity.
	price, err := m.Quote(l, Steel, neutralEnv())
	require.NoError(t, err)
	assert.InDelta(t, 8.0*1.9, price, 1e-9)
}

func TestQuoteGlutDiscount(t *testing.T) {
	m := NewMarket()
	l := NewLedger()
	require.NoError(t, l.Adjust(Wood, 500)) // clamps to full capacity

	price, err := m.Quote(l, Wood, neutralEnv())
	require.NoError(t, err)
	assert.InDelta(t, 1.0*0.6, price, 1e-9)
}

func TestQuoteNeutralBand(t *testing.T) {
	m := NewMarket()
	l := NewLedger()
	require.NoError(t, l.Adjust(Wood, 52.5)) // 62.5 of 125 = 50%

	price, err := m.Quote(l, Wood, neutralEnv())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, price, 1e-9)
}

func TestQuoteCurrencyUsesWiderCapacity(t *testing.T) {
	m := NewMarket()
	l := NewLedger()
	require.NoError(t, l.Adjust(Wine, 490)) // 500 of 1250 = 40%, neutral

	price, err := m.Quote(l, Wine, neutralEnv())
	require.NoError(t, err)
	assert.InDelta(t, 2.0, price, 1e-9)
}

func TestQuoteNeverBelowFloor(t *testing.T) {
	m := NewMarket()
	l := NewLedger()
	require.NoError(t, l.Adjust(Water, 500))

	env := PriceEnv{EventMod: 0.01, Trend: 0.7, Noise: 0.96}
	for i := 0; i < 25; i++ {
		price, err := m.Quote(l, Water, env)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, price, 0.1)
	}
}

func TestQuoteUnknownResource(t *testing.T) {
	m := NewMarket()
	l := NewLedger()

	_, err := m.Quote(l, Resource("unobtainium"), neutralEnv())
	assert.ErrorIs(t, err, sim.ErrInvalidReference)
}

func TestQuoteSmoothsTowardHistory(t *testing.T) {
	m := NewMarket()
	l := NewLedger()

	// Build history at the scarcity price, then flood the stock. The
	// first post-glut quote sits between the glut price and the mean of
	// the window, not at the glut price itself.
	for i := 0; i < 10; i++ {
		_, err := m.Quote(l, Iron, neutralEnv())
		require.NoError(t, err)
	}
	require.NoError(t, l.Adjust(Iron, 500))

	price, err := m.Quote(l, Iron, neutralEnv())
	require.NoError(t, err)
	glut := 3.5 * 0.6
	assert.Greater(t, price, glut)
	assert.Less(t, price, 3.5*1.9)
}

func TestBuyDebitsCurrencyAndCreditsStock(t *testing.T) {
	m := NewMarket()
	l := NewLedger()
	require.NoError(t, l.Adjust(Wine, 990)) // 1000 wine

	require.NoError(t, m.Trade(l, Rock, 4, true, neutralEnv()))
	assert.Equal(t, 14.0, l.Stock(Rock))
	assert.Less(t, l.Stock(Wine), 1000.0)
}

func TestBuyUnaffordable(t *testing.T) {
	m := NewMarket()
	l := NewLedger()

	// 10 wine cannot cover 100 steel at scarcity prices.
	err := m.Trade(l, Steel, 100, true, neutralEnv())
	require.ErrorIs(t, err, sim.ErrUnaffordable)
	assert.Equal(t, 10.0, l.Stock(Wine), "failed buy must not touch the currency")
	assert.Equal(t, 0.0, l.Stock(Steel))
}

func TestSellCreditsCurrency(t *testing.T) {
	m := NewMarket()
	l := NewLedger()

	wineBefore := l.Stock(Wine)
	require.NoError(t, m.Trade(l, Wood, 5, false, neutralEnv()))
	assert.Equal(t, 5.0, l.Stock(Wood))
	assert.Greater(t, l.Stock(Wine), wineBefore)
}

func TestSellMoreThanStock(t *testing.T) {
	m := NewMarket()
	l := NewLedger()

	err := m.Trade(l, Wood, 50, false, neutralEnv())
	require.ErrorIs(t, err, sim.ErrUnaffordable)
	assert.Equal(t, 10.0, l.Stock(Wood))
	assert.Equal(t, 10.0, l.Stock(Wine))
}

func TestTradeRejectsBadAmounts(t *testing.T) {
	m := NewMarket()
	l := NewLedger()

	assert.ErrorIs(t, m.Trade(l, Wood, 0, true, neutralEnv()), sim.ErrInvalidQuantity)
	assert.ErrorIs(t, m.Trade(l, Wood, -3, false, neutralEnv()), sim.ErrInvalidQuantity)
	assert.Equal(t, 10.0, l.Stock(Wood))
}

func TestTradeAtScalesCharge(t *testing.T) {
	l1 := NewLedger()
	l2 := NewLedger()
	require.NoError(t, l1.Adjust(Wine, 990))
	require.NoError(t, l2.Adjust(Wine, 990))

	require.NoError(t, NewMarket().TradeAt(l1, Rock, 2, true, 1.0, neutralEnv()))
	require.NoError(t, NewMarket().TradeAt(l2, Rock, 2, true, 0.75, neutralEnv()))

	paid1 := 1000 - l1.Stock(Wine)
	paid2 := 1000 - l2.Stock(Wine)
	assert.InDelta(t, paid1*0.75, paid2, 1e-9)
}

func TestBuyCreditClampsAtCapacity(t *testing.T) {
	m := NewMarket()
	l := NewLedger()
	require.NoError(t, l.Adjust(Wine, 99990))
	require.NoError(t, l.Adjust(Wood, 110)) // 120 of 125

	require.NoError(t, m.Trade(l, Wood, 50, true, neutralEnv()))
	assert.Equal(t, l.Capacity(), l.Stock(Wood), "overflow is forfeited, not refunded")
}
