package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/xetrade/internal/market"
)

func testBook() market.OrderBook {
	return market.OrderBook{
		Bids: []market.Level{
			{Price: 99, Qty: 1},
			{Price: 98, Qty: 2},
		},
		Asks: []market.Level{
			{Price: 100, Qty: 1},
			{Price: 101, Qty: 2},
		},
		TSMillis: 1700000000000,
	}
}

func TestWalkBook_BuyAcrossLevels(t *testing.T) {
	// Consumes all of the 100-level ($100) plus $50 of the 101-level.
	res, err := WalkBook(testBook(), Buy, 150)
	require.NoError(t, err)

	wantFilled := 1 + 50.0/101
	assert.InDelta(t, wantFilled, res.FilledBase, 1e-9)
	assert.InDelta(t, 150/wantFilled, res.AvgPrice, 1e-9)
	assert.InDelta(t, 150, res.SpentQuote, 1e-9)
}

func TestWalkBook_Conservation(t *testing.T) {
	res, err := WalkBook(testBook(), Buy, 150)
	require.NoError(t, err)
	assert.InDelta(t, res.SpentQuote, res.FilledBase*res.AvgPrice, 1e-9)
}

func TestWalkBook_SellUsesBids(t *testing.T) {
	res, err := WalkBook(testBook(), Sell, 99)
	require.NoError(t, err)
	assert.InDelta(t, 99.0, res.AvgPrice, 1e-9)
	assert.InDelta(t, 1.0, res.FilledBase, 1e-9)
}

func TestWalkBook_InsufficientLiquidity(t *testing.T) {
	// Total ask capacity: 100*1 + 101*2 = 302.
	_, err := WalkBook(testBook(), Buy, 1000)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestWalkBook_EmptyBook(t *testing.T) {
	_, err := WalkBook(market.OrderBook{}, Buy, 10)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestWalkBook_BadNotional(t *testing.T) {
	_, err := WalkBook(testBook(), Buy, 0)
	assert.ErrorIs(t, err, ErrBadNotional)
	_, err = WalkBook(testBook(), Buy, -5)
	assert.ErrorIs(t, err, ErrBadNotional)
}

func TestWalkBook_ExactCapacity(t *testing.T) {
	res, err := WalkBook(testBook(), Buy, 302)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, res.FilledBase, 1e-9)
}

func TestPriceImpactPct_Buy(t *testing.T) {
	// Mid = (99+100)/2 = 99.5.
	pct, err := PriceImpactPct(testBook(), Buy, 150)
	require.NoError(t, err)

	filled := 1 + 50.0/101
	avg := 150 / filled
	want := (avg - 99.5) / 99.5 * 100
	assert.InDelta(t, want, pct, 1e-9)
	assert.Positive(t, pct)
}

func TestPriceImpactPct_PropagatesSentinels(t *testing.T) {
	_, err := PriceImpactPct(testBook(), Buy, 1e9)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)

	oneSided := market.OrderBook{Asks: []market.Level{{Price: 100, Qty: 10}}}
	_, err = PriceImpactPct(oneSided, Buy, 10)
	assert.ErrorIs(t, err, market.ErrEmptyBook)
}
