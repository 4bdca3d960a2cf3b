package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrambled() OrderBook {
	return OrderBook{
		Bids: []Level{
			{Price: 99, Qty: 1},
			{Price: 101, Qty: 2},
			{Price: 100, Qty: 3},
		},
		Asks: []Level{
			{Price: 104, Qty: 1},
			{Price: 102, Qty: 2},
			{Price: 103, Qty: 3},
		},
		TSMillis: 1700000000000,
	}
}

func TestCanonicalize(t *testing.T) {
	b := Canonicalize(scrambled())
	assert.Equal(t, []Level{{101, 2}, {100, 3}, {99, 1}}, b.Bids)
	assert.Equal(t, []Level{{102, 2}, {103, 3}, {104, 1}}, b.Asks)
	assert.Equal(t, int64(1700000000000), b.TSMillis)
}

func TestCanonicalize_Idempotent(t *testing.T) {
	once := Canonicalize(scrambled())
	twice := Canonicalize(once)
	assert.Equal(t, once, twice)
}

func TestCanonicalize_DoesNotMutateInput(t *testing.T) {
	in := scrambled()
	_ = Canonicalize(in)
	assert.Equal(t, 99.0, in.Bids[0].Price)
}

func TestCanonicalize_CrossedBookPassesThrough(t *testing.T) {
	b := Canonicalize(OrderBook{
		Bids: []Level{{Price: 105, Qty: 1}},
		Asks: []Level{{Price: 104, Qty: 1}},
	})
	bb, err := b.BestBid()
	require.NoError(t, err)
	ba, err := b.BestAsk()
	require.NoError(t, err)
	assert.Greater(t, bb, ba)
}

func TestBestPrices_EmptySides(t *testing.T) {
	var b OrderBook

	_, err := b.BestBid()
	assert.ErrorIs(t, err, ErrEmptyBook)
	_, err = b.BestAsk()
	assert.ErrorIs(t, err, ErrEmptyBook)
	_, err = b.Mid()
	assert.ErrorIs(t, err, ErrEmptyBook)

	// One-sided book still has no mid.
	b.Bids = []Level{{Price: 100, Qty: 1}}
	_, err = b.Mid()
	assert.ErrorIs(t, err, ErrEmptyBook)
}

func TestMid(t *testing.T) {
	b := OrderBook{
		Bids: []Level{{Price: 100, Qty: 1}},
		Asks: []Level{{Price: 102, Qty: 1}},
	}
	mid, err := b.Mid()
	require.NoError(t, err)
	assert.Equal(t, 101.0, mid)
}

func TestToLevels(t *testing.T) {
	got := ToLevels([][2]float64{
		{100, 1}, {0, 5}, {101, 0}, {-1, 2}, {102, -3}, {103, 4},
	})
	assert.Equal(t, []Level{{100, 1}, {103, 4}}, got)
}

func TestQuoteMid(t *testing.T) {
	assert.Equal(t, 100.5, Quote{Bid: 100, Ask: 101}.Mid())
}
