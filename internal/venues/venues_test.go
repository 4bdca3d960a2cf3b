package venues

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/you/xetrade/internal/config"
	"github.com/you/xetrade/internal/market"
	"github.com/you/xetrade/internal/symbols"
)

var btcUSDT = symbols.Pair{Base: "BTC", Quote: "USDT"}

func TestBuild(t *testing.T) {
	cfg := &config.Config{}
	vs, err := Build([]string{"binance", "okx", "kucoin", "bitmart", "mock"}, cfg, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, vs, 5)

	names := make([]string, 0, len(vs))
	for _, v := range vs {
		names = append(names, v.Name())
	}
	assert.Equal(t, []string{"binance", "okx", "kucoin", "bitmart", "mock"}, names)
}

func TestBuild_UnknownVenue(t *testing.T) {
	_, err := Build([]string{"binance", "hyperliquid"}, &config.Config{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hyperliquid")
}

func TestCapabilities(t *testing.T) {
	cfg := &config.Config{}
	log := zap.NewNop()

	assert.True(t, NewBinance(cfg, log).Caps().Funding)
	assert.True(t, NewOKX(cfg, log).Caps().Funding)
	assert.False(t, NewKuCoin(cfg, log).Caps().Funding)
	assert.False(t, NewBitmart(cfg, log).Caps().Funding)

	// Funding support is advertised through the capability flag and the
	// narrower interface together.
	var v Venue = NewKuCoin(cfg, log)
	_, isFunding := v.(FundingVenue)
	assert.False(t, isFunding)
	v = NewBinance(cfg, log)
	_, isFunding = v.(FundingVenue)
	assert.True(t, isFunding)
}

func TestVenueError(t *testing.T) {
	inner := errors.New("boom")
	err := venueErr("okx", "ticker", inner)

	var ve *VenueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "okx", ve.Venue)
	assert.Equal(t, "ticker", ve.Op)
	assert.ErrorIs(t, err, inner)
}

func TestMock_QuoteAndBook(t *testing.T) {
	m := NewSeededMock(42)
	ctx := context.Background()

	q, err := m.BestBidAsk(ctx, btcUSDT)
	require.NoError(t, err)
	assert.Less(t, q.Bid, q.Ask)
	assert.Positive(t, q.Bid)

	book, err := m.L2Book(ctx, btcUSDT, 20)
	require.NoError(t, err)
	assert.Len(t, book.Bids, 20)
	assert.Len(t, book.Asks, 20)

	// Canonical ordering.
	assert.Equal(t, book, market.Canonicalize(book))
	bb, err := book.BestBid()
	require.NoError(t, err)
	ba, err := book.BestAsk()
	require.NoError(t, err)
	assert.Less(t, bb, ba)
}

func TestMock_FailureInjection(t *testing.T) {
	m := NewSeededMock(1)
	boom := errors.New("venue down")
	m.Fail(boom)

	_, err := m.BestBidAsk(context.Background(), btcUSDT)
	var ve *VenueError
	require.ErrorAs(t, err, &ve)
	assert.ErrorIs(t, err, boom)

	m.Fail(nil)
	_, err = m.BestBidAsk(context.Background(), btcUSDT)
	assert.NoError(t, err)
}

func TestBookCache(t *testing.T) {
	bc := NewBookCache()
	_, ok := bc.Get("BTCUSDT")
	assert.False(t, ok)

	now := time.Now()
	bc.Set("BTCUSDT", 100, 101, now)
	q, ok := bc.Get("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, 100.0, q.Bid)
	assert.Equal(t, 101.0, q.Ask)
	assert.True(t, bc.Has("BTCUSDT"))

	// Half-formed entries do not count as quotes.
	bc.Set("ETHUSDT", 0, 3000, now)
	assert.False(t, bc.Has("ETHUSDT"))
}

func TestCachedBinance(t *testing.T) {
	bc := NewBookCache()
	cv := NewCachedBinance(bc)

	_, err := cv.BestBidAsk(context.Background(), btcUSDT)
	var ve *VenueError
	require.ErrorAs(t, err, &ve)

	bc.Set("BTCUSDT", 100, 101, time.Now())
	q, err := cv.BestBidAsk(context.Background(), btcUSDT)
	require.NoError(t, err)
	assert.Equal(t, 100.0, q.Bid)

	_, err = cv.L2Book(context.Background(), btcUSDT, 10)
	assert.Error(t, err)
}
