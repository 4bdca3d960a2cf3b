package venues

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/you/xetrade/internal/market"
	"github.com/you/xetrade/internal/symbols"
)

// Mock is a synthetic venue for demos and tests: it random-walks a per-pair
// reference price and builds plausible books around it. It can also be told
// to fail, to exercise the aggregator's partial-failure path.
type Mock struct {
	mu     sync.Mutex
	rng    *rand.Rand
	prices map[string]float64
	fail   error
}

const mockVolatility = 0.001 // 0.1% per tick

func NewMock() *Mock {
	return &Mock{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		prices: map[string]float64{
			"BTC/USDT":  50000,
			"ETH/USDT":  3000,
			"SOL/USDT":  100,
			"DOGE/USDT": 0.08,
		},
	}
}

// NewSeededMock returns a mock with a fixed random seed for reproducible
// tests.
func NewSeededMock(seed int64) *Mock {
	m := NewMock()
	m.rng = rand.New(rand.NewSource(seed))
	return m
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Caps() Capabilities {
	return Capabilities{Spot: true, L2Book: true, Trading: true}
}

// Fail makes every subsequent call return err (wrapped in a *VenueError).
// Pass nil to recover.
func (m *Mock) Fail(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

// step advances the random walk for a pair and returns the new reference
// price. Caller holds the lock.
func (m *Mock) step(key string) float64 {
	px, ok := m.prices[key]
	if !ok {
		px = 100
	}
	px *= 1 + m.rng.NormFloat64()*mockVolatility
	if px <= 0 {
		px = 0.0001
	}
	m.prices[key] = px
	return px
}

func (m *Mock) BestBidAsk(_ context.Context, pair symbols.Pair) (market.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return market.Quote{}, venueErr(m.Name(), "bookTicker", m.fail)
	}
	px := m.step(pair.String())
	spread := px * (0.0001 + m.rng.Float64()*0.0009)
	return market.Quote{
		Bid:      px - spread/2,
		Ask:      px + spread/2,
		TSMillis: time.Now().UnixMilli(),
	}, nil
}

func (m *Mock) L2Book(_ context.Context, pair symbols.Pair, depth int) (market.OrderBook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return market.OrderBook{}, venueErr(m.Name(), "l2book", m.fail)
	}
	if depth <= 0 {
		return market.OrderBook{}, venueErr(m.Name(), "l2book", errors.New("depth must be > 0"))
	}
	px := m.step(pair.String())
	tick := px * 0.0001

	bids := make([]market.Level, 0, depth)
	asks := make([]market.Level, 0, depth)
	for i := 0; i < depth; i++ {
		qty := 0.1 + m.rng.Float64()*10
		bids = append(bids, market.Level{
			Price: px - tick*float64(i+1),
			Qty:   qty * (1 + float64(i)*0.1),
		})
		asks = append(asks, market.Level{
			Price: px + tick*float64(i+1),
			Qty:   qty,
		})
	}
	return market.Canonicalize(market.OrderBook{
		Bids:     bids,
		Asks:     asks,
		TSMillis: time.Now().UnixMilli(),
	}), nil
}
