package venues

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/you/xetrade/internal/market"
	"github.com/you/xetrade/internal/symbols"
)

const binanceWsURL = "wss://stream.binance.com:9443/ws"

// Ticker is one bookTicker update off the websocket.
type Ticker struct {
	Symbol string
	Bid    float64
	Ask    float64
	TS     time.Time
}

// WS streams Binance bookTicker updates over a single connection.
type WS struct {
	URL    string
	Dialer *websocket.Dialer
	conn   *websocket.Conn
	mu     sync.Mutex
}

func NewWS(url string) *WS {
	if url == "" {
		url = binanceWsURL
	}
	return &WS{
		URL: strings.TrimRight(url, "/"),
		Dialer: &websocket.Dialer{
			HandshakeTimeout:  15 * time.Second,
			EnableCompression: true,
		},
	}
}

func (w *WS) connect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		return nil
	}
	c, _, err := w.Dialer.DialContext(ctx, w.URL, nil)
	if err != nil {
		return err
	}
	w.conn = c

	_ = w.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	w.conn.SetPingHandler(func(payload string) error {
		_ = w.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return w.conn.WriteControl(websocket.PongMessage, []byte(payload), time.Now().Add(5*time.Second))
	})
	return nil
}

func (w *WS) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		return w.conn.Close()
	}
	return nil
}

// SubscribeBookTicker subscribes to bookTicker for the given venue symbols
// (e.g. "BTCUSDT") and returns a channel of updates. The channel closes when
// the connection drops or ctx is cancelled.
func (w *WS) SubscribeBookTicker(ctx context.Context, symbols []string) (<-chan Ticker, error) {
	if err := w.connect(ctx); err != nil {
		return nil, err
	}

	params := make([]string, 0, len(symbols))
	for _, s := range symbols {
		params = append(params, strings.ToLower(s)+"@bookTicker")
	}
	sub := struct {
		Method string   `json:"method"`
		Params []string `json:"params"`
		ID     int      `json:"id"`
	}{Method: "SUBSCRIBE", Params: params, ID: 1}

	if err := w.conn.WriteJSON(sub); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan Ticker, 1024)

	go func() {
		defer close(out)
		defer w.Close()

		type frame struct {
			ID     *int   `json:"id,omitempty"`
			Symbol string `json:"s"`
			Bid    string `json:"b"`
			Ask    string `json:"a"`
		}

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			var f frame
			if err := w.conn.ReadJSON(&f); err != nil {
				return
			}
			_ = w.conn.SetReadDeadline(time.Now().Add(90 * time.Second))

			// Subscribe ack or anything without a symbol.
			if f.ID != nil || f.Symbol == "" {
				continue
			}

			bid, _ := strconv.ParseFloat(f.Bid, 64)
			ask, _ := strconv.ParseFloat(f.Ask, 64)
			if bid == 0 && ask == 0 {
				continue
			}
			out <- Ticker{Symbol: f.Symbol, Bid: bid, Ask: ask, TS: time.Now()}
		}
	}()

	return out, nil
}

// BookCache holds the latest top-of-book per venue symbol, fed by the
// websocket stream.
type BookCache struct {
	mu     sync.RWMutex
	quotes map[string]market.Quote
}

func NewBookCache() *BookCache {
	return &BookCache{quotes: make(map[string]market.Quote, 64)}
}

func (bc *BookCache) Set(symbol string, bid, ask float64, ts time.Time) {
	bc.mu.Lock()
	bc.quotes[symbol] = market.Quote{Bid: bid, Ask: ask, TSMillis: ts.UnixMilli()}
	bc.mu.Unlock()
}

func (bc *BookCache) Get(symbol string) (market.Quote, bool) {
	bc.mu.RLock()
	q, ok := bc.quotes[symbol]
	bc.mu.RUnlock()
	if !ok || q.Bid == 0 || q.Ask == 0 {
		return market.Quote{}, false
	}
	return q, true
}

func (bc *BookCache) Has(symbol string) bool {
	_, ok := bc.Get(symbol)
	return ok
}

// Feed drains a ticker stream into the cache until ctx is done or the
// stream closes.
func (bc *BookCache) Feed(ctx context.Context, in <-chan Ticker) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-in:
			if !ok {
				return
			}
			bc.Set(t.Symbol, t.Bid, t.Ask, t.TS)
		}
	}
}

// CachedBinance exposes the websocket cache as a read-only venue, so the
// aggregator can mix streaming top-of-book with polled venues.
type CachedBinance struct {
	cache *BookCache
}

func NewCachedBinance(cache *BookCache) *CachedBinance {
	return &CachedBinance{cache: cache}
}

func (c *CachedBinance) Name() string { return "binance-ws" }

func (c *CachedBinance) Caps() Capabilities {
	return Capabilities{Spot: true}
}

func (c *CachedBinance) BestBidAsk(_ context.Context, pair symbols.Pair) (market.Quote, error) {
	sym := symbols.ToExchangeSymbol(pair.String(), "binance")
	q, ok := c.cache.Get(sym)
	if !ok {
		return market.Quote{}, venueErr(c.Name(), "cache", fmt.Errorf("no quote for %s yet", sym))
	}
	return q, nil
}

func (c *CachedBinance) L2Book(_ context.Context, _ symbols.Pair, _ int) (market.OrderBook, error) {
	return market.OrderBook{}, venueErr(c.Name(), "l2book", errors.New("not supported over websocket cache"))
}
