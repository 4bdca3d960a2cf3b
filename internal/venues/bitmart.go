package venues

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/you/xetrade/internal/config"
	"github.com/you/xetrade/internal/market"
	"github.com/you/xetrade/internal/symbols"
)

const bitmartBaseURL = "https://api-cloud.bitmart.com"

// Bitmart adapter. Spot only.
//   - Best bid/ask: /spot/quotation/v3/ticker
//   - L2 book:      /spot/quotation/v3/books
type Bitmart struct {
	http *resty.Client
	log  *zap.Logger
}

func NewBitmart(cfg *config.Config, log *zap.Logger) *Bitmart {
	rest := cfg.Bitmart.RestURL
	if rest == "" {
		rest = bitmartBaseURL
	}
	return &Bitmart{http: newRestClient(rest, cfg), log: log}
}

func (b *Bitmart) Name() string { return "bitmart" }

func (b *Bitmart) Caps() Capabilities {
	return Capabilities{Spot: true, L2Book: true}
}

func (b *Bitmart) symbol(pair symbols.Pair) string {
	return symbols.ToExchangeSymbol(pair.String(), b.Name())
}

func (b *Bitmart) BestBidAsk(ctx context.Context, pair symbols.Pair) (market.Quote, error) {
	var out struct {
		Data struct {
			BidPx string `json:"bid_px"`
			AskPx string `json:"ask_px"`
			TS    string `json:"ts"`
		} `json:"data"`
	}
	resp, err := b.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", b.symbol(pair)).
		SetResult(&out).
		Get("/spot/quotation/v3/ticker")
	if err != nil {
		return market.Quote{}, venueErr(b.Name(), "ticker", err)
	}
	if resp.IsError() {
		return market.Quote{}, venueErr(b.Name(), "ticker", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	bid, err1 := strconv.ParseFloat(out.Data.BidPx, 64)
	ask, err2 := strconv.ParseFloat(out.Data.AskPx, 64)
	if err1 != nil || err2 != nil {
		return market.Quote{}, venueErr(b.Name(), "ticker", fmt.Errorf("bad prices %q/%q", out.Data.BidPx, out.Data.AskPx))
	}
	ts, _ := strconv.ParseInt(out.Data.TS, 10, 64)
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	return market.Quote{Bid: bid, Ask: ask, TSMillis: ts}, nil
}

func (b *Bitmart) L2Book(ctx context.Context, pair symbols.Pair, depth int) (market.OrderBook, error) {
	if depth < 1 {
		depth = 1
	}
	if depth > 50 {
		depth = 50
	}
	var out struct {
		Data struct {
			Bids [][]string `json:"bids"`
			Asks [][]string `json:"asks"`
			TS   string     `json:"ts"`
		} `json:"data"`
	}
	resp, err := b.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": b.symbol(pair),
			"limit":  strconv.Itoa(depth),
		}).
		SetResult(&out).
		Get("/spot/quotation/v3/books")
	if err != nil {
		return market.OrderBook{}, venueErr(b.Name(), "books", err)
	}
	if resp.IsError() {
		return market.OrderBook{}, venueErr(b.Name(), "books", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	ts, _ := strconv.ParseInt(out.Data.TS, 10, 64)
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	return market.Canonicalize(market.OrderBook{
		Bids:     parseLevels(out.Data.Bids),
		Asks:     parseLevels(out.Data.Asks),
		TSMillis: ts,
	}), nil
}
