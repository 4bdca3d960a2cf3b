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

const kucoinBaseURL = "https://api.kucoin.com"

// KuCoin adapter. Spot only; KuCoin's public spot API has no funding.
//   - Best bid/ask: /api/v1/market/orderbook/level1
//   - L2 book:      /api/v1/market/orderbook/level2_100
type KuCoin struct {
	http *resty.Client
	log  *zap.Logger
}

func NewKuCoin(cfg *config.Config, log *zap.Logger) *KuCoin {
	rest := cfg.KuCoin.RestURL
	if rest == "" {
		rest = kucoinBaseURL
	}
	return &KuCoin{http: newRestClient(rest, cfg), log: log}
}

func (k *KuCoin) Name() string { return "kucoin" }

func (k *KuCoin) Caps() Capabilities {
	return Capabilities{Spot: true, L2Book: true}
}

func (k *KuCoin) symbol(pair symbols.Pair) string {
	return symbols.ToExchangeSymbol(pair.String(), k.Name())
}

func (k *KuCoin) BestBidAsk(ctx context.Context, pair symbols.Pair) (market.Quote, error) {
	var out struct {
		Data struct {
			BestBid string `json:"bestBid"`
			BestAsk string `json:"bestAsk"`
			Time    int64  `json:"time"`
		} `json:"data"`
	}
	resp, err := k.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", k.symbol(pair)).
		SetResult(&out).
		Get("/api/v1/market/orderbook/level1")
	if err != nil {
		return market.Quote{}, venueErr(k.Name(), "level1", err)
	}
	if resp.IsError() {
		return market.Quote{}, venueErr(k.Name(), "level1", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	bid, err1 := strconv.ParseFloat(out.Data.BestBid, 64)
	ask, err2 := strconv.ParseFloat(out.Data.BestAsk, 64)
	if err1 != nil || err2 != nil {
		return market.Quote{}, venueErr(k.Name(), "level1", fmt.Errorf("bad prices %q/%q", out.Data.BestBid, out.Data.BestAsk))
	}
	ts := out.Data.Time
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	return market.Quote{Bid: bid, Ask: ask, TSMillis: ts}, nil
}

func (k *KuCoin) L2Book(ctx context.Context, pair symbols.Pair, depth int) (market.OrderBook, error) {
	// The public endpoint returns a fixed 100 levels; depth only trims.
	var out struct {
		Data struct {
			Bids [][]string `json:"bids"`
			Asks [][]string `json:"asks"`
			Time int64      `json:"time"`
		} `json:"data"`
	}
	resp, err := k.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", k.symbol(pair)).
		SetResult(&out).
		Get("/api/v1/market/orderbook/level2_100")
	if err != nil {
		return market.OrderBook{}, venueErr(k.Name(), "level2", err)
	}
	if resp.IsError() {
		return market.OrderBook{}, venueErr(k.Name(), "level2", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	ts := out.Data.Time
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	book := market.Canonicalize(market.OrderBook{
		Bids:     parseLevels(out.Data.Bids),
		Asks:     parseLevels(out.Data.Asks),
		TSMillis: ts,
	})
	if depth > 0 {
		if len(book.Bids) > depth {
			book.Bids = book.Bids[:depth]
		}
		if len(book.Asks) > depth {
			book.Asks = book.Asks[:depth]
		}
	}
	return book, nil
}
