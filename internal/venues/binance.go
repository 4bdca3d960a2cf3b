package venues

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/you/xetrade/internal/config"
	"github.com/you/xetrade/internal/funding"
	"github.com/you/xetrade/internal/market"
	"github.com/you/xetrade/internal/symbols"
)

const (
	binanceSpotURL    = "https://api.binance.com"
	binanceFuturesURL = "https://fapi.binance.com"
)

// Binance adapter.
//   - Best bid/ask: /api/v3/ticker/bookTicker
//   - L2 book:      /api/v3/depth
//   - Funding:      /fapi/v1/premiumIndex, /fapi/v1/fundingRate (USDT-M perps)
//
// bookTicker carries no exchange timestamp; quotes are stamped locally.
type Binance struct {
	http    *resty.Client
	futures *resty.Client
	log     *zap.Logger
}

func NewBinance(cfg *config.Config, log *zap.Logger) *Binance {
	rest := cfg.Binance.RestURL
	if rest == "" {
		rest = binanceSpotURL
	}
	fut := cfg.Binance.FuturesURL
	if fut == "" {
		fut = binanceFuturesURL
	}
	return &Binance{
		http:    newRestClient(rest, cfg),
		futures: newRestClient(fut, cfg),
		log:     log,
	}
}

func (b *Binance) Name() string { return "binance" }

func (b *Binance) Caps() Capabilities {
	return Capabilities{Spot: true, L2Book: true, Funding: true}
}

func (b *Binance) symbol(pair symbols.Pair) string {
	return symbols.ToExchangeSymbol(pair.String(), b.Name())
}

func (b *Binance) BestBidAsk(ctx context.Context, pair symbols.Pair) (market.Quote, error) {
	var out struct {
		BidPrice string `json:"bidPrice"`
		AskPrice string `json:"askPrice"`
	}
	resp, err := b.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", b.symbol(pair)).
		SetResult(&out).
		Get("/api/v3/ticker/bookTicker")
	if err != nil {
		return market.Quote{}, venueErr(b.Name(), "bookTicker", err)
	}
	if resp.IsError() {
		return market.Quote{}, venueErr(b.Name(), "bookTicker", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	bid, err1 := strconv.ParseFloat(out.BidPrice, 64)
	ask, err2 := strconv.ParseFloat(out.AskPrice, 64)
	if err1 != nil || err2 != nil {
		return market.Quote{}, venueErr(b.Name(), "bookTicker", fmt.Errorf("bad prices %q/%q", out.BidPrice, out.AskPrice))
	}
	return market.Quote{Bid: bid, Ask: ask, TSMillis: time.Now().UnixMilli()}, nil
}

func (b *Binance) L2Book(ctx context.Context, pair symbols.Pair, depth int) (market.OrderBook, error) {
	// Supported depth limits are 5..5000; clamp to the common window.
	if depth < 5 {
		depth = 5
	}
	if depth > 1000 {
		depth = 1000
	}
	var out struct {
		Bids [][]string `json:"bids"`
		Asks [][]string `json:"asks"`
	}
	resp, err := b.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": b.symbol(pair),
			"limit":  strconv.Itoa(depth),
		}).
		SetResult(&out).
		Get("/api/v3/depth")
	if err != nil {
		return market.OrderBook{}, venueErr(b.Name(), "depth", err)
	}
	if resp.IsError() {
		return market.OrderBook{}, venueErr(b.Name(), "depth", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	return market.Canonicalize(market.OrderBook{
		Bids:     parseLevels(out.Bids),
		Asks:     parseLevels(out.Asks),
		TSMillis: time.Now().UnixMilli(),
	}), nil
}

const binanceFundingIntervalHours = 8.0

func (b *Binance) FundingSnapshot(ctx context.Context, pair symbols.Pair) (funding.Snapshot, error) {
	var out struct {
		LastFundingRate string `json:"lastFundingRate"`
		Time            int64  `json:"time"`
	}
	resp, err := b.futures.R().
		SetContext(ctx).
		SetQueryParam("symbol", b.symbol(pair)).
		SetResult(&out).
		Get("/fapi/v1/premiumIndex")
	if err != nil {
		return funding.Snapshot{}, venueErr(b.Name(), "premiumIndex", err)
	}
	if resp.IsError() {
		return funding.Snapshot{}, venueErr(b.Name(), "premiumIndex", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	rate, _ := strconv.ParseFloat(out.LastFundingRate, 64)
	ts := out.Time
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	// Binance does not publish a prediction here; echo current.
	return funding.Snapshot{
		CurrentRate:       rate,
		PredictedNextRate: rate,
		IntervalHours:     binanceFundingIntervalHours,
		TSMillis:          ts,
	}, nil
}

// parseLevels converts [["price","qty"], ...] rows, dropping rows that do
// not parse or are non-positive.
func parseLevels(rows [][]string) []market.Level {
	raw := make([][2]float64, 0, len(rows))
	for _, r := range rows {
		if len(r) < 2 {
			continue
		}
		p, err1 := strconv.ParseFloat(r[0], 64)
		q, err2 := strconv.ParseFloat(r[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		raw = append(raw, [2]float64{p, q})
	}
	return market.ToLevels(raw)
}

// newRestClient is the shared resty setup: timeout plus bounded retry with
// backoff for transient failures.
func newRestClient(baseURL string, cfg *config.Config) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.HTTPTimeout()).
		SetRetryCount(cfg.HTTP.Retries).
		SetRetryWaitTime(cfg.HTTPRetryWait()).
		SetRetryMaxWaitTime(4 * cfg.HTTPRetryWait())
}
