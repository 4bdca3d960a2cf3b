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

const okxBaseURL = "https://www.okx.com"

// OKX adapter.
//   - Best bid/ask: /api/v5/market/ticker
//   - L2 book:      /api/v5/market/books
//   - Funding:      /api/v5/public/funding-rate (instId BASE-QUOTE-SWAP)
type OKX struct {
	http *resty.Client
	log  *zap.Logger
}

func NewOKX(cfg *config.Config, log *zap.Logger) *OKX {
	rest := cfg.OKX.RestURL
	if rest == "" {
		rest = okxBaseURL
	}
	return &OKX{http: newRestClient(rest, cfg), log: log}
}

func (o *OKX) Name() string { return "okx" }

func (o *OKX) Caps() Capabilities {
	return Capabilities{Spot: true, L2Book: true, Funding: true}
}

func (o *OKX) symbol(pair symbols.Pair) string {
	return symbols.ToExchangeSymbol(pair.String(), o.Name())
}

func (o *OKX) BestBidAsk(ctx context.Context, pair symbols.Pair) (market.Quote, error) {
	var out struct {
		Data []struct {
			BidPx string `json:"bidPx"`
			AskPx string `json:"askPx"`
			TS    string `json:"ts"`
		} `json:"data"`
	}
	resp, err := o.http.R().
		SetContext(ctx).
		SetQueryParam("instId", o.symbol(pair)).
		SetResult(&out).
		Get("/api/v5/market/ticker")
	if err != nil {
		return market.Quote{}, venueErr(o.Name(), "ticker", err)
	}
	if resp.IsError() || len(out.Data) == 0 {
		return market.Quote{}, venueErr(o.Name(), "ticker", fmt.Errorf("status %d, %d rows", resp.StatusCode(), len(out.Data)))
	}
	row := out.Data[0]
	bid, err1 := strconv.ParseFloat(row.BidPx, 64)
	ask, err2 := strconv.ParseFloat(row.AskPx, 64)
	if err1 != nil || err2 != nil {
		return market.Quote{}, venueErr(o.Name(), "ticker", fmt.Errorf("bad prices %q/%q", row.BidPx, row.AskPx))
	}
	ts, _ := strconv.ParseInt(row.TS, 10, 64)
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	return market.Quote{Bid: bid, Ask: ask, TSMillis: ts}, nil
}

func (o *OKX) L2Book(ctx context.Context, pair symbols.Pair, depth int) (market.OrderBook, error) {
	if depth < 1 {
		depth = 1
	}
	if depth > 400 {
		depth = 400
	}
	var out struct {
		Data []struct {
			// Rows are ["px","qty","liquidated","orders"].
			Bids [][]string `json:"bids"`
			Asks [][]string `json:"asks"`
			TS   string     `json:"ts"`
		} `json:"data"`
	}
	resp, err := o.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"instId": o.symbol(pair),
			"sz":     strconv.Itoa(depth),
		}).
		SetResult(&out).
		Get("/api/v5/market/books")
	if err != nil {
		return market.OrderBook{}, venueErr(o.Name(), "books", err)
	}
	if resp.IsError() || len(out.Data) == 0 {
		return market.OrderBook{}, venueErr(o.Name(), "books", fmt.Errorf("status %d, %d rows", resp.StatusCode(), len(out.Data)))
	}
	row := out.Data[0]
	ts, _ := strconv.ParseInt(row.TS, 10, 64)
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	return market.Canonicalize(market.OrderBook{
		Bids:     parseLevels(row.Bids),
		Asks:     parseLevels(row.Asks),
		TSMillis: ts,
	}), nil
}

const okxFundingIntervalHours = 8.0

func (o *OKX) FundingSnapshot(ctx context.Context, pair symbols.Pair) (funding.Snapshot, error) {
	var out struct {
		Data []struct {
			FundingRate     string `json:"fundingRate"`
			NextFundingRate string `json:"nextFundingRate"`
			TS              string `json:"ts"`
		} `json:"data"`
	}
	resp, err := o.http.R().
		SetContext(ctx).
		SetQueryParam("instId", o.symbol(pair)+"-SWAP").
		SetResult(&out).
		Get("/api/v5/public/funding-rate")
	if err != nil {
		return funding.Snapshot{}, venueErr(o.Name(), "funding-rate", err)
	}
	if resp.IsError() || len(out.Data) == 0 {
		return funding.Snapshot{}, venueErr(o.Name(), "funding-rate", fmt.Errorf("status %d, %d rows", resp.StatusCode(), len(out.Data)))
	}
	row := out.Data[0]
	cur, _ := strconv.ParseFloat(row.FundingRate, 64)
	next, err := strconv.ParseFloat(row.NextFundingRate, 64)
	if err != nil {
		next = cur
	}
	ts, _ := strconv.ParseInt(row.TS, 10, 64)
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	return funding.Snapshot{
		CurrentRate:       cur,
		PredictedNextRate: next,
		IntervalHours:     okxFundingIntervalHours,
		TSMillis:          ts,
	}, nil
}
