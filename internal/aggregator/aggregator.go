// Package aggregator fans a best-bid/ask request out to every venue
// concurrently and selects the tightest synthetic market across them. A
// venue that fails is simply absent from the result; it never fails the
// aggregation.
package aggregator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/you/xetrade/internal/market"
	"github.com/you/xetrade/internal/symbols"
)

// Venue is the capability the aggregator needs. Concrete adapters in
// internal/venues satisfy it; tests supply stubs.
type Venue interface {
	Name() string
	BestBidAsk(ctx context.Context, pair symbols.Pair) (market.Quote, error)
}

// VenueQuote is one venue's answer. Ephemeral: produced per aggregation
// call and discarded after use.
type VenueQuote struct {
	Venue    string  `json:"venue"`
	Bid      float64 `json:"bid"`
	Ask      float64 `json:"ask"`
	TSMillis int64   `json:"tsMs"`
}

// Result is the cross-venue summary. BestBid and BestAsk may come from
// different venues; the mid is the tightest synthetic market, not any single
// venue's mid. Zero successful venues is a valid empty result.
type Result struct {
	BestBid *VenueQuote  `json:"bestBid"`
	BestAsk *VenueQuote  `json:"bestAsk"`
	All     []VenueQuote `json:"all"`
}

// Mid returns the arithmetic mean of the best bid and best ask prices.
// Defined only when both exist.
func (r Result) Mid() (float64, bool) {
	if r.BestBid == nil || r.BestAsk == nil {
		return 0, false
	}
	return (r.BestBid.Bid + r.BestAsk.Ask) / 2, true
}

// Aggregate queries every venue concurrently and folds the answers in
// completion order, so a slow venue never blocks a fast one. Ties on price
// go to the first quote seen (strict comparisons). Failed venues are logged
// and dropped.
func Aggregate(ctx context.Context, vs []Venue, pair symbols.Pair, log *zap.Logger) Result {
	quotes := make(chan VenueQuote, len(vs))

	var wg sync.WaitGroup
	for _, v := range vs {
		wg.Add(1)
		go func(v Venue) {
			defer wg.Done()
			q, err := v.BestBidAsk(ctx, pair)
			if err != nil {
				log.Warn("venue dropped from aggregation",
					zap.String("venue", v.Name()),
					zap.String("pair", pair.String()),
					zap.Error(err),
				)
				return
			}
			quotes <- VenueQuote{Venue: v.Name(), Bid: q.Bid, Ask: q.Ask, TSMillis: q.TSMillis}
		}(v)
	}
	go func() {
		wg.Wait()
		close(quotes)
	}()

	var res Result
	for vq := range quotes {
		vq := vq
		res.All = append(res.All, vq)
		if res.BestBid == nil || vq.Bid > res.BestBid.Bid {
			res.BestBid = &vq
		}
		if res.BestAsk == nil || vq.Ask < res.BestAsk.Ask {
			res.BestAsk = &vq
		}
	}
	return res
}
