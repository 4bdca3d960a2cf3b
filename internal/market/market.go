// Package market holds the venue-independent market data value types shared
// by the aggregator and the execution simulator. Everything here is a value
// object: calls return fresh copies and nothing is shared across calls.
package market

import (
	"errors"
	"sort"
)

// ErrEmptyBook is returned when a best price is requested from a side with
// zero levels. An empty side never reads as price 0.
var ErrEmptyBook = errors.New("market: empty book side")

// Level is one price level of an L2 book.
type Level struct {
	Price float64 `json:"price"`
	Qty   float64 `json:"qty"`
}

// Quote is a best bid/ask snapshot from a single venue.
type Quote struct {
	Bid      float64 `json:"bid"`
	Ask      float64 `json:"ask"`
	TSMillis int64   `json:"tsMs"`
}

// Mid is the midpoint of the quote.
func (q Quote) Mid() float64 { return (q.Bid + q.Ask) / 2 }

// OrderBook is an L2 snapshot. Canonical form has bids descending and asks
// ascending by price. A crossed book (best bid >= best ask) is venue data
// and passes through as-is; we surface it, we do not correct it.
type OrderBook struct {
	Bids     []Level `json:"bids"`
	Asks     []Level `json:"asks"`
	TSMillis int64   `json:"tsMs"`
}

// Canonicalize returns a copy of the book with bids sorted descending and
// asks ascending. Idempotent: canonicalizing a canonical book changes
// nothing. Some venue APIs do not guarantee ordering.
func Canonicalize(b OrderBook) OrderBook {
	bids := make([]Level, len(b.Bids))
	copy(bids, b.Bids)
	asks := make([]Level, len(b.Asks))
	copy(asks, b.Asks)
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })
	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })
	return OrderBook{Bids: bids, Asks: asks, TSMillis: b.TSMillis}
}

// BestBid returns the top bid price, or ErrEmptyBook when the side is empty.
func (b OrderBook) BestBid() (float64, error) {
	if len(b.Bids) == 0 {
		return 0, ErrEmptyBook
	}
	return b.Bids[0].Price, nil
}

// BestAsk returns the top ask price, or ErrEmptyBook when the side is empty.
func (b OrderBook) BestAsk() (float64, error) {
	if len(b.Asks) == 0 {
		return 0, ErrEmptyBook
	}
	return b.Asks[0].Price, nil
}

// Mid returns the book midpoint. Undefined unless both sides are non-empty.
func (b OrderBook) Mid() (float64, error) {
	bb, err := b.BestBid()
	if err != nil {
		return 0, err
	}
	ba, err := b.BestAsk()
	if err != nil {
		return 0, err
	}
	return (bb + ba) / 2, nil
}

// ToLevels converts raw [price, qty] rows into levels, dropping zero and
// negative entries. Ordering is left to Canonicalize.
func ToLevels(raw [][2]float64) []Level {
	out := make([]Level, 0, len(raw))
	for _, r := range raw {
		if r[0] > 0 && r[1] > 0 {
			out = append(out, Level{Price: r[0], Qty: r[1]})
		}
	}
	return out
}
