// Package impact simulates the execution cost of a hypothetical market order
// against an L2 book: it walks price levels to compute the average fill
// price and the deviation from mid.
package impact

import (
	"errors"

	"github.com/you/xetrade/internal/market"
)

// Side of the hypothetical order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

var (
	// ErrInsufficientLiquidity means the book cannot absorb the requested
	// notional. A distinguished result, not NaN.
	ErrInsufficientLiquidity = errors.New("impact: insufficient liquidity")

	// ErrBadNotional is a caller precondition violation.
	ErrBadNotional = errors.New("impact: notional must be > 0")
)

// Residual notional at or below this is treated as fully filled.
const notionalEpsilon = 1e-12

// Result of a simulated fill.
type Result struct {
	AvgPrice   float64 `json:"avgPrice"`
	FilledBase float64 `json:"filledBase"`
	SpentQuote float64 `json:"spentQuote"`
}

// WalkBook fills a market order of notionalQuote (quote-currency units)
// against the opposing side: asks for a buy, bids for a sell, best price
// first. The book must be canonical (see market.Canonicalize); walking
// assumes level order, it does not re-sort.
func WalkBook(book market.OrderBook, side Side, notionalQuote float64) (Result, error) {
	if notionalQuote <= 0 {
		return Result{}, ErrBadNotional
	}

	levels := book.Asks
	if side == Sell {
		levels = book.Bids
	}

	remaining := notionalQuote
	var spent, filled float64
	for _, lvl := range levels {
		levelCap := lvl.Price * lvl.Qty
		take := levelCap
		if remaining < take {
			take = remaining
		}
		if take <= 0 {
			continue
		}
		spent += take
		filled += take / lvl.Price
		remaining -= take
		if remaining <= notionalEpsilon {
			break
		}
	}

	// The book must absorb the whole request; a partial fill is not a price.
	if filled == 0 || remaining > notionalEpsilon {
		return Result{}, ErrInsufficientLiquidity
	}
	return Result{
		AvgPrice:   spent / filled,
		FilledBase: filled,
		SpentQuote: spent,
	}, nil
}

// PriceImpactPct is the percentage deviation of the simulated average fill
// price from the book mid: (avg - mid) / mid * 100. Positive means worse
// than mid. Insufficient liquidity and an undefined mid both propagate as
// errors so callers can tell "no impact computable" from zero impact.
func PriceImpactPct(book market.OrderBook, side Side, notionalQuote float64) (float64, error) {
	res, err := WalkBook(book, side, notionalQuote)
	if err != nil {
		return 0, err
	}
	mid, err := book.Mid()
	if err != nil {
		return 0, err
	}
	if mid <= 0 {
		return 0, market.ErrEmptyBook
	}
	return (res.AvgPrice - mid) / mid * 100, nil
}
