// Package venues holds the per-exchange REST/WS adapters. Adapters do pure
// I/O translation into the canonical market model; all reconciliation and
// selection logic lives above them.
package venues

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/you/xetrade/internal/config"
	"github.com/you/xetrade/internal/funding"
	"github.com/you/xetrade/internal/market"
	"github.com/you/xetrade/internal/symbols"
)

// Capabilities are explicit feature flags checked by callers. Nothing above
// the adapters depends on which concrete venue is behind the interface.
type Capabilities struct {
	Spot    bool
	L2Book  bool
	Funding bool
	Trading bool
}

// Venue is the capability surface consumed by the aggregator, the execution
// probe and the capture service.
type Venue interface {
	Name() string
	Caps() Capabilities
	BestBidAsk(ctx context.Context, pair symbols.Pair) (market.Quote, error)
	L2Book(ctx context.Context, pair symbols.Pair, depth int) (market.OrderBook, error)
}

// FundingVenue is implemented by venues whose Caps().Funding is true.
type FundingVenue interface {
	Venue
	FundingSnapshot(ctx context.Context, pair symbols.Pair) (funding.Snapshot, error)
}

// VenueError scopes a failure to one venue so the aggregator can treat it as
// "this venue is temporarily absent", never as a global fault.
type VenueError struct {
	Venue string
	Op    string
	Err   error
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("venue %s: %s: %v", e.Venue, e.Op, e.Err)
}

func (e *VenueError) Unwrap() error { return e.Err }

func venueErr(venue, op string, err error) error {
	return &VenueError{Venue: venue, Op: op, Err: err}
}

// Build constructs the requested venues. The mapping is explicit and built
// once by the caller; there is no global registration side effect.
func Build(names []string, cfg *config.Config, log *zap.Logger) ([]Venue, error) {
	out := make([]Venue, 0, len(names))
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "binance":
			out = append(out, NewBinance(cfg, log))
		case "okx":
			out = append(out, NewOKX(cfg, log))
		case "kucoin":
			out = append(out, NewKuCoin(cfg, log))
		case "bitmart":
			out = append(out, NewBitmart(cfg, log))
		case "mock":
			out = append(out, NewMock())
		default:
			return nil, fmt.Errorf("venues: unknown venue %q (known: binance, okx, kucoin, bitmart, mock)", n)
		}
	}
	return out, nil
}
