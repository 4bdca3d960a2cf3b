// Command impact is a one-shot execution probe: it pulls one venue's order
// book and reports average fill price and price impact for a list of
// notionals, as JSON on stdout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/you/xetrade/internal/config"
	"github.com/you/xetrade/internal/impact"
	"github.com/you/xetrade/internal/symbols"
	"github.com/you/xetrade/internal/venues"
)

type probe struct {
	Side          string  `json:"side"`
	NotionalQuote float64 `json:"notionalQuote"`
	AvgPrice      float64 `json:"avgPrice,omitempty"`
	FilledBase    float64 `json:"filledBase,omitempty"`
	ImpactPct     float64 `json:"impactPct,omitempty"`
	Error         string  `json:"error,omitempty"`
}

type report struct {
	Venue    string  `json:"venue"`
	Pair     string  `json:"pair"`
	Depth    int     `json:"depth"`
	Mid      float64 `json:"mid,omitempty"`
	TSMillis int64   `json:"tsMs"`
	Probes   []probe `json:"probes"`
}

func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config file")
	venueName := flag.String("venue", "binance", "venue to probe")
	pairArg := flag.String("pair", "BTC-USDT", "pair, e.g. BTC-USDT")
	depth := flag.Int("depth", 100, "book depth to request")
	notionals := flag.String("notionals", "1000,10000,100000", "comma-separated quote notionals")
	flag.Parse()

	log := zap.NewNop()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// The probe is usable without a config file; venue URLs fall back
		// to their public defaults.
		cfg = &config.Config{}
		cfg.HTTP.TimeoutMs = 6000
		cfg.HTTP.Retries = 2
		cfg.HTTP.RetryWaitMs = 250
	}

	pair, err := symbols.ParsePair(*pairArg)
	if err != nil {
		fatalf("bad pair %q: %v", *pairArg, err)
	}

	vs, err := venues.Build([]string{*venueName}, cfg, log)
	if err != nil {
		fatalf("%v", err)
	}
	v := vs[0]
	if !v.Caps().L2Book {
		fatalf("venue %s does not expose an L2 book", v.Name())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	book, err := v.L2Book(ctx, pair, *depth)
	if err != nil {
		fatalf("fetch book: %v", err)
	}

	rep := report{
		Venue:    v.Name(),
		Pair:     pair.String(),
		Depth:    *depth,
		TSMillis: book.TSMillis,
	}
	if mid, err := book.Mid(); err == nil {
		rep.Mid = mid
	}

	for _, raw := range strings.Split(*notionals, ",") {
		notional, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			fatalf("bad notional %q: %v", raw, err)
		}
		for _, side := range []impact.Side{impact.Buy, impact.Sell} {
			p := probe{Side: string(side), NotionalQuote: notional}
			res, err := impact.WalkBook(book, side, notional)
			if err != nil {
				p.Error = probeError(err)
			} else {
				p.AvgPrice = res.AvgPrice
				p.FilledBase = res.FilledBase
				if pct, err := impact.PriceImpactPct(book, side, notional); err == nil {
					p.ImpactPct = pct
				}
			}
			rep.Probes = append(rep.Probes, p)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		fatalf("encode report: %v", err)
	}
}

func probeError(err error) string {
	switch {
	case errors.Is(err, impact.ErrInsufficientLiquidity):
		return "insufficient liquidity"
	case errors.Is(err, impact.ErrBadNotional):
		return "bad notional"
	default:
		return err.Error()
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "impact: "+format+"\n", args...)
	os.Exit(1)
}
