// Package feed publishes aggregated quotes to Redis so downstream consumers
// (dashboards, alerting, other bots) can read them without touching venue
// APIs. Layout per pair:
//
//	HASH quote:snap:<PAIR>  latest snapshot fields
//	ZSET quote:active       pair -> last publish ts (ms)
//	XADD quote:stream       append-only event stream
package feed

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/you/xetrade/internal/aggregator"
	"github.com/you/xetrade/internal/config"
)

type Publisher struct {
	rdb    *redis.Client
	stream string
	active string
	snapNS string
}

func NewPublisher(cfg *config.Config) *Publisher {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
	})
	return &Publisher{
		rdb:    rdb,
		stream: cfg.Redis.Stream,
		active: cfg.Redis.ActiveKey,
		snapNS: cfg.Redis.SnapNS,
	}
}

func (p *Publisher) Close() error { return p.rdb.Close() }

func (p *Publisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// PublishQuote writes the latest aggregate for a pair. Pairs with no live
// venues still bump quote:active so staleness is observable.
func (p *Publisher) PublishQuote(ctx context.Context, pair string, res aggregator.Result, tsMs int64) error {
	fields := map[string]interface{}{
		"pair":   pair,
		"venues": len(res.All),
		"ts_ms":  tsMs,
	}
	if res.BestBid != nil {
		fields["best_bid"] = res.BestBid.Bid
		fields["best_bid_venue"] = res.BestBid.Venue
	}
	if res.BestAsk != nil {
		fields["best_ask"] = res.BestAsk.Ask
		fields["best_ask_venue"] = res.BestAsk.Venue
	}
	if mid, ok := res.Mid(); ok {
		fields["mid"] = mid
	}

	if err := p.rdb.HSet(ctx, p.snapNS+pair, fields).Err(); err != nil {
		return err
	}
	if err := p.rdb.ZAdd(ctx, p.active, redis.Z{
		Score: float64(tsMs), Member: pair,
	}).Err(); err != nil {
		return err
	}
	return p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: 100000,
		Approx: true,
		Values: fields,
	}).Err()
}
