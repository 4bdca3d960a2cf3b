package feed

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/you/xetrade/internal/config"
)

// QuoteSnap is one published aggregate as read back from Redis.
type QuoteSnap struct {
	Pair         string
	BestBid      float64
	BestBidVenue string
	BestAsk      float64
	BestAskVenue string
	Mid          float64
	Venues       int
	TSMillis     int64
}

type Consumer struct {
	rdb    *redis.Client
	active string
	snapNS string
}

func NewConsumer(cfg *config.Config) *Consumer {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
	})
	return &Consumer{
		rdb:    rdb,
		active: cfg.Redis.ActiveKey,
		snapNS: cfg.Redis.SnapNS,
	}
}

func (c *Consumer) Close() error { return c.rdb.Close() }

// ReadSnapshot reads HASH quote:snap:<PAIR>. Returns redis.Nil when the pair
// was never published.
func (c *Consumer) ReadSnapshot(ctx context.Context, pair string) (QuoteSnap, error) {
	m, err := c.rdb.HGetAll(ctx, c.snapNS+pair).Result()
	if err != nil {
		return QuoteSnap{}, err
	}
	if len(m) == 0 {
		return QuoteSnap{}, redis.Nil
	}
	snap := QuoteSnap{
		Pair:         m["pair"],
		BestBidVenue: m["best_bid_venue"],
		BestAskVenue: m["best_ask_venue"],
	}
	snap.BestBid, _ = strconv.ParseFloat(m["best_bid"], 64)
	snap.BestAsk, _ = strconv.ParseFloat(m["best_ask"], 64)
	snap.Mid, _ = strconv.ParseFloat(m["mid"], 64)
	snap.Venues, _ = strconv.Atoi(m["venues"])
	snap.TSMillis, _ = strconv.ParseInt(m["ts_ms"], 10, 64)
	return snap, nil
}

// RecentPairs lists pairs published since sinceMs, from the active ZSET.
func (c *Consumer) RecentPairs(ctx context.Context, sinceMs int64) ([]string, error) {
	return c.rdb.ZRangeByScore(ctx, c.active, &redis.ZRangeBy{
		Min: strconv.FormatInt(sinceMs, 10),
		Max: "+inf",
	}).Result()
}
