package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/you/xetrade/internal/aggregator"
	"github.com/you/xetrade/internal/config"
	"github.com/you/xetrade/internal/dash"
	"github.com/you/xetrade/internal/feed"
	"github.com/you/xetrade/internal/metrics"
	"github.com/you/xetrade/internal/symbols"
	"github.com/you/xetrade/internal/venues"
)

func newLogger() (*zap.Logger, error) {
	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(zap.InfoLevel),
		Development: false,
		Encoding:    "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stack",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}

func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config file")
	flag.Parse()

	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Warn("signal received, shutting down")
		cancel()
	}()

	pairs, err := parsePairs(cfg.Pairs)
	if err != nil {
		logger.Fatal("parse pairs", zap.Error(err))
	}

	// "binance-ws" is not a REST adapter; it rides the bookTicker stream.
	restNames, wantWS := splitWS(cfg.Venues)
	built, err := venues.Build(restNames, cfg, logger)
	if err != nil {
		logger.Fatal("build venues", zap.Error(err))
	}

	vs := make([]aggregator.Venue, 0, len(built)+1)
	for _, v := range built {
		vs = append(vs, metrics.WrapVenue(v))
	}
	if wantWS {
		cached, err := startBinanceWS(ctx, cfg, pairs, logger)
		if err != nil {
			logger.Error("binance websocket unavailable, continuing without it", zap.Error(err))
		} else {
			vs = append(vs, metrics.WrapVenue(cached))
		}
	}

	metrics.Serve(ctx, cfg.Metrics.ListenAddr, nil, logger)

	store := dash.NewStore()
	if cfg.Dash.ListenAddr != "" {
		go dash.StartHTTP(ctx, store, cfg.Dash.ListenAddr, logger)
	}

	var pub *feed.Publisher
	if cfg.Redis.Addr != "" {
		pub = feed.NewPublisher(cfg)
		defer pub.Close()
		if err := pub.Ping(ctx); err != nil {
			logger.Error("redis unreachable, publishing disabled", zap.Error(err))
			pub = nil
		}
	}

	logger.Info("aggregation loop starting",
		zap.Strings("pairs", cfg.Pairs),
		zap.Strings("venues", cfg.Venues),
		zap.Duration("interval", cfg.PollInterval()),
	)

	ticker := time.NewTicker(cfg.PollInterval())
	defer ticker.Stop()

	for {
		for _, pair := range pairs {
			res := aggregator.Aggregate(ctx, vs, pair, logger)
			metrics.ObserveAggregate(pair.String(), res)
			store.Update(pair.String(), res)
			if pub != nil {
				if err := pub.PublishQuote(ctx, pair.String(), res, time.Now().UnixMilli()); err != nil {
					logger.Warn("publish failed", zap.String("pair", pair.String()), zap.Error(err))
				}
			}
			if mid, ok := res.Mid(); ok {
				logger.Debug("aggregated",
					zap.String("pair", pair.String()),
					zap.Float64("mid", mid),
					zap.Int("venues", len(res.All)),
				)
			}
		}
		select {
		case <-ctx.Done():
			logger.Info("stopped")
			return
		case <-ticker.C:
		}
	}
}

func parsePairs(raw []string) ([]symbols.Pair, error) {
	out := make([]symbols.Pair, 0, len(raw))
	for _, r := range raw {
		p, err := symbols.ParsePair(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func splitWS(names []string) (rest []string, ws bool) {
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), "binance-ws") {
			ws = true
			continue
		}
		rest = append(rest, n)
	}
	return rest, ws
}

func startBinanceWS(ctx context.Context, cfg *config.Config, pairs []symbols.Pair, log *zap.Logger) (*venues.CachedBinance, error) {
	ws := venues.NewWS(cfg.Binance.WsURL)
	syms := make([]string, 0, len(pairs))
	for _, p := range pairs {
		syms = append(syms, symbols.ToExchangeSymbol(p.String(), "binance"))
	}
	stream, err := ws.SubscribeBookTicker(ctx, syms)
	if err != nil {
		return nil, err
	}
	cache := venues.NewBookCache()
	go cache.Feed(ctx, stream)
	log.Info("binance websocket subscribed", zap.Strings("symbols", syms))
	return venues.NewCachedBinance(cache), nil
}
