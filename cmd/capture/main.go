// Command capture records order book snapshots to local JSONL files or an
// S3-compatible bucket, for later backtesting.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/you/xetrade/internal/config"
	"github.com/you/xetrade/internal/history"
	"github.com/you/xetrade/internal/symbols"
	"github.com/you/xetrade/internal/venues"
)

func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config file")
	flag.Parse()

	logger, err := zap.NewProduction()
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
		logger.Warn("signal received, stopping capture")
		cancel()
	}()

	var storage history.Storage
	switch cfg.History.Backend {
	case "s3":
		storage, err = history.NewS3Storage(ctx, cfg.History.S3, cfg.History.FlushEvery)
	case "file":
		storage, err = history.NewFileStorage(cfg.History.Dir, cfg.History.MaxPerFile)
	default:
		logger.Fatal("unknown history backend", zap.String("backend", cfg.History.Backend))
	}
	if err != nil {
		logger.Fatal("init storage", zap.Error(err))
	}

	vs, err := venues.Build(cfg.Venues, cfg, logger)
	if err != nil {
		logger.Fatal("build venues", zap.Error(err))
	}

	pairs := make([]symbols.Pair, 0, len(cfg.Pairs))
	for _, raw := range cfg.Pairs {
		p, err := symbols.ParsePair(raw)
		if err != nil {
			logger.Fatal("bad pair", zap.String("pair", raw), zap.Error(err))
		}
		pairs = append(pairs, p)
	}

	maxDuration := time.Duration(cfg.History.MaxDurationMin) * time.Minute

	logger.Info("capture starting",
		zap.String("backend", cfg.History.Backend),
		zap.Strings("pairs", cfg.Pairs),
		zap.Duration("interval", cfg.CaptureInterval()),
		zap.Duration("max_duration", maxDuration),
	)

	svc := history.NewService(vs, storage, cfg.Depth, logger)
	if err := svc.Capture(ctx, pairs, cfg.CaptureInterval(), maxDuration); err != nil {
		logger.Fatal("capture failed", zap.Error(err))
	}
	logger.Info("capture finished")
}
