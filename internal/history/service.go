package history

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/you/xetrade/internal/symbols"
	"github.com/you/xetrade/internal/venues"
)

// Service polls venue books on a fixed cadence and hands them to storage.
type Service struct {
	venues  []venues.Venue
	storage Storage
	depth   int
	log     *zap.Logger
}

func NewService(vs []venues.Venue, storage Storage, depth int, log *zap.Logger) *Service {
	if depth <= 0 {
		depth = 100
	}
	return &Service{venues: vs, storage: storage, depth: depth, log: log}
}

// Capture runs the loop until ctx is done or maxDuration elapses (0 means
// run until cancelled). Each tick fetches every venue x pair book
// concurrently; a venue failure is logged and skipped, it never aborts the
// tick.
func (s *Service) Capture(ctx context.Context, pairs []symbols.Pair, interval, maxDuration time.Duration) error {
	if maxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, maxDuration)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.tick(ctx, pairs)
		select {
		case <-ctx.Done():
			return s.storage.Close(context.Background())
		case <-ticker.C:
		}
	}
}

func (s *Service) tick(ctx context.Context, pairs []symbols.Pair) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, v := range s.venues {
		if !v.Caps().L2Book {
			continue
		}
		for _, p := range pairs {
			v, p := v, p
			g.Go(func() error {
				start := time.Now()
				book, err := v.L2Book(gctx, p, s.depth)
				if err != nil {
					s.log.Warn("capture failed",
						zap.String("venue", v.Name()),
						zap.String("pair", p.String()),
						zap.Error(err))
					return nil
				}
				snap := Snapshot{
					Exchange:         v.Name(),
					Pair:             p.String(),
					TimestampMs:      book.TSMillis,
					Bids:             book.Bids,
					Asks:             book.Asks,
					CaptureLatencyMs: time.Since(start).Milliseconds(),
				}
				if err := s.storage.Store(gctx, snap); err != nil {
					s.log.Error("store failed",
						zap.String("venue", v.Name()),
						zap.String("pair", p.String()),
						zap.Error(err))
				}
				return nil
			})
		}
	}
	_ = g.Wait()
}
