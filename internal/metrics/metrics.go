package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/you/xetrade/internal/aggregator"
	"github.com/you/xetrade/internal/market"
	"github.com/you/xetrade/internal/symbols"
)

// Serve starts the metrics and health HTTP server. With reg == nil the
// global gatherer is used.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry, log *zap.Logger) {
	if addr == "" {
		log.Info("metrics disabled: empty addr")
		return
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var h http.Handler
	if reg != nil {
		h = promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		})
	} else {
		h = promhttp.Handler()
	}
	mux.Handle("/metrics", h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("metrics server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server error", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("metrics server shutdown error", zap.Error(err))
		} else {
			log.Info("metrics server stopped")
		}
	}()
}

// WrapVenue instruments a venue with fetch latency and error counters.
func WrapVenue(v aggregator.Venue) aggregator.Venue {
	return instrumentedVenue{v: v}
}

type instrumentedVenue struct {
	v aggregator.Venue
}

func (iv instrumentedVenue) Name() string { return iv.v.Name() }

func (iv instrumentedVenue) BestBidAsk(ctx context.Context, pair symbols.Pair) (market.Quote, error) {
	start := time.Now()
	q, err := iv.v.BestBidAsk(ctx, pair)
	QuoteLatency.WithLabelValues(iv.v.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		VenueErrors.WithLabelValues(iv.v.Name()).Inc()
	}
	return q, err
}

// ObserveAggregate records one aggregation round for a pair.
func ObserveAggregate(pair string, res aggregator.Result) {
	VenuesLive.WithLabelValues(pair).Set(float64(len(res.All)))
	if res.BestBid != nil {
		BestBid.WithLabelValues(pair, res.BestBid.Venue).Set(res.BestBid.Bid)
	}
	if res.BestAsk != nil {
		BestAsk.WithLabelValues(pair, res.BestAsk.Venue).Set(res.BestAsk.Ask)
	}
	if mid, ok := res.Mid(); ok {
		Mid.WithLabelValues(pair).Set(mid)
	}
}
