package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	BestBid = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "xetrade_best_bid",
		Help: "Best bid across venues, per pair",
	}, []string{"pair", "venue"})

	BestAsk = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "xetrade_best_ask",
		Help: "Best ask across venues, per pair",
	}, []string{"pair", "venue"})

	Mid = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "xetrade_mid",
		Help: "Synthetic mid from cross-venue best bid/ask, per pair",
	}, []string{"pair"})

	VenuesLive = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "xetrade_venues_live",
		Help: "Venues that answered the last aggregation round, per pair",
	}, []string{"pair"})

	VenueErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xetrade_venue_errors_total",
		Help: "Venue fetch failures",
	}, []string{"venue"})

	QuoteLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xetrade_quote_latency_seconds",
		Help:    "Time to fetch one venue quote",
		Buckets: prometheus.DefBuckets,
	}, []string{"venue"})
)

func init() {
	prometheus.MustRegister(
		BestBid,
		BestAsk,
		Mid,
		VenuesLive,
		VenueErrors,
		QuoteLatency,
	)
}
