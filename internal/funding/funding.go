// Package funding converts per-period perpetual funding rates into
// annualized and daily views. Pure math, no I/O.
package funding

import (
	"errors"
	"math"
)

// ErrBadInterval is returned for a non-positive funding interval.
var ErrBadInterval = errors.New("funding: interval hours must be > 0")

// Snapshot is funding info around "now" for a perpetual swap.
type Snapshot struct {
	CurrentRate       float64 `json:"currentRate"`
	PredictedNextRate float64 `json:"predictedNextRate"`
	IntervalHours     float64 `json:"intervalHours"`
	TSMillis          int64   `json:"tsMs"`
}

// Point is one historical funding observation.
type Point struct {
	TSMillis int64   `json:"tsMs"`
	Rate     float64 `json:"rate"`
}

// PeriodsPerDay returns how many funding periods fit in 24h.
func PeriodsPerDay(intervalHours float64) (float64, error) {
	if intervalHours <= 0 {
		return 0, ErrBadInterval
	}
	return 24 / intervalHours, nil
}

// APRFromPeriodic annualizes one period's rate without compounding.
// rate=0.0001 every 8h gives roughly 0.0001 * 3 * 365.
func APRFromPeriodic(rate, intervalHours float64) (float64, error) {
	n, err := PeriodsPerDay(intervalHours)
	if err != nil {
		return 0, err
	}
	return rate * n * 365, nil
}

// APYFromPeriodic annualizes one period's rate with per-period compounding.
func APYFromPeriodic(rate, intervalHours float64) (float64, error) {
	n, err := PeriodsPerDay(intervalHours)
	if err != nil {
		return 0, err
	}
	return math.Pow(1+rate, n*365) - 1, nil
}

// DailyReturnFromPeriodic compounds one period's rate within a single day.
func DailyReturnFromPeriodic(rate, intervalHours float64) (float64, error) {
	n, err := PeriodsPerDay(intervalHours)
	if err != nil {
		return 0, err
	}
	return math.Pow(1+rate, n) - 1, nil
}

// Summary is the rolled-up view of a snapshot.
type Summary struct {
	Snapshot
	CurrentAPR       float64 `json:"currentApr"`
	PredictedNextAPR float64 `json:"predictedNextApr"`
	CurrentAPY       float64 `json:"currentApy"`
	PredictedNextAPY float64 `json:"predictedNextApy"`
	DailyReturn      float64 `json:"dailyReturn"`
}

// Summarize rolls a snapshot up into APR/APY/daily views.
func Summarize(s Snapshot) (Summary, error) {
	curAPR, err := APRFromPeriodic(s.CurrentRate, s.IntervalHours)
	if err != nil {
		return Summary{}, err
	}
	nxtAPR, _ := APRFromPeriodic(s.PredictedNextRate, s.IntervalHours)
	curAPY, _ := APYFromPeriodic(s.CurrentRate, s.IntervalHours)
	nxtAPY, _ := APYFromPeriodic(s.PredictedNextRate, s.IntervalHours)
	daily, _ := DailyReturnFromPeriodic(s.CurrentRate, s.IntervalHours)
	return Summary{
		Snapshot:         s,
		CurrentAPR:       curAPR,
		PredictedNextAPR: nxtAPR,
		CurrentAPY:       curAPY,
		PredictedNextAPY: nxtAPY,
		DailyReturn:      daily,
	}, nil
}

// HistorySummary aggregates a series assumed to be one point per period at a
// constant interval.
type HistorySummary struct {
	IntervalHours     float64 `json:"intervalHours"`
	Count             int     `json:"count"`
	SumRates          float64 `json:"sumRates"`
	MeanRatePerPeriod float64 `json:"meanRatePerPeriod"`
	MeanAPR           float64 `json:"meanApr"`
	MeanAPY           float64 `json:"meanApy"`
}

// SummarizeHistory aggregates historical funding points. An empty series is
// a valid summary with zero count.
func SummarizeHistory(series []Point, intervalHours float64) (HistorySummary, error) {
	if _, err := PeriodsPerDay(intervalHours); err != nil {
		return HistorySummary{}, err
	}
	out := HistorySummary{IntervalHours: intervalHours, Count: len(series)}
	if len(series) == 0 {
		return out, nil
	}
	for _, p := range series {
		out.SumRates += p.Rate
	}
	out.MeanRatePerPeriod = out.SumRates / float64(len(series))
	out.MeanAPR, _ = APRFromPeriodic(out.MeanRatePerPeriod, intervalHours)
	out.MeanAPY, _ = APYFromPeriodic(out.MeanRatePerPeriod, intervalHours)
	return out, nil
}

// RatePoint is a timestamped annualized value.
type RatePoint struct {
	TSMillis int64   `json:"tsMs"`
	Value    float64 `json:"value"`
}

// ToAPRSeries converts a funding series to annualized simple rates.
func ToAPRSeries(series []Point, intervalHours float64) ([]RatePoint, error) {
	out := make([]RatePoint, 0, len(series))
	for _, p := range series {
		v, err := APRFromPeriodic(p.Rate, intervalHours)
		if err != nil {
			return nil, err
		}
		out = append(out, RatePoint{TSMillis: p.TSMillis, Value: v})
	}
	return out, nil
}

// ToAPYSeries converts a funding series to compounded annual rates.
func ToAPYSeries(series []Point, intervalHours float64) ([]RatePoint, error) {
	out := make([]RatePoint, 0, len(series))
	for _, p := range series {
		v, err := APYFromPeriodic(p.Rate, intervalHours)
		if err != nil {
			return nil, err
		}
		out = append(out, RatePoint{TSMillis: p.TSMillis, Value: v})
	}
	return out, nil
}
