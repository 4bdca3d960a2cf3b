package funding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPRFromPeriodic(t *testing.T) {
	// 0.01% every 8h: 3 periods/day * 365 days.
	apr, err := APRFromPeriodic(0.0001, 8)
	require.NoError(t, err)
	assert.InDelta(t, 0.0001*3*365, apr, 1e-12)
}

func TestAPYCompoundsAboveAPR(t *testing.T) {
	apr, err := APRFromPeriodic(0.0001, 8)
	require.NoError(t, err)
	apy, err := APYFromPeriodic(0.0001, 8)
	require.NoError(t, err)
	assert.Greater(t, apy, apr)
}

func TestDailyReturn(t *testing.T) {
	d, err := DailyReturnFromPeriodic(0.0001, 8)
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(1.0001, 3)-1, d, 1e-12)
}

func TestBadInterval(t *testing.T) {
	_, err := APRFromPeriodic(0.0001, 0)
	assert.ErrorIs(t, err, ErrBadInterval)
	_, err = SummarizeHistory(nil, -1)
	assert.ErrorIs(t, err, ErrBadInterval)
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(Snapshot{
		CurrentRate:       0.0001,
		PredictedNextRate: 0.0002,
		IntervalHours:     8,
		TSMillis:          1700000000000,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.1095, s.CurrentAPR, 1e-9)
	assert.InDelta(t, 0.2190, s.PredictedNextAPR, 1e-9)
	assert.Greater(t, s.CurrentAPY, s.CurrentAPR)
	assert.Equal(t, int64(1700000000000), s.TSMillis)
}

func TestSummarizeHistory(t *testing.T) {
	series := []Point{
		{TSMillis: 1, Rate: 0.0001},
		{TSMillis: 2, Rate: 0.0003},
	}
	h, err := SummarizeHistory(series, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, h.Count)
	assert.InDelta(t, 0.0004, h.SumRates, 1e-12)
	assert.InDelta(t, 0.0002, h.MeanRatePerPeriod, 1e-12)
	assert.InDelta(t, 0.0002*3*365, h.MeanAPR, 1e-9)
}

func TestSummarizeHistory_Empty(t *testing.T) {
	h, err := SummarizeHistory(nil, 8)
	require.NoError(t, err)
	assert.Zero(t, h.Count)
	assert.Zero(t, h.MeanAPR)
}

func TestSeries(t *testing.T) {
	series := []Point{{TSMillis: 5, Rate: 0.0001}}
	aprs, err := ToAPRSeries(series, 8)
	require.NoError(t, err)
	require.Len(t, aprs, 1)
	assert.Equal(t, int64(5), aprs[0].TSMillis)
	assert.InDelta(t, 0.1095, aprs[0].Value, 1e-9)

	apys, err := ToAPYSeries(series, 8)
	require.NoError(t, err)
	assert.Greater(t, apys[0].Value, aprs[0].Value)
}
