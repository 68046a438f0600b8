package backtest

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Five entities, five buckets, factor values strictly monotonic with ticker
// order on every date: each entity keeps its bucket across dates, and every
// bucket's cumulative series is exactly that one entity's compounded returns.
func TestRunSingleEntityBuckets(t *testing.T) {
	tickers := []string{"A", "B", "C", "D", "E"}
	returns := map[string][]float64{
		"A": {0.01, -0.02, 0.03},
		"B": {0.02, 0.01, -0.01},
		"C": {-0.01, 0.04, 0.02},
		"D": {0.00, 0.02, 0.01},
		"E": {0.05, -0.03, 0.04},
	}

	var panel Panel
	for t0 := 0; t0 < 3; t0++ {
		for rank, ticker := range tickers {
			panel = append(panel, Observation{
				Date:   day(t0 + 1),
				Ticker: ticker,
				Factor: fv(float64(rank)),
				Return: returns[ticker][t0],
			})
		}
	}

	bt := NewBacktester(zerolog.Nop())
	result, err := bt.Run(panel, Options{Buckets: 5, PeriodsPerYear: 12})
	require.NoError(t, err)
	require.Len(t, result.Dates, 3)
	require.Len(t, result.Summaries, 5)

	for rank, ticker := range tickers {
		bucket := rank + 1
		growth := 1.0
		for t0 := 0; t0 < 3; t0++ {
			r := returns[ticker][t0]
			assert.InDelta(t, r, result.BucketReturns[t0][bucket-1], 1e-12,
				"bucket %d period %d should be %s's return", bucket, t0, ticker)

			growth *= 1 + r
			assert.InDelta(t, growth-1, result.Cumulative[t0][bucket-1], 1e-12,
				"bucket %d cumulative at %d should compound %s's returns", bucket, t0, ticker)
		}
		assert.InDelta(t, growth-1, result.Summaries[bucket-1].TotalReturn, 1e-12)
		assert.Equal(t, returns[ticker][0], result.BucketSeries(bucket)[0])
	}
}

func TestRunAveragesWithinBucket(t *testing.T) {
	// 4 entities into 2 buckets: bucket 1 averages A and B, bucket 2
	// averages C and D.
	panel := Panel{
		{Date: day(1), Ticker: "A", Factor: fv(1), Return: 0.01},
		{Date: day(1), Ticker: "B", Factor: fv(2), Return: 0.03},
		{Date: day(1), Ticker: "C", Factor: fv(3), Return: -0.02},
		{Date: day(1), Ticker: "D", Factor: fv(4), Return: 0.04},
	}

	bt := NewBacktester(zerolog.Nop())
	result, err := bt.Run(panel, Options{Buckets: 2, PeriodsPerYear: 12})
	require.NoError(t, err)

	assert.InDelta(t, 0.02, result.BucketReturns[0][0], 1e-12)
	assert.InDelta(t, 0.01, result.BucketReturns[0][1], 1e-12)
}

func TestRunSpreadReturns(t *testing.T) {
	panel := Panel{
		{Date: day(1), Ticker: "A", Factor: fv(1), Return: 0.01},
		{Date: day(1), Ticker: "B", Factor: fv(2), Return: 0.05},
		{Date: day(2), Ticker: "A", Factor: fv(1), Return: -0.02},
		{Date: day(2), Ticker: "B", Factor: fv(2), Return: 0.01},
	}

	bt := NewBacktester(zerolog.Nop())
	result, err := bt.Run(panel, Options{Buckets: 2, PeriodsPerYear: 12})
	require.NoError(t, err)

	spread := result.SpreadReturns()
	require.Len(t, spread, 2)
	assert.InDelta(t, 0.04, spread[0], 1e-12)
	assert.InDelta(t, 0.03, spread[1], 1e-12)
}

func TestRunThinDates(t *testing.T) {
	panel := Panel{
		{Date: day(1), Ticker: "A", Factor: fv(1), Return: 0.01},
		{Date: day(1), Ticker: "B", Factor: fv(2), Return: 0.02},
		// day(2) has a single ranked row, too thin for 2 buckets.
		{Date: day(2), Ticker: "A", Factor: fv(1), Return: 0.03},
		{Date: day(3), Ticker: "A", Factor: fv(1), Return: 0.01},
		{Date: day(3), Ticker: "B", Factor: fv(2), Return: 0.00},
	}

	bt := NewBacktester(zerolog.Nop())

	_, err := bt.Run(panel, Options{Buckets: 2, PeriodsPerYear: 12})
	require.Error(t, err, "thin dates fail the run by default")

	result, err := bt.Run(panel, Options{Buckets: 2, PeriodsPerYear: 12, SkipThinDates: true})
	require.NoError(t, err)
	require.Len(t, result.Dates, 2)
	assert.Equal(t, day(1), result.Dates[0])
	assert.Equal(t, day(3), result.Dates[1])
}

func TestRunDatesSortedRegardlessOfPanelOrder(t *testing.T) {
	// Rows arrive newest-first; compounding must still run oldest-first.
	panel := Panel{
		{Date: day(2), Ticker: "A", Factor: fv(1), Return: -0.50},
		{Date: day(2), Ticker: "B", Factor: fv(2), Return: -0.50},
		{Date: day(1), Ticker: "A", Factor: fv(1), Return: 1.00},
		{Date: day(1), Ticker: "B", Factor: fv(2), Return: 1.00},
	}

	bt := NewBacktester(zerolog.Nop())
	result, err := bt.Run(panel, Options{Buckets: 2, PeriodsPerYear: 12})
	require.NoError(t, err)

	require.Equal(t, day(1), result.Dates[0])
	assert.InDelta(t, 1.00, result.Cumulative[0][0], 1e-12)
	assert.InDelta(t, 0.00, result.Cumulative[1][0], 1e-12)
}

func TestRunValidation(t *testing.T) {
	bt := NewBacktester(zerolog.Nop())

	_, err := bt.Run(Panel{}, Options{Buckets: 2, PeriodsPerYear: 12})
	assert.Error(t, err, "empty panel")

	panel := Panel{
		{Date: day(1), Ticker: "A", Factor: fv(1), Return: 0},
		{Date: day(1), Ticker: "B", Factor: fv(2), Return: 0},
	}
	_, err = bt.Run(panel, Options{Buckets: 2, PeriodsPerYear: 0})
	assert.Error(t, err, "periods per year required")

	_, err = bt.Run(panel, Options{Buckets: 1, PeriodsPerYear: 12})
	assert.Error(t, err, "bucket count below 2")
}

func TestRunSharpeNaNSurvivesSummaries(t *testing.T) {
	// Both entities return a flat 1% every period: zero volatility in each
	// bucket, so each summary carries a NaN Sharpe, not an error.
	panel := Panel{
		{Date: day(1), Ticker: "A", Factor: fv(1), Return: 0.01},
		{Date: day(1), Ticker: "B", Factor: fv(2), Return: 0.01},
		{Date: day(2), Ticker: "A", Factor: fv(1), Return: 0.01},
		{Date: day(2), Ticker: "B", Factor: fv(2), Return: 0.01},
	}

	bt := NewBacktester(zerolog.Nop())
	result, err := bt.Run(panel, Options{Buckets: 2, PeriodsPerYear: 12})
	require.NoError(t, err)
	for _, summary := range result.Summaries {
		assert.True(t, math.IsNaN(summary.SharpeRatio))
	}
}
