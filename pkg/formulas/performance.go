package formulas

import (
	"fmt"
	"math"
)

// Summary bundles the performance statistics derived from one return series.
// All five values are computed together in a single pass over the inputs;
// a Summary is never partially populated.
type Summary struct {
	TotalReturn          float64 `json:"total_return"`          // Final cumulative return
	AnnualizedReturn     float64 `json:"annualized_return"`     // Geometrically annualized total return
	AnnualizedVolatility float64 `json:"annualized_volatility"` // Population stddev × sqrt(periods per year)
	SharpeRatio          float64 `json:"sharpe_ratio"`          // NaN when volatility is exactly zero
	MaxDrawdown          float64 `json:"max_drawdown"`          // Worst peak-to-trough decline, >= 0
}

// Summarize computes performance statistics from a periodic return series.
//
// Formulas:
//
//	total_return      = (1+r_1)...(1+r_n) - 1
//	annualized_return = (1+total_return)^(periodsPerYear/n) - 1
//	annualized_vol    = PopStdDev(returns) × sqrt(periodsPerYear)
//	sharpe            = (annualized_return - annualized_rf) / annualized_vol
//	max_drawdown      = worst peak-to-trough decline of the cumulative series
//
// Args:
//
//	returns: Periodic returns, ordered oldest to newest
//	periodsPerYear: Number of periods per year (252 for daily, 12 for monthly)
//	riskFreeRate: Risk-free rate per period (same periodicity as returns)
//
// A zero-volatility series yields SharpeRatio = NaN rather than an error:
// the ratio is mathematically undefined there, and callers render or skip it
// as they see fit.
func Summarize(returns []float64, periodsPerYear int, riskFreeRate float64) (*Summary, error) {
	if len(returns) == 0 {
		return nil, fmt.Errorf("no returns provided")
	}
	if periodsPerYear <= 0 {
		return nil, fmt.Errorf("periods per year must be positive, got %d", periodsPerYear)
	}

	cumulative := LinkReturns(returns)
	totalReturn := cumulative[len(cumulative)-1]

	nPeriods := float64(len(returns))
	annualizedReturn := math.Pow(1+totalReturn, float64(periodsPerYear)/nPeriods) - 1
	annualizedVol := AnnualizedVolatility(returns, periodsPerYear)
	annualizedRF := math.Pow(1+riskFreeRate, float64(periodsPerYear)) - 1

	sharpe := math.NaN()
	if annualizedVol != 0 {
		sharpe = (annualizedReturn - annualizedRF) / annualizedVol
	}

	return &Summary{
		TotalReturn:          totalReturn,
		AnnualizedReturn:     annualizedReturn,
		AnnualizedVolatility: annualizedVol,
		SharpeRatio:          sharpe,
		MaxDrawdown:          MaxDrawdown(cumulative),
	}, nil
}

// SummarizeCumulative computes performance statistics from a cumulative
// return series by first recovering the periodic returns.
func SummarizeCumulative(cumulative []float64, periodsPerYear int, riskFreeRate float64) (*Summary, error) {
	if len(cumulative) == 0 {
		return nil, fmt.Errorf("no cumulative returns provided")
	}
	return Summarize(PeriodReturns(cumulative), periodsPerYear, riskFreeRate)
}
