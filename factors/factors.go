// Package factors builds observation panels from per-ticker price histories,
// the shape the backtester consumes. Indicator math is delegated to talib.
//
// Factor direction: every factor here is "higher value = higher bucket".
// The backtester fixes bucket 1 = lowest factor values, so a caller who
// wants bucket 1 to hold e.g. the strongest momentum names must negate the
// factor (see Negate).
package factors

import (
	"fmt"
	"sort"
	"time"

	"github.com/markcheno/go-talib"

	"github.com/aristath/factorbench/backtest"
	"github.com/aristath/factorbench/pkg/formulas"
)

// Func maps a price series to an aligned factor series. Entries are nil
// while the indicator is still inside its warmup window.
type Func func(prices []float64) []*float64

// Momentum builds a rate-of-change factor over the given lookback period.
func Momentum(period int) Func {
	return func(prices []float64) []*float64 {
		if len(prices) <= period {
			return make([]*float64, len(prices))
		}
		return withWarmup(talib.Roc(prices, period), period)
	}
}

// RSI builds a relative strength factor over the given lookback period.
func RSI(period int) Func {
	return func(prices []float64) []*float64 {
		if len(prices) <= period {
			return make([]*float64, len(prices))
		}
		return withWarmup(talib.Rsi(prices, period), period)
	}
}

// Volatility builds a rolling standard deviation factor of one-period price
// changes over the given lookback period.
func Volatility(period int) Func {
	return func(prices []float64) []*float64 {
		if len(prices) <= period {
			return make([]*float64, len(prices))
		}
		// Changes are valid from index 1, so the first stddev window made
		// entirely of valid changes ends at index `period`.
		changes := talib.Roc(prices, 1)
		return withWarmup(talib.StdDev(changes, period, 1.0), period)
	}
}

// Negate flips a factor's direction so its highest values land in bucket 1.
func Negate(f Func) Func {
	return func(prices []float64) []*float64 {
		values := f(prices)
		for _, v := range values {
			if v != nil {
				*v = -*v
			}
		}
		return values
	}
}

// withWarmup converts a talib output slice to the nil-able factor form,
// treating the first `warmup` entries as missing. talib fills its warmup
// window with zeros, which would otherwise rank as real factor values.
func withWarmup(values []float64, warmup int) []*float64 {
	out := make([]*float64, len(values))
	for i := warmup; i < len(values); i++ {
		v := values[i]
		out[i] = &v
	}
	return out
}

// BuildPanel assembles a backtest panel from aligned price histories: the
// factor is observed at each date, and the realized return is the price
// change over the following period. The final date carries no forward
// return and is dropped. Every ticker's price series must align with dates.
func BuildPanel(dates []time.Time, prices map[string][]float64, factor Func) (backtest.Panel, error) {
	if len(dates) < 2 {
		return nil, fmt.Errorf("need at least 2 dates to realize a forward return, got %d", len(dates))
	}

	// Tickers are walked in sorted order so panel row order, and with it the
	// bucketer's tie-break, is deterministic across runs.
	tickers := make([]string, 0, len(prices))
	for ticker := range prices {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	var panel backtest.Panel
	for _, ticker := range tickers {
		series := prices[ticker]
		if len(series) != len(dates) {
			return nil, fmt.Errorf("ticker %s: %d prices for %d dates", ticker, len(series), len(dates))
		}
		// CalculateReturns silently yields 0 across a zero price, which would
		// masquerade as a flat period; reject the series up front instead.
		for t := 0; t < len(dates)-1; t++ {
			if series[t] == 0 {
				return nil, fmt.Errorf("ticker %s: zero price at %s", ticker, dates[t].Format("2006-01-02"))
			}
		}

		values := factor(series)
		returns := formulas.CalculateReturns(series)
		for t := 0; t < len(dates)-1; t++ {
			panel = append(panel, backtest.Observation{
				Date:   dates[t],
				Ticker: ticker,
				Factor: values[t],
				Return: returns[t],
			})
		}
	}

	return panel, nil
}
