// Package backtest runs quantile-ranked factor strategies over a
// cross-sectional observation panel.
//
// Bucket direction convention: bucket 1 always holds the LOWEST factor
// values and bucket N the highest. Callers whose factor is "higher is
// better" and who want bucket 1 to be the best-ranked group must negate
// their factor before building the panel. This choice silently flips
// strategy semantics, so it is fixed here rather than left configurable.
package backtest

import (
	"fmt"
	"sort"
	"time"
)

// Observation is one row of the panel: a single entity observed on a single
// date, carrying the factor value used for ranking and the return realized
// over the holding period that follows Date.
type Observation struct {
	Date   time.Time
	Ticker string
	Factor *float64 // nil means missing; the row is excluded from that date's ranking
	Return float64
}

// Panel is an ordered sequence of observations. Rows need not be pre-sorted;
// grouping is done by date internally. For a fixed date each ticker must
// appear at most once.
type Panel []Observation

// Validate checks the panel schema before any computation runs. It fails
// fast on the first violation so no partial output is ever produced.
func (p Panel) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("empty panel")
	}

	seen := make(map[time.Time]map[string]bool)
	for i, obs := range p {
		if obs.Ticker == "" {
			return fmt.Errorf("row %d: missing ticker", i)
		}
		if obs.Date.IsZero() {
			return fmt.Errorf("row %d (%s): missing date", i, obs.Ticker)
		}
		tickers, ok := seen[obs.Date]
		if !ok {
			tickers = make(map[string]bool)
			seen[obs.Date] = tickers
		}
		if tickers[obs.Ticker] {
			return fmt.Errorf("row %d: duplicate observation for %s on %s",
				i, obs.Ticker, obs.Date.Format("2006-01-02"))
		}
		tickers[obs.Ticker] = true
	}

	return nil
}

// Dates returns the distinct observation dates in ascending order.
func (p Panel) Dates() []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, obs := range p {
		if !seen[obs.Date] {
			seen[obs.Date] = true
			dates = append(dates, obs.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Assignments maps (date, ticker) to the assigned bucket in [1, N].
// Bucket 1 holds the lowest factor values. Rows with a missing factor have
// no entry. Assignments are recomputed on every run and never persisted.
type Assignments map[time.Time]map[string]int
