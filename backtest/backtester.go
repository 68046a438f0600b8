package backtest

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/factorbench/pkg/formulas"
)

// Options configure a single backtest run. Explicit per-call options keep the
// backtester stateless between invocations.
type Options struct {
	Buckets        int     // Number of quantile buckets, N >= 2
	PeriodsPerYear int     // Periodicity of the panel (12 monthly, 252 daily)
	RiskFreeRate   float64 // Per-period risk-free rate, default 0
	SkipThinDates  bool    // Drop dates with fewer ranked rows than N instead of failing
}

// Result is the output of one backtest run. BucketReturns and Cumulative are
// indexed [dateIdx][bucket-1], rows ordered by ascending date; Summaries is
// indexed [bucket-1].
type Result struct {
	Dates         []time.Time
	BucketReturns [][]float64
	Cumulative    [][]float64
	Summaries     []*formulas.Summary
}

// BucketSeries returns one bucket's periodic return series across all dates.
func (r *Result) BucketSeries(bucket int) []float64 {
	series := make([]float64, len(r.BucketReturns))
	for t, row := range r.BucketReturns {
		series[t] = row[bucket-1]
	}
	return series
}

// SpreadReturns returns the per-period return of the top-minus-bottom bucket
// spread (bucket N long, bucket 1 short), the long/short reading of the
// strategy. Remember that bucket 1 holds the lowest factor values: a factor
// where low values are favorable needs negating before the panel is built
// for this spread to mean "favorable minus unfavorable".
func (r *Result) SpreadReturns() []float64 {
	spread := make([]float64, len(r.BucketReturns))
	for t, row := range r.BucketReturns {
		spread[t] = row[len(row)-1] - row[0]
	}
	return spread
}

// Backtester ties together bucket assignment, per-bucket return aggregation,
// geometric linking and performance statistics. It holds no state between
// runs; every Run is independent and safe to invoke concurrently.
type Backtester struct {
	log zerolog.Logger
}

// NewBacktester creates a backtester.
func NewBacktester(log zerolog.Logger) *Backtester {
	return &Backtester{
		log: log.With().Str("component", "backtester").Logger(),
	}
}

// Run executes a full quantile backtest: assign buckets per date, average
// realized returns per (date, bucket), compound each bucket's series and
// summarize it. Dates are processed in ascending order regardless of panel
// row order.
func (bt *Backtester) Run(panel Panel, opts Options) (*Result, error) {
	if err := panel.Validate(); err != nil {
		return nil, err
	}
	if opts.PeriodsPerYear <= 0 {
		return nil, fmt.Errorf("periods per year must be positive, got %d", opts.PeriodsPerYear)
	}

	bucketer, err := NewBucketer(opts.Buckets, bt.log)
	if err != nil {
		return nil, err
	}

	byDate := make(map[time.Time][]Observation)
	for _, obs := range panel {
		if obs.Factor == nil {
			continue
		}
		byDate[obs.Date] = append(byDate[obs.Date], obs)
	}

	var dates []time.Time
	assignments := make(Assignments, len(byDate))
	skipped := 0
	for _, date := range panel.Dates() {
		rows, ok := byDate[date]
		if !ok {
			// Every factor on this date was missing.
			if !opts.SkipThinDates {
				return nil, fmt.Errorf("date %s: %w: no ranked rows",
					date.Format("2006-01-02"), ErrInsufficientEntities)
			}
			skipped++
			continue
		}
		assigned, err := bucketer.assignDate(rows)
		if err != nil {
			if opts.SkipThinDates {
				skipped++
				continue
			}
			return nil, fmt.Errorf("date %s: %w", date.Format("2006-01-02"), err)
		}
		assignments[date] = assigned
		dates = append(dates, date)
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("no dates with enough ranked entities for %d buckets", opts.Buckets)
	}

	bucketReturns := bt.aggregate(byDate, assignments, dates, opts.Buckets)

	cumulative := make([][]float64, len(dates))
	for t := range cumulative {
		cumulative[t] = make([]float64, opts.Buckets)
	}
	summaries := make([]*formulas.Summary, opts.Buckets)
	for b := 1; b <= opts.Buckets; b++ {
		series := make([]float64, len(dates))
		for t, row := range bucketReturns {
			series[t] = row[b-1]
		}
		for t, c := range formulas.LinkReturns(series) {
			cumulative[t][b-1] = c
		}
		summary, err := formulas.Summarize(series, opts.PeriodsPerYear, opts.RiskFreeRate)
		if err != nil {
			return nil, fmt.Errorf("bucket %d: %w", b, err)
		}
		summaries[b-1] = summary
	}

	bt.log.Info().
		Int("num_dates", len(dates)).
		Int("skipped_dates", skipped).
		Int("buckets", opts.Buckets).
		Msg("Backtest complete")

	return &Result{
		Dates:         dates,
		BucketReturns: bucketReturns,
		Cumulative:    cumulative,
		Summaries:     summaries,
	}, nil
}

// aggregate averages realized returns per (date, bucket). Every bucket is
// non-empty on every kept date: the bucketer guarantees at least one row per
// bucket whenever the date passed the cardinality check.
func (bt *Backtester) aggregate(
	byDate map[time.Time][]Observation,
	assignments Assignments,
	dates []time.Time,
	buckets int,
) [][]float64 {
	bucketReturns := make([][]float64, len(dates))
	for t, date := range dates {
		grouped := make([][]float64, buckets)
		assigned := assignments[date]
		for _, obs := range byDate[date] {
			bucket, ok := assigned[obs.Ticker]
			if !ok {
				continue
			}
			grouped[bucket-1] = append(grouped[bucket-1], obs.Return)
		}
		row := make([]float64, buckets)
		for b, members := range grouped {
			row[b] = formulas.Mean(members)
		}
		bucketReturns[t] = row
	}
	return bucketReturns
}
