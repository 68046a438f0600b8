package backtest

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// ErrInsufficientEntities is returned when a date has fewer ranked rows than
// buckets, so N non-empty buckets cannot be formed. Callers that prefer to
// skip such dates can test for it with errors.Is, or set SkipThinDates on
// the backtester options.
var ErrInsufficientEntities = errors.New("not enough ranked entities to fill every bucket")

// Bucketer assigns each observation to one of N ranked buckets based on its
// factor value, independently per date.
type Bucketer struct {
	buckets int
	log     zerolog.Logger
}

// NewBucketer creates a bucketer with the given bucket count (N >= 2).
func NewBucketer(buckets int, log zerolog.Logger) (*Bucketer, error) {
	if buckets < 2 {
		return nil, fmt.Errorf("bucket count must be at least 2, got %d", buckets)
	}
	return &Bucketer{
		buckets: buckets,
		log:     log.With().Str("component", "bucketer").Logger(),
	}, nil
}

// Buckets returns the bucket count N.
func (b *Bucketer) Buckets() int {
	return b.buckets
}

// Assign partitions the panel by date and, within each date, ranks rows by
// factor value ascending and maps ranks to buckets via equal-count
// partitioning. Ties are broken by first-seen order (stable rank), so the
// assignment is deterministic even when factor values collide exactly.
// Rows with a missing factor value take no part in their date's ranking.
//
// When the row counts on a date are not evenly divisible by N, the lower
// buckets absorb the remainder, so bucket sizes on a date differ by at
// most 1. Any date with fewer ranked rows than N fails the whole call
// with ErrInsufficientEntities.
func (b *Bucketer) Assign(panel Panel) (Assignments, error) {
	if err := panel.Validate(); err != nil {
		return nil, err
	}

	byDate := make(map[time.Time][]Observation)
	for _, obs := range panel {
		if obs.Factor == nil {
			continue
		}
		byDate[obs.Date] = append(byDate[obs.Date], obs)
	}

	assignments := make(Assignments, len(byDate))
	for date, rows := range byDate {
		assigned, err := b.assignDate(rows)
		if err != nil {
			return nil, fmt.Errorf("date %s: %w", date.Format("2006-01-02"), err)
		}
		assignments[date] = assigned
	}

	b.log.Debug().
		Int("num_dates", len(assignments)).
		Int("buckets", b.buckets).
		Msg("Assigned factor buckets")

	return assignments, nil
}

// assignDate ranks one date's rows and splits the ranked list into N
// contiguous groups. rows preserve panel order, which is what makes the
// stable sort's tie-break deterministic.
func (b *Bucketer) assignDate(rows []Observation) (map[string]int, error) {
	if len(rows) < b.buckets {
		return nil, fmt.Errorf("%w: %d ranked rows for %d buckets",
			ErrInsufficientEntities, len(rows), b.buckets)
	}

	ranked := make([]Observation, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Factor < *ranked[j].Factor
	})

	base := len(ranked) / b.buckets
	remainder := len(ranked) % b.buckets

	assigned := make(map[string]int, len(ranked))
	idx := 0
	for bucket := 1; bucket <= b.buckets; bucket++ {
		size := base
		if bucket <= remainder {
			size++
		}
		for i := 0; i < size; i++ {
			assigned[ranked[idx].Ticker] = bucket
			idx++
		}
	}

	return assigned, nil
}
