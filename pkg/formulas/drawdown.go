package formulas

// DrawdownMetrics represents drawdown analysis of a cumulative return series
type DrawdownMetrics struct {
	MaxDrawdown      float64 `json:"max_drawdown"`       // Worst peak-to-trough decline, in cumulative-return points
	CurrentDrawdown  float64 `json:"current_drawdown"`   // Decline from peak at the final observation
	PeriodsInDecline int     `json:"periods_in_decline"` // Observations since the running peak
	PeakValue        float64 `json:"peak_value"`         // Cumulative return at the peak
	FinalValue       float64 `json:"final_value"`        // Cumulative return at the last observation
}

// MaxDrawdown calculates the maximum drawdown of a cumulative return series.
//
// Drawdown Formula:
//
//	Drawdown(t) = RunningPeak(t) - Cumulative(t)
//	Max Drawdown = Maximum of all drawdowns
//
// The decline is measured in cumulative-return points (a fall from +30% to
// +10% is a 0.20 drawdown). The result is always >= 0, and exactly 0 for a
// monotonically non-decreasing series.
func MaxDrawdown(cumulative []float64) float64 {
	if len(cumulative) == 0 {
		return 0
	}

	maxDrawdown := 0.0
	peak := cumulative[0]

	for _, c := range cumulative {
		if c > peak {
			peak = c
		}
		if dd := peak - c; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	return maxDrawdown
}

// CalculateDrawdownMetrics calculates comprehensive drawdown metrics for a
// cumulative return series, including the current decline from peak and how
// long the series has been below it.
func CalculateDrawdownMetrics(cumulative []float64) *DrawdownMetrics {
	if len(cumulative) == 0 {
		return nil
	}

	maxDrawdown := 0.0
	peak := cumulative[0]
	peakIndex := 0
	final := cumulative[len(cumulative)-1]

	for i, c := range cumulative {
		if c > peak {
			peak = c
			peakIndex = i
		}
		if dd := peak - c; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	return &DrawdownMetrics{
		MaxDrawdown:      maxDrawdown,
		CurrentDrawdown:  peak - final,
		PeriodsInDecline: len(cumulative) - 1 - peakIndex,
		PeakValue:        peak,
		FinalValue:       final,
	}
}
