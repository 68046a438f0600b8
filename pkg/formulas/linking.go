package formulas

// LinkReturns compounds a sequence of periodic returns into a cumulative
// return series using geometric linking.
//
// Formula:
//
//	cumulative(t) = (1+r_1)(1+r_2)...(1+r_t) - 1
//
// The implicit base is 0% before the first period, so cumulative[0] equals
// returns[0]. The input must be ordered oldest to newest; compounding is
// order-dependent. The function is total over any finite series: a return of
// exactly -100% collapses every subsequent cumulative value to -100%, which
// is the mathematically correct result and is not treated as an error.
func LinkReturns(returns []float64) []float64 {
	cumulative := make([]float64, len(returns))
	growth := 1.0
	for i, r := range returns {
		growth *= 1 + r
		cumulative[i] = growth - 1
	}
	return cumulative
}

// PeriodReturns recovers periodic returns from a cumulative return series.
// The first period's return equals the first cumulative value; subsequent
// returns are the period-over-period growth of the compounded series.
func PeriodReturns(cumulative []float64) []float64 {
	returns := make([]float64, len(cumulative))
	prev := 0.0
	for i, c := range cumulative {
		if 1+prev == 0 {
			// Series already collapsed to -100%; every later period is flat.
			returns[i] = 0
		} else {
			returns[i] = (1+c)/(1+prev) - 1
		}
		prev = c
	}
	return returns
}
