package formulas

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected float64
	}{
		{"empty", []float64{}, 0},
		{"single value", []float64{3.5}, 3.5},
		{"simple average", []float64{1, 2, 3, 4}, 2.5},
		{"negative values", []float64{-0.02, 0.02}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.data); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Mean() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStdDev(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected float64
	}{
		{"empty", []float64{}, 0},
		{"constant series", []float64{2, 2, 2}, 0},
		{"sample stddev of 1..4", []float64{1, 2, 3, 4}, math.Sqrt(5.0 / 3.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StdDev(tt.data); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("StdDev() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// Population stddev divides by n, not n-1, so it sits strictly below the
// sample stddev on the same data.
func TestPopStdDev(t *testing.T) {
	data := []float64{1, 2, 3, 4}

	got := PopStdDev(data)
	want := math.Sqrt(1.25)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("PopStdDev() = %v, want %v", got, want)
	}
	if got >= StdDev(data) {
		t.Errorf("PopStdDev() = %v, expected below sample StdDev %v", got, StdDev(data))
	}

	if PopStdDev(nil) != 0 {
		t.Errorf("PopStdDev(nil) = %v, want 0", PopStdDev(nil))
	}
}

func TestVariance(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected float64
	}{
		{"empty", []float64{}, 0},
		{"sample variance of 1..4", []float64{1, 2, 3, 4}, 5.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Variance(tt.data); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Variance() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	returns := []float64{0.01, 0.03}

	got := AnnualizedVolatility(returns, 12)
	want := 0.01 * math.Sqrt(12)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("AnnualizedVolatility() = %v, want %v", got, want)
	}

	if AnnualizedVolatility(nil, 12) != 0 {
		t.Errorf("AnnualizedVolatility(nil) = %v, want 0", AnnualizedVolatility(nil, 12))
	}
	if AnnualizedVolatility(returns, 0) != 0 {
		t.Errorf("AnnualizedVolatility(periods=0) = %v, want 0", AnnualizedVolatility(returns, 0))
	}
}

func TestCalculateReturns(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		expected []float64
	}{
		{
			name:     "too short",
			prices:   []float64{100},
			expected: []float64{},
		},
		{
			name:     "up then down",
			prices:   []float64{100, 110, 99},
			expected: []float64{0.10, -0.10},
		},
		{
			name:     "zero price yields zero return",
			prices:   []float64{100, 0, 50},
			expected: []float64{-1.0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateReturns(tt.prices)
			if len(got) != len(tt.expected) {
				t.Fatalf("CalculateReturns() length = %d, want %d", len(got), len(tt.expected))
			}
			for i := range got {
				if math.Abs(got[i]-tt.expected[i]) > 1e-12 {
					t.Errorf("CalculateReturns()[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestCorrelation(t *testing.T) {
	tests := []struct {
		name     string
		x        []float64
		y        []float64
		expected float64
	}{
		{"perfectly correlated", []float64{1, 2, 3}, []float64{2, 4, 6}, 1.0},
		{"perfectly anticorrelated", []float64{1, 2, 3}, []float64{6, 4, 2}, -1.0},
		{"length mismatch", []float64{1, 2, 3}, []float64{1, 2}, 0},
		{"empty", []float64{}, []float64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Correlation(tt.x, tt.y); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Correlation() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCovariance(t *testing.T) {
	got := Covariance([]float64{1, 2, 3}, []float64{2, 4, 6})
	if math.Abs(got-2.0) > 1e-12 {
		t.Errorf("Covariance() = %v, want 2.0", got)
	}

	if Covariance([]float64{1, 2}, []float64{1, 2, 3}) != 0 {
		t.Errorf("Covariance() on mismatched lengths should be 0")
	}
}
