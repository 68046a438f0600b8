// Package costs provides closed-form transaction cost estimators for the
// trades a backtest or rebalance implies. The two models here are
// independent pure functions over trade series; no portfolio-level netting
// or aggregation happens at this layer.
package costs

import (
	"fmt"
	"math"
)

// SquareRootImpactModel estimates market impact with the square-root law:
//
//	cost(v) = k × dailyVol × sqrt(|v|) × sign(v)
//
// where v is the trade size as a signed fraction of average daily volume.
// Cost grows sub-linearly with size (a 4x trade costs 2x), and the sign of
// the trade is preserved so buys and sells report symmetric magnitudes with
// opposite direction of value transfer.
type SquareRootImpactModel struct {
	K        float64 // Calibration constant
	DailyVol float64 // Realized daily volatility of the asset
}

// NewSquareRootImpactModel creates an impact model, validating that the
// calibration constant and volatility are non-negative.
func NewSquareRootImpactModel(k, dailyVol float64) (*SquareRootImpactModel, error) {
	if k < 0 {
		return nil, fmt.Errorf("calibration constant must be non-negative, got %f", k)
	}
	if dailyVol < 0 {
		return nil, fmt.Errorf("daily volatility must be non-negative, got %f", dailyVol)
	}
	return &SquareRootImpactModel{K: k, DailyVol: dailyVol}, nil
}

// Cost estimates the impact cost of a single trade. The input is a signed
// fraction of average daily volume; a zero trade costs exactly zero.
func (m *SquareRootImpactModel) Cost(sizeADV float64) float64 {
	if sizeADV == 0 {
		return 0
	}
	cost := m.K * m.DailyVol * math.Sqrt(math.Abs(sizeADV))
	if sizeADV < 0 {
		return -cost
	}
	return cost
}

// Costs estimates impact element-wise over a series of trades, returning a
// parallel series of signed costs.
func (m *SquareRootImpactModel) Costs(sizesADV []float64) []float64 {
	out := make([]float64, len(sizesADV))
	for i, v := range sizesADV {
		out[i] = m.Cost(v)
	}
	return out
}
