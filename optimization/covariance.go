package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// HighCorrelationThreshold is the default cutoff above which a pair of
// assets is reported as highly correlated.
const HighCorrelationThreshold = 0.80

// validateReturnMatrix checks the optimizer's input schema: rows = time,
// columns = assets, rectangular, at least two observations, and no missing
// values (NaN or Inf anywhere fails fast).
func validateReturnMatrix(returns [][]float64, numAssets int) error {
	if numAssets == 0 {
		return fmt.Errorf("no assets provided")
	}
	if len(returns) < 2 {
		return fmt.Errorf("need at least 2 return observations, got %d", len(returns))
	}
	for t, row := range returns {
		if len(row) != numAssets {
			return fmt.Errorf("return row %d has %d values, expected %d", t, len(row), numAssets)
		}
		for j, r := range row {
			if math.IsNaN(r) || math.IsInf(r, 0) {
				return fmt.Errorf("return row %d, asset %d: missing or non-finite value", t, j)
			}
		}
	}
	return nil
}

// SampleMeans returns the per-asset mean of a return matrix (rows = time).
func SampleMeans(returns [][]float64) []float64 {
	if len(returns) == 0 {
		return nil
	}
	n := len(returns[0])
	means := make([]float64, n)
	for _, row := range returns {
		for j, r := range row {
			means[j] += r
		}
	}
	for j := range means {
		means[j] /= float64(len(returns))
	}
	return means
}

// SampleCovariance calculates the sample covariance matrix of a return
// matrix (rows = time, columns = assets).
func SampleCovariance(returns [][]float64) (*mat.SymDense, error) {
	if len(returns) == 0 || len(returns[0]) == 0 {
		return nil, fmt.Errorf("empty return matrix")
	}
	rows := len(returns)
	cols := len(returns[0])
	if err := validateReturnMatrix(returns, cols); err != nil {
		return nil, err
	}

	data := mat.NewDense(rows, cols, nil)
	for t, row := range returns {
		data.SetRow(t, row)
	}

	cov := mat.NewSymDense(cols, nil)
	stat.CovarianceMatrix(cov, data, nil)
	return cov, nil
}

// LedoitWolfCovariance calculates the covariance matrix with Ledoit-Wolf
// shrinkage towards a constant-correlation target. Shrinkage pulls noisy
// off-diagonal estimates towards the average covariance, which stabilizes
// downstream optimization when observations are scarce relative to assets.
func LedoitWolfCovariance(returns [][]float64) (*mat.SymDense, error) {
	sampleCov, err := SampleCovariance(returns)
	if err != nil {
		return nil, err
	}
	return applyLedoitWolfShrinkage(sampleCov), nil
}

// applyLedoitWolfShrinkage blends the sample covariance with a
// constant-correlation target: average variance on the diagonal, average
// covariance off it. The shrinkage intensity is a simplified estimator
// capped at 0.5; with too little structure to estimate it, 20% is used.
func applyLedoitWolfShrinkage(sampleCov *mat.SymDense) *mat.SymDense {
	n := sampleCov.SymmetricDim()

	var avgVar, avgCov float64
	for i := 0; i < n; i++ {
		avgVar += sampleCov.At(i, i)
		for j := 0; j < n; j++ {
			if i != j {
				avgCov += sampleCov.At(i, j)
			}
		}
	}
	avgVar /= float64(n)
	if n > 1 {
		avgCov /= float64(n * (n - 1))
	}

	target := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		target.SetSym(i, i, avgVar)
		for j := i + 1; j < n; j++ {
			if avgVar > 0 {
				target.SetSym(i, j, avgCov)
			}
		}
	}

	shrinkage := 0.2
	if n > 2 && avgVar > 0 {
		var sumSqDiff float64
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				diff := sampleCov.At(i, j) - target.At(i, j)
				sumSqDiff += diff * diff
			}
		}
		meanSqDiff := sumSqDiff / float64(n*n)

		var meanSample, sumSqSample float64
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				val := sampleCov.At(i, j)
				meanSample += val
				sumSqSample += val * val
			}
		}
		count := float64(n * n)
		meanSample /= count
		varSample := sumSqSample/count - meanSample*meanSample

		if varSample > 0 && meanSqDiff > 0 {
			shrinkage = math.Min(0.5, math.Max(0.0, varSample/(varSample+meanSqDiff)))
		}
	}

	shrunk := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			shrunk.SetSym(i, j, (1-shrinkage)*sampleCov.At(i, j)+shrinkage*target.At(i, j))
		}
	}
	return shrunk
}

// CorrelationPairs extracts asset pairs whose correlation implied by the
// covariance matrix exceeds the threshold, in (i, j) scan order.
func CorrelationPairs(cov *mat.SymDense, assets []string, threshold float64) ([]CorrelationPair, error) {
	n := cov.SymmetricDim()
	if n != len(assets) {
		return nil, fmt.Errorf("covariance matrix size %d doesn't match asset count %d", n, len(assets))
	}

	var pairs []CorrelationPair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			vi, vj := cov.At(i, i), cov.At(j, j)
			if vi <= 0 || vj <= 0 {
				continue
			}
			corr := cov.At(i, j) / math.Sqrt(vi*vj)
			if math.Abs(corr) >= threshold {
				pairs = append(pairs, CorrelationPair{
					AssetA:      assets[i],
					AssetB:      assets[j],
					Correlation: corr,
				})
			}
		}
	}
	return pairs, nil
}
