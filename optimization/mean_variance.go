package optimization

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// Optimizer computes mean-variance portfolio weights from a historical
// return matrix. It holds no state between calls.
type Optimizer struct {
	log zerolog.Logger
}

// NewOptimizer creates a mean-variance optimizer.
func NewOptimizer(log zerolog.Logger) *Optimizer {
	return &Optimizer{
		log: log.With().Str("component", "mv_optimizer").Logger(),
	}
}

// MeanVariance computes unconstrained mean-variance weights from a return
// matrix (rows = time, columns = assets, no missing values).
//
// The closed form is w ∝ Σ⁺μ / λ, where μ is the sample mean vector, Σ the
// sample covariance matrix and λ the risk-aversion scalar, followed by
// normalization so the weights sum to 1. Because λ only rescales the raw
// vector, it cancels in the normalization and does not change the result;
// it is validated and applied anyway so the formula reads as stated.
//
// Σ is inverted through an SVD pseudo-inverse, so singular or near-singular
// covariance (correlated assets, too few observations) is absorbed
// transparently and never surfaces as an error.
//
// When bounds are supplied, every weight is clipped into [Lower, Upper] and
// the clipped vector is renormalized to sum 1. See WeightBounds for why
// this is an approximation rather than a constrained solve.
func (o *Optimizer) MeanVariance(
	returns [][]float64,
	assets []string,
	lambda float64,
	bounds *WeightBounds,
) (map[string]float64, error) {
	n := len(assets)
	if err := validateReturnMatrix(returns, n); err != nil {
		return nil, err
	}
	if lambda <= 0 {
		return nil, fmt.Errorf("risk aversion must be positive, got %f", lambda)
	}
	if bounds != nil && bounds.Lower > bounds.Upper {
		return nil, fmt.Errorf("invalid weight bounds: lower %f > upper %f", bounds.Lower, bounds.Upper)
	}

	mu := SampleMeans(returns)
	sigma, err := SampleCovariance(returns)
	if err != nil {
		return nil, err
	}

	sigmaInv := pseudoInverse(sigma)

	raw := make([]float64, n)
	rawVec := mat.NewVecDense(n, raw)
	rawVec.MulVec(sigmaInv, mat.NewVecDense(n, mu))
	for i := range raw {
		raw[i] /= lambda
	}

	weights, err := normalize(raw)
	if err != nil {
		return nil, err
	}

	if bounds != nil {
		for i := range weights {
			weights[i] = math.Max(bounds.Lower, math.Min(bounds.Upper, weights[i]))
		}
		weights, err = normalize(weights)
		if err != nil {
			return nil, err
		}
	}

	result := make(map[string]float64, n)
	for i, asset := range assets {
		result[asset] = weights[i]
	}

	o.log.Info().
		Int("num_assets", n).
		Int("num_observations", len(returns)).
		Bool("bounded", bounds != nil).
		Msg("Computed mean-variance weights")

	return result, nil
}

// normalize scales a weight vector to sum 1. A sum at numerical zero means
// the closed form produced a fully offsetting long/short vector that cannot
// be expressed as weights summing to 1.
func normalize(weights []float64) ([]float64, error) {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum) < 1e-12 {
		return nil, fmt.Errorf("degenerate weight vector: weights sum to zero, cannot normalize")
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w / sum
	}
	return out, nil
}

// pseudoInverse computes the Moore-Penrose pseudo-inverse via SVD. Singular
// values below a scale-relative tolerance are zeroed rather than inverted,
// which is what makes singular covariance matrices safe to "invert".
func pseudoInverse(a mat.Matrix) *mat.Dense {
	rows, cols := a.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		// Factorization failing on a finite matrix is effectively
		// unreachable; fall back to a zero matrix (pinv of 0).
		return mat.NewDense(cols, rows, nil)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	maxS := 0.0
	for _, sv := range s {
		if sv > maxS {
			maxS = sv
		}
	}
	const machineEpsilon = 2.220446049250313e-16
	tol := float64(max(rows, cols)) * maxS * machineEpsilon

	// pinv = V * S⁺ * Uᵀ
	sInv := mat.NewDense(len(s), len(s), nil)
	for i, sv := range s {
		if sv > tol {
			sInv.Set(i, i, 1/sv)
		}
	}

	var tmp, pinv mat.Dense
	tmp.Mul(&v, sInv)
	pinv.Mul(&tmp, u.T())
	return &pinv
}
