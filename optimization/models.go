// Package optimization computes mean-variance portfolio weights from
// historical return matrices, plus the covariance estimates feeding them.
package optimization

// WeightBounds clips every optimized weight into [Lower, Upper] before a
// final renormalization. The clip-then-renormalize step is a documented
// approximation, not a constrained solve: extreme weights get compressed
// disproportionately, and the renormalized weights can sit slightly outside
// the bounds again when many assets were clipped.
type WeightBounds struct {
	Lower float64
	Upper float64
}

// CorrelationPair records a pair of assets whose return correlation exceeds
// a reporting threshold, for surfacing concentration risk to callers.
type CorrelationPair struct {
	AssetA      string  `json:"asset_a"`
	AssetB      string  `json:"asset_b"`
	Correlation float64 `json:"correlation"`
}
