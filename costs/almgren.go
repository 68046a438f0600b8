package costs

import "fmt"

// AlmgrenChrissModel estimates execution cost as a permanent/temporary split:
//
//	cost(shares, horizon) = permanentCostPerShare × shares + eta × shares / horizon
//
// The permanent term is linear in trade size; the temporary term is inversely
// proportional to the execution horizon, so compressing the same trade into
// half the time doubles its temporary cost (urgency premium).
type AlmgrenChrissModel struct {
	PermanentCostPerShare float64 // Permanent impact per share traded
	Eta                   float64 // Temporary impact coefficient
}

// Trade is one execution: an absolute share count and the horizon it is
// worked over, in the caller's time unit (commonly days).
type Trade struct {
	Shares  float64
	Horizon float64
}

// NewAlmgrenChrissModel creates an Almgren-Chriss cost model.
func NewAlmgrenChrissModel(permanentCostPerShare, eta float64) (*AlmgrenChrissModel, error) {
	if permanentCostPerShare < 0 {
		return nil, fmt.Errorf("permanent cost per share must be non-negative, got %f", permanentCostPerShare)
	}
	if eta < 0 {
		return nil, fmt.Errorf("eta must be non-negative, got %f", eta)
	}
	return &AlmgrenChrissModel{
		PermanentCostPerShare: permanentCostPerShare,
		Eta:                   eta,
	}, nil
}

// Cost estimates the execution cost of a single trade. A non-positive
// horizon is a contract violation and is rejected explicitly; silently
// propagating the infinite temporary cost it implies would poison every
// downstream aggregate.
func (m *AlmgrenChrissModel) Cost(shares, horizon float64) (float64, error) {
	if horizon <= 0 {
		return 0, fmt.Errorf("time horizon must be positive, got %f", horizon)
	}
	return m.PermanentCostPerShare*shares + m.Eta*shares/horizon, nil
}

// Costs estimates execution cost element-wise over a series of trades,
// returning a parallel series. The first invalid trade fails the whole call;
// no partial series is returned.
func (m *AlmgrenChrissModel) Costs(trades []Trade) ([]float64, error) {
	out := make([]float64, len(trades))
	for i, trade := range trades {
		cost, err := m.Cost(trade.Shares, trade.Horizon)
		if err != nil {
			return nil, fmt.Errorf("trade %d: %w", i, err)
		}
		out[i] = cost
	}
	return out, nil
}
