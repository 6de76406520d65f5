package learning

import (
	"math"

	"github.com/neurlang/digitnet/errtypes"
)

type HyperParameters struct {
	Beta1   float64 // decay of the first moment estimate
	Beta2   float64 // decay of the second moment estimate
	Epsilon float64 // added to the root of the second moment to avoid division by zero

	// WeightDecay shrinks every parameter by lr*WeightDecay each step,
	// independently of its gradient. Zero disables decay.
	WeightDecay float64
}

// DefaultHyperParameters returns the usual Adam moment decays and no weight decay.
func DefaultHyperParameters() HyperParameters {
	return HyperParameters{
		Beta1:   0.9,
		Beta2:   0.999,
		Epsilon: 1e-8,
	}
}

// Validate checks the decays lie in [0, 1) and the rest is non-negative.
func (h HyperParameters) Validate() error {
	for _, b := range []struct {
		name  string
		value float64
	}{{"beta1", h.Beta1}, {"beta2", h.Beta2}} {
		if b.value < 0 || b.value >= 1 || math.IsNaN(b.value) {
			return errtypes.Configuration("%s must be in [0, 1) (got %v)", b.name, b.value)
		}
	}
	if h.Epsilon <= 0 || math.IsNaN(h.Epsilon) {
		return errtypes.Configuration("epsilon must be > 0 (got %v)", h.Epsilon)
	}
	if h.WeightDecay < 0 || math.IsNaN(h.WeightDecay) {
		return errtypes.Configuration("weight_decay must be >= 0 (got %v)", h.WeightDecay)
	}
	return nil
}
