// Package learning implements the parameter update stage of training
package learning

import (
	"math"

	"gorgonia.org/vecf32"

	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/layer"
)

// AdamW is adaptive moment estimation with decoupled weight decay. Moment
// estimates are kept per parameter identity and persist for the whole run.
type AdamW struct {
	h       HyperParameters
	step    int
	moments map[*layer.Param]*moment
}

type moment struct {
	m, v     []float32
	upd, den []float32
}

// NewAdamW creates an optimizer with hyperparameters h.
func NewAdamW(h HyperParameters) (*AdamW, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return &AdamW{h: h, moments: make(map[*layer.Param]*moment)}, nil
}

// MustNewAdamW is NewAdamW which panics on invalid hyperparameters.
func MustNewAdamW(h HyperParameters) *AdamW {
	a, err := NewAdamW(h)
	if err != nil {
		panic(err.Error())
	}
	return a
}

// Steps returns the number of applied steps.
func (a *AdamW) Steps() int {
	return a.step
}

// HyperParameters returns the optimizer settings.
func (a *AdamW) HyperParameters() HyperParameters {
	return a.h
}

func (a *AdamW) state(p *layer.Param, n int) *moment {
	s, ok := a.moments[p]
	if !ok {
		s = &moment{
			m:   make([]float32, n),
			v:   make([]float32, n),
			upd: make([]float32, n),
			den: make([]float32, n),
		}
		a.moments[p] = s
	}
	return s
}

// Step consumes grads and updates every parameter in params which has a
// gradient, in place, with learning rate lr. Shapes are checked before any
// parameter or moment is touched.
func (a *AdamW) Step(lr float64, params []*layer.Param, grads *layer.Gradients) error {
	if lr <= 0 || math.IsNaN(lr) {
		return errtypes.Configuration("learning rate must be > 0 (got %v)", lr)
	}
	g, err := grads.Consume()
	if err != nil {
		return err
	}
	for _, p := range params {
		grad, ok := g[p]
		if !ok {
			continue
		}
		if !grad.Shape().Eq(p.Shape()) {
			return errtypes.Shape("gradient of %s has shape %v, parameter %v", p.Name, grad.Shape(), p.Shape())
		}
		if _, ok := grad.Data().([]float32); !ok {
			return errtypes.Shape("gradient of %s is %v, want float32", p.Name, grad.Dtype())
		}
	}

	a.step++
	t := float64(a.step)
	b1, b2 := float32(a.h.Beta1), float32(a.h.Beta2)
	correct1 := 1 - math.Pow(a.h.Beta1, t)
	correct2 := 1 - math.Pow(a.h.Beta2, t)
	decay := float32(1 - lr*a.h.WeightDecay)

	for _, p := range params {
		grad, ok := g[p]
		if !ok {
			continue
		}
		gd := grad.Data().([]float32)
		pd := p.Data()
		s := a.state(p, len(pd))

		// m = b1*m + (1-b1)*g
		vecf32.Scale(s.m, b1)
		copy(s.upd, gd)
		vecf32.Scale(s.upd, 1-b1)
		vecf32.Add(s.m, s.upd)

		// v = b2*v + (1-b2)*g*g
		vecf32.Scale(s.v, b2)
		copy(s.upd, gd)
		vecf32.Mul(s.upd, gd)
		vecf32.Scale(s.upd, 1-b2)
		vecf32.Add(s.v, s.upd)

		// den = sqrt(v/correct2) + eps
		copy(s.den, s.v)
		vecf32.Scale(s.den, float32(1/correct2))
		vecf32.Sqrt(s.den)
		vecf32.Trans(s.den, float32(a.h.Epsilon))

		// upd = lr * (m/correct1) / den
		copy(s.upd, s.m)
		vecf32.Scale(s.upd, float32(lr/correct1))
		vecf32.Div(s.upd, s.den)

		if a.h.WeightDecay != 0 {
			vecf32.Scale(pd, decay)
		}
		vecf32.Sub(pd, s.upd)
	}
	return nil
}
