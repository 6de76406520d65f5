package layer

import (
	"math"

	"gorgonia.org/tensor"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/errtypes"
)

// Param is a learnable tensor owned by a module. The optimizer replaces its
// values in place every step.
type Param struct {
	Name  string
	Value *tensor.Dense
}

// NewParam creates a zero valued float32 parameter.
func NewParam(name string, shape ...int) *Param {
	return &Param{
		Name:  name,
		Value: tensor.New(tensor.WithShape(shape...), tensor.Of(tensor.Float32)),
	}
}

// Data returns the parameter backing slice.
func (p *Param) Data() []float32 {
	return p.Value.Data().([]float32)
}

// Shape returns the parameter shape.
func (p *Param) Shape() tensor.Shape {
	return p.Value.Shape()
}

// InitUniform fills p uniformly in [-1/sqrt(fanIn), 1/sqrt(fanIn)] using the ctx random source.
func (p *Param) InitUniform(ctx backend.Context, fanIn int) {
	bound := 1 / math.Sqrt(float64(fanIn))
	rng := ctx.Rand()
	data := p.Data()
	for i := range data {
		data[i] = float32((rng.Float64()*2 - 1) * bound)
	}
}

// Gradients maps each parameter to its gradient. A set is produced by one
// backward pass and consumed exactly once by an optimizer step.
type Gradients struct {
	grads    map[*Param]*tensor.Dense
	consumed bool
}

// NewGradients creates an empty gradient set.
func NewGradients() *Gradients {
	return &Gradients{grads: make(map[*Param]*tensor.Dense)}
}

// Set stores the gradient of p.
func (g *Gradients) Set(p *Param, grad *tensor.Dense) {
	g.grads[p] = grad
}

// Get returns the gradient of p.
func (g *Gradients) Get(p *Param) (*tensor.Dense, bool) {
	grad, ok := g.grads[p]
	return grad, ok
}

// Len returns the number of parameters with a gradient.
func (g *Gradients) Len() int {
	return len(g.grads)
}

// Consumed reports whether the set was already applied.
func (g *Gradients) Consumed() bool {
	return g.consumed
}

// Consume hands the gradients over and marks the set as used.
func (g *Gradients) Consume() (map[*Param]*tensor.Dense, error) {
	if g.consumed {
		return nil, errtypes.ErrConsumed
	}
	g.consumed = true
	grads := g.grads
	g.grads = nil
	return grads, nil
}
