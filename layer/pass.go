package layer

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/errtypes"
)

// Pass is a single forward (and optionally backward) evaluation. It owns a
// fresh expression graph into which inputs and parameters are bound; the
// graph is executed once by Run or Backward.
type Pass struct {
	ctx   backend.Context
	mode  Mode
	g     *G.ExprGraph
	nodes map[*Param]*G.Node
	order []*Param
	seq   int
	ran   bool
}

// NewPass creates a pass over the compute context ctx.
func NewPass(ctx backend.Context, mode Mode) *Pass {
	return &Pass{
		ctx:   ctx,
		mode:  mode,
		g:     G.NewGraph(),
		nodes: make(map[*Param]*G.Node),
	}
}

// Context returns the compute context of the pass.
func (p *Pass) Context() backend.Context { return p.ctx }

// Mode returns the pass mode.
func (p *Pass) Mode() Mode { return p.mode }

// Training reports whether stochastic layers are active.
func (p *Pass) Training() bool { return p.mode == Train }

// Graph returns the expression graph of the pass.
func (p *Pass) Graph() *G.ExprGraph { return p.g }

// Bind returns the graph node holding param, creating it on first use.
func (p *Pass) Bind(param *Param) *G.Node {
	if n, ok := p.nodes[param]; ok {
		return n
	}
	n := p.Input(param.Name, param.Value)
	p.nodes[param] = n
	p.order = append(p.order, param)
	return n
}

// Input binds t into the graph as a leaf node.
func (p *Pass) Input(name string, t *tensor.Dense) *G.Node {
	p.seq++
	return G.NewTensor(p.g, t.Dtype(), t.Dims(),
		G.WithShape(t.Shape().Clone()...),
		G.WithName(fmt.Sprintf("%s_%d", name, p.seq)),
		G.WithValue(t),
	)
}

// Run executes the graph without differentiation and returns copies of the
// values of outputs.
func (p *Pass) Run(outputs ...*G.Node) ([]*tensor.Dense, error) {
	if p.ran {
		return nil, fmt.Errorf("layer: pass already executed")
	}
	p.ran = true
	vm := p.ctx.NewMachine(p.g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return nil, errtypes.Resource(err, "forward on %s", p.ctx.Device())
	}
	values := make([]*tensor.Dense, len(outputs))
	for i, n := range outputs {
		v, err := Dense(n)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Backward differentiates the scalar cost with respect to every bound
// parameter, executes the graph to completion and returns the cost value and
// a fresh gradient set.
func (p *Pass) Backward(cost *G.Node) (float64, *Gradients, error) {
	if p.ran {
		return 0, nil, fmt.Errorf("layer: pass already executed")
	}
	if !cost.IsScalar() {
		return 0, nil, errtypes.Shape("cost must be a scalar, got %v", cost.Shape())
	}
	wrt := make(G.Nodes, len(p.order))
	for i, param := range p.order {
		wrt[i] = p.nodes[param]
	}
	grads, err := G.Grad(cost, wrt...)
	if err != nil {
		return 0, nil, errtypes.Shape("differentiate: %v", err)
	}

	p.ran = true
	vm := p.ctx.NewMachine(p.g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return 0, nil, errtypes.Resource(err, "backward on %s", p.ctx.Device())
	}

	out := NewGradients()
	for i, param := range p.order {
		v, ok := grads[i].Value().(*tensor.Dense)
		if !ok {
			return 0, nil, errtypes.Shape("gradient of %s is not a dense tensor", param.Name)
		}
		out.Set(param, v.Clone().(*tensor.Dense))
	}
	value, err := Scalar(cost)
	if err != nil {
		return 0, nil, err
	}
	return value, out, nil
}

// Scalar reads the float value of an executed scalar node.
func Scalar(n *G.Node) (float64, error) {
	v := n.Value()
	if v == nil {
		return 0, fmt.Errorf("layer: node %s has no value", n.Name())
	}
	switch x := v.Data().(type) {
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case []float32:
		if len(x) == 1 {
			return float64(x[0]), nil
		}
	case []float64:
		if len(x) == 1 {
			return x[0], nil
		}
	}
	return 0, errtypes.Shape("node %s is not a scalar", n.Name())
}

// Dense reads the value of an executed node as a copied dense tensor. A
// scalar value becomes a one element tensor of shape (1).
func Dense(n *G.Node) (*tensor.Dense, error) {
	switch v := n.Value().(type) {
	case *tensor.Dense:
		return v.Clone().(*tensor.Dense), nil
	case *G.F32:
		return tensor.New(tensor.WithShape(1), tensor.WithBacking([]float32{float32(*v)})), nil
	case *G.F64:
		return tensor.New(tensor.WithShape(1), tensor.WithBacking([]float64{float64(*v)})), nil
	}
	return nil, fmt.Errorf("layer: node %s has no dense value", n.Name())
}
