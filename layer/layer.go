// Package layer defines the layer and module interfaces of the network
package layer

import (
	G "gorgonia.org/gorgonia"

	"github.com/neurlang/digitnet/backend"
)

// Layer is the layer description which can be used for instantiating a module
type Layer interface {

	// Lay creates a module, drawing its initial parameters from ctx
	Lay(ctx backend.Context) Module
}

// Module is a materialized layer applied to nodes of a forward pass.
type Module interface {

	// Forward applies the module to x inside the pass p.
	Forward(p *Pass, x *G.Node) (*G.Node, error)
}

// Learnable is a module holding parameters updated by an optimizer.
type Learnable interface {

	// Params returns the module parameters in a stable order.
	Params() []*Param
}

// Mode selects the training or evaluation behaviour of a pass.
type Mode int

const (
	// Eval disables stochastic layers.
	Eval Mode = iota
	// Train enables stochastic layers such as dropout.
	Train
)

func (m Mode) String() string {
	if m == Train {
		return "train"
	}
	return "eval"
}

// Sequential lays layers in order.
func Sequential(ctx backend.Context, layers ...Layer) []Module {
	modules := make([]Module, len(layers))
	for i, l := range layers {
		modules[i] = l.Lay(ctx)
	}
	return modules
}

// Chain applies modules in order.
func Chain(p *Pass, x *G.Node, modules ...Module) (*G.Node, error) {
	var err error
	for _, m := range modules {
		if x, err = m.Forward(p, x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// Params collects the parameters of every learnable module.
func Params(modules ...Module) (o []*Param) {
	for _, m := range modules {
		if l, ok := m.(Learnable); ok {
			o = append(o, l.Params()...)
		}
	}
	return
}
