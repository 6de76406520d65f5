// Package relu implements the rectified linear activation
package relu

import (
	G "gorgonia.org/gorgonia"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/layer"
)

// ReLULayer has no state; every Lay returns the same activation.
type ReLULayer struct{}

type ReLU struct{}

// New creates a new ReLU layer
func New() ReLULayer {
	return ReLULayer{}
}

// Lay turns ReLU layer into a module
func (ReLULayer) Lay(backend.Context) layer.Module {
	return ReLU{}
}

// Forward maps every element x to max(x, 0).
func (ReLU) Forward(_ *layer.Pass, x *G.Node) (*G.Node, error) {
	return G.Rectify(x)
}
