package full

import (
	G "gorgonia.org/gorgonia"

	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/layer"
)

// Forward maps x [batch, in] to x·W + b [batch, out].
func (f *Full) Forward(p *layer.Pass, x *G.Node) (*G.Node, error) {
	shape := x.Shape()
	if shape.Dims() != 2 || shape[1] != f.in {
		return nil, errtypes.Shape("%s: want [batch, %d] input, got %v", f.name, f.in, shape)
	}
	y, err := G.Mul(x, p.Bind(f.weight))
	if err != nil {
		return nil, errtypes.Shape("%s: %v", f.name, err)
	}
	y, err = G.BroadcastAdd(y, p.Bind(f.bias), nil, []byte{0})
	if err != nil {
		return nil, errtypes.Shape("%s bias: %v", f.name, err)
	}
	return y, nil
}

// Params returns the weight matrix and the bias row.
func (f *Full) Params() []*layer.Param {
	return []*layer.Param{f.weight, f.bias}
}
