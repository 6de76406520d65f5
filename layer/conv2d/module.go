package conv2d

import (
	G "gorgonia.org/gorgonia"

	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/layer"
)

// Forward convolves x [batch, in, height, width] into [batch, out, height', width'].
func (f *Conv2D) Forward(p *layer.Pass, x *G.Node) (*G.Node, error) {
	shape := x.Shape()
	if shape.Dims() != 4 {
		return nil, errtypes.Shape("%s: want 4-D input, got %v", f.name, shape)
	}
	if shape[1] != f.in {
		return nil, errtypes.Shape("%s: want %d input channels, got %v", f.name, f.in, shape)
	}
	if shape[2] < f.kernel[0] || shape[3] < f.kernel[1] {
		return nil, errtypes.Shape("%s: input %v smaller than kernel %v", f.name, shape, f.kernel)
	}

	y, err := G.Conv2d(x, p.Bind(f.weight), f.kernel, []int{0, 0}, []int{1, 1}, []int{1, 1})
	if err != nil {
		return nil, errtypes.Shape("%s: %v", f.name, err)
	}
	y, err = G.BroadcastAdd(y, p.Bind(f.bias), nil, []byte{0, 2, 3})
	if err != nil {
		return nil, errtypes.Shape("%s bias: %v", f.name, err)
	}
	return y, nil
}

// Params returns the kernel and the bias.
func (f *Conv2D) Params() []*layer.Param {
	return []*layer.Param{f.weight, f.bias}
}
