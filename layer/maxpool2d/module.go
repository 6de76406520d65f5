package maxpool2d

import (
	G "gorgonia.org/gorgonia"

	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/layer"
)

// Forward pools x [batch, channels, height, width] window by window.
func (s *MaxPool2D) Forward(_ *layer.Pass, x *G.Node) (*G.Node, error) {
	shape := x.Shape()
	if shape.Dims() != 4 {
		return nil, errtypes.Shape("%s: want 4-D input, got %v", s.name, shape)
	}
	if shape[2] < s.kernel[0] || shape[3] < s.kernel[1] {
		return nil, errtypes.Shape("%s: input %v smaller than window %v", s.name, shape, s.kernel)
	}
	y, err := G.MaxPool2D(x, s.kernel, []int{0, 0}, s.stride)
	if err != nil {
		return nil, errtypes.Shape("%s: %v", s.name, err)
	}
	return y, nil
}
