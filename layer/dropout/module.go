package dropout

import (
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/layer"
)

// Forward multiplies x by a fresh mask drawn from the pass context. The mask
// differs on every call; outside training x is returned unchanged.
func (f *Dropout) Forward(p *layer.Pass, x *G.Node) (*G.Node, error) {
	if !p.Training() || f.prob == 0 {
		return x, nil
	}
	y, err := G.HadamardProd(x, p.Input(f.name+".mask", f.mask(p, x.Shape())))
	if err != nil {
		return nil, errtypes.Shape("%s: %v", f.name, err)
	}
	return y, nil
}

func (f *Dropout) mask(p *layer.Pass, shape tensor.Shape) *tensor.Dense {
	data := make([]float32, shape.TotalSize())
	if f.prob < 1 {
		keep := 1 - f.prob
		scale := float32(1 / keep)
		rng := p.Context().Rand()
		for i := range data {
			if rng.Float64() < keep {
				data[i] = scale
			}
		}
	}
	return tensor.New(tensor.WithShape(shape.Clone()...), tensor.WithBacking(data))
}
