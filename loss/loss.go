// Package loss turns logits and integer labels into a scalar training signal.
package loss

import (
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/layer"
)

// Options tunes the cross-entropy.
type Options struct {
	// DoubleSoftmax normalizes the logits with a softmax before the
	// log-softmax cross-entropy. It reproduces the historic training signal
	// and is off by default.
	DoubleSoftmax bool
}

// CrossEntropy returns the mean softmax cross-entropy of logits [batch, classes]
// against labels, one per row. Labels outside [0, classes) are a data range error.
func CrossEntropy(p *layer.Pass, logits *G.Node, labels []int) (*G.Node, error) {
	return Options{}.CrossEntropy(p, logits, labels)
}

// CrossEntropy is CrossEntropy with options o.
func (o Options) CrossEntropy(p *layer.Pass, logits *G.Node, labels []int) (*G.Node, error) {
	shape := logits.Shape()
	if shape.Dims() != 2 {
		return nil, errtypes.Shape("want logits [batch, classes], got %v", shape)
	}
	batch, classes := shape[0], shape[1]
	if len(labels) != batch {
		return nil, errtypes.Shape("%d labels for a batch of %d", len(labels), batch)
	}
	target, err := OneHot(labels, classes)
	if err != nil {
		return nil, err
	}

	x := logits
	if o.DoubleSoftmax {
		if x, err = G.SoftMax(x); err != nil {
			return nil, errtypes.Shape("softmax: %v", err)
		}
	}
	logp, err := logSoftMax(x)
	if err != nil {
		return nil, errtypes.Shape("log softmax: %v", err)
	}
	picked, err := G.HadamardProd(p.Input("target", target), logp)
	if err != nil {
		return nil, errtypes.Shape("cross entropy: %v", err)
	}
	total, err := G.Sum(picked)
	if err != nil {
		return nil, errtypes.Shape("cross entropy: %v", err)
	}
	return G.Mul(total, G.NewConstant(float32(-1)/float32(batch)))
}

// logSoftMax computes x - max(x) - log(sum(exp(x - max(x)))) along the
// class axis of x [batch, classes].
func logSoftMax(x *G.Node) (*G.Node, error) {
	mx, err := G.Max(x, 1)
	if err != nil {
		return nil, err
	}
	shifted, err := G.BroadcastSub(x, mx, nil, []byte{1})
	if err != nil {
		return nil, err
	}
	exp, err := G.Exp(shifted)
	if err != nil {
		return nil, err
	}
	sum, err := G.Sum(exp, 1)
	if err != nil {
		return nil, err
	}
	lse, err := G.Log(sum)
	if err != nil {
		return nil, err
	}
	return G.BroadcastSub(shifted, lse, nil, []byte{1})
}

// OneHot encodes labels as rows of a [len(labels), classes] float32 tensor.
func OneHot(labels []int, classes int) (*tensor.Dense, error) {
	data := make([]float32, len(labels)*classes)
	for i, l := range labels {
		if l < 0 || l >= classes {
			return nil, errtypes.DataRange("label %d at row %d outside [0, %d)", l, i, classes)
		}
		data[i*classes+l] = 1
	}
	return tensor.New(tensor.WithShape(len(labels), classes), tensor.WithBacking(data)), nil
}
