package convnet

import (
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/layer"
)

// Model holds the learnable parameters of two convolution stages, a hidden
// fully connected layer and the output layer.
type Model struct {
	config        ModelConfig
	height, width int
	flat          int

	conv1, active1, pool1, dropout1    layer.Module
	conv2, active2, pool2, dropout2    layer.Module
	linear1, active3, dropout3, linear2 layer.Module

	params []*layer.Param
}

// Config returns the configuration the model was built from.
func (m *Model) Config() ModelConfig {
	return m.config
}

// InputSize returns the image height and width the model accepts.
func (m *Model) InputSize() (height, width int) {
	return m.height, m.width
}

// Params returns every learnable parameter, convolutions first.
func (m *Model) Params() []*layer.Param {
	return m.params
}

// NumParams returns the count of learnable scalars.
func (m *Model) NumParams() (o int) {
	for _, p := range m.params {
		o += p.Shape().TotalSize()
	}
	return
}

func (m *Model) stages() []layer.Module {
	return []layer.Module{
		m.conv1, m.active1, m.pool1, m.dropout1,
		m.conv2, m.active2, m.pool2, m.dropout2,
	}
}

func (m *Model) head() []layer.Module {
	return []layer.Module{m.linear1, m.active3, m.dropout3, m.linear2}
}

// Forward maps images [batch, 1, height, width] to logits [batch, classes].
// Dropout is active only when p is a training pass. No softmax is applied.
func (m *Model) Forward(p *layer.Pass, images *G.Node) (*G.Node, error) {
	shape := images.Shape()
	if shape.Dims() != 4 || shape[1] != 1 || shape[2] != m.height || shape[3] != m.width {
		return nil, errtypes.Shape("want images [batch, 1, %d, %d], got %v", m.height, m.width, shape)
	}

	x, err := layer.Chain(p, images, m.stages()...)
	if err != nil {
		return nil, err
	}
	flat, err := G.Reshape(x, tensor.Shape{shape[0], m.flat})
	if err != nil {
		return nil, errtypes.Shape("flatten %v: %v", x.Shape(), err)
	}
	return layer.Chain(p, flat, m.head()...)
}

// Predict evaluates the logits of images in evaluation mode.
func (m *Model) Predict(ctx backend.Context, images *tensor.Dense) (*tensor.Dense, error) {
	p := layer.NewPass(ctx, layer.Eval)
	logits, err := m.Forward(p, p.Input("images", images))
	if err != nil {
		return nil, err
	}
	out, err := p.Run(logits)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}
