// Package convnet implements the convolutional digit classifier
package convnet

import (
	"math"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/layer"
	"github.com/neurlang/digitnet/layer/conv2d"
	"github.com/neurlang/digitnet/layer/dropout"
	"github.com/neurlang/digitnet/layer/full"
	"github.com/neurlang/digitnet/layer/maxpool2d"
	"github.com/neurlang/digitnet/layer/relu"
)

// Architecture constants of the convolution stack.
const (
	ImageSize     = 28
	Conv1Channels = 8
	Conv2Channels = 16
	KernelSize    = 3
	PoolSize      = 2
)

// ModelConfig is the immutable hyperparameter record of the model.
type ModelConfig struct {
	NumClasses int
	HiddenSize int
	Dropout1   float64
	Dropout2   float64
	Dropout3   float64

	// InputHeight and InputWidth default to ImageSize.
	InputHeight int
	InputWidth  int

	// Linear1In pins the input features of the hidden layer. Zero derives it
	// from the convolution stack; a non-zero value must match the derived one.
	Linear1In int
}

// DefaultModelConfig returns the configuration of the reference run.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		NumClasses: 10,
		HiddenSize: 128,
		Dropout1:   0.5,
		Dropout2:   0.5,
		Dropout3:   0.5,
	}
}

func (c ModelConfig) resolution() (int, int) {
	h, w := c.InputHeight, c.InputWidth
	if h == 0 {
		h = ImageSize
	}
	if w == 0 {
		w = ImageSize
	}
	return h, w
}

func (c ModelConfig) layers() (conv1, conv2 *conv2d.Conv2DLayer, pool *maxpool2d.MaxPool2DLayer) {
	conv1 = conv2d.MustNew("conv1", 1, Conv1Channels, KernelSize, KernelSize)
	conv2 = conv2d.MustNew("conv2", Conv1Channels, Conv2Channels, KernelSize, KernelSize)
	pool = maxpool2d.MustNew("pool", PoolSize, PoolSize)
	return
}

// FlattenedSize returns the per-image feature count leaving the convolution
// stack for the configured resolution.
func (c ModelConfig) FlattenedSize() (int, error) {
	height, width := c.resolution()
	h, w := height, width
	conv1, conv2, pool := c.layers()
	for _, stage := range []*conv2d.Conv2DLayer{conv1, conv2} {
		h, w = stage.OutputSize(h, w)
		if h < PoolSize || w < PoolSize {
			return 0, errtypes.Configuration("input %dx%d too small for the convolution stack", height, width)
		}
		h, w = pool.OutputSize(h, w)
	}
	return conv2.Out() * h * w, nil
}

// Validate checks every hyperparameter and the hidden layer input size.
func (c ModelConfig) Validate() error {
	if c.NumClasses < 1 {
		return errtypes.Configuration("num_classes must be >= 1 (got %d)", c.NumClasses)
	}
	if c.HiddenSize < 1 {
		return errtypes.Configuration("hidden_size must be >= 1 (got %d)", c.HiddenSize)
	}
	for i, p := range []float64{c.Dropout1, c.Dropout2, c.Dropout3} {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return errtypes.Configuration("dropout%d must be in [0, 1] (got %v)", i+1, p)
		}
	}
	if c.InputHeight < 0 || c.InputWidth < 0 {
		return errtypes.Configuration("input resolution %dx%d is negative", c.InputHeight, c.InputWidth)
	}
	flat, err := c.FlattenedSize()
	if err != nil {
		return err
	}
	if c.Linear1In != 0 && c.Linear1In != flat {
		h, w := c.resolution()
		return errtypes.Configuration("linear1 expects %d input features but the %dx%d convolution stack yields %d", c.Linear1In, h, w, flat)
	}
	return nil
}

// Init validates the configuration and returns a model with freshly
// initialized parameters drawn from ctx.
func (c ModelConfig) Init(ctx backend.Context) (*Model, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	flat, _ := c.FlattenedSize()
	height, width := c.resolution()
	conv1, conv2, pool := c.layers()

	linear1 := full.MustNew("linear1", flat, c.HiddenSize)

	m := &Model{config: c, height: height, width: width, flat: linear1.In()}
	stages := layer.Sequential(ctx,
		conv1, relu.New(), pool, dropout.MustNew("dropout1", c.Dropout1),
		conv2, relu.New(), pool, dropout.MustNew("dropout2", c.Dropout2),
	)
	m.conv1, m.active1, m.pool1, m.dropout1 = stages[0], stages[1], stages[2], stages[3]
	m.conv2, m.active2, m.pool2, m.dropout2 = stages[4], stages[5], stages[6], stages[7]

	head := layer.Sequential(ctx,
		linear1, relu.New(), dropout.MustNew("dropout3", c.Dropout3),
		full.MustNew("linear2", c.HiddenSize, c.NumClasses),
	)
	m.linear1, m.active3, m.dropout3, m.linear2 = head[0], head[1], head[2], head[3]
	m.params = layer.Params(append(m.stages(), m.head()...)...)
	return m, nil
}

// MustInit is Init which panics on an invalid configuration.
func (c ModelConfig) MustInit(ctx backend.Context) *Model {
	m, err := c.Init(ctx)
	if err != nil {
		panic(err.Error())
	}
	return m
}
