// Package conv2d implements a 2D convolution layer and module
package conv2d

import (
	"fmt"

	"gorgonia.org/tensor"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/layer"
)

type Conv2DLayer struct {
	name         string
	in, out      int
	kernelHeight int
	kernelWidth  int
}

type Conv2D struct {
	name         string
	in, out      int
	kernel       tensor.Shape
	weight, bias *layer.Param
}

// MustNew creates a new Conv2D layer with channel counts and kernel size
func MustNew(name string, in, out, kernelHeight, kernelWidth int) *Conv2DLayer {
	o, err := New(name, in, out, kernelHeight, kernelWidth)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new Conv2D layer with channel counts and kernel size.
// Convolution is unpadded with unit stride, so each spatial axis shrinks by kernel-1.
func New(name string, in, out, kernelHeight, kernelWidth int) (o *Conv2DLayer, err error) {
	if in < 1 || out < 1 {
		return nil, fmt.Errorf("New Conv2D: channels %d->%d must be positive", in, out)
	}
	if kernelHeight < 1 || kernelWidth < 1 {
		return nil, fmt.Errorf("New Conv2D: kernel %dx%d must be positive", kernelHeight, kernelWidth)
	}
	o = new(Conv2DLayer)
	o.name = name
	o.in = in
	o.out = out
	o.kernelHeight = kernelHeight
	o.kernelWidth = kernelWidth
	return
}

// OutputSize returns the spatial size produced for an input of height x width.
func (i *Conv2DLayer) OutputSize(height, width int) (int, int) {
	return height - i.kernelHeight + 1, width - i.kernelWidth + 1
}

// Out returns the number of output channels.
func (i *Conv2DLayer) Out() int {
	return i.out
}

// Lay turns Conv2D layer into a module
func (i *Conv2DLayer) Lay(ctx backend.Context) layer.Module {
	o := new(Conv2D)
	o.name = i.name
	o.in = i.in
	o.out = i.out
	o.kernel = tensor.Shape{i.kernelHeight, i.kernelWidth}
	o.weight = layer.NewParam(i.name+".weight", i.out, i.in, i.kernelHeight, i.kernelWidth)
	o.weight.InitUniform(ctx, i.in*i.kernelHeight*i.kernelWidth)
	o.bias = layer.NewParam(i.name+".bias", 1, i.out, 1, 1)
	return o
}
