// Package maxpool2d implements a 2D max pooling layer and module
package maxpool2d

import (
	"fmt"

	"gorgonia.org/tensor"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/layer"
)

// MaxPool2DLayer describes a pooling window; the stride equals the window.
type MaxPool2DLayer struct {
	name          string
	height, width int
}

type MaxPool2D struct {
	name   string
	kernel tensor.Shape
	stride []int
}

// New creates a new MaxPool2D layer with window height x width
func New(name string, height, width int) (o *MaxPool2DLayer, err error) {
	if height < 1 || width < 1 {
		return nil, fmt.Errorf("New MaxPool2D: window %dx%d must be positive", height, width)
	}
	return &MaxPool2DLayer{name: name, height: height, width: width}, nil
}

// MustNew creates a new MaxPool2D layer with window height x width
func MustNew(name string, height, width int) *MaxPool2DLayer {
	o, err := New(name, height, width)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// OutputSize returns the spatial size produced for an input of height x width.
// Trailing rows and columns which do not fill a window are dropped.
func (i *MaxPool2DLayer) OutputSize(height, width int) (int, int) {
	return (height-i.height)/i.height + 1, (width-i.width)/i.width + 1
}

// Lay turns MaxPool2D layer into a module
func (i *MaxPool2DLayer) Lay(backend.Context) layer.Module {
	var o MaxPool2D
	o.name = i.name
	o.kernel = tensor.Shape{i.height, i.width}
	o.stride = []int{i.height, i.width}
	return &o
}
