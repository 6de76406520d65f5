// Package full implements a fully connected layer and module
package full

import (
	"fmt"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/layer"
)

type FullLayer struct {
	name    string
	in, out int
}

type Full struct {
	name         string
	in, out      int
	weight, bias *layer.Param
}

// MustNew creates a new full layer with in and out features
func MustNew(name string, in, out int) *FullLayer {
	o, err := New(name, in, out)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new full layer with in and out features
func New(name string, in, out int) (o *FullLayer, err error) {
	if in < 1 || out < 1 {
		return nil, fmt.Errorf("New Full: features %d->%d must be positive", in, out)
	}
	o = new(FullLayer)
	o.name = name
	o.in = in
	o.out = out
	return
}

// In returns the number of input features.
func (i *FullLayer) In() int {
	return i.in
}

// Lay turns full layer into a module
func (i *FullLayer) Lay(ctx backend.Context) layer.Module {
	o := new(Full)
	o.name = i.name
	o.in = i.in
	o.out = i.out
	o.weight = layer.NewParam(i.name+".weight", i.in, i.out)
	o.weight.InitUniform(ctx, i.in)
	o.bias = layer.NewParam(i.name+".bias", 1, i.out)
	return o
}
