// Package dropout implements a stochastic zeroing layer and module
package dropout

import (
	"fmt"
	"math"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/layer"
)

// DropoutLayer describes a dropout point by its drop probability.
type DropoutLayer struct {
	name string
	prob float64
}

// Dropout zeroes each activation with probability prob during training and
// scales the survivors by 1/(1-prob). It is the identity during evaluation.
type Dropout struct {
	name string
	prob float64
}

// MustNew creates a new dropout layer with drop probability prob
func MustNew(name string, prob float64) *DropoutLayer {
	o, err := New(name, prob)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new dropout layer with drop probability prob
func New(name string, prob float64) (o *DropoutLayer, err error) {
	if prob < 0 || prob > 1 || math.IsNaN(prob) {
		return nil, fmt.Errorf("New Dropout: probability %v outside [0, 1]", prob)
	}
	o = new(DropoutLayer)
	o.name = name
	o.prob = prob
	return
}

// Prob returns the drop probability.
func (i *DropoutLayer) Prob() float64 {
	return i.prob
}

// Lay turns dropout layer into a module
func (i *DropoutLayer) Lay(backend.Context) layer.Module {
	o := new(Dropout)
	o.name = i.name
	o.prob = i.prob
	return o
}
