package learning

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/layer"
)

func gradients(p *layer.Param, values ...float32) *layer.Gradients {
	g := layer.NewGradients()
	g.Set(p, tensor.New(tensor.WithShape(p.Shape().Clone()...), tensor.WithBacking(values)))
	return g
}

func TestFirstStepMovesByLearningRate(t *testing.T) {
	a := MustNewAdamW(DefaultHyperParameters())
	w := layer.NewParam("w", 3)
	copy(w.Data(), []float32{1, 1, 1})

	require.NoError(t, a.Step(0.1, []*layer.Param{w}, gradients(w, 2, -0.5, 0)))
	assert.InDelta(t, 0.9, w.Data()[0], 1e-5)
	assert.InDelta(t, 1.1, w.Data()[1], 1e-5)
	assert.Equal(t, float32(1), w.Data()[2])
	assert.Equal(t, 1, a.Steps())
}

func TestZeroGradientsKeepMomentum(t *testing.T) {
	a := MustNewAdamW(DefaultHyperParameters())
	w := layer.NewParam("w", 1)
	require.NoError(t, a.Step(0.01, []*layer.Param{w}, gradients(w, 1)))

	prev := math.Inf(1)
	for i := 0; i < 5; i++ {
		before := w.Data()[0]
		require.NoError(t, a.Step(0.01, []*layer.Param{w}, gradients(w, 0)))
		delta := math.Abs(float64(w.Data()[0] - before))
		assert.Greater(t, delta, 0.0, "step %d froze the parameter", i)
		assert.Less(t, delta, prev, "step %d did not shrink", i)
		prev = delta
	}
}

func TestWeightDecayIsDecoupled(t *testing.T) {
	h := DefaultHyperParameters()
	h.WeightDecay = 0.5
	a := MustNewAdamW(h)
	w := layer.NewParam("w", 1)
	w.Data()[0] = 2

	require.NoError(t, a.Step(0.1, []*layer.Param{w}, gradients(w, 0)))
	assert.InDelta(t, 2*(1-0.1*0.5), w.Data()[0], 1e-6)
}

func TestStateIsPerParameter(t *testing.T) {
	a := MustNewAdamW(DefaultHyperParameters())
	w := layer.NewParam("w", 1)
	v := layer.NewParam("v", 1)
	require.NoError(t, a.Step(0.1, []*layer.Param{w, v}, gradients(w, 1)))
	assert.Equal(t, float32(0), v.Data()[0])

	g := layer.NewGradients()
	g.Set(v, tensor.New(tensor.WithShape(1), tensor.WithBacking([]float32{1})))
	require.NoError(t, a.Step(0.1, []*layer.Param{w, v}, g))
	// v sees its first gradient at step 2, corrected with the global step count.
	assert.InDelta(t, -0.1*(0.1/0.19)/math.Sqrt(0.001/0.001999), v.Data()[0], 1e-4)
}

func TestGradientsConsumedOnce(t *testing.T) {
	a := MustNewAdamW(DefaultHyperParameters())
	w := layer.NewParam("w", 1)
	g := gradients(w, 1)
	require.NoError(t, a.Step(0.1, []*layer.Param{w}, g))
	assert.ErrorIs(t, a.Step(0.1, []*layer.Param{w}, g), errtypes.ErrConsumed)
	assert.Equal(t, 1, a.Steps())
}

func TestShapeMismatchLeavesState(t *testing.T) {
	a := MustNewAdamW(DefaultHyperParameters())
	w := layer.NewParam("w", 2)
	g := layer.NewGradients()
	g.Set(w, tensor.New(tensor.WithShape(3), tensor.WithBacking([]float32{1, 2, 3})))
	assert.ErrorIs(t, a.Step(0.1, []*layer.Param{w}, g), errtypes.ErrShape)
	assert.Equal(t, 0, a.Steps())
	assert.Equal(t, []float32{0, 0}, w.Data())
}

func TestValidate(t *testing.T) {
	h := DefaultHyperParameters()
	h.Beta1 = 1
	_, err := NewAdamW(h)
	assert.ErrorIs(t, err, errtypes.ErrConfiguration)

	h = DefaultHyperParameters()
	h.WeightDecay = -1
	assert.ErrorIs(t, h.Validate(), errtypes.ErrConfiguration)

	a := MustNewAdamW(DefaultHyperParameters())
	w := layer.NewParam("w", 1)
	assert.ErrorIs(t, a.Step(0, []*layer.Param{w}, gradients(w, 1)), errtypes.ErrConfiguration)
}

func TestHyperParametersKept(t *testing.T) {
	h := DefaultHyperParameters()
	h.WeightDecay = 1e-6
	assert.Equal(t, h, MustNewAdamW(h).HyperParameters())
}
