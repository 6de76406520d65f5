package dropout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/layer"
)

func ones(n int) *tensor.Dense {
	data := make([]float32, n)
	for i := range data {
		data[i] = 1
	}
	return tensor.New(tensor.WithShape(n), tensor.WithBacking(data))
}

func run(t *testing.T, ctx backend.Context, m layer.Module, mode layer.Mode, n int) []float32 {
	p := layer.NewPass(ctx, mode)
	y, err := m.Forward(p, p.Input("x", ones(n)))
	require.NoError(t, err)
	out, err := p.Run(y)
	require.NoError(t, err)
	return out[0].Data().([]float32)
}

func TestEvalIsIdentity(t *testing.T) {
	ctx := backend.NewCPU(1)
	m := MustNew("drop", 0.5).Lay(ctx)
	assert.Equal(t, ones(64).Data(), run(t, ctx, m, layer.Eval, 64))
}

func TestTrainMasksAndScales(t *testing.T) {
	ctx := backend.NewCPU(1)
	m := MustNew("drop", 0.5).Lay(ctx)

	first := run(t, ctx, m, layer.Train, 256)
	var zeros int
	for _, v := range first {
		if v == 0 {
			zeros++
		} else {
			assert.Equal(t, float32(2), v)
		}
	}
	assert.Greater(t, zeros, 64)
	assert.Less(t, zeros, 192)

	second := run(t, ctx, m, layer.Train, 256)
	assert.NotEqual(t, first, second)
}

func TestProbabilityBounds(t *testing.T) {
	_, err := New("drop", -0.1)
	assert.Error(t, err)
	_, err = New("drop", 1.5)
	assert.Error(t, err)
	assert.Equal(t, 0.25, MustNew("drop", 0.25).Prob())

	ctx := backend.NewCPU(1)
	all := run(t, ctx, MustNew("drop", 1).Lay(ctx), layer.Train, 16)
	assert.Equal(t, make([]float32, 16), all)
}
