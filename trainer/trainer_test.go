package trainer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/datasets"
	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/learning"
	"github.com/neurlang/digitnet/net/convnet"
)

func setup(t *testing.T) (backend.Context, *convnet.Model, *learning.AdamW) {
	ctx := backend.NewCPU(1)
	m, err := convnet.DefaultModelConfig().Init(ctx)
	require.NoError(t, err)
	h := learning.DefaultHyperParameters()
	h.WeightDecay = 1e-6
	return ctx, m, learning.MustNewAdamW(h)
}

func config(epochs, batch int) Config {
	return Config{Epochs: epochs, BatchSize: batch, LearningRate: 1e-5}
}

func TestRunZeroImages(t *testing.T) {
	ctx, m, opt := setup(t)
	data := datasets.Zeros(256, convnet.ImageSize, convnet.ImageSize, 3)

	r, err := Run(ctx, m, opt, data, config(1, 128))
	require.NoError(t, err)
	assert.Equal(t, 2, r.Steps)
	assert.Equal(t, 2, opt.Steps())
	require.Len(t, r.Losses, 2)
	assert.InDelta(t, math.Log(10), r.Losses[0], 1e-5)
	for _, l := range r.Losses {
		assert.False(t, math.IsNaN(l) || math.IsInf(l, 0))
		assert.Greater(t, l, 0.0)
	}
	require.Len(t, r.Epochs, 1)
	assert.Equal(t, 2, r.Epochs[0].Batches)
	assert.NotEmpty(t, r.RunID)
	assert.Equal(t, "cpu", r.Device)
}

func TestRunBatchCount(t *testing.T) {
	ctx, m, opt := setup(t)
	data := datasets.Zeros(40, convnet.ImageSize, convnet.ImageSize, 0)

	var states []State
	batches := 0
	cfg := config(2, 16)
	cfg.Observer = ObserverFunc(func(e Event) {
		states = append(states, e.State)
		if e.State == BatchRunning {
			batches++
		}
	})
	r, err := Run(ctx, m, opt, data, cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, batches)
	assert.Equal(t, 4, r.Steps)
	assert.Equal(t, []State{
		Idle,
		EpochRunning, BatchRunning, BatchRunning,
		EpochRunning, BatchRunning, BatchRunning,
		Done,
	}, states)
}

func TestRunDatasetSmallerThanBatch(t *testing.T) {
	ctx, m, opt := setup(t)
	data := datasets.Zeros(256, convnet.ImageSize, convnet.ImageSize, 0)

	r, err := Run(ctx, m, opt, data, config(3, 300))
	require.NoError(t, err)
	assert.Zero(t, r.Steps)
	assert.Zero(t, opt.Steps())
	assert.Empty(t, r.Losses)
	assert.Len(t, r.Epochs, 3)
	assert.True(t, math.IsNaN(r.FinalLoss()))
}

func TestRunRejectsConfig(t *testing.T) {
	ctx, m, opt := setup(t)
	data := datasets.Zeros(4, convnet.ImageSize, convnet.ImageSize, 0)

	for _, cfg := range []Config{config(0, 2), config(1, 0), {Epochs: 1, BatchSize: 2}} {
		_, err := Run(ctx, m, opt, data, cfg)
		assert.ErrorIs(t, err, errtypes.ErrConfiguration)
	}
}

func TestRunRejectsLabelOutOfRange(t *testing.T) {
	ctx, m, opt := setup(t)
	data := datasets.Zeros(4, convnet.ImageSize, convnet.ImageSize, 10)

	r, err := Run(ctx, m, opt, data, config(1, 2))
	assert.ErrorIs(t, err, errtypes.ErrDataRange)
	assert.Zero(t, r.Steps)
	assert.Zero(t, opt.Steps())
}

func TestEvaluate(t *testing.T) {
	ctx, m, _ := setup(t)

	e, err := Evaluate(ctx, m, datasets.Zeros(5, convnet.ImageSize, convnet.ImageSize, 0), 2)
	require.NoError(t, err)
	assert.Equal(t, Evaluation{Correct: 5, Total: 5}, e)
	assert.Equal(t, 1.0, e.Accuracy())

	e, err = Evaluate(ctx, m, datasets.Zeros(3, convnet.ImageSize, convnet.ImageSize, 3), 4)
	require.NoError(t, err)
	assert.Zero(t, e.Accuracy())

	_, err = Evaluate(ctx, m, datasets.Zeros(3, convnet.ImageSize, convnet.ImageSize, 3), 0)
	assert.ErrorIs(t, err, errtypes.ErrConfiguration)
}

func TestSummarize(t *testing.T) {
	s := summarize(0, []float64{1, 2, 3}, 0)
	assert.Equal(t, 2.0, s.Mean)
	assert.InDelta(t, 1.0, s.StdDev, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 3.0, s.Max)

	assert.Equal(t, EpochStats{Epoch: 1, Batches: 1, Mean: 5, Min: 5, Max: 5}, summarize(1, []float64{5}, 0))
	assert.Equal(t, EpochStats{Epoch: 2}, summarize(2, nil, 0))
}

func TestRunRejectsImageSize(t *testing.T) {
	ctx, m, opt := setup(t)
	data := datasets.Zeros(4, 14, 14, 0)

	_, err := Run(ctx, m, opt, data, config(1, 2))
	assert.ErrorIs(t, err, errtypes.ErrShape)
	_, err = Evaluate(ctx, m, data, 2)
	assert.ErrorIs(t, err, errtypes.ErrShape)
	assert.Zero(t, opt.Steps())
}
