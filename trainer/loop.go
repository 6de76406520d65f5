package trainer

import (
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/datasets"
	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/layer"
	"github.com/neurlang/digitnet/learning"
	"github.com/neurlang/digitnet/loss"
	"github.com/neurlang/digitnet/net/convnet"
)

// Config holds the loop parameters of a run.
type Config struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	LogEvery     int  // log every LogEvery batches, never when zero
	Shuffle      bool // reshuffle the dataset before each epoch
	Loss         loss.Options
	Observer     Observer
}

// Validate reports configuration errors of c.
func (c Config) Validate() error {
	if c.Epochs < 1 {
		return errtypes.Configuration("epochs must be positive, got %d", c.Epochs)
	}
	if c.BatchSize < 1 {
		return errtypes.Configuration("batch size must be positive, got %d", c.BatchSize)
	}
	if !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 0) {
		return errtypes.Configuration("learning rate must be positive, got %v", c.LearningRate)
	}
	if c.LogEvery < 0 {
		return errtypes.Configuration("log interval must not be negative, got %d", c.LogEvery)
	}
	return nil
}

func (c Config) emit(e Event) {
	if c.Observer != nil {
		c.Observer.Observe(e)
	}
}

// Run trains m on data for cfg.Epochs epochs of data.Len()/cfg.BatchSize
// batches each. A trailing partial batch is dropped, so a dataset smaller
// than one batch trains zero steps. The first error aborts the run; the
// returned Report then covers the steps completed so far.
func Run(ctx backend.Context, m *convnet.Model, opt *learning.AdamW, data *datasets.Dataset, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkImages(m, data); err != nil {
		return nil, err
	}
	r := &Report{
		RunID:   uuid.NewString(),
		Device:  ctx.Device().String(),
		Started: time.Now(),
	}
	defer func() { r.Duration = time.Since(r.Started) }()

	batches := data.Batches(cfg.BatchSize)
	params := m.Params()
	slog.Info("training started", "run", r.RunID, "device", r.Device,
		"images", data.Len(), "epochs", cfg.Epochs, "batches", batches, "params", m.NumParams(),
		"weight_decay", opt.HyperParameters().WeightDecay)
	cfg.emit(Event{State: Idle})

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		cfg.emit(Event{State: EpochRunning, Epoch: epoch, Step: r.Steps})
		if cfg.Shuffle {
			data.Shuffle(ctx.Rand())
		}
		began := time.Now()
		losses := make([]float64, 0, batches)
		for i := 0; i < batches; i++ {
			b, err := data.Batch(i*cfg.BatchSize, (i+1)*cfg.BatchSize)
			if err != nil {
				return r, err
			}
			value, err := step(ctx, m, opt, params, b, cfg)
			if err != nil {
				return r, err
			}
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return r, errtypes.DataRange("loss diverged to %v at epoch %d batch %d", value, epoch, i)
			}
			r.Steps++
			r.Losses = append(r.Losses, value)
			losses = append(losses, value)
			cfg.emit(Event{State: BatchRunning, Epoch: epoch, Batch: i, Step: r.Steps, Loss: value})
			if cfg.LogEvery > 0 && (i+1)%cfg.LogEvery == 0 {
				slog.Info("batch", "epoch", epoch+1, "batch", i+1, "of", batches, "loss", value)
			}
		}
		stats := summarize(epoch, losses, time.Since(began))
		r.Epochs = append(r.Epochs, stats)
		slog.Info("epoch finished", "epoch", epoch+1, "mean_loss", stats.Mean,
			"stddev", stats.StdDev, "took", stats.Duration)
	}

	cfg.emit(Event{State: Done, Epoch: cfg.Epochs, Step: r.Steps})
	return r, nil
}

func checkImages(m *convnet.Model, data *datasets.Dataset) error {
	h, w := data.ImageSize()
	mh, mw := m.InputSize()
	if h != mh || w != mw {
		return errtypes.Shape("dataset images are %dx%d, model expects %dx%d", h, w, mh, mw)
	}
	return nil
}

func step(ctx backend.Context, m *convnet.Model, opt *learning.AdamW, params []*layer.Param, b datasets.Batch, cfg Config) (float64, error) {
	p := layer.NewPass(ctx, layer.Train)
	logits, err := m.Forward(p, p.Input("images", b.Images))
	if err != nil {
		return 0, err
	}
	cost, err := cfg.Loss.CrossEntropy(p, logits, b.Labels)
	if err != nil {
		return 0, err
	}
	value, grads, err := p.Backward(cost)
	if err != nil {
		return 0, err
	}
	if err := opt.Step(cfg.LearningRate, params, grads); err != nil {
		return 0, err
	}
	return value, nil
}
