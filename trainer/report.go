package trainer

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EpochStats summarizes the batch losses of one epoch.
type EpochStats struct {
	Epoch    int
	Batches  int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
	Duration time.Duration
}

// Report is the outcome of a training run.
type Report struct {
	RunID    string
	Device   string
	Steps    int
	Losses   []float64
	Epochs   []EpochStats
	Started  time.Time
	Duration time.Duration
}

// FinalLoss returns the loss of the last batch, NaN when no batch ran.
func (r *Report) FinalLoss() float64 {
	if len(r.Losses) == 0 {
		return math.NaN()
	}
	return r.Losses[len(r.Losses)-1]
}

func summarize(epoch int, losses []float64, took time.Duration) EpochStats {
	s := EpochStats{Epoch: epoch, Batches: len(losses), Duration: took}
	if len(losses) == 0 {
		return s
	}
	s.Min, s.Max = floats.Min(losses), floats.Max(losses)
	if len(losses) == 1 {
		s.Mean = losses[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(losses, nil)
	return s
}
