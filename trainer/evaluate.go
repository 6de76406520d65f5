package trainer

import (
	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/datasets"
	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/net/convnet"
)

// Evaluation counts correct predictions over a dataset.
type Evaluation struct {
	Correct int
	Total   int
}

// Accuracy returns Correct/Total, zero on an empty dataset.
func (e Evaluation) Accuracy() float64 {
	if e.Total == 0 {
		return 0
	}
	return float64(e.Correct) / float64(e.Total)
}

// Evaluate predicts every image of data in evaluation mode, batchSize images
// at a time including the trailing partial batch, and compares the argmax
// of the logits with the label.
func Evaluate(ctx backend.Context, m *convnet.Model, data *datasets.Dataset, batchSize int) (Evaluation, error) {
	if batchSize < 1 {
		return Evaluation{}, errtypes.Configuration("batch size must be positive, got %d", batchSize)
	}
	if err := checkImages(m, data); err != nil {
		return Evaluation{}, err
	}
	var e Evaluation
	classes := m.Config().NumClasses
	for lo := 0; lo < data.Len(); lo += batchSize {
		hi := lo + batchSize
		if hi > data.Len() {
			hi = data.Len()
		}
		b, err := data.Batch(lo, hi)
		if err != nil {
			return e, err
		}
		logits, err := m.Predict(ctx, b.Images)
		if err != nil {
			return e, err
		}
		scores := logits.Data().([]float32)
		for i, label := range b.Labels {
			if argmax(scores[i*classes:(i+1)*classes]) == label {
				e.Correct++
			}
		}
		e.Total += b.Len()
	}
	return e, nil
}

func argmax(v []float32) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
