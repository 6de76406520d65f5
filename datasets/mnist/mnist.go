// Package mnist loads handwritten digit images into a datasets.Dataset.
//
// Two encodings are supported: the tabular CSV form (one header row, a label
// column and ImgSize*ImgSize pixel columns in row-major order) and the
// gzipped IDX files of the original distribution.
package mnist

import "github.com/neurlang/digitnet/datasets"

// ImgSize is the height and width of an image.
const ImgSize = 28

// Pixels is the number of feature columns per image.
const Pixels = ImgSize * ImgSize

// Options controls how pixels and labels are read.
type Options struct {
	LabelColumn string // header name of the label column, "label" when empty
	Normalize   bool   // scale pixel intensities from [0, 255] to [0, 1]
	Limit       int    // read at most Limit images, 0 reads all
	Workers     int    // parallel row parsers, 1 when zero
}

func (o Options) labelColumn() string {
	if o.LabelColumn == "" {
		return "label"
	}
	return o.LabelColumn
}

func (o Options) scale() float32 {
	if o.Normalize {
		return 1.0 / 255
	}
	return 1
}

func build(images []float32, labels []int) (*datasets.Dataset, error) {
	return datasets.New(images, labels, ImgSize, ImgSize)
}
