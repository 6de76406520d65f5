// Package datasets implements the in-memory image dataset and its batches
package datasets

import (
	"math/rand"

	"gorgonia.org/tensor"

	"github.com/neurlang/digitnet/errtypes"
)

// Dataset is a dense feature matrix of single channel images in row-major
// order plus one integer label per image.
type Dataset struct {
	images        []float32
	labels        []int
	height, width int
}

// Batch is a view into a Dataset: images [batch, 1, height, width] share the
// dataset backing array.
type Batch struct {
	Images *tensor.Dense
	Labels []int
}

// Len returns the number of images in the batch.
func (b Batch) Len() int {
	return len(b.Labels)
}

// New wraps images (len(labels)*height*width pixels) and labels without copying.
func New(images []float32, labels []int, height, width int) (*Dataset, error) {
	if height < 1 || width < 1 {
		return nil, errtypes.Shape("image size %dx%d must be positive", height, width)
	}
	if len(images) != len(labels)*height*width {
		return nil, errtypes.Shape("%d pixels for %d images of %dx%d", len(images), len(labels), height, width)
	}
	return &Dataset{images: images, labels: labels, height: height, width: width}, nil
}

// Zeros creates n all-zero images of height x width labelled label.
func Zeros(n, height, width, label int) *Dataset {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = label
	}
	return &Dataset{
		images: make([]float32, n*height*width),
		labels: labels,
		height: height,
		width:  width,
	}
}

// Len returns the number of images.
func (d *Dataset) Len() int {
	return len(d.labels)
}

// ImageSize returns the height and width of every image.
func (d *Dataset) ImageSize() (int, int) {
	return d.height, d.width
}

// Labels returns the label vector.
func (d *Dataset) Labels() []int {
	return d.labels
}

// Image returns the pixels of image i.
func (d *Dataset) Image(i int) []float32 {
	n := d.height * d.width
	return d.images[i*n : (i+1)*n]
}

// Batches returns the number of full batches of size; a trailing partial
// batch is not counted.
func (d *Dataset) Batches(size int) int {
	if size <= 0 {
		return 0
	}
	return d.Len() / size
}

// Batch returns the half-open range [lo, hi) of the dataset as a Batch.
func (d *Dataset) Batch(lo, hi int) (Batch, error) {
	if lo < 0 || hi > d.Len() || lo >= hi {
		return Batch{}, errtypes.Shape("batch [%d, %d) outside dataset of %d", lo, hi, d.Len())
	}
	n := d.height * d.width
	images := tensor.New(
		tensor.WithShape(hi-lo, 1, d.height, d.width),
		tensor.WithBacking(d.images[lo*n:hi*n]),
	)
	return Batch{Images: images, Labels: d.labels[lo:hi]}, nil
}

// Shuffle permutes images and labels together in place.
func (d *Dataset) Shuffle(rng *rand.Rand) {
	tmp := make([]float32, d.height*d.width)
	rng.Shuffle(d.Len(), func(i, j int) {
		d.labels[i], d.labels[j] = d.labels[j], d.labels[i]
		a, b := d.Image(i), d.Image(j)
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	})
}
