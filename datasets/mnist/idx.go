package mnist

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/neurlang/digitnet/datasets"
	"github.com/neurlang/digitnet/errtypes"
)

const (
	idxImagesMagic = 0x00000803
	idxLabelsMagic = 0x00000801
)

// LoadIDX reads a gzipped IDX image file and its gzipped IDX label file.
func LoadIDX(imagesPath, labelsPath string, o Options) (*datasets.Dataset, error) {
	img, err := ungzip(imagesPath)
	if err != nil {
		return nil, err
	}
	lab, err := ungzip(labelsPath)
	if err != nil {
		return nil, err
	}
	return ReadIDX(img, lab, o)
}

func ungzip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dataset")
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "gzip %s", path)
	}
	defer gz.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, gz); err != nil {
		return nil, errors.Wrapf(err, "buffer %s", path)
	}
	return buf.Bytes(), nil
}

// ReadIDX decodes uncompressed IDX image and label payloads.
func ReadIDX(img, lab []byte, o Options) (*datasets.Dataset, error) {
	// images: magic, count, rows, cols; labels: magic, count
	if len(img) < 16 || binary.BigEndian.Uint32(img) != idxImagesMagic {
		return nil, errtypes.Shape("not an IDX image file")
	}
	if len(lab) < 8 || binary.BigEndian.Uint32(lab) != idxLabelsMagic {
		return nil, errtypes.Shape("not an IDX label file")
	}
	count := int(binary.BigEndian.Uint32(img[4:]))
	rows := int(binary.BigEndian.Uint32(img[8:]))
	cols := int(binary.BigEndian.Uint32(img[12:]))
	if rows != ImgSize || cols != ImgSize {
		return nil, errtypes.Shape("IDX images are %dx%d, want %dx%d", rows, cols, ImgSize, ImgSize)
	}
	if n := int(binary.BigEndian.Uint32(lab[4:])); n != count {
		return nil, errtypes.Shape("%d images but %d labels", count, n)
	}
	img, lab = img[16:], lab[8:]
	if len(img) < count*Pixels || len(lab) < count {
		return nil, errtypes.Shape("IDX payload truncated")
	}
	if o.Limit > 0 && o.Limit < count {
		count = o.Limit
	}

	scale := o.scale()
	images := make([]float32, count*Pixels)
	for i := range images {
		images[i] = float32(img[i]) * scale
	}
	labels := make([]int, count)
	for i := range labels {
		labels[i] = int(lab[i])
	}
	return build(images, labels)
}
