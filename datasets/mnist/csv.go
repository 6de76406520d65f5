package mnist

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/neurlang/digitnet/datasets"
	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/parallel"
)

const rowsPerChunk = 512

// LoadCSV reads the CSV file at path.
func LoadCSV(path string, o Options) (*datasets.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dataset")
	}
	defer f.Close()

	d, err := ReadCSV(f, o)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	slog.Info("dataset loaded", "path", path, "images", d.Len())
	return d, nil
}

// ReadCSV reads a header row followed by one image per row.
func ReadCSV(r io.Reader, o Options) (*datasets.Dataset, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	labelIdx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == o.labelColumn() {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return nil, errtypes.Shape("no %q column in header", o.labelColumn())
	}
	if len(header)-1 != Pixels {
		return nil, errtypes.Shape("want %d pixel columns, header has %d", Pixels, len(header)-1)
	}

	var records [][]string
	for o.Limit <= 0 || len(records) < o.Limit {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read row %d", len(records)+1)
		}
		records = append(records, rec)
	}

	images := make([]float32, len(records)*Pixels)
	labels := make([]int, len(records))
	scale := o.scale()

	err = parallel.ForChunks(len(records), rowsPerChunk, o.Workers, func(lo, hi int) error {
		for row := lo; row < hi; row++ {
			rec := records[row]
			label, err := strconv.Atoi(strings.TrimSpace(rec[labelIdx]))
			if err != nil {
				return errors.Wrapf(err, "row %d label", row+1)
			}
			labels[row] = label

			px := images[row*Pixels : (row+1)*Pixels]
			n := 0
			for col, field := range rec {
				if col == labelIdx {
					continue
				}
				v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
				if err != nil {
					return errors.Wrapf(err, "row %d column %d", row+1, col+1)
				}
				px[n] = float32(v) * scale
				n++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return build(images, labels)
}
