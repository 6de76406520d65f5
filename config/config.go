// Package config assembles a training run configuration from defaults, a
// YAML file, DIGITNET_* environment variables and command line flags, in
// that order of precedence.
package config

import (
	"io"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/datasets/mnist"
	"github.com/neurlang/digitnet/errtypes"
	"github.com/neurlang/digitnet/learning"
	"github.com/neurlang/digitnet/loss"
	"github.com/neurlang/digitnet/net/convnet"
	"github.com/neurlang/digitnet/trainer"
)

// Dataset locates the training images.
type Dataset struct {
	Path        string `yaml:"path"`         // CSV table
	IDXImages   string `yaml:"idx_images"`   // gzipped IDX images, instead of Path
	IDXLabels   string `yaml:"idx_labels"`   // gzipped IDX labels, instead of Path
	EvalPath    string `yaml:"eval_path"`    // optional CSV table scored after training
	LabelColumn string `yaml:"label_column"` // CSV label header
	Normalize   bool   `yaml:"normalize"`    // scale pixels to [0, 1]
	Limit       int    `yaml:"limit"`        // read only the first Limit images
	Workers     int    `yaml:"workers"`      // parallel CSV row parsers
}

// Loss selects the loss variant.
type Loss struct {
	DoubleSoftmax bool `yaml:"double_softmax"`
}

// Config is a complete training run.
type Config struct {
	NumClasses   int     `yaml:"num_classes"`
	HiddenSize   int     `yaml:"hidden_size"`
	Dropout1     float64 `yaml:"dropout1"`
	Dropout2     float64 `yaml:"dropout2"`
	Dropout3     float64 `yaml:"dropout3"`
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	WeightDecay  float64 `yaml:"weight_decay"`
	Device       string  `yaml:"device"`
	Seed         int64   `yaml:"seed"`
	LogEvery     int     `yaml:"log_every"`
	Shuffle      bool    `yaml:"shuffle"`
	Dataset      Dataset `yaml:"dataset"`
	Loss         Loss    `yaml:"loss"`
}

// Default returns the configuration of the reference MNIST run.
func Default() Config {
	m := convnet.DefaultModelConfig()
	return Config{
		NumClasses:   m.NumClasses,
		HiddenSize:   m.HiddenSize,
		Dropout1:     m.Dropout1,
		Dropout2:     m.Dropout2,
		Dropout3:     m.Dropout3,
		Epochs:       20,
		BatchSize:    128,
		LearningRate: 1e-5,
		WeightDecay:  1e-6,
		Device:       "auto",
		Seed:         1,
		LogEvery:     10,
		Dataset: Dataset{
			LabelColumn: "label",
			Normalize:   true,
			Workers:     runtime.NumCPU(),
		},
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are
// rejected.
func Load(path string) (Config, error) {
	c := Default()
	f, err := os.Open(path)
	if err != nil {
		return c, errors.Wrap(err, "open config")
	}
	defer f.Close()
	if err := Decode(f, &c); err != nil {
		return c, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// Decode reads YAML from r over c. An empty document leaves c unchanged.
func Decode(r io.Reader, c *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return errtypes.Configuration("%v", err)
	}
	return nil
}

// Validate reports the first configuration error of c.
func (c Config) Validate() error {
	if err := c.Model().Validate(); err != nil {
		return err
	}
	if err := c.HyperParameters().Validate(); err != nil {
		return err
	}
	if err := c.Trainer().Validate(); err != nil {
		return err
	}
	if _, _, err := backend.ParseSelector(c.Device); err != nil {
		return err
	}
	d := c.Dataset
	switch {
	case d.Path == "" && d.IDXImages == "" && d.IDXLabels == "":
		return errtypes.Configuration("dataset.path is required")
	case d.Path != "" && (d.IDXImages != "" || d.IDXLabels != ""):
		return errtypes.Configuration("dataset.path and dataset.idx_* are exclusive")
	case d.Path == "" && (d.IDXImages == "" || d.IDXLabels == ""):
		return errtypes.Configuration("dataset.idx_images and dataset.idx_labels go together")
	case d.Limit < 0:
		return errtypes.Configuration("dataset.limit must not be negative, got %d", d.Limit)
	}
	return nil
}

// Model returns the network part of c.
func (c Config) Model() convnet.ModelConfig {
	m := convnet.DefaultModelConfig()
	m.NumClasses = c.NumClasses
	m.HiddenSize = c.HiddenSize
	m.Dropout1, m.Dropout2, m.Dropout3 = c.Dropout1, c.Dropout2, c.Dropout3
	return m
}

// HyperParameters returns the optimizer part of c.
func (c Config) HyperParameters() learning.HyperParameters {
	h := learning.DefaultHyperParameters()
	h.WeightDecay = c.WeightDecay
	return h
}

// Trainer returns the loop part of c.
func (c Config) Trainer() trainer.Config {
	return trainer.Config{
		Epochs:       c.Epochs,
		BatchSize:    c.BatchSize,
		LearningRate: c.LearningRate,
		LogEvery:     c.LogEvery,
		Shuffle:      c.Shuffle,
		Loss:         loss.Options{DoubleSoftmax: c.Loss.DoubleSoftmax},
	}
}

// MNIST returns the loader options of c.
func (c Config) MNIST() mnist.Options {
	return mnist.Options{
		LabelColumn: c.Dataset.LabelColumn,
		Normalize:   c.Dataset.Normalize,
		Limit:       c.Dataset.Limit,
		Workers:     c.Dataset.Workers,
	}
}
