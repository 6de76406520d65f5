package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/digitnet/errtypes"
)

func valid() Config {
	c := Default()
	c.Dataset.Path = "train.csv"
	return c
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 10, c.NumClasses)
	assert.Equal(t, 128, c.HiddenSize)
	assert.Equal(t, 20, c.Epochs)
	assert.Equal(t, 128, c.BatchSize)
	assert.Equal(t, 1e-5, c.LearningRate)
	assert.Equal(t, 1e-6, c.WeightDecay)
	assert.True(t, c.Dataset.Normalize)
	assert.NoError(t, valid().Validate())
	assert.ErrorIs(t, c.Validate(), errtypes.ErrConfiguration)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
epochs: 3
dropout2: 0.25
device: cpu
dataset:
  path: digits.csv
  limit: 100
loss:
  double_softmax: true
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Epochs)
	assert.Equal(t, 0.25, c.Dropout2)
	assert.Equal(t, 0.5, c.Dropout1)
	assert.Equal(t, "digits.csv", c.Dataset.Path)
	assert.Equal(t, 100, c.Dataset.Limit)
	assert.True(t, c.Dataset.Normalize)
	assert.True(t, c.Trainer().Loss.DoubleSoftmax)
	assert.NoError(t, c.Validate())
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	c := Default()
	err := Decode(strings.NewReader("epoch: 3\n"), &c)
	assert.ErrorIs(t, err, errtypes.ErrConfiguration)

	require.NoError(t, Decode(strings.NewReader(""), &c))
	assert.Equal(t, Default(), c)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DIGITNET_BATCH_SIZE":        "64",
		"DIGITNET_LEARNING_RATE":     "0.001",
		"DIGITNET_DATASET_NORMALIZE": "false",
		"DIGITNET_DEVICE":            `"cuda:1"`,
		"DIGITNET_SEED":              "42",
	}
	c := Default()
	require.NoError(t, c.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
	assert.Equal(t, 64, c.BatchSize)
	assert.Equal(t, 0.001, c.LearningRate)
	assert.False(t, c.Dataset.Normalize)
	assert.Equal(t, "cuda:1", c.Device)
	assert.Equal(t, int64(42), c.Seed)

	err := c.ApplyEnv(func(k string) (string, bool) { return "many", k == "DIGITNET_EPOCHS" })
	assert.ErrorIs(t, err, errtypes.ErrConfiguration)
}

func TestFlags(t *testing.T) {
	fs := pflag.NewFlagSet("train", pflag.ContinueOnError)
	fl := BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--epochs", "5", "--dataset-path", "x.csv", "--weight-decay", "0.01"}))

	c := Default()
	c.BatchSize = 32
	require.NoError(t, fl.Apply(&c))
	assert.Equal(t, 5, c.Epochs)
	assert.Equal(t, "x.csv", c.Dataset.Path)
	assert.Equal(t, 0.01, c.WeightDecay)
	assert.Equal(t, 32, c.BatchSize, "unset flags keep the loaded value")
}

func TestValidateRejects(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"dropout":       func(c *Config) { c.Dropout3 = 1.5 },
		"batch":         func(c *Config) { c.BatchSize = 0 },
		"epochs":        func(c *Config) { c.Epochs = 0 },
		"learning rate": func(c *Config) { c.LearningRate = 0 },
		"weight decay":  func(c *Config) { c.WeightDecay = -1 },
		"device":        func(c *Config) { c.Device = "tpu" },
		"classes":       func(c *Config) { c.NumClasses = 0 },
		"idx pair":      func(c *Config) { c.Dataset.Path, c.Dataset.IDXImages = "", "img.gz" },
		"exclusive":     func(c *Config) { c.Dataset.IDXImages, c.Dataset.IDXLabels = "a", "b" },
		"limit":         func(c *Config) { c.Dataset.Limit = -1 },
	} {
		c := valid()
		mutate(&c)
		assert.ErrorIs(t, c.Validate(), errtypes.ErrConfiguration, name)
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, "DIGITNET_DATASET_LABEL_COLUMN", EnvName("dataset.label_column"))
	assert.Equal(t, "dataset-label-column", FlagName("dataset.label_column"))
}
