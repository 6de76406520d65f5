package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/neurlang/digitnet/errtypes"
)

// EnvPrefix prefixes the environment variable of every key.
const EnvPrefix = "DIGITNET_"

type field struct {
	key   string
	usage string
	ptr   interface{}
}

func (c *Config) fields() []field {
	return []field{
		{"num_classes", "number of output classes", &c.NumClasses},
		{"hidden_size", "width of the hidden linear layer", &c.HiddenSize},
		{"dropout1", "drop probability after the first pool", &c.Dropout1},
		{"dropout2", "drop probability after the second pool", &c.Dropout2},
		{"dropout3", "drop probability after the hidden layer", &c.Dropout3},
		{"epochs", "training epochs", &c.Epochs},
		{"batch_size", "images per batch", &c.BatchSize},
		{"learning_rate", "AdamW learning rate", &c.LearningRate},
		{"weight_decay", "AdamW decoupled weight decay", &c.WeightDecay},
		{"device", "compute device: auto, cpu or cuda:N", &c.Device},
		{"seed", "seed of initialization, dropout and shuffling", &c.Seed},
		{"log_every", "log the loss every N batches, 0 disables", &c.LogEvery},
		{"shuffle", "reshuffle the dataset before each epoch", &c.Shuffle},
		{"dataset.path", "CSV training table", &c.Dataset.Path},
		{"dataset.idx_images", "gzipped IDX training images", &c.Dataset.IDXImages},
		{"dataset.idx_labels", "gzipped IDX training labels", &c.Dataset.IDXLabels},
		{"dataset.eval_path", "CSV table scored after training", &c.Dataset.EvalPath},
		{"dataset.label_column", "CSV label column header", &c.Dataset.LabelColumn},
		{"dataset.normalize", "scale pixels to [0, 1]", &c.Dataset.Normalize},
		{"dataset.limit", "read only the first N images, 0 reads all", &c.Dataset.Limit},
		{"dataset.workers", "parallel CSV row parsers", &c.Dataset.Workers},
		{"loss.double_softmax", "apply softmax before the cross entropy", &c.Loss.DoubleSoftmax},
	}
}

// EnvName returns the environment variable of a configuration key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// FlagName returns the command line flag of a configuration key.
func FlagName(key string) string {
	return strings.NewReplacer(".", "-", "_", "-").Replace(key)
}

func (f field) set(s string) (err error) {
	s = strings.Trim(strings.TrimSpace(s), "\"'")
	switch p := f.ptr.(type) {
	case *int:
		*p, err = strconv.Atoi(s)
	case *int64:
		*p, err = strconv.ParseInt(s, 10, 64)
	case *float64:
		*p, err = strconv.ParseFloat(s, 64)
	case *bool:
		*p, err = strconv.ParseBool(s)
	case *string:
		*p = s
	}
	if err != nil {
		return errtypes.Configuration("%s: %v", f.key, err)
	}
	return nil
}

// ApplyEnv overrides c with the DIGITNET_* variables returned by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, f := range c.fields() {
		if s, ok := lookup(EnvName(f.key)); ok {
			if err := f.set(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flags holds the command line overrides of every configuration key.
type Flags struct {
	fs      *pflag.FlagSet
	scratch Config
}

// BindFlags registers one flag per configuration key on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	fl := &Flags{fs: fs, scratch: Default()}
	for _, f := range fl.scratch.fields() {
		name := FlagName(f.key)
		switch p := f.ptr.(type) {
		case *int:
			fs.IntVar(p, name, *p, f.usage)
		case *int64:
			fs.Int64Var(p, name, *p, f.usage)
		case *float64:
			fs.Float64Var(p, name, *p, f.usage)
		case *bool:
			fs.BoolVar(p, name, *p, f.usage)
		case *string:
			fs.StringVar(p, name, *p, f.usage)
		}
	}
	return fl
}

// Apply copies the flags set on the command line into c.
func (fl *Flags) Apply(c *Config) error {
	for _, f := range c.fields() {
		flag := fl.fs.Lookup(FlagName(f.key))
		if flag == nil || !flag.Changed {
			continue
		}
		if err := f.set(flag.Value.String()); err != nil {
			return err
		}
	}
	return nil
}
