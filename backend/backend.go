package backend

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"

	G "gorgonia.org/gorgonia"

	"github.com/neurlang/digitnet/errtypes"
)

// Kind is the kind of a compute device.
type Kind int

const (
	KindCPU Kind = iota
	KindCUDA
)

func (k Kind) String() string {
	switch k {
	case KindCPU:
		return "cpu"
	case KindCUDA:
		return "cuda"
	}
	return "unknown"
}

// Device describes one compute device.
type Device struct {
	Kind     Kind
	Index    int
	Name     string
	Memory   uint64 // total bytes, 0 when unknown
	Threads  int
	Features []string
}

// String returns the selector that opens the device.
func (d Device) String() string {
	if d.Kind == KindCPU {
		return "cpu"
	}
	return d.Kind.String() + ":" + strconv.Itoa(d.Index)
}

// Context is the compute context the model submits tensor operations to.
type Context interface {
	// Device describes where tensors are materialized.
	Device() Device

	// Rand returns the pseudo-random source for initialization and dropout.
	Rand() *rand.Rand

	// NewMachine compiles g into a machine executing on the device.
	NewMachine(g *G.ExprGraph) G.VM

	// Close releases the device.
	Close() error
}

// Devices enumerates the devices available in this build.
func Devices() ([]Device, error) {
	devices := []Device{describeCPU()}
	gpus, err := cudaDevices()
	if err != nil {
		return devices, err
	}
	return append(devices, gpus...), nil
}

// Open opens the Context named by selector: "cpu", "cuda", "cuda:N" or "auto".
// "auto" prefers the first CUDA device and falls back to the CPU.
func Open(selector string, seed int64) (Context, error) {
	kind, index, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.EqualFold(strings.TrimSpace(selector), "auto"):
		gpus, err := cudaDevices()
		if err != nil || len(gpus) == 0 {
			slog.Debug("no cuda device, using cpu", "error", err)
			return NewCPU(seed), nil
		}
		return openCUDA(0, seed)
	case kind == KindCUDA:
		return openCUDA(index, seed)
	}
	return NewCPU(seed), nil
}

// ParseSelector validates a device selector.
func ParseSelector(selector string) (Kind, int, error) {
	s := strings.ToLower(strings.TrimSpace(selector))
	switch s {
	case "", "cpu", "auto":
		return KindCPU, 0, nil
	case "cuda", "gpu":
		return KindCUDA, 0, nil
	}

	name, idx, ok := strings.Cut(s, ":")
	if !ok || (name != "cuda" && name != "gpu") {
		return 0, 0, errtypes.Configuration("unknown device selector %q", selector)
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return 0, 0, errtypes.Configuration("invalid device index in %q", selector)
	}
	return KindCUDA, n, nil
}

// Describe formats a device for logs and listings.
func Describe(d Device) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", d, d.Name)
	if d.Memory > 0 {
		fmt.Fprintf(&b, " mem=%dMiB", d.Memory>>20)
	}
	if d.Threads > 0 {
		fmt.Fprintf(&b, " threads=%d", d.Threads)
	}
	if len(d.Features) > 0 {
		fmt.Fprintf(&b, " features=%s", strings.Join(d.Features, ","))
	}
	return b.String()
}
