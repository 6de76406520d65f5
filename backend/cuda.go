//go:build cuda

package backend

import (
	"math/rand"

	"gorgonia.org/cu"
	G "gorgonia.org/gorgonia"

	"github.com/neurlang/digitnet/errtypes"
)

// CUDA is a Context for a present CUDA device. It validates the selector and
// describes the device; gorgonia's cuda build of the tape machine sets up its
// own CUDA engines and decides which operations run there.
type CUDA struct {
	dev Device
	rng *rand.Rand
}

func cudaDevices() ([]Device, error) {
	n, err := cu.NumDevices()
	if err != nil {
		return nil, errtypes.Resource(err, "enumerate cuda devices")
	}
	devices := make([]Device, 0, n)
	for i := 0; i < n; i++ {
		d, err := describeCUDA(i)
		if err != nil {
			return devices, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func describeCUDA(i int) (Device, error) {
	dev := cu.Device(i)
	name, err := dev.Name()
	if err != nil {
		return Device{}, errtypes.Resource(err, "cuda:%d name", i)
	}
	memory, err := dev.TotalMem()
	if err != nil {
		return Device{}, errtypes.Resource(err, "cuda:%d memory", i)
	}
	return Device{Kind: KindCUDA, Index: i, Name: name, Memory: uint64(memory)}, nil
}

func openCUDA(index int, seed int64) (Context, error) {
	n, err := cu.NumDevices()
	if err != nil {
		return nil, errtypes.Resource(err, "enumerate cuda devices")
	}
	if index >= n {
		return nil, errtypes.Resource(nil, "cuda:%d not present (%d devices)", index, n)
	}
	d, err := describeCUDA(index)
	if err != nil {
		return nil, err
	}
	return &CUDA{dev: d, rng: rand.New(rand.NewSource(seed))}, nil
}

// Device describes the CUDA device.
func (c *CUDA) Device() Device { return c.dev }

// Rand returns the seeded random source.
func (c *CUDA) Rand() *rand.Rand { return c.rng }

// NewMachine compiles g into a plain tape machine. Device placement is left
// to gorgonia.
func (c *CUDA) NewMachine(g *G.ExprGraph) G.VM {
	return G.NewTapeMachine(g)
}

// Close releases nothing. Each machine frees its CUDA state in its own Close.
func (c *CUDA) Close() error { return nil }
