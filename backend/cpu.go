package backend

import (
	"math/rand"

	"github.com/klauspost/cpuid/v2"
	G "gorgonia.org/gorgonia"
)

// CPU is a Context executing graphs on the host with a tape machine.
type CPU struct {
	dev Device
	rng *rand.Rand
}

// NewCPU creates a CPU Context whose random source is seeded with seed.
func NewCPU(seed int64) *CPU {
	return &CPU{
		dev: describeCPU(),
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Device describes the host processor.
func (c *CPU) Device() Device { return c.dev }

// Rand returns the seeded random source.
func (c *CPU) Rand() *rand.Rand { return c.rng }

// NewMachine compiles g into a tape machine.
func (c *CPU) NewMachine(g *G.ExprGraph) G.VM {
	return G.NewTapeMachine(g)
}

// Close is a no-op for the host.
func (c *CPU) Close() error { return nil }

var cpuFeatures = []struct {
	name string
	id   cpuid.FeatureID
}{
	{"avx", cpuid.AVX},
	{"avx2", cpuid.AVX2},
	{"fma3", cpuid.FMA3},
	{"avx512f", cpuid.AVX512F},
	{"asimd", cpuid.ASIMD},
}

func describeCPU() Device {
	d := Device{
		Kind:    KindCPU,
		Name:    cpuid.CPU.BrandName,
		Threads: cpuid.CPU.LogicalCores,
	}
	if d.Name == "" {
		d.Name = "generic"
	}
	for _, f := range cpuFeatures {
		if cpuid.CPU.Supports(f.id) {
			d.Features = append(d.Features, f.name)
		}
	}
	return d
}
