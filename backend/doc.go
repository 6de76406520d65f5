// Package backend provides the compute Context tensor operations are submitted to.
//
// A Context owns the device description, the seeded pseudo-random source used for
// parameter initialization and dropout masks, and the factory for the virtual
// machines that execute expression graphs. It is passed explicitly to model
// construction and to every forward pass, so tests run on a deterministic CPU
// Context.
package backend
