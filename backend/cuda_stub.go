//go:build !cuda

package backend

import "github.com/neurlang/digitnet/errtypes"

func cudaDevices() ([]Device, error) {
	return nil, nil
}

func openCUDA(index int, seed int64) (Context, error) {
	return nil, errtypes.Resource(nil, "cuda:%d requested but built without the cuda tag", index)
}
