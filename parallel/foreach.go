// Package parallel contains bounded parallel loops.
package parallel

import "golang.org/x/sync/errgroup"

// ForEach executes a for loop with a limited number of concurrent goroutines.
// Each goroutine processes one integer, from 0 to length. The first error
// returned by body is returned after every started iteration finished.
func ForEach(length, limit int, body func(i int) error) error {
	if limit <= 0 {
		limit = 1 // Default to 1 if limit is zero or negative
	}
	if length <= 0 {
		return nil // No iterations to perform
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i := 0; i < length; i++ {
		i := i
		g.Go(func() error {
			return body(i)
		})
	}
	return g.Wait()
}

// ForChunks splits [0, length) into consecutive chunks of at most size
// elements and runs body on each half-open chunk through ForEach.
func ForChunks(length, size, limit int, body func(lo, hi int) error) error {
	if size <= 0 {
		size = length
	}
	if length <= 0 {
		return nil
	}
	chunks := (length + size - 1) / size
	return ForEach(chunks, limit, func(c int) error {
		lo := c * size
		hi := lo + size
		if hi > length {
			hi = length
		}
		return body(lo, hi)
	})
}
