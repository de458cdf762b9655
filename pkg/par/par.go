// Package par is the data-parallel execution substrate used by the graph
// kernels.
//
// Work is expressed as an index range [0, n) split into contiguous chunks.
// Each call runs its chunks on a bounded group of goroutines and returns
// only after every chunk finished, so consecutive calls are separated by a
// full barrier. Kernels that build a result in phases (histogram, scan,
// scatter) simply issue one call per phase.
//
// Ranges shorter than [Grain] run inline on the calling goroutine.
package par

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Grain is the minimum number of items per chunk. Below it the scheduling
// overhead dominates the per-item work of the kernels in this module.
const Grain = 2048

var workers atomic.Int64

// Workers returns the number of goroutines used per parallel call.
// It defaults to GOMAXPROCS.
func Workers() int {
	if w := workers.Load(); w > 0 {
		return int(w)
	}
	return runtime.GOMAXPROCS(0)
}

// SetWorkers overrides the worker count. n <= 0 restores the default.
// It returns the previous setting so tests can restore it.
func SetWorkers(n int) int {
	prev := Workers()
	if n <= 0 {
		n = 0
	}
	workers.Store(int64(n))
	return prev
}

// Chunks returns the number of chunks [For] splits n items into.
func Chunks(n int) int {
	if n <= 0 {
		return 0
	}
	c := Workers() * 4
	if limit := (n + Grain - 1) / Grain; c > limit {
		c = limit
	}
	if c < 1 {
		c = 1
	}
	return c
}

// Bounds returns the half-open range of chunk i out of c chunks over n items.
func Bounds(i, c, n int) (lo, hi int) {
	size := n / c
	rem := n % c
	lo = i*size + min(i, rem)
	hi = lo + size
	if i < rem {
		hi++
	}
	return lo, hi
}

// For runs fn over contiguous sub-ranges covering [0, n) and waits for all
// of them. fn must only write to locations owned by its range or use atomics.
func For(n int, fn func(lo, hi int)) {
	ForChunks(n, func(_, lo, hi int) { fn(lo, hi) })
}

// ForChunks is like [For] but also passes the chunk index, which lets
// callers keep per-chunk scratch buffers without locking.
func ForChunks(n int, fn func(chunk, lo, hi int)) {
	c := Chunks(n)
	switch c {
	case 0:
		return
	case 1:
		fn(0, 0, n)
		return
	}

	var g errgroup.Group
	g.SetLimit(Workers())
	for i := range c {
		lo, hi := Bounds(i, c, n)
		g.Go(func() error {
			fn(i, lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

// ForEach calls fn for every index in [0, n) in parallel.
func ForEach(n int, fn func(i int)) {
	For(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fn(i)
		}
	})
}

// Sum reduces [0, n) with fn computing a partial sum per range. Partials
// are combined in chunk order, so the result does not depend on goroutine
// scheduling.
func Sum(n int, fn func(lo, hi int) float64) float64 {
	c := Chunks(n)
	if c == 0 {
		return 0
	}
	partial := make([]float64, c)
	ForChunks(n, func(chunk, lo, hi int) {
		partial[chunk] = fn(lo, hi)
	})
	var total float64
	for _, p := range partial {
		total += p
	}
	return total
}

// ForTasks calls fn for every i in [0, n) with up to Workers() goroutines,
// one task per index. Unlike [ForEach] it does not coalesce indices into
// chunks, so it suits a small number of coarse tasks.
func ForTasks(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if n == 1 || Workers() == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(Workers())
	for i := range n {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
