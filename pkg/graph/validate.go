package graph

import (
	"fmt"
	"math"

	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/par"
)

// MaxVertices is the largest vertex count a handle supports. Vertex ids
// are int32.
const MaxVertices = math.MaxInt32

// firstBad scans [0, n) in parallel and returns the smallest index for
// which bad reports true, or -1. Each chunk stops at its first hit, and
// the minimum over chunks is returned so errors are reproducible.
func firstBad(n int, bad func(i int) bool) int {
	c := par.Chunks(n)
	if c == 0 {
		return -1
	}
	hits := make([]int, c)
	par.ForChunks(n, func(chunk, lo, hi int) {
		hits[chunk] = -1
		for i := lo; i < hi; i++ {
			if bad(i) {
				hits[chunk] = i
				return
			}
		}
	})
	for _, h := range hits {
		if h >= 0 {
			return h
		}
	}
	return -1
}

// checkRange verifies that every id lies in [0, n).
func checkRange(name string, ids []int32, n int) error {
	i := firstBad(len(ids), func(i int) bool {
		v := ids[i]
		return v < 0 || int(v) >= n
	})
	if i < 0 {
		return nil
	}
	return errors.ValidateVertex(fmt.Sprintf("%s[%d]", name, i), int64(ids[i]), int64(n))
}

// checkMonotonic verifies that offsets never decrease.
func checkMonotonic(offsets []int64) error {
	i := firstBad(len(offsets)-1, func(i int) bool { return offsets[i+1] < offsets[i] })
	if i < 0 {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidArgument,
		"offsets not monotonic: offsets[%d]=%d > offsets[%d]=%d", i, offsets[i], i+1, offsets[i+1])
}

// maxID returns the largest id in ids, or -1 when empty.
func maxID(ids []int32) int32 {
	c := par.Chunks(len(ids))
	if c == 0 {
		return -1
	}
	partial := make([]int32, c)
	par.ForChunks(len(ids), func(chunk, lo, hi int) {
		m := int32(-1)
		for _, v := range ids[lo:hi] {
			if v > m {
				m = v
			}
		}
		partial[chunk] = m
	})
	m := int32(-1)
	for _, p := range partial {
		if p > m {
			m = p
		}
	}
	return m
}

// makeSlice allocates n zeroed elements. Sizes the runtime cannot address
// are reported as ErrCodeAllocationFailure instead of panicking.
func makeSlice[T any](name string, n int64) (s []T, err error) {
	if n < 0 || n > math.MaxInt {
		return nil, errors.New(errors.ErrCodeAllocationFailure, "%s: cannot allocate %d elements", name, n)
	}
	defer func() {
		if r := recover(); r != nil {
			s = nil
			err = errors.New(errors.ErrCodeAllocationFailure, "%s: cannot allocate %d elements: %v", name, n, r)
		}
	}()
	return make([]T, n), nil
}
