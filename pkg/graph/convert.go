package graph

import (
	"slices"
	"sort"
	"sync/atomic"

	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/par"
)

// EdgeListToCSR builds the forward adjacency of el over the given number
// of vertices.
//
// The build runs in three barrier-separated phases: a parallel out-degree
// histogram, an exclusive scan of the degrees into offsets, and a parallel
// scatter in which every edge claims a slot of its source row through an
// atomic per-vertex cursor. Neighbor order within a row is unspecified;
// use [SortNeighbors] when a canonical order is needed.
func EdgeListToCSR(el *EdgeList, vertices int) (*CSR, error) {
	if vertices < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "negative vertex count %d", vertices)
	}
	if vertices > MaxVertices {
		return nil, errors.New(errors.ErrCodeAllocationFailure, "vertex count %d exceeds %d", vertices, MaxVertices)
	}
	if err := el.Validate(vertices); err != nil {
		return nil, err
	}

	edges := el.Len()
	cursor, err := makeSlice[int64]("degrees", int64(vertices))
	if err != nil {
		return nil, err
	}
	offsets, err := makeSlice[int64]("offsets", int64(vertices)+1)
	if err != nil {
		return nil, err
	}
	indices, err := makeSlice[int32]("indices", int64(edges))
	if err != nil {
		return nil, err
	}
	inWeights, hasWeights := el.Weights.Get()
	var weights []float64
	if hasWeights {
		if weights, err = makeSlice[float64]("weights", int64(edges)); err != nil {
			return nil, err
		}
	}

	// Phase 1: histogram.
	par.For(edges, func(lo, hi int) {
		for _, s := range el.Src[lo:hi] {
			atomic.AddInt64(&cursor[s], 1)
		}
	})

	// Phase 2: offsets.
	offsets[vertices] = par.ExclusiveScan(cursor, offsets[:vertices])
	par.For(vertices, func(lo, hi int) {
		copy(cursor[lo:hi], offsets[lo:hi])
	})

	// Phase 3: scatter.
	par.For(edges, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			pos := atomic.AddInt64(&cursor[el.Src[i]], 1) - 1
			indices[pos] = el.Dst[i]
			if hasWeights {
				weights[pos] = inWeights[i]
			}
		}
	})

	csr := &CSR{Offsets: offsets, Indices: indices}
	if hasWeights {
		csr.Weights = SomeWeights(weights)
	}
	return csr, nil
}

// Transpose builds the in-edge adjacency of el: row v lists the sources of
// the edges that end at v.
func Transpose(el *EdgeList, vertices int) (*CSR, error) {
	swapped := &EdgeList{Src: el.Dst, Dst: el.Src, Weights: el.Weights}
	return EdgeListToCSR(swapped, vertices)
}

// CSRToEdgeList expands csr into an edge list in row order. The result
// owns fresh copies of the indices and weights.
func CSRToEdgeList(csr *CSR) (*EdgeList, error) {
	edges := len(csr.Indices)
	src, err := makeSlice[int32]("src", int64(edges))
	if err != nil {
		return nil, err
	}
	dst, err := makeSlice[int32]("dst", int64(edges))
	if err != nil {
		return nil, err
	}
	w, hasWeights := csr.Weights.Get()
	var weights []float64
	if hasWeights {
		if weights, err = makeSlice[float64]("weights", int64(edges)); err != nil {
			return nil, err
		}
	}

	offsets := csr.Offsets
	rows := csr.Vertices()
	par.For(edges, func(lo, hi int) {
		// First row whose range extends past lo.
		row := sort.Search(rows, func(r int) bool { return offsets[r+1] > int64(lo) })
		for i := lo; i < hi; i++ {
			for offsets[row+1] <= int64(i) {
				row++
			}
			src[i] = int32(row)
		}
		copy(dst[lo:hi], csr.Indices[lo:hi])
		if hasWeights {
			copy(weights[lo:hi], w[lo:hi])
		}
	})

	el := &EdgeList{Src: src, Dst: dst}
	if hasWeights {
		el.Weights = SomeWeights(weights)
	}
	return el, nil
}

// TransposeCSR returns the transpose of csr. Applied to an adjacency it
// yields the in-edge view and vice versa.
func TransposeCSR(csr *CSR) (*CSR, error) {
	rows := csr.Vertices()
	expanded, err := CSRToEdgeList(csr)
	if err != nil {
		return nil, err
	}
	return Transpose(expanded, rows)
}

// SortNeighbors sorts every row of csr by neighbor id in place, carrying
// weights along. Rows are sorted in parallel.
func SortNeighbors(csr *CSR) {
	w, hasWeights := csr.Weights.Get()
	par.ForEach(csr.Vertices(), func(v int) {
		lo, hi := csr.Offsets[v], csr.Offsets[v+1]
		if hi-lo < 2 {
			return
		}
		if !hasWeights {
			slices.Sort(csr.Indices[lo:hi])
			return
		}
		sort.Stable(rowSorter{ids: csr.Indices[lo:hi], weights: w[lo:hi]})
	})
}

type rowSorter struct {
	ids     []int32
	weights []float64
}

func (r rowSorter) Len() int           { return len(r.ids) }
func (r rowSorter) Less(i, j int) bool { return r.ids[i] < r.ids[j] }
func (r rowSorter) Swap(i, j int) {
	r.ids[i], r.ids[j] = r.ids[j], r.ids[i]
	r.weights[i], r.weights[j] = r.weights[j], r.weights[i]
}
