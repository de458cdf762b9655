package bfs

import (
	"context"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/graph"
	"github.com/matzehuels/parallax/pkg/observability"
	"github.com/matzehuels/parallax/pkg/par"
)

const (
	// Infinity is the distance of a vertex the search did not reach.
	Infinity uint32 = math.MaxUint32

	// NoPredecessor marks the start vertex and unreached vertices.
	NoPredecessor int32 = -1
)

// Result holds the distances and BFS tree of a search.
type Result struct {
	Start        int32    `json:"start"`
	Distances    []uint32 `json:"distances"`
	Predecessors []int32  `json:"predecessors"`
	// Levels is the number of non-empty levels, including the start.
	Levels int `json:"levels"`
	// Reached counts the vertices with a finite distance.
	Reached int `json:"reached"`
}

// PathTo returns the vertices on the BFS-tree path from the start to v,
// both included. It fails with ErrCodeNotFound when v was not reached.
func (r *Result) PathTo(v int32) ([]int32, error) {
	if err := errors.ValidateVertex("target", int64(v), int64(len(r.Distances))); err != nil {
		return nil, err
	}
	if r.Distances[v] == Infinity {
		return nil, errors.New(errors.ErrCodeNotFound, "vertex %d not reached from %d", v, r.Start)
	}
	path := make([]int32, 0, r.Distances[v]+1)
	for u := v; u != NoPredecessor; u = r.Predecessors[u] {
		path = append(path, u)
	}
	slices.Reverse(path)
	return path, nil
}

// Run searches h from start. directed selects out-edges only (true) or
// both directions (false); see [WithDirection] for in-edges.
//
// It fails with ErrCodeInvalidArgument when start is not a vertex of h and
// with ErrCodeMissingView when h has no view to derive the needed CSR from.
// ctx is passed to the observability hooks; the search is not cancelled
// through it.
func Run(ctx context.Context, h *graph.Handle, start int32, directed bool, opts ...Option) (res *Result, err error) {
	began := time.Now()
	defer func() {
		reached, levels := 0, 0
		if res != nil {
			reached, levels = res.Reached, res.Levels
		}
		observability.Algorithms().OnBFSComplete(ctx, h.Vertices(), reached, levels, time.Since(began), err)
	}()

	o, err := buildOptions(directed, opts)
	if err != nil {
		return nil, err
	}
	// Reject a bad start before any view is derived.
	if h.Edges() >= 0 {
		if err := errors.ValidateVertex("start", int64(start), int64(h.Vertices())); err != nil {
			return nil, err
		}
	}
	views, err := ensureViews(h, o.direction)
	if err != nil {
		return nil, err
	}
	n := views[0].Vertices()
	if err := errors.ValidateVertex("start", int64(start), int64(n)); err != nil {
		return nil, err
	}

	dist := make([]atomic.Uint32, n)
	pred := make([]int32, n)
	par.For(n, func(lo, hi int) {
		for v := lo; v < hi; v++ {
			dist[v].Store(Infinity)
			pred[v] = NoPredecessor
		}
	})

	dist[start].Store(0)
	frontier := []int32{start}
	reached := 1
	level := 0
	hooks := observability.Algorithms()

	for len(frontier) > 0 {
		hooks.OnBFSLevel(ctx, level, len(frontier))
		o.logger.Debug("bfs level", "level", level, "frontier", len(frontier))
		if o.maxDepth > 0 && level >= o.maxDepth {
			level++
			break
		}
		frontier = expand(views, frontier, dist, pred, uint32(level+1))
		reached += len(frontier)
		level++
	}

	res = &Result{
		Start:        start,
		Distances:    make([]uint32, n),
		Predecessors: pred,
		Levels:       level,
		Reached:      reached,
	}
	par.For(n, func(lo, hi int) {
		for v := lo; v < hi; v++ {
			res.Distances[v] = dist[v].Load()
		}
	})
	return res, nil
}

// ensureViews derives the CSR views the direction needs and returns them.
func ensureViews(h *graph.Handle, d Direction) ([]*graph.CSR, error) {
	var views []*graph.CSR
	if d == Out || d == Both {
		if err := h.EnsureAdjacency(); err != nil {
			return nil, err
		}
		adj, ok := h.Adjacency()
		if !ok {
			return nil, errors.New(errors.ErrCodeMissingView, "adjacency dropped during bfs")
		}
		views = append(views, adj)
	}
	if d == In || d == Both {
		if err := h.EnsureTranspose(); err != nil {
			return nil, err
		}
		tr, ok := h.Transpose()
		if !ok {
			return nil, errors.New(errors.ErrCodeMissingView, "transpose dropped during bfs")
		}
		views = append(views, tr)
	}
	return views, nil
}

// expand claims the unvisited neighbors of frontier at distance next and
// returns them as the next frontier. Each chunk collects its claims in its
// own buffer; the buffers are concatenated after the barrier.
func expand(views []*graph.CSR, frontier []int32, dist []atomic.Uint32, pred []int32, next uint32) []int32 {
	buffers := make([][]int32, par.Chunks(len(frontier)))
	par.ForChunks(len(frontier), func(chunk, lo, hi int) {
		var claimed []int32
		for _, u := range frontier[lo:hi] {
			for _, csr := range views {
				for _, w := range csr.Neighbors(u) {
					if dist[w].Load() != Infinity {
						continue
					}
					if dist[w].CompareAndSwap(Infinity, next) {
						pred[w] = u
						claimed = append(claimed, w)
					}
				}
			}
		}
		buffers[chunk] = claimed
	})

	total := 0
	for _, b := range buffers {
		total += len(b)
	}
	out := make([]int32, 0, total)
	for _, b := range buffers {
		out = append(out, b...)
	}
	return out
}
