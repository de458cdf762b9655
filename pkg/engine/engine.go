// Package engine is the buffer-level entry point to Parallax.
//
// Each function takes a graph handle plus typed [column.Column] buffers,
// checks element types, and forwards to packages graph, pagerank, bfs and
// rmat. Every function reports failure through its error result; a
// PageRank run that hits its iteration cap is still a success and carries
// pagerank.MaxIterationsExceeded in its status.
//
// Columns are borrowed: Int32 vertex ids, Int64 offsets and Float64
// weights are installed without copying, other accepted types are
// converted into new slices.
package engine

import (
	"context"
	"math"

	"github.com/matzehuels/parallax/pkg/bfs"
	"github.com/matzehuels/parallax/pkg/column"
	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/graph"
	"github.com/matzehuels/parallax/pkg/pagerank"
	"github.com/matzehuels/parallax/pkg/rmat"
)

func checkHandle(h *graph.Handle) error {
	if h == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "graph handle is nil")
	}
	return nil
}

// weightsOf converts an optional weight column.
func weightsOf(c *column.Column) (graph.Weights, error) {
	if c == nil {
		return graph.NoWeights(), nil
	}
	w, err := column.AsWeights(*c)
	if err != nil {
		return graph.Weights{}, err
	}
	return graph.SomeWeights(w), nil
}

// BuildEdgeList installs src/dst (and optional weights) as the edge list
// view of h.
func BuildEdgeList(h *graph.Handle, src, dst column.Column, weights *column.Column) error {
	if err := checkHandle(h); err != nil {
		return err
	}
	s, err := column.AsVertexIDs(src)
	if err != nil {
		return err
	}
	d, err := column.AsVertexIDs(dst)
	if err != nil {
		return err
	}
	w, err := weightsOf(weights)
	if err != nil {
		return err
	}
	return h.SetEdgeList(s, d, w)
}

// BuildAdjacency installs a CSR as the adjacency view of h.
func BuildAdjacency(h *graph.Handle, offsets, indices column.Column, weights *column.Column) error {
	return buildCSR(h, offsets, indices, weights, h.SetAdjacency)
}

// BuildTranspose installs a CSR as the transpose view of h.
func BuildTranspose(h *graph.Handle, offsets, indices column.Column, weights *column.Column) error {
	return buildCSR(h, offsets, indices, weights, h.SetTranspose)
}

func buildCSR(h *graph.Handle, offsets, indices column.Column, weights *column.Column,
	set func([]int64, []int32, graph.Weights) error) error {
	if err := checkHandle(h); err != nil {
		return err
	}
	o, err := column.AsOffsets(offsets)
	if err != nil {
		return err
	}
	idx, err := column.AsVertexIDs(indices)
	if err != nil {
		return err
	}
	w, err := weightsOf(weights)
	if err != nil {
		return err
	}
	return set(o, idx, w)
}

// DeriveAdjacency derives the adjacency view if it is missing.
func DeriveAdjacency(h *graph.Handle) error {
	if err := checkHandle(h); err != nil {
		return err
	}
	return h.EnsureAdjacency()
}

// DeriveTranspose derives the transpose view if it is missing.
func DeriveTranspose(h *graph.Handle) error {
	if err := checkHandle(h); err != nil {
		return err
	}
	return h.EnsureTranspose()
}

// DeriveEdgeList derives the edge list view if it is missing.
func DeriveEdgeList(h *graph.Handle) error {
	if err := checkHandle(h); err != nil {
		return err
	}
	return h.EnsureEdgeList()
}

// DropAdjacency removes the adjacency view. Dropping an absent view
// succeeds.
func DropAdjacency(h *graph.Handle) error {
	if err := checkHandle(h); err != nil {
		return err
	}
	h.DropAdjacency()
	return nil
}

// DropTranspose removes the transpose view.
func DropTranspose(h *graph.Handle) error {
	if err := checkHandle(h); err != nil {
		return err
	}
	h.DropTranspose()
	return nil
}

// DropEdgeList removes the edge list view.
func DropEdgeList(h *graph.Handle) error {
	if err := checkHandle(h); err != nil {
		return err
	}
	h.DropEdgeList()
	return nil
}

// PageRank runs the power-iteration solver on h. tolerance 0 and
// maxIter <= 0 select the defaults; guess may be nil.
func PageRank(ctx context.Context, h *graph.Handle, alpha, tolerance float64, maxIter int, guess *column.Column) (*pagerank.Result, error) {
	if err := checkHandle(h); err != nil {
		return nil, err
	}
	opts := pagerank.Options{Alpha: alpha, Tolerance: tolerance, MaxIter: maxIter}
	if guess != nil {
		g, err := column.AsWeights(*guess)
		if err != nil {
			return nil, err
		}
		opts.Guess = g
	}
	return pagerank.Run(ctx, h, opts)
}

// BFS searches h from start along out-edges (directed) or along edges in
// both directions.
func BFS(ctx context.Context, h *graph.Handle, start int64, directed bool) (*bfs.Result, error) {
	if err := checkHandle(h); err != nil {
		return nil, err
	}
	if start < 0 || start > math.MaxInt32 {
		return nil, errors.ValidateVertex("start", start, int64(h.Vertices()))
	}
	return bfs.Run(ctx, h, int32(start), directed)
}

// GenerateRMAT generates the edge list described by d.
func GenerateRMAT(ctx context.Context, d rmat.Descriptor) (*graph.EdgeList, int, error) {
	return rmat.Generate(ctx, d)
}

// GenerateRMATArgs parses a flag string with [rmat.ParseArgs] and
// generates the described edge list.
func GenerateRMATArgs(ctx context.Context, args string) (*graph.EdgeList, int, error) {
	d, err := rmat.ParseArgs(args)
	if err != nil {
		return nil, 0, err
	}
	return rmat.Generate(ctx, d)
}
