package graph

import (
	"strings"

	"github.com/matzehuels/parallax/pkg/errors"
)

// View identifies one structural view of a graph.
type View int

const (
	ViewEdgeList View = iota
	ViewAdjacency
	ViewTranspose
)

// Views lists every view in canonical order.
var Views = []View{ViewEdgeList, ViewAdjacency, ViewTranspose}

func (v View) String() string {
	switch v {
	case ViewEdgeList:
		return "edgelist"
	case ViewAdjacency:
		return "adjacency"
	case ViewTranspose:
		return "transpose"
	default:
		return "unknown"
	}
}

// ParseView parses a view name as produced by [View.String].
// "csr" and "forward" are accepted as aliases for the adjacency view.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "edgelist", "edges", "coo":
		return ViewEdgeList, nil
	case "adjacency", "csr", "forward":
		return ViewAdjacency, nil
	case "transpose", "csc", "reverse":
		return ViewTranspose, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidArgument, "unknown view %q", s)
}

// =============================================================================
// Weights
// =============================================================================

// Weights is an optional per-edge weight array.
type Weights struct {
	values  []float64
	present bool
}

// NoWeights returns an absent weight array.
func NoWeights() Weights { return Weights{} }

// SomeWeights wraps w as a present weight array. The slice is borrowed.
func SomeWeights(w []float64) Weights { return Weights{values: w, present: true} }

// Get returns the weights and whether they are present.
func (w Weights) Get() ([]float64, bool) { return w.values, w.present }

// Present reports whether weights are attached.
func (w Weights) Present() bool { return w.present }

// =============================================================================
// EdgeList
// =============================================================================

// EdgeList is the coordinate view: edge i goes from Src[i] to Dst[i].
type EdgeList struct {
	Src     []int32
	Dst     []int32
	Weights Weights
}

// Len returns the number of edges.
func (e *EdgeList) Len() int { return len(e.Src) }

// MaxVertex returns the largest id referenced by the edge list, or -1
// if it is empty.
func (e *EdgeList) MaxVertex() int32 {
	var hi int32 = -1
	for _, ids := range [][]int32{e.Src, e.Dst} {
		if m := maxID(ids); m > hi {
			hi = m
		}
	}
	return hi
}

// Validate checks that the arrays have matching lengths and every id is
// in [0, vertices).
func (e *EdgeList) Validate(vertices int) error {
	if err := errors.ValidateLength("dst", len(e.Dst), len(e.Src)); err != nil {
		return err
	}
	if w, ok := e.Weights.Get(); ok {
		if err := errors.ValidateLength("weights", len(w), len(e.Src)); err != nil {
			return err
		}
	}
	if err := checkRange("src", e.Src, vertices); err != nil {
		return err
	}
	return checkRange("dst", e.Dst, vertices)
}

// =============================================================================
// CSR
// =============================================================================

// CSR is a compressed sparse row adjacency. The neighbors of vertex v are
// Indices[Offsets[v]:Offsets[v+1]].
type CSR struct {
	Offsets []int64
	Indices []int32
	Weights Weights
}

// Vertices returns V.
func (c *CSR) Vertices() int {
	if len(c.Offsets) == 0 {
		return 0
	}
	return len(c.Offsets) - 1
}

// Edges returns E.
func (c *CSR) Edges() int64 { return int64(len(c.Indices)) }

// Degree returns the number of neighbors of v.
func (c *CSR) Degree(v int32) int64 { return c.Offsets[v+1] - c.Offsets[v] }

// Neighbors returns the neighbor ids of v. The slice aliases Indices.
func (c *CSR) Neighbors(v int32) []int32 {
	return c.Indices[c.Offsets[v]:c.Offsets[v+1]]
}

// NeighborWeights returns the weights of v's edges, or nil when the view
// is unweighted.
func (c *CSR) NeighborWeights(v int32) []float64 {
	w, ok := c.Weights.Get()
	if !ok {
		return nil
	}
	return w[c.Offsets[v]:c.Offsets[v+1]]
}

// Validate checks the CSR invariants for a graph with the given number of
// vertices: len(Offsets) = V+1, Offsets[0] = 0, Offsets[V] = E, offsets
// non-decreasing, and every index in [0, V).
func (c *CSR) Validate(vertices int) error {
	if err := errors.ValidateLength("offsets", len(c.Offsets), vertices+1); err != nil {
		return err
	}
	if c.Offsets[0] != 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "offsets[0] is %d, want 0", c.Offsets[0])
	}
	if last := c.Offsets[vertices]; last != c.Edges() {
		return errors.New(errors.ErrCodeInvalidArgument, "offsets[%d] is %d, want %d edges", vertices, last, c.Edges())
	}
	if err := checkMonotonic(c.Offsets); err != nil {
		return err
	}
	if w, ok := c.Weights.Get(); ok {
		if err := errors.ValidateLength("weights", len(w), len(c.Indices)); err != nil {
			return err
		}
	}
	return checkRange("indices", c.Indices, vertices)
}

// NewEdgeList allocates an edge list with room for n edges. Sizes that
// cannot be allocated fail with ErrCodeAllocationFailure.
func NewEdgeList(n int64, weighted bool) (*EdgeList, error) {
	src, err := makeSlice[int32]("src", n)
	if err != nil {
		return nil, err
	}
	dst, err := makeSlice[int32]("dst", n)
	if err != nil {
		return nil, err
	}
	el := &EdgeList{Src: src, Dst: dst}
	if weighted {
		w, err := makeSlice[float64]("weights", n)
		if err != nil {
			return nil, err
		}
		el.Weights = SomeWeights(w)
	}
	return el, nil
}
