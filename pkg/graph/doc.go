// Package graph holds the structural views of a graph and the handle that
// keeps them consistent.
//
// A logical graph with V vertices and E edges can be held in up to three
// views:
//
//   - [EdgeList]: parallel src/dst arrays plus optional weights
//   - [CSR] adjacency: out-edges grouped by source vertex
//   - [CSR] transpose: in-edges grouped by destination vertex
//
// [EdgeListToCSR], [Transpose] and [CSRToEdgeList] convert between them.
// The conversions are data-parallel (histogram, exclusive scan, scatter
// with atomic per-vertex cursors) and run on package par.
//
// # Handle
//
// A [Handle] owns the views of one graph. Callers install views they
// already have and ask the handle to derive the rest:
//
//	h := graph.New(graph.WithVertices(4))
//	if err := h.SetEdgeList(src, dst, graph.NoWeights()); err != nil {
//	    return err
//	}
//	if err := h.EnsureTranspose(); err != nil {
//	    return err
//	}
//	t, _ := h.Transpose()
//
// Installed buffers are borrowed: the caller must not modify them while
// they are installed. Derived views are owned by the handle until dropped.
// Views are immutable once installed, so readers may keep using a view
// after it was dropped from the handle.
//
// Every mutating method is atomic with respect to the view set: on error
// the handle is left exactly as it was.
//
// # Weights
//
// Edge weights are optional. [Weights] makes presence explicit so every
// consumer has to check it:
//
//	if w, ok := csr.Weights.Get(); ok {
//	    // weighted path
//	}
package graph
