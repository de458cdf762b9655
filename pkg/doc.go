// Package pkg provides the libraries behind Parallax, a parallel graph
// analytics engine.
//
// # Overview
//
// A graph lives in a [graph.Handle] that holds up to three views of the
// same edges: an edge list (COO), the forward adjacency (CSR) and its
// transpose (CSC). Algorithms ask the handle for the view they need and
// the handle derives it from whichever view is present. The packages are:
//
//  1. [graph] - views, conversions and the handle
//  2. [pagerank], [bfs] - algorithms over the handle
//  3. [rmat] - deterministic recursive-matrix graph generation
//  4. [engine] - the boundary API over typed [column] arrays
//  5. [pipeline] - load → analyze → render with caching
//  6. [server] - the HTTP API
//
// Supporting packages: [par] (worker pool), [errors] (coded errors),
// [config] (TOML settings), [cache] (file and Redis result cache),
// [io] (edge list files), [observability] (hooks and Prometheus metrics)
// and [render] (node-link diagrams).
//
// # Data flow
//
//	edge list file / RMAT descriptor
//	         ↓
//	    [io] or [rmat] (edge list)
//	         ↓
//	    [graph] handle (derive CSR/CSC on demand)
//	         ↓
//	    [pagerank] / [bfs]
//	         ↓
//	    TSV/JSON results, SVG/PNG/PDF/DOT drawings
//
// # Quick Start
//
//	el, v, _ := rmat.Generate(ctx, rmat.Default())
//	h := graph.New(graph.WithVertices(v))
//	_ = h.SetEdgeList(el.Src, el.Dst, el.Weights)
//
//	res, _ := pagerank.Run(ctx, h, pagerank.DefaultOptions())
//	for _, r := range pagerank.TopK(res.Ranks, 10) {
//	    fmt.Println(r.Vertex, r.Rank)
//	}
package pkg
