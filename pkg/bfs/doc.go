// Package bfs implements level-synchronous breadth-first search over the
// CSR views of a graph handle.
//
// Each level expands the whole frontier in parallel. A vertex is claimed
// by a compare-and-swap of its distance from [Infinity] to the next level;
// only the winning claimant records itself as predecessor and appends the
// vertex to the next frontier. A barrier separates levels, so distances
// are deterministic while the choice among simultaneous predecessors is
// not.
//
// # Direction
//
//   - directed=true walks out-edges (the adjacency view)
//   - directed=false walks out- and in-edges, i.e. the underlying
//     undirected graph
//   - [WithDirection]([In]) walks in-edges only (the transpose view)
//
// Missing views are derived on the handle before the search starts.
//
// # Usage
//
//	res, err := bfs.Run(ctx, h, 0, true)
//	if err != nil {
//	    return err
//	}
//	if res.Distances[7] != bfs.Infinity {
//	    path, _ := res.PathTo(7)
//	    fmt.Println(path)
//	}
package bfs
