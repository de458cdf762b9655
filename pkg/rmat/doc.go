// Package rmat generates synthetic power-law graphs with the recursive
// matrix (RMAT) model.
//
// Each edge is placed by descending Scale levels into a conceptual V x V
// adjacency matrix, choosing one of four quadrants at every level with
// probabilities A (top left), B (top right), C (bottom left) and
// D (bottom right). Skewed probabilities concentrate edges on a few rows
// and columns, giving a heavy-tailed degree distribution.
//
// Generation is split into fixed-size blocks of edges, each drawing from
// its own PCG stream keyed by the seed and the block index. The output is
// therefore a pure function of the [Descriptor], whatever the number of
// workers.
//
// Descriptors can be built in Go or parsed from the flag syntax used by
// graph benchmark tools:
//
//	d, err := rmat.ParseArgs("--rmat_scale=16 --rmat_edgefactor=8 --rmat_seed=7")
//	el, vertices, err := rmat.Generate(ctx, d)
package rmat
