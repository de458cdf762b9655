package rmat

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/matzehuels/parallax/pkg/graph"
	"github.com/matzehuels/parallax/pkg/observability"
	"github.com/matzehuels/parallax/pkg/par"
)

// blockSize is the number of edges drawn from one random stream.
const blockSize = 1 << 14

// permutationStream is the stream id of the relabeling permutation. Edge
// blocks use ids starting at 1.
const permutationStream = 0

func newRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// Generate builds the edge list described by d and returns it with its
// vertex count 2^Scale. ctx is passed to the observability hooks.
func Generate(ctx context.Context, d Descriptor) (el *graph.EdgeList, vertices int, err error) {
	start := time.Now()
	defer func() {
		var edges int64
		if el != nil {
			edges = int64(el.Len())
		}
		observability.Algorithms().OnGenerate(ctx, d.Scale, edges, time.Since(start), err)
	}()

	if err := d.Validate(); err != nil {
		return nil, 0, err
	}
	vertices = d.Vertices()
	edges := d.Edges()
	el, err = graph.NewEdgeList(edges, d.Weighted)
	if err != nil {
		return nil, 0, err
	}
	weights, _ := el.Weights.Get()
	wlo, whi := d.weightRange()

	// Cumulative quadrant thresholds.
	ab := d.A + d.B
	abc := ab + d.C

	blocks := int((edges + blockSize - 1) / blockSize)
	par.ForTasks(blocks, func(b int) {
		rng := newRand(d.Seed, uint64(b)+1)
		lo := int64(b) * blockSize
		hi := min(lo+blockSize, edges)
		for i := lo; i < hi; i++ {
			var src, dst int32
			for bit := d.Scale - 1; bit >= 0; bit-- {
				r := rng.Float64()
				switch {
				case r < d.A:
				case r < ab:
					dst |= 1 << bit
				case r < abc:
					src |= 1 << bit
				default:
					src |= 1 << bit
					dst |= 1 << bit
				}
			}
			el.Src[i] = src
			el.Dst[i] = dst
			if weights != nil {
				weights[i] = wlo + rng.Float64()*(whi-wlo)
			}
		}
	})

	if d.Permute {
		relabel(el, permutation(d.Seed, vertices))
	}
	return el, vertices, nil
}

// permutation returns a uniformly random permutation of [0, n) drawn with
// Fisher-Yates from the dedicated permutation stream.
func permutation(seed uint64, n int) []int32 {
	perm := make([]int32, n)
	par.For(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			perm[i] = int32(i)
		}
	})
	rng := newRand(seed, permutationStream)
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

func relabel(el *graph.EdgeList, perm []int32) {
	par.For(el.Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			el.Src[i] = perm[el.Src[i]]
			el.Dst[i] = perm[el.Dst[i]]
		}
	})
}
