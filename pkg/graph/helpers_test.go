package graph

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	"github.com/matzehuels/parallax/pkg/par"
)

type edge struct {
	src, dst int32
	w        float64
}

// edgeMultiset returns the edges of el in a canonical order.
func edgeMultiset(el *EdgeList) []edge {
	w, weighted := el.Weights.Get()
	out := make([]edge, el.Len())
	for i := range out {
		out[i] = edge{src: el.Src[i], dst: el.Dst[i]}
		if weighted {
			out[i].w = w[i]
		}
	}
	slices.SortFunc(out, func(a, b edge) int {
		if c := cmp.Compare(a.src, b.src); c != 0 {
			return c
		}
		if c := cmp.Compare(a.dst, b.dst); c != 0 {
			return c
		}
		return cmp.Compare(a.w, b.w)
	})
	return out
}

// randomEdgeList builds a reproducible multigraph with self-loops and
// duplicate edges.
func randomEdgeList(seed uint64, vertices, edges int, weighted bool) *EdgeList {
	rng := rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))
	el := &EdgeList{Src: make([]int32, edges), Dst: make([]int32, edges)}
	var w []float64
	if weighted {
		w = make([]float64, edges)
	}
	for i := range edges {
		el.Src[i] = int32(rng.IntN(vertices))
		el.Dst[i] = int32(rng.IntN(vertices))
		if weighted {
			w[i] = float64(i)
		}
	}
	if weighted {
		el.Weights = SomeWeights(w)
	}
	return el
}

// withWorkers runs fn under several worker counts.
func withWorkers(t *testing.T, fn func(t *testing.T)) {
	t.Helper()
	for _, n := range []int{1, 3, 8} {
		prev := par.SetWorkers(n)
		t.Run(workersName(n), fn)
		par.SetWorkers(prev)
	}
}

func workersName(n int) string {
	return "workers=" + strconv.Itoa(n)
}
