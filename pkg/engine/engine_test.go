package engine

import (
	"cmp"
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/parallax/pkg/bfs"
	"github.com/matzehuels/parallax/pkg/column"
	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/graph"
	"github.com/matzehuels/parallax/pkg/pagerank"
	"github.com/matzehuels/parallax/pkg/rmat"
)

func pairs(el *graph.EdgeList) [][2]int32 {
	out := make([][2]int32, el.Len())
	for i := range out {
		out[i] = [2]int32{el.Src[i], el.Dst[i]}
	}
	slices.SortFunc(out, func(a, b [2]int32) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})
	return out
}

func TestBuildEdgeListTypes(t *testing.T) {
	f := column.FromFloat64([]float64{1, 2})
	i64 := column.FromInt64([]int64{0, 1})
	i32 := column.FromInt32([]int32{1, 0})
	badWeights := column.FromInt32([]int32{1, 1})
	goodWeights := column.FromFloat32([]float32{0.5, 1.5})

	tests := []struct {
		name     string
		src, dst column.Column
		weights  *column.Column
		code     errors.Code
	}{
		{"int32 and int64 ids", i64, i32, nil, ""},
		{"float32 weights", i64, i32, &goodWeights, ""},
		{"float ids", f, i32, nil, errors.ErrCodeUnsupportedType},
		{"integer weights", i64, i32, &badWeights, errors.ErrCodeUnsupportedType},
		{"overflowing id", column.FromInt64([]int64{0, 1 << 40}), i32, nil, errors.ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := graph.New()
			err := BuildEdgeList(h, tt.src, tt.dst, tt.weights)
			if tt.code == "" {
				require.NoError(t, err)
				assert.True(t, h.Has(graph.ViewEdgeList))
				return
			}
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
			assert.False(t, h.Has(graph.ViewEdgeList))
		})
	}
}

func TestDeriveOnEmptyHandle(t *testing.T) {
	h := graph.New()
	assert.True(t, errors.Is(DeriveAdjacency(h), errors.ErrCodeMissingView))
	assert.True(t, errors.Is(DeriveTranspose(h), errors.ErrCodeMissingView))
	assert.True(t, errors.Is(DeriveEdgeList(h), errors.ErrCodeMissingView))
}

func TestNilHandle(t *testing.T) {
	assert.True(t, errors.Is(DeriveAdjacency(nil), errors.ErrCodeInvalidArgument))
	assert.True(t, errors.Is(DropEdgeList(nil), errors.ErrCodeInvalidArgument))
	assert.True(t, errors.Is(BuildAdjacency(nil, column.Column{}, column.Column{}, nil), errors.ErrCodeInvalidArgument))
	_, err := PageRank(context.Background(), nil, 0.85, 0, 0, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument))
}

func TestDropAndRederive(t *testing.T) {
	h := graph.New()
	src := column.FromInt32([]int32{0, 0, 1, 2, 3, 3})
	dst := column.FromInt32([]int32{1, 2, 2, 3, 0, 0})
	require.NoError(t, BuildEdgeList(h, src, dst, nil))
	orig, _ := h.EdgeList()
	want := pairs(orig)

	require.NoError(t, DeriveAdjacency(h))
	require.NoError(t, DropEdgeList(h))
	require.NoError(t, DropEdgeList(h))
	require.NoError(t, DeriveEdgeList(h))

	got, ok := h.EdgeList()
	require.True(t, ok)
	assert.Equal(t, want, pairs(got))

	require.NoError(t, DropAdjacency(h))
	require.NoError(t, DropTranspose(h))
	assert.False(t, h.Has(graph.ViewAdjacency))
}

func TestBuildAdjacencyAndTranspose(t *testing.T) {
	h := graph.New()
	offsets := column.FromInt32([]int32{0, 1, 2, 3, 4})
	indices := column.FromInt64([]int64{1, 2, 3, 0})
	require.NoError(t, BuildAdjacency(h, offsets, indices, nil))
	assert.True(t, errors.Is(BuildAdjacency(h, offsets, indices, nil), errors.ErrCodeAlreadyPresent))

	in := column.FromInt32([]int32{3, 0, 1, 2})
	require.NoError(t, BuildTranspose(h, offsets, in, nil))

	floatOffsets := column.FromFloat64([]float64{0, 1})
	h2 := graph.New()
	assert.True(t, errors.Is(BuildAdjacency(h2, floatOffsets, indices, nil), errors.ErrCodeUnsupportedType))
}

func TestPageRankOnCycle(t *testing.T) {
	h := graph.New()
	require.NoError(t, BuildEdgeList(h,
		column.FromInt32([]int32{0, 1, 2, 3}),
		column.FromInt32([]int32{1, 2, 3, 0}), nil))

	res, err := PageRank(context.Background(), h, 0.85, 1e-6, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, pagerank.Converged, res.Status)
	assert.InDeltaSlice(t, []float64{0.25, 0.25, 0.25, 0.25}, res.Ranks, 1e-6)

	for _, alpha := range []float64{-1, 0, 1, 2} {
		_, err := PageRank(context.Background(), h, alpha, 1e-6, 0, nil)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument), "alpha %g", alpha)
	}

	intGuess := column.FromInt32([]int32{1, 1, 1, 1})
	_, err = PageRank(context.Background(), h, 0.85, 0, 0, &intGuess)
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupportedType))

	guess := column.FromFloat32([]float32{1, 2, 3, 4})
	res, err = PageRank(context.Background(), h, 0.85, 0, 0, &guess)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.25, 0.25, 0.25, 0.25}, res.Ranks, 1e-4)
}

func TestBFSOnPath(t *testing.T) {
	h := graph.New(graph.WithVertices(5))
	require.NoError(t, BuildEdgeList(h,
		column.FromInt32([]int32{0, 1, 2}),
		column.FromInt32([]int32{1, 2, 3}), nil))

	res, err := BFS(context.Background(), h, 0, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2, 3, bfs.Infinity}, res.Distances)
	assert.Equal(t, bfs.NoPredecessor, res.Predecessors[4])

	for _, start := range []int64{-1, 5, 1 << 40} {
		_, err := BFS(context.Background(), h, start, true)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument), "start %d", start)
	}
}

func TestGenerateRMATFeedsHandle(t *testing.T) {
	d := rmat.Default()
	d.Scale, d.EdgeFactor = 6, 4

	el, vertices, err := GenerateRMAT(context.Background(), d)
	require.NoError(t, err)

	h := graph.New(graph.WithVertices(vertices))
	require.NoError(t, h.SetEdgeList(el.Src, el.Dst, el.Weights))
	require.NoError(t, DeriveTranspose(h))
	res, err := PageRank(context.Background(), h, 0.85, 0, 0, nil)
	require.NoError(t, err)
	assert.Len(t, res.Ranks, vertices)

	viaArgs, n, err := GenerateRMATArgs(context.Background(), d.Args())
	require.NoError(t, err)
	assert.Equal(t, vertices, n)
	assert.Equal(t, el.Src, viaArgs.Src)

	_, _, err = GenerateRMATArgs(context.Background(), "--rmat_scale=-2")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument))
}
