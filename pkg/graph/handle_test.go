package graph

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/parallax/pkg/errors"
)

func cycle4() (src, dst []int32) {
	return []int32{0, 1, 2, 3}, []int32{1, 2, 3, 0}
}

func TestFreshHandleHasNoViews(t *testing.T) {
	h := New()
	assert.Equal(t, 0, h.Vertices())
	assert.EqualValues(t, -1, h.Edges())
	for _, v := range Views {
		assert.False(t, h.Has(v), v.String())
	}

	for name, ensure := range map[string]func() error{
		"adjacency": h.EnsureAdjacency,
		"transpose": h.EnsureTranspose,
		"edgelist":  h.EnsureEdgeList,
	} {
		err := ensure()
		assert.True(t, errors.Is(err, errors.ErrCodeMissingView), "%s: got %v", name, err)
	}

	_, err := h.OutDegrees()
	assert.True(t, errors.Is(err, errors.ErrCodeMissingView))
}

func TestSetEdgeListTwiceFails(t *testing.T) {
	h := New()
	src, dst := cycle4()
	require.NoError(t, h.SetEdgeList(src, dst, NoWeights()))

	err := h.SetEdgeList(src, dst, NoWeights())
	assert.True(t, errors.Is(err, errors.ErrCodeAlreadyPresent), "got %v", err)

	h.DropEdgeList()
	assert.NoError(t, h.SetEdgeList(src, dst, NoWeights()))
}

func TestFailedInstallLeavesHandleUnchanged(t *testing.T) {
	h := New()
	src, dst := cycle4()

	err := h.SetEdgeList(src, dst[:3], NoWeights())
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument))
	assert.False(t, h.Has(ViewEdgeList))
	assert.Equal(t, 0, h.Vertices())

	require.NoError(t, h.SetEdgeList(src, dst, NoWeights()))

	// Five edges disagree with the installed four.
	err = h.SetAdjacency([]int64{0, 2, 3, 4, 5}, []int32{1, 2, 2, 3, 0}, NoWeights())
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument), "got %v", err)
	assert.False(t, h.Has(ViewAdjacency))

	// Six vertices disagree with the installed four.
	err = h.SetTranspose([]int64{0, 1, 2, 3, 4, 4, 4}, []int32{3, 0, 1, 2}, NoWeights())
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument), "got %v", err)
	assert.False(t, h.Has(ViewTranspose))
	assert.Equal(t, 4, h.Vertices())
}

func TestSetAdjacencyRejectsDuplicates(t *testing.T) {
	h := New()
	offsets, indices := []int64{0, 1, 2, 3, 4}, []int32{1, 2, 3, 0}
	require.NoError(t, h.SetAdjacency(offsets, indices, NoWeights()))

	err := h.SetAdjacency(offsets, indices, NoWeights())
	assert.True(t, errors.Is(err, errors.ErrCodeAlreadyPresent))

	info := h.Info()
	require.Len(t, info.Views, 1)
	assert.Equal(t, "adjacency", info.Views[0].View)
	assert.False(t, info.Views[0].Owned)
}

func TestEnsureDerivesAndOwnsViews(t *testing.T) {
	h := New()
	src, dst := cycle4()
	require.NoError(t, h.SetEdgeList(src, dst, NoWeights()))

	require.NoError(t, h.EnsureAdjacency())
	require.NoError(t, h.EnsureTranspose())

	adj, ok := h.Adjacency()
	require.True(t, ok)
	require.NoError(t, adj.Validate(4))
	assert.Equal(t, []int32{1}, adj.Neighbors(0))

	tr, ok := h.Transpose()
	require.True(t, ok)
	assert.Equal(t, []int32{3}, tr.Neighbors(0))

	info := h.Info()
	assert.Equal(t, 4, info.Vertices)
	assert.EqualValues(t, 4, info.Edges)
	require.Len(t, info.Views, 3)
	assert.False(t, info.Views[0].Owned)
	assert.True(t, info.Views[1].Owned)
	assert.True(t, info.Views[2].Owned)

	// Ensure is a no-op once present.
	require.NoError(t, h.EnsureAdjacency())
	again, _ := h.Adjacency()
	assert.Same(t, adj, again)
}

func TestTransposeOfTranspose(t *testing.T) {
	el := randomEdgeList(5, 200, 3000, true)
	fwd, err := EdgeListToCSR(el, 200)
	require.NoError(t, err)

	h := New()
	require.NoError(t, h.SetAdjacency(fwd.Offsets, fwd.Indices, fwd.Weights))
	require.NoError(t, h.EnsureTranspose())
	h.DropAdjacency()
	require.NoError(t, h.EnsureAdjacency())

	adj, _ := h.Adjacency()
	got, err := CSRToEdgeList(adj)
	require.NoError(t, err)
	assert.Equal(t, edgeMultiset(el), edgeMultiset(got))
}

func TestDropThenDeriveEdgeList(t *testing.T) {
	el := randomEdgeList(9, 500, 10_000, false)

	withWorkers(t, func(t *testing.T) {
		h := New()
		require.NoError(t, h.SetEdgeList(el.Src, el.Dst, el.Weights))
		require.NoError(t, h.EnsureAdjacency())

		h.DropEdgeList()
		require.False(t, h.Has(ViewEdgeList))
		require.NoError(t, h.EnsureEdgeList())

		got, ok := h.EdgeList()
		require.True(t, ok)
		assert.Equal(t, edgeMultiset(el), edgeMultiset(got))
	})
}

func TestEnsureEdgeListFromTranspose(t *testing.T) {
	src, dst := cycle4()
	h := New()
	require.NoError(t, h.SetTranspose([]int64{0, 1, 2, 3, 4}, []int32{3, 0, 1, 2}, NoWeights()))
	require.NoError(t, h.EnsureEdgeList())

	got, _ := h.EdgeList()
	assert.Equal(t, edgeMultiset(&EdgeList{Src: src, Dst: dst}), edgeMultiset(got))
}

func TestDropIsIdempotent(t *testing.T) {
	h := New()
	h.DropAdjacency()
	h.DropTranspose()
	h.DropEdgeList()

	src, dst := cycle4()
	require.NoError(t, h.SetEdgeList(src, dst, NoWeights()))
	h.DropTranspose()
	assert.True(t, h.Has(ViewEdgeList))

	require.NoError(t, h.Close())
	for _, v := range Views {
		assert.False(t, h.Has(v))
	}
}

func TestVertexCount(t *testing.T) {
	t.Run("fixed keeps isolated vertices", func(t *testing.T) {
		h := New(WithVertices(6))
		require.NoError(t, h.SetEdgeList([]int32{0, 1}, []int32{1, 2}, NoWeights()))
		require.NoError(t, h.EnsureAdjacency())

		adj, _ := h.Adjacency()
		assert.Equal(t, 6, adj.Vertices())
		assert.Equal(t, 6, h.Vertices())

		h.DropEdgeList()
		h.DropAdjacency()
		assert.Equal(t, 6, h.Vertices())
	})

	t.Run("inferred resets when empty", func(t *testing.T) {
		h := New()
		require.NoError(t, h.SetEdgeList([]int32{0, 1}, []int32{1, 2}, NoWeights()))
		assert.Equal(t, 3, h.Vertices())

		h.DropEdgeList()
		assert.Equal(t, 0, h.Vertices())

		require.NoError(t, h.SetEdgeList([]int32{9}, []int32{0}, NoWeights()))
		assert.Equal(t, 10, h.Vertices())
	})

	t.Run("fixed rejects out of range", func(t *testing.T) {
		h := New(WithVertices(2))
		err := h.SetEdgeList([]int32{0}, []int32{2}, NoWeights())
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument))
	})
}

func TestOutDegreesFromEveryView(t *testing.T) {
	el := randomEdgeList(13, 300, 6000, false)
	want := make([]int64, 300)
	for _, s := range el.Src {
		want[s]++
	}

	h := New(WithVertices(300))
	require.NoError(t, h.SetEdgeList(el.Src, el.Dst, NoWeights()))
	got, err := h.OutDegrees()
	require.NoError(t, err)
	assert.Equal(t, want, got, "edge list")

	require.NoError(t, h.EnsureTranspose())
	h.DropEdgeList()
	got, err = h.OutDegrees()
	require.NoError(t, err)
	assert.Equal(t, want, got, "transpose")
	assert.False(t, h.Has(ViewAdjacency))

	require.NoError(t, h.EnsureAdjacency())
	got, err = h.OutDegrees()
	require.NoError(t, err)
	assert.Equal(t, want, got, "adjacency")
}

func TestConcurrentEnsure(t *testing.T) {
	el := randomEdgeList(17, 1000, 20_000, false)
	h := New()
	require.NoError(t, h.SetEdgeList(el.Src, el.Dst, NoWeights()))

	var wg sync.WaitGroup
	views := make([]*CSR, 8)
	for i := range views {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := h.EnsureTranspose(); err != nil {
				t.Error(err)
				return
			}
			views[i], _ = h.Transpose()
		}()
	}
	wg.Wait()

	for _, v := range views[1:] {
		assert.Same(t, views[0], v)
	}
}

func TestHandleIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, New().ID(), New().ID())
}
