package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/parallax/pkg/errors"
)

func TestEdgeListToCSRInvariants(t *testing.T) {
	const vertices, edges = 1000, 50_000
	el := randomEdgeList(1, vertices, edges, false)

	withWorkers(t, func(t *testing.T) {
		csr, err := EdgeListToCSR(el, vertices)
		require.NoError(t, err)
		require.NoError(t, csr.Validate(vertices))

		assert.Equal(t, vertices, csr.Vertices())
		assert.EqualValues(t, edges, csr.Edges())
		assert.EqualValues(t, 0, csr.Offsets[0])
		assert.EqualValues(t, edges, csr.Offsets[vertices])
		for v := range vertices {
			assert.LessOrEqual(t, csr.Offsets[v], csr.Offsets[v+1])
		}

		want := make([]int64, vertices)
		for _, s := range el.Src {
			want[s]++
		}
		for v := range vertices {
			require.Equal(t, want[v], csr.Degree(int32(v)), "degree of %d", v)
		}
	})
}

func TestRoundTripPreservesMultiset(t *testing.T) {
	tests := []struct {
		name     string
		vertices int
		edges    int
		weighted bool
	}{
		{"empty", 5, 0, false},
		{"small", 4, 10, false},
		{"large unweighted", 2000, 40_000, false},
		{"large weighted", 500, 30_000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := randomEdgeList(7, tt.vertices, tt.edges, tt.weighted)
			csr, err := EdgeListToCSR(el, tt.vertices)
			require.NoError(t, err)

			back, err := CSRToEdgeList(csr)
			require.NoError(t, err)
			assert.Equal(t, tt.weighted, back.Weights.Present())
			assert.Equal(t, edgeMultiset(el), edgeMultiset(back))
		})
	}
}

func TestCSRToEdgeListRowOrder(t *testing.T) {
	csr := &CSR{
		Offsets: []int64{0, 2, 2, 3, 4},
		Indices: []int32{1, 3, 0, 2},
	}
	el, err := CSRToEdgeList(csr)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 0, 2, 3}, el.Src)
	assert.Equal(t, []int32{1, 3, 0, 2}, el.Dst)
	assert.False(t, el.Weights.Present())
}

func TestTransposeListsInNeighbors(t *testing.T) {
	el := &EdgeList{
		Src: []int32{0, 1, 2, 3, 0},
		Dst: []int32{1, 2, 3, 0, 2},
	}
	tr, err := Transpose(el, 4)
	require.NoError(t, err)
	SortNeighbors(tr)

	assert.Equal(t, []int32{3}, tr.Neighbors(0))
	assert.Equal(t, []int32{0}, tr.Neighbors(1))
	assert.Equal(t, []int32{0, 1}, tr.Neighbors(2))
	assert.Equal(t, []int32{2}, tr.Neighbors(3))
}

func TestTransposeCSRInvolution(t *testing.T) {
	el := randomEdgeList(3, 300, 5000, true)
	withWorkers(t, func(t *testing.T) {
		fwd, err := EdgeListToCSR(el, 300)
		require.NoError(t, err)
		rev, err := TransposeCSR(fwd)
		require.NoError(t, err)
		back, err := TransposeCSR(rev)
		require.NoError(t, err)

		a, err := CSRToEdgeList(fwd)
		require.NoError(t, err)
		b, err := CSRToEdgeList(back)
		require.NoError(t, err)
		assert.Equal(t, edgeMultiset(a), edgeMultiset(b))
	})
}

func TestSortNeighborsCarriesWeights(t *testing.T) {
	csr := &CSR{
		Offsets: []int64{0, 3, 4},
		Indices: []int32{1, 0, 1, 0},
		Weights: SomeWeights([]float64{30, 10, 20, 40}),
	}
	SortNeighbors(csr)

	assert.Equal(t, []int32{0, 1, 1, 0}, csr.Indices)
	w, ok := csr.Weights.Get()
	require.True(t, ok)
	assert.Equal(t, []float64{10, 30, 20, 40}, w)
}

func TestEdgeListToCSRErrors(t *testing.T) {
	tests := []struct {
		name     string
		el       *EdgeList
		vertices int
		code     errors.Code
	}{
		{"dst out of range", &EdgeList{Src: []int32{0, 1}, Dst: []int32{1, 4}}, 4, errors.ErrCodeInvalidArgument},
		{"negative src", &EdgeList{Src: []int32{-1}, Dst: []int32{0}}, 4, errors.ErrCodeInvalidArgument},
		{"length mismatch", &EdgeList{Src: []int32{0, 1}, Dst: []int32{1}}, 4, errors.ErrCodeInvalidArgument},
		{"weights mismatch", &EdgeList{Src: []int32{0}, Dst: []int32{1}, Weights: SomeWeights(nil)}, 4, errors.ErrCodeInvalidArgument},
		{"negative vertex count", &EdgeList{}, -1, errors.ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EdgeListToCSR(tt.el, tt.vertices)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestRangeErrorReportsFirstIndex(t *testing.T) {
	el := randomEdgeList(11, 100, 20_000, false)
	el.Dst[12_345] = 100
	el.Dst[17_000] = 200

	withWorkers(t, func(t *testing.T) {
		_, err := EdgeListToCSR(el, 100)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dst[12345]")
	})
}

func TestCSRValidate(t *testing.T) {
	tests := []struct {
		name string
		csr  CSR
		ok   bool
	}{
		{"valid", CSR{Offsets: []int64{0, 1, 2}, Indices: []int32{1, 0}}, true},
		{"no edges", CSR{Offsets: []int64{0, 0, 0}}, true},
		{"short offsets", CSR{Offsets: []int64{0, 2}, Indices: []int32{1, 0}}, false},
		{"nonzero start", CSR{Offsets: []int64{1, 1, 2}, Indices: []int32{1, 0}}, false},
		{"wrong end", CSR{Offsets: []int64{0, 1, 1}, Indices: []int32{1, 0}}, false},
		{"decreasing", CSR{Offsets: []int64{0, 2, 1, 2}, Indices: []int32{1, 0}}, false},
		{"index out of range", CSR{Offsets: []int64{0, 1, 2}, Indices: []int32{1, 2}}, false},
		{"weights mismatch", CSR{Offsets: []int64{0, 1, 2}, Indices: []int32{1, 0}, Weights: SomeWeights([]float64{1})}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vertices := 2
			if tt.name == "decreasing" {
				vertices = 3
			}
			err := tt.csr.Validate(vertices)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument), "got %v", err)
		})
	}
}

func TestAllocationFailure(t *testing.T) {
	el := &EdgeList{Src: []int32{0}, Dst: []int32{1}}

	tests := []struct {
		name string
		fn   func() error
	}{
		{"csr beyond max vertices", func() error {
			_, err := EdgeListToCSR(el, MaxVertices+1)
			return err
		}},
		{"transpose beyond max vertices", func() error {
			_, err := Transpose(el, MaxVertices+1)
			return err
		}},
		{"negative edge list", func() error {
			_, err := NewEdgeList(-1, false)
			return err
		}},
		{"length overflow", func() error {
			_, err := makeSlice[int64]("huge", math.MaxInt)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			assert.True(t, errors.Is(err, errors.ErrCodeAllocationFailure), "got %v", err)
		})
	}
}

func TestParseView(t *testing.T) {
	for _, v := range Views {
		got, err := ParseView(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	got, err := ParseView("CSR")
	require.NoError(t, err)
	assert.Equal(t, ViewAdjacency, got)

	_, err = ParseView("matrix")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument))
}
