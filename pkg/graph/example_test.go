package graph_test

import (
	"fmt"

	"github.com/matzehuels/parallax/pkg/graph"
)

func ExampleHandle() {
	h := graph.New()
	_ = h.SetEdgeList([]int32{0, 0, 1, 2}, []int32{1, 2, 2, 0}, graph.NoWeights())

	if err := h.EnsureTranspose(); err != nil {
		fmt.Println(err)
		return
	}
	tr, _ := h.Transpose()
	graph.SortNeighbors(tr)

	for v := int32(0); v < int32(h.Vertices()); v++ {
		fmt.Println(v, "<-", tr.Neighbors(v))
	}
	// Output:
	// 0 <- [2]
	// 1 <- [0]
	// 2 <- [0 1]
}

func ExampleEdgeListToCSR() {
	el := &graph.EdgeList{
		Src: []int32{2, 0, 1, 0},
		Dst: []int32{0, 1, 2, 2},
	}
	csr, err := graph.EdgeListToCSR(el, 3)
	if err != nil {
		fmt.Println(err)
		return
	}
	graph.SortNeighbors(csr)
	fmt.Println(csr.Offsets)
	fmt.Println(csr.Indices)
	// Output:
	// [0 2 3 4]
	// [1 2 2 0]
}
