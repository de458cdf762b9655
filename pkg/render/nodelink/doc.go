// Package nodelink draws graphs as Graphviz node-link diagrams.
//
// [ToDOT] reads the forward adjacency of a handle and emits DOT source.
// Analysis results can be overlaid: PageRank scores shade vertices from
// white to blue and BFS distances are printed under the vertex id, with
// unreached vertices drawn dashed.
//
//	dot, err := nodelink.ToDOT(h, nodelink.Options{
//	    Ranks:       pr.Ranks,
//	    MaxVertices: 100,
//	})
//	svg, err := nodelink.RenderSVG(dot)
//
// Large graphs are cut down to [Options.MaxVertices] vertices before
// drawing. With ranks, the highest-ranked vertices are kept; otherwise the
// lowest ids are.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
