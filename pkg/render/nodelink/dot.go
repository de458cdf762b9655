package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/parallax/pkg/bfs"
	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/graph"
	"github.com/matzehuels/parallax/pkg/pagerank"
	"github.com/matzehuels/parallax/pkg/render"
)

// DefaultMaxVertices bounds the drawing when Options.MaxVertices is zero.
const DefaultMaxVertices = 200

// Options configures node-link diagram rendering.
type Options struct {
	// Ranks shades each vertex by its PageRank score. Length must match
	// the vertex count when set.
	Ranks []float64

	// Distances labels each vertex with its BFS level. Length must match
	// the vertex count when set.
	Distances []uint32

	// MaxVertices limits how many vertices are drawn.
	MaxVertices int

	// Detailed adds edge weights and scores to labels.
	Detailed bool
}

var (
	low  = colorful.Color{R: 1, G: 1, B: 1}
	high = colorful.Color{R: 0.16, G: 0.38, B: 0.74}
)

// ToDOT converts the forward view of h to Graphviz DOT. The adjacency is
// derived if h does not hold it yet.
func ToDOT(h *graph.Handle, opts Options) (string, error) {
	if err := h.EnsureAdjacency(); err != nil {
		return "", err
	}
	adj, _ := h.Adjacency()
	n := adj.Vertices()
	if opts.Ranks != nil {
		if err := errors.ValidateLength("ranks", len(opts.Ranks), n); err != nil {
			return "", err
		}
	}
	if opts.Distances != nil {
		if err := errors.ValidateLength("distances", len(opts.Distances), n); err != nil {
			return "", err
		}
	}

	keep := selectVertices(n, opts)
	included := make(map[int32]bool, len(keep))
	for _, v := range keep {
		included[v] = true
	}

	var maxRank float64
	for _, r := range opts.Ranks {
		maxRank = max(maxRank, r)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, v := range keep {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(v, opts))}
		if opts.Ranks != nil && maxRank > 0 {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", shade(opts.Ranks[v]/maxRank)))
		}
		if opts.Distances != nil && opts.Distances[v] == bfs.Infinity {
			attrs = append(attrs, `style="filled,dashed"`, "fontcolor=grey40")
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", v, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, u := range keep {
		weights := adj.NeighborWeights(u)
		for i, v := range adj.Neighbors(u) {
			if !included[v] {
				continue
			}
			if opts.Detailed && weights != nil {
				fmt.Fprintf(&buf, "  %d -> %d [label=%q];\n", u, v, strconv.FormatFloat(weights[i], 'g', 4, 64))
			} else {
				fmt.Fprintf(&buf, "  %d -> %d;\n", u, v)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

// selectVertices returns the vertices to draw in ascending id order.
func selectVertices(n int, opts Options) []int32 {
	limit := opts.MaxVertices
	if limit <= 0 {
		limit = DefaultMaxVertices
	}
	if n <= limit {
		keep := make([]int32, n)
		for i := range keep {
			keep[i] = int32(i)
		}
		return keep
	}
	if opts.Ranks == nil {
		keep := make([]int32, limit)
		for i := range keep {
			keep[i] = int32(i)
		}
		return keep
	}
	top := pagerank.TopK(opts.Ranks, limit)
	keep := make([]int32, len(top))
	for i, r := range top {
		keep[i] = r.Vertex
	}
	slices.Sort(keep)
	return keep
}

func fmtLabel(v int32, opts Options) string {
	label := strconv.Itoa(int(v))
	if opts.Distances != nil {
		if d := opts.Distances[v]; d != bfs.Infinity {
			label += fmt.Sprintf("\nd=%d", d)
		} else {
			label += "\nd=∞"
		}
	}
	if opts.Detailed && opts.Ranks != nil {
		label += fmt.Sprintf("\n%.3g", opts.Ranks[v])
	}
	return label
}

// shade maps t in [0, 1] to a fill color.
func shade(t float64) string {
	return low.BlendLab(high, min(max(t, 0), 1)).Clamped().Hex()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion at the given scale.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
