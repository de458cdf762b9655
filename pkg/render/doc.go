// Package render converts rendered SVG to other formats.
//
// The [nodelink] subpackage draws a graph handle as a Graphviz node-link
// diagram. [ToPDF] and [ToPNG] convert its SVG output using the external
// rsvg-convert tool (from librsvg).
//
//	dot, err := nodelink.ToDOT(h, nodelink.Options{Ranks: res.Ranks})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := render.ToPNG(svg, 2.0)
//
// [nodelink]: github.com/matzehuels/parallax/pkg/render/nodelink
package render
