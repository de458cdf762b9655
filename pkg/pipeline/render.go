package pipeline

import (
	"github.com/matzehuels/parallax/pkg/graph"
	"github.com/matzehuels/parallax/pkg/render"
	"github.com/matzehuels/parallax/pkg/render/nodelink"
)

// Render draws h with the analysis in res overlaid and returns one
// artifact per requested format.
func Render(h *graph.Handle, res *Result, opts Options) (map[string][]byte, error) {
	nl := nodelink.Options{
		MaxVertices: opts.MaxVertices,
		Detailed:    opts.Detailed,
	}
	if res != nil && res.PageRank != nil {
		nl.Ranks = res.PageRank.Ranks
	}
	if res != nil && res.BFS != nil {
		nl.Distances = res.BFS.Distances
	}

	dot, err := nodelink.ToDOT(h, nl)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var svg []byte
	for _, format := range opts.Formats {
		if format == FormatDOT {
			artifacts[format] = []byte(dot)
			continue
		}
		if svg == nil {
			if svg, err = nodelink.RenderSVG(dot); err != nil {
				return nil, err
			}
		}
		switch format {
		case FormatSVG:
			artifacts[format] = svg
		case FormatPDF:
			if artifacts[format], err = render.ToPDF(svg); err != nil {
				return nil, err
			}
		case FormatPNG:
			scale := opts.Scale
			if scale <= 0 {
				scale = 1
			}
			if artifacts[format], err = render.ToPNG(svg, scale); err != nil {
				return nil, err
			}
		}
	}
	return artifacts, nil
}
