// Package pipeline runs the load → analyze → render pipeline for Parallax.
//
// The CLI and the HTTP server both go through a [Runner] so that caching,
// logging and observability hooks behave the same everywhere.
//
// # Stages
//
//  1. Load: read an edge list file or generate an RMAT graph into a handle
//  2. Analyze: run PageRank or BFS on the handle
//  3. Render: draw the graph with the analysis overlaid (SVG, PNG, PDF, DOT)
//
// Load and analyze results are cached. Keys hash the source content and
// every option that changes the result, so editing a file or changing
// alpha never returns a stale entry.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Path:      "web-Google.txt",
//	    Algorithm: pipeline.AlgorithmPageRank,
//	    PageRank:  pagerank.DefaultOptions(),
//	    Top:       10,
//	})
//	for _, r := range res.Top {
//	    fmt.Println(r.Vertex, r.Rank)
//	}
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/parallax/pkg/bfs"
	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/graph"
	"github.com/matzehuels/parallax/pkg/pagerank"
	"github.com/matzehuels/parallax/pkg/rmat"
)

// Algorithms.
const (
	AlgorithmPageRank = "pagerank"
	AlgorithmBFS      = "bfs"
)

// Format constants for rendered outputs.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
	FormatDOT = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
	FormatDOT: true,
}

// DefaultTop is the number of ranked vertices reported when Top is zero.
const DefaultTop = 10

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options. Exactly one of Path and RMAT is set.
	Path       string           `json:"path,omitempty"`
	Vertices   int              `json:"vertices,omitempty"`
	OneBased   bool             `json:"one_based,omitempty"`
	Unweighted bool             `json:"unweighted,omitempty"`
	RMAT       *rmat.Descriptor `json:"rmat,omitempty"`
	Refresh    bool             `json:"refresh,omitempty"`

	// Analysis options. An empty Algorithm only loads (and renders).
	Algorithm string           `json:"algorithm,omitempty"`
	PageRank  pagerank.Options `json:"pagerank"`
	Top       int              `json:"top,omitempty"`
	Start     int32            `json:"start,omitempty"`
	Directed  bool             `json:"directed,omitempty"`
	Direction string           `json:"direction,omitempty"`
	MaxDepth  int              `json:"max_depth,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	MaxVertices int      `json:"max_vertices,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`
	Scale       float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Handle holds the loaded graph.
	Handle *graph.Handle

	// GraphHash identifies the loaded graph in cache keys.
	GraphHash string

	// PageRank and Top are set when the PageRank stage ran.
	PageRank *pagerank.Result
	Top      []pagerank.Ranked

	// BFS is set when the BFS stage ran.
	BFS *bfs.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Vertices    int
	Edges       int64
	LoadTime    time.Duration
	AnalyzeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit    bool // Whether the graph came from cache
	AnalyzeHit bool // Whether the analysis result came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidArgument, "invalid format: %q (must be one of: svg, png, pdf, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForLoad checks the load options.
func (o *Options) ValidateForLoad() error {
	switch {
	case o.Path == "" && o.RMAT == nil:
		return errors.New(errors.ErrCodeInvalidArgument, "either a path or an rmat descriptor is required")
	case o.Path != "" && o.RMAT != nil:
		return errors.New(errors.ErrCodeInvalidArgument, "path and rmat descriptor are mutually exclusive")
	case o.Path != "":
		if err := errors.ValidatePath(o.Path); err != nil {
			return err
		}
	default:
		if err := o.RMAT.Validate(); err != nil {
			return err
		}
	}
	if o.Vertices < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "vertices must be >= 0, got %d", o.Vertices)
	}
	return nil
}

// ValidateAndSetDefaults checks every stage's options and fills defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	switch o.Algorithm {
	case "":
	case AlgorithmPageRank:
		if o.PageRank.Alpha == 0 {
			o.PageRank.Alpha = pagerank.DefaultAlpha
		}
		if o.PageRank.Logger == nil {
			o.PageRank.Logger = o.Logger
		}
		if err := o.PageRank.Validate(); err != nil {
			return err
		}
		if o.Top == 0 {
			o.Top = DefaultTop
		}
	case AlgorithmBFS:
		if _, err := o.bfsOptions(); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidArgument, "unknown algorithm %q (must be one of: pagerank, bfs)", o.Algorithm)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	return nil
}

func (o *Options) bfsOptions() ([]bfs.Option, error) {
	opts := []bfs.Option{bfs.WithLogger(o.Logger)}
	if o.Direction != "" {
		d, err := bfs.ParseDirection(o.Direction)
		if err != nil {
			return nil, err
		}
		opts = append(opts, bfs.WithDirection(d))
	}
	if o.MaxDepth < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "max depth must be >= 0, got %d", o.MaxDepth)
	}
	if o.MaxDepth > 0 {
		opts = append(opts, bfs.WithMaxDepth(o.MaxDepth))
	}
	return opts, nil
}

// source names the load source in logs and hooks.
func (o *Options) source() string {
	if o.RMAT != nil {
		return fmt.Sprintf("rmat(scale=%d, edgefactor=%d)", o.RMAT.Scale, o.RMAT.EdgeFactor)
	}
	return o.Path
}
