package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/pipeline"
)

const algorithmNone = "none"

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		src         sourceFlags
		algorithm   string
		start       int32
		undirected  bool
		formatsStr  string
		output      string
		maxVertices int
		detailed    bool
		scale       float64
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Draw a graph with PageRank or BFS overlaid",
		Long: `Draw a graph as a node-link diagram.

With --algorithm pagerank vertices are shaded by rank; with bfs they are
labeled by distance from --start and unreached vertices are dashed. Large
graphs are cut down to the --max-vertices highest-ranked (or lowest id)
vertices. PDF and PNG output need rsvg-convert (librsvg).`,
		Example: `  parallax render small.txt -f svg,png
  parallax render small.txt --algorithm bfs --start 3 -o out/small`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			opts := pipeline.Options{
				PageRank:    c.cfg.PageRank,
				Start:       start,
				Directed:    flagOr(cmd.Flags(), "undirected", !undirected, c.cfg.BFS.Directed),
				Direction:   c.cfg.BFS.Direction,
				MaxDepth:    c.cfg.BFS.MaxDepth,
				Formats:     parseFormats(formatsStr),
				MaxVertices: maxVertices,
				Detailed:    detailed,
				Scale:       scale,
			}
			if algorithm != algorithmNone {
				opts.Algorithm = algorithm
			}
			if err := src.apply(&opts, args); err != nil {
				return err
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(logger)
			res, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}
			defer res.Handle.Close()
			prog.done(fmt.Sprintf("Rendered %s", src.name(args)))

			base := basePath(output, args, opts.RMAT != nil)
			if dir := filepath.Dir(base); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
				}
			}

			printSuccess("Rendered %d formats", len(res.Artifacts))
			printStats(res.Stats.Vertices, res.Stats.Edges, res.CacheInfo.LoadHit)
			for _, format := range sortedKeys(res.Artifacts) {
				path := base + "." + format
				if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
				}
				printFile(path)
			}
			return nil
		},
	}

	src.register(cmd.Flags())
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", pipeline.AlgorithmPageRank, "overlay: pagerank, bfs, none")
	cmd.Flags().Int32VarP(&start, "start", "s", 0, "BFS start vertex")
	cmd.Flags().BoolVar(&undirected, "undirected", false, "treat every edge as bidirectional (bfs)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: input name without extension)")
	cmd.Flags().IntVar(&maxVertices, "max-vertices", 0, "vertices to draw (default 200)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show edge weights and scores")
	cmd.Flags().Float64Var(&scale, "scale", 1, "PNG scale factor")

	return cmd
}

// basePath derives the output base path. Without --output it is the input
// file name minus its extension, or "rmat" for generated graphs. A known
// format extension on --output is stripped.
func basePath(output string, args []string, generated bool) string {
	if output == "" {
		if generated || len(args) == 0 {
			return "rmat"
		}
		return strings.TrimSuffix(args[0], filepath.Ext(args[0]))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
