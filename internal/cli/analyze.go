package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/parallax/pkg/errors"
	pio "github.com/matzehuels/parallax/pkg/io"
	"github.com/matzehuels/parallax/pkg/pipeline"
	"github.com/matzehuels/parallax/pkg/rmat"
)

// sourceFlags selects the graph a command loads: an edge list file given
// as the argument, or an RMAT graph described by --rmat.
type sourceFlags struct {
	vertices   int
	oneBased   bool
	unweighted bool
	rmatArgs   string
	refresh    bool
}

func (f *sourceFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.vertices, "vertices", 0, "vertex count (default: largest id + 1)")
	fs.BoolVar(&f.oneBased, "one-based", false, "vertex ids in the file start at 1")
	fs.BoolVar(&f.unweighted, "unweighted", false, "ignore the weight column")
	fs.StringVar(&f.rmatArgs, "rmat", "", `generate the graph instead, e.g. "--rmat_scale=16 --rmat_edgefactor=8"`)
	fs.BoolVar(&f.refresh, "refresh", false, "recompute even if a cached result exists")
}

// apply fills the load options of opts from the flags and args.
func (f *sourceFlags) apply(opts *pipeline.Options, args []string) error {
	switch {
	case len(args) == 1 && f.rmatArgs != "":
		return errors.New(errors.ErrCodeInvalidArgument, "an edge list file and --rmat are mutually exclusive")
	case len(args) == 1:
		opts.Path = args[0]
	case f.rmatArgs != "":
		d, err := rmat.ParseArgs(f.rmatArgs)
		if err != nil {
			return err
		}
		opts.RMAT = &d
	default:
		return errors.New(errors.ErrCodeInvalidArgument, "an edge list file or --rmat is required")
	}
	opts.Vertices = f.vertices
	opts.OneBased = f.oneBased
	opts.Unweighted = f.unweighted
	opts.Refresh = f.refresh
	return nil
}

// name describes the source in status output.
func (f *sourceFlags) name(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "rmat " + f.rmatArgs
}

// pageRankCommand creates the pagerank command.
func (c *CLI) pageRankCommand() *cobra.Command {
	var (
		src       sourceFlags
		alpha     float64
		tolerance float64
		maxIter   int
		top       int
		format    string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "pagerank [file]",
		Short: "Rank the vertices of a graph with PageRank",
		Long: `Rank the vertices of a graph with PageRank.

The graph is read from a SNAP-style edge list ("src dst [weight]" per line,
'#' comments) or generated with --rmat. The top vertices are written as
TSV (vertex, rank) or JSON to stdout or --output.`,
		Example: `  parallax pagerank web-Google.txt --top 20
  parallax pagerank --rmat "--rmat_scale=16" --alpha 0.9 --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			fs := cmd.Flags()

			opts := pipeline.Options{Algorithm: pipeline.AlgorithmPageRank, PageRank: c.cfg.PageRank}
			if err := src.apply(&opts, args); err != nil {
				return err
			}
			opts.PageRank.Alpha = flagOr(fs, "alpha", alpha, opts.PageRank.Alpha)
			opts.PageRank.Tolerance = flagOr(fs, "tolerance", tolerance, opts.PageRank.Tolerance)
			opts.PageRank.MaxIter = flagOr(fs, "max-iter", maxIter, opts.PageRank.MaxIter)
			opts.Top = top

			f, err := pio.ParseFormat(format)
			if err != nil {
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
			prog.done(fmt.Sprintf("Ranked %d vertices", res.Stats.Vertices))

			out, err := openOutput(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}
			defer out.Close()
			if err := pio.WriteRanks(out, res.PageRank, res.Top, f); err != nil {
				return err
			}

			pr := res.PageRank
			if pr.Converged() {
				printSuccess("PageRank converged after %d iterations", pr.Iterations)
			} else {
				printWarning("PageRank stopped after %d iterations (residual %.3g)", pr.Iterations, pr.Residual)
			}
			printStats(res.Stats.Vertices, res.Stats.Edges, res.CacheInfo.AnalyzeHit)
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	src.register(cmd.Flags())
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "damping factor (default: config or 0.85)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "L1 convergence threshold per vertex (default: config or 1e-6)")
	cmd.Flags().IntVar(&maxIter, "max-iter", 0, "iteration cap (default: config or 500)")
	cmd.Flags().IntVarP(&top, "top", "n", pipeline.DefaultTop, "number of top-ranked vertices to print")
	cmd.Flags().StringVar(&format, "format", string(pio.FormatTSV), "output format: tsv, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

// bfsCommand creates the bfs command.
func (c *CLI) bfsCommand() *cobra.Command {
	var (
		src        sourceFlags
		start      int32
		undirected bool
		direction  string
		maxDepth   int
		target     int32
		format     string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "bfs [file]",
		Short: "Breadth-first search from a start vertex",
		Long: `Breadth-first search from a start vertex.

Writes one line per reached vertex (vertex, distance, predecessor) as TSV,
or the full result as JSON. With --target the BFS-tree path from the start
is printed as well.`,
		Example: `  parallax bfs roads.txt --start 0 --target 42
  parallax bfs --rmat "--rmat_scale=12" --start 1 --undirected`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			fs := cmd.Flags()

			opts := pipeline.Options{Algorithm: pipeline.AlgorithmBFS, Start: start}
			if err := src.apply(&opts, args); err != nil {
				return err
			}
			opts.Directed = flagOr(fs, "undirected", !undirected, c.cfg.BFS.Directed)
			opts.Direction = flagOr(fs, "direction", direction, c.cfg.BFS.Direction)
			opts.MaxDepth = flagOr(fs, "max-depth", maxDepth, c.cfg.BFS.MaxDepth)

			f, err := pio.ParseFormat(format)
			if err != nil {
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
			prog.done(fmt.Sprintf("Searched %d vertices", res.Stats.Vertices))

			out, err := openOutput(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}
			defer out.Close()
			if err := pio.WriteBFS(out, res.BFS, f); err != nil {
				return err
			}

			b := res.BFS
			printSuccess("Reached %d of %d vertices in %d levels", b.Reached, res.Stats.Vertices, b.Levels)
			printStats(res.Stats.Vertices, res.Stats.Edges, res.CacheInfo.AnalyzeHit)
			if fs.Changed("target") {
				path, err := b.PathTo(target)
				if err != nil {
					printWarning("%v", err)
				} else {
					printKeyValue("path", joinPath(path))
				}
			}
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	src.register(cmd.Flags())
	cmd.Flags().Int32VarP(&start, "start", "s", 0, "start vertex")
	cmd.Flags().BoolVar(&undirected, "undirected", false, "treat every edge as bidirectional")
	cmd.Flags().StringVar(&direction, "direction", "", "edges to follow: out, in, both (overrides --undirected)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "stop after this many levels (0: no limit)")
	cmd.Flags().Int32Var(&target, "target", 0, "print the path from the start to this vertex")
	cmd.Flags().StringVar(&format, "format", string(pio.FormatTSV), "output format: tsv, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func joinPath(path []int32) string {
	parts := make([]string, len(path))
	for i, v := range path {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " "+iconArrow+" ")
}
