package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/parallax/pkg/engine"
	pio "github.com/matzehuels/parallax/pkg/io"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		scale, edgeFactor    int
		a, b, cc, d          float64
		seed                 uint64
		permute, weighted    bool
		minWeight, maxWeight float64
		output               string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an RMAT graph as an edge list file",
		Long: `Generate a recursive-matrix (RMAT) graph with 2^scale vertices and
2^scale*edge-factor edges, and write it as a tab-separated edge list.

The same parameters and seed always produce the same file, regardless of
the number of workers. Unset flags fall back to the [rmat] section of the
config file, then to the Graph500 defaults (a=0.57, b=c=0.19, d=0.05).`,
		Example: `  parallax generate --scale 16 --edge-factor 8 -o rmat16.txt
  parallax generate --scale 8 --weighted -o -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			fs := cmd.Flags()

			desc := c.cfg.RMAT
			desc.Scale = flagOr(fs, "scale", scale, desc.Scale)
			desc.EdgeFactor = flagOr(fs, "edge-factor", edgeFactor, desc.EdgeFactor)
			desc.A = flagOr(fs, "a", a, desc.A)
			desc.B = flagOr(fs, "b", b, desc.B)
			desc.C = flagOr(fs, "c", cc, desc.C)
			desc.D = flagOr(fs, "d", d, desc.D)
			if !fs.Changed("d") && (fs.Changed("a") || fs.Changed("b") || fs.Changed("c")) {
				desc.D = max(0, 1-desc.A-desc.B-desc.C)
			}
			desc.Seed = flagOr(fs, "seed", seed, desc.Seed)
			desc.Permute = flagOr(fs, "permute", permute, desc.Permute)
			desc.Weighted = flagOr(fs, "weighted", weighted, desc.Weighted)
			desc.MinWeight = flagOr(fs, "min-weight", minWeight, desc.MinWeight)
			desc.MaxWeight = flagOr(fs, "max-weight", maxWeight, desc.MaxWeight)

			logger.Debug("generating", "args", desc.Args())
			prog := newProgress(logger)
			el, vertices, err := engine.GenerateRMAT(ctx, desc)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Generated %d edges", el.Len()))

			path := output
			if path == "" {
				path = fmt.Sprintf("rmat-s%d-e%d.txt", desc.Scale, desc.EdgeFactor)
			}
			if path == "-" {
				return pio.WriteEdgeList(cmd.OutOrStdout(), el, vertices)
			}
			if err := pio.ExportEdgeList(path, el, vertices); err != nil {
				return err
			}

			printSuccess("Generated RMAT graph")
			printStats(vertices, int64(el.Len()), false)
			printFile(path)
			printNextStep("Rank it", "parallax pagerank "+path)
			return nil
		},
	}

	def := c.cfg.RMAT
	cmd.Flags().IntVar(&scale, "scale", def.Scale, "log2 of the vertex count")
	cmd.Flags().IntVar(&edgeFactor, "edge-factor", def.EdgeFactor, "edges per vertex")
	cmd.Flags().Float64Var(&a, "a", def.A, "top-left quadrant probability")
	cmd.Flags().Float64Var(&b, "b", def.B, "top-right quadrant probability")
	cmd.Flags().Float64Var(&cc, "c", def.C, "bottom-left quadrant probability")
	cmd.Flags().Float64Var(&d, "d", def.D, "bottom-right quadrant probability (default: 1-a-b-c)")
	cmd.Flags().Uint64Var(&seed, "seed", def.Seed, "random seed")
	cmd.Flags().BoolVar(&permute, "permute", def.Permute, "relabel vertices with a random permutation")
	cmd.Flags().BoolVar(&weighted, "weighted", def.Weighted, "attach uniform random weights")
	cmd.Flags().Float64Var(&minWeight, "min-weight", def.MinWeight, "lower weight bound")
	cmd.Flags().Float64Var(&maxWeight, "max-weight", def.MaxWeight, "upper weight bound")
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: rmat-s<scale>-e<edge-factor>.txt)`)

	return cmd
}
