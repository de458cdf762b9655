package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/parallax/pkg/observability/prom"
	"github.com/matzehuels/parallax/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		maxScale    int
		maxVertices int
		maxEdges    int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Graphs are created with POST /v1/graphs and kept in memory until deleted
or the server stops. Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			addr = flagOr(cmd.Flags(), "addr", addr, c.cfg.Server.Addr)

			prom.New(prometheus.DefaultRegisterer).Install()
			srv := server.New(server.Config{
				Logger:      logger,
				Gatherer:    prometheus.DefaultGatherer,
				MaxScale:    maxScale,
				MaxVertices: maxVertices,
				MaxEdges:    maxEdges,
			})

			emit(StyleTitle.Render("parallax") + " " + StyleDim.Render("listening on") + " " + StyleValue.Render(addr))
			printDetail("metrics: %s/metrics", addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (default: config or :8080)")
	cmd.Flags().IntVar(&maxScale, "max-scale", server.DefaultMaxScale, "largest RMAT scale accepted over the API")
	cmd.Flags().IntVar(&maxVertices, "max-vertices", server.DefaultMaxVertices, "largest vertex count accepted over the API")
	cmd.Flags().Int64Var(&maxEdges, "max-edges", server.DefaultMaxEdges, "largest edge count accepted over the API")

	return cmd
}
