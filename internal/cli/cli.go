// Package cli implements the parallax command-line interface.
//
// # Commands
//
//   - generate: write an RMAT graph to an edge list file
//   - pagerank: rank the vertices of an edge list file
//   - bfs: breadth-first search from a start vertex
//   - render: draw a graph with PageRank or BFS overlaid
//   - serve: run the HTTP API
//   - cache: inspect and clear the result cache
//
// Every command reads defaults from the TOML config file (see package
// config); flags override the file. All commands support --verbose (-v)
// for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/parallax/pkg/buildinfo"
	"github.com/matzehuels/parallax/pkg/cache"
	"github.com/matzehuels/parallax/pkg/config"
	"github.com/matzehuels/parallax/pkg/par"
	"github.com/matzehuels/parallax/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "parallax"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfg        config.Config
	configPath string
	verbose    bool
	workers    int
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "Parallax runs parallel graph analytics",
		Long:              `Parallax loads graphs from edge list files or generates them with RMAT, then runs PageRank and breadth-first search in parallel over compressed sparse row views.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default: user config dir)/parallax/config.toml")
	flags.IntVar(&c.workers, "workers", 0, "parallel workers (default: config or GOMAXPROCS)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the result cache")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.pageRankCommand())
	root.AddCommand(c.bfsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerValueCompletions(root)

	return root
}

// setup runs before every command: it applies --verbose, loads the config
// file and sizes the worker pool.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}

	var err error
	if c.configPath != "" {
		c.cfg, err = config.Load(c.configPath)
	} else {
		c.cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}

	workers := flagOr(cmd.Flags(), "workers", c.workers, c.cfg.Workers)
	if workers > 0 {
		prev := par.SetWorkers(workers)
		c.Logger.Debug("worker pool resized", "workers", workers, "previous", prev)
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// flagOr returns the flag value when the user set it and fallback otherwise.
func flagOr[T any](fs *pflag.FlagSet, name string, value, fallback T) T {
	if fs.Changed(name) {
		return value
	}
	return fallback
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.cfg.Cache.Prefix)
	}
	r := pipeline.NewRunner(store, keyer, c.Logger)
	r.TTL = c.cfg.Cache.TTL
	return r, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, c.cfg.Cache.RedisAddr)
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured file cache directory or the default.
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/parallax/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// openOutput opens path for writing, or returns stdout when path is empty.
func openOutput(stdout io.Writer, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
