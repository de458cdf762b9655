// Package config loads Parallax settings from a TOML file.
//
// A config file sets defaults for the CLI and the HTTP server. Command-line
// flags override whatever the file sets. Example:
//
//	workers = 8
//
//	[pagerank]
//	alpha = 0.85
//	tolerance = 1e-6
//	max_iter = 500
//
//	[bfs]
//	directed = true
//
//	[rmat]
//	scale = 16
//	edge_factor = 16
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "12h"
//
//	[server]
//	addr = ":8080"
//
// Unknown keys are rejected so a typo never silently falls back to a
// default.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/parallax/pkg/bfs"
	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/pagerank"
	"github.com/matzehuels/parallax/pkg/rmat"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// FileName is the config file looked up in the user config directory.
const FileName = "config.toml"

// Config holds every tunable setting.
type Config struct {
	// Workers is the size of the parallel worker pool. Zero uses GOMAXPROCS.
	Workers int `toml:"workers"`

	PageRank pagerank.Options `toml:"pagerank"`
	BFS      BFS              `toml:"bfs"`
	RMAT     rmat.Descriptor  `toml:"rmat"`
	Cache    Cache            `toml:"cache"`
	Server   Server           `toml:"server"`
}

// BFS holds search defaults.
type BFS struct {
	Directed  bool   `toml:"directed"`
	Direction string `toml:"direction"`
	MaxDepth  int    `toml:"max_depth"`
}

// Options converts the settings into search options.
func (b BFS) Options() ([]bfs.Option, error) {
	var opts []bfs.Option
	if b.Direction != "" {
		d, err := bfs.ParseDirection(b.Direction)
		if err != nil {
			return nil, err
		}
		opts = append(opts, bfs.WithDirection(d))
	}
	if b.MaxDepth > 0 {
		opts = append(opts, bfs.WithMaxDepth(b.MaxDepth))
	}
	return opts, nil
}

// Cache selects and configures the result cache.
type Cache struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	Prefix    string        `toml:"prefix"`
	TTL       time.Duration `toml:"ttl"`
}

// Server configures `parallax serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PageRank: pagerank.DefaultOptions(),
		BFS:      BFS{Directed: true},
		RMAT:     rmat.Default(),
		Cache:    Cache{Backend: BackendFile},
		Server:   Server{Addr: ":8080"},
	}
}

// DefaultPath returns the per-user config file path, e.g.
// ~/.config/parallax/config.toml on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "parallax", FileName), nil
}

// Load reads the file at path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := errors.ValidatePath(path); err != nil {
		return cfg, err
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDefault loads the file at DefaultPath if it exists and returns the
// defaults otherwise.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be >= 0, got %d", c.Workers)
	}

	pr := c.PageRank
	if err := pr.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "pagerank")
	}
	if _, err := c.BFS.Options(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "bfs")
	}
	if c.BFS.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "bfs: max_depth must be >= 0, got %d", c.BFS.MaxDepth)
	}
	if err := c.RMAT.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "rmat")
	}

	switch c.Cache.Backend {
	case BackendFile, BackendNone, "":
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache: redis backend needs redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache: unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache: ttl must be >= 0, got %s", c.Cache.TTL)
	}

	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server: addr is empty")
	}
	return nil
}
