package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/parallax/pkg/bfs"
	"github.com/matzehuels/parallax/pkg/cache"
	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/graph"
	pio "github.com/matzehuels/parallax/pkg/io"
	"github.com/matzehuels/parallax/pkg/observability"
	"github.com/matzehuels/parallax/pkg/pagerank"
	"github.com/matzehuels/parallax/pkg/rmat"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-kind entry lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → analyze → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	h, graphHash, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Handle = h
	result.GraphHash = graphHash
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Vertices = h.Vertices()
	result.Stats.Edges = h.Edges()
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded graph",
		"vertices", result.Stats.Vertices,
		"edges", result.Stats.Edges,
		"cached", loadHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Analyze
	if opts.Algorithm != "" {
		analyzeStart := time.Now()
		var hit bool
		switch opts.Algorithm {
		case AlgorithmPageRank:
			result.PageRank, hit, err = r.PageRankWithCacheInfo(ctx, h, graphHash, opts)
			if err == nil {
				result.Top = pagerank.TopK(result.PageRank.Ranks, opts.Top)
			}
		case AlgorithmBFS:
			result.BFS, hit, err = r.BFSWithCacheInfo(ctx, h, graphHash, opts)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opts.Algorithm, err)
		}
		result.Stats.AnalyzeTime = time.Since(analyzeStart)
		result.CacheInfo.AnalyzeHit = hit

		r.Logger.Info("analyzed graph",
			"algorithm", opts.Algorithm,
			"cached", hit,
			"duration", result.Stats.AnalyzeTime)
	}

	// Stage 3: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, err := Render(h, result, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)

		r.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// LoadWithCacheInfo builds a handle from the load options and returns the
// graph hash used in analysis cache keys and whether the graph came from
// cache.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (h *graph.Handle, graphHash string, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, "", false, err
	}

	source := opts.source()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()
	defer func() {
		var v int
		var e int64
		if h != nil {
			v, e = h.Vertices(), h.Edges()
		}
		hooks.OnLoadComplete(ctx, source, v, e, time.Since(start), err)
	}()

	// Hash the source content
	var raw []byte
	var sourceHash string
	weighted := !opts.Unweighted
	if opts.RMAT != nil {
		sourceHash = cache.Hash([]byte(opts.RMAT.Args()))
		weighted = opts.RMAT.Weighted
	} else {
		raw, err = os.ReadFile(opts.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, "", false, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", opts.Path)
			}
			return nil, "", false, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", opts.Path)
		}
		sourceHash = cache.Hash(raw)
	}
	cacheKey := r.Keyer.GraphKey(sourceHash, cache.GraphKeyOpts{
		Vertices: opts.Vertices,
		Weighted: weighted,
		OneBased: opts.OneBased,
	})
	graphHash = cache.Hash([]byte(cacheKey))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, ok := r.lookup(ctx, cache.KeyTypeGraph, cacheKey); ok {
			var doc pio.Document
			if err := json.Unmarshal(data, &doc); err == nil {
				if parsed, err := doc.EdgeList(); err == nil {
					if cached, err := r.newHandle(parsed, opts); err == nil {
						return cached, graphHash, true, nil
					}
				}
			}
			r.Logger.Debug("discarding unreadable cache entry", "key", cacheKey)
		}
	}

	// Load
	var parsed *pio.Parsed
	if opts.RMAT != nil {
		el, v, err := rmat.Generate(ctx, *opts.RMAT)
		if err != nil {
			return nil, "", false, err
		}
		if opts.Vertices > v {
			v = opts.Vertices
		}
		parsed = &pio.Parsed{Edges: el, Vertices: v}
	} else {
		parsed, err = pio.ReadEdgeList(bytes.NewReader(raw), pio.ReadOptions{
			Vertices:   opts.Vertices,
			OneBased:   opts.OneBased,
			Unweighted: opts.Unweighted,
		})
		if err != nil {
			return nil, "", false, err
		}
	}

	h, err = r.newHandle(parsed, opts)
	if err != nil {
		return nil, "", false, err
	}

	// Cache the result
	weights, _ := parsed.Edges.Weights.Get()
	doc := pio.Document{Vertices: parsed.Vertices, Src: parsed.Edges.Src, Dst: parsed.Edges.Dst, Weights: weights}
	if data, err := json.Marshal(doc); err == nil {
		r.store(ctx, cache.KeyTypeGraph, cacheKey, data, cache.TTLGraph)
	}

	return h, graphHash, false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*graph.Handle, error) {
	h, _, _, err := r.LoadWithCacheInfo(ctx, opts)
	return h, err
}

func (r *Runner) newHandle(p *pio.Parsed, opts Options) (*graph.Handle, error) {
	h := graph.New(graph.WithVertices(p.Vertices), graph.WithLogger(opts.Logger))
	if err := h.SetEdgeList(p.Edges.Src, p.Edges.Dst, p.Edges.Weights); err != nil {
		return nil, err
	}
	return h, nil
}

// PageRankWithCacheInfo runs PageRank on h with caching and returns cache hit info.
func (r *Runner) PageRankWithCacheInfo(ctx context.Context, h *graph.Handle, graphHash string, opts Options) (res *pagerank.Result, hit bool, err error) {
	r.applyLogger(&opts)
	if opts.PageRank.Logger == nil {
		opts.PageRank.Logger = opts.Logger
	}
	if err := opts.PageRank.Validate(); err != nil {
		return nil, false, err
	}

	keyOpts := cache.PageRankKeyOpts{
		Alpha:     opts.PageRank.Alpha,
		Tolerance: opts.PageRank.Tolerance,
		MaxIter:   opts.PageRank.MaxIter,
	}
	if opts.PageRank.Guess != nil {
		keyOpts.GuessHash = cache.HashFloat64s(opts.PageRank.Guess)
	}
	cacheKey := r.Keyer.PageRankKey(graphHash, keyOpts)

	err = r.analyze(ctx, AlgorithmPageRank, h, func() error {
		if !opts.Refresh {
			if data, ok := r.lookup(ctx, cache.KeyTypePageRank, cacheKey); ok {
				var cached pagerank.Result
				if json.Unmarshal(data, &cached) == nil && len(cached.Ranks) == h.Vertices() {
					res, hit = &cached, true
					return nil
				}
			}
		}
		res, err = pagerank.Run(ctx, h, opts.PageRank)
		if err != nil {
			return err
		}
		if data, err := json.Marshal(res); err == nil {
			r.store(ctx, cache.KeyTypePageRank, cacheKey, data, cache.TTLPageRank)
		}
		return nil
	})
	return res, hit, err
}

// PageRank is a convenience wrapper that calls PageRankWithCacheInfo and discards the cache hit info.
func (r *Runner) PageRank(ctx context.Context, h *graph.Handle, graphHash string, opts Options) (*pagerank.Result, error) {
	res, _, err := r.PageRankWithCacheInfo(ctx, h, graphHash, opts)
	return res, err
}

// BFSWithCacheInfo runs BFS on h with caching and returns cache hit info.
func (r *Runner) BFSWithCacheInfo(ctx context.Context, h *graph.Handle, graphHash string, opts Options) (res *bfs.Result, hit bool, err error) {
	r.applyLogger(&opts)
	bfsOpts, err := opts.bfsOptions()
	if err != nil {
		return nil, false, err
	}

	direction := opts.Direction
	if direction == "" {
		direction = bfs.Both.String()
		if opts.Directed {
			direction = bfs.Out.String()
		}
	}
	cacheKey := r.Keyer.BFSKey(graphHash, cache.BFSKeyOpts{
		Start:     opts.Start,
		Direction: direction,
		MaxDepth:  opts.MaxDepth,
	})

	err = r.analyze(ctx, AlgorithmBFS, h, func() error {
		if !opts.Refresh {
			if data, ok := r.lookup(ctx, cache.KeyTypeBFS, cacheKey); ok {
				var cached bfs.Result
				if json.Unmarshal(data, &cached) == nil && len(cached.Distances) == h.Vertices() {
					res, hit = &cached, true
					return nil
				}
			}
		}
		res, err = bfs.Run(ctx, h, opts.Start, opts.Directed, bfsOpts...)
		if err != nil {
			return err
		}
		if data, err := json.Marshal(res); err == nil {
			r.store(ctx, cache.KeyTypeBFS, cacheKey, data, cache.TTLBFS)
		}
		return nil
	})
	return res, hit, err
}

// BFS is a convenience wrapper that calls BFSWithCacheInfo and discards the cache hit info.
func (r *Runner) BFS(ctx context.Context, h *graph.Handle, graphHash string, opts Options) (*bfs.Result, error) {
	res, _, err := r.BFSWithCacheInfo(ctx, h, graphHash, opts)
	return res, err
}

// analyze wraps an analysis stage with pipeline hooks.
func (r *Runner) analyze(ctx context.Context, algorithm string, h *graph.Handle, fn func() error) error {
	hooks := observability.Pipeline()
	hooks.OnAnalyzeStart(ctx, algorithm, h.Vertices())
	start := time.Now()
	err := fn()
	hooks.OnAnalyzeComplete(ctx, algorithm, time.Since(start), err)
	return err
}

// lookup reads key from the cache and reports the outcome to the cache
// hooks. Backend errors count as misses.
func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes key to the cache. Failures are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
