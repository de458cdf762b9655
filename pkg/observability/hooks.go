// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about view conversions, algorithm progress, pipeline
// stages, cache operations, and served HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The [prom] subpackage implements every interface with Prometheus collectors.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := prom.New(prometheus.DefaultRegisterer)
//	    observability.SetAlgorithmHooks(m)
//	    observability.SetCacheHooks(m)
//	    // ... run application
//	}
//
// Kernels call hooks to emit events:
//
//	observability.Algorithms().OnPageRankIteration(ctx, iter, residual)
//
// [prom]: https://pkg.go.dev/github.com/matzehuels/parallax/pkg/observability/prom
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Algorithm Hooks
// =============================================================================

// AlgorithmHooks receives events from the graph kernels.
type AlgorithmHooks interface {
	// OnConvert records a view derivation, e.g. "edgelist" -> "adjacency".
	OnConvert(ctx context.Context, from, to string, vertices int, edges int64, duration time.Duration, err error)

	// PageRank events
	OnPageRankIteration(ctx context.Context, iteration int, residual float64)
	OnPageRankComplete(ctx context.Context, vertices, iterations int, converged bool, duration time.Duration, err error)

	// BFS events
	OnBFSLevel(ctx context.Context, level, frontier int)
	OnBFSComplete(ctx context.Context, vertices, reached, levels int, duration time.Duration, err error)

	// OnGenerate records an RMAT generation.
	OnGenerate(ctx context.Context, scale int, edges int64, duration time.Duration, err error)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the analysis pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, vertices int, edges int64, duration time.Duration, err error)

	// Analysis events
	OnAnalyzeStart(ctx context.Context, algorithm string, vertices int)
	OnAnalyzeComplete(ctx context.Context, algorithm string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAlgorithmHooks is a no-op implementation of AlgorithmHooks.
type NoopAlgorithmHooks struct{}

func (NoopAlgorithmHooks) OnConvert(context.Context, string, string, int, int64, time.Duration, error) {
}
func (NoopAlgorithmHooks) OnPageRankIteration(context.Context, int, float64) {}
func (NoopAlgorithmHooks) OnPageRankComplete(context.Context, int, int, bool, time.Duration, error) {
}
func (NoopAlgorithmHooks) OnBFSLevel(context.Context, int, int)                              {}
func (NoopAlgorithmHooks) OnBFSComplete(context.Context, int, int, int, time.Duration, error) {}
func (NoopAlgorithmHooks) OnGenerate(context.Context, int, int64, time.Duration, error)       {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, int64, time.Duration, error) {
}
func (NoopPipelineHooks) OnAnalyzeStart(context.Context, string, int)                      {}
func (NoopPipelineHooks) OnAnalyzeComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                         {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	algorithmHooks AlgorithmHooks = NoopAlgorithmHooks{}
	pipelineHooks  PipelineHooks  = NoopPipelineHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetAlgorithmHooks registers custom algorithm hooks.
// This should be called once at application startup before any graph is built.
func SetAlgorithmHooks(h AlgorithmHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		algorithmHooks = h
	}
}

// SetPipelineHooks registers custom pipeline hooks.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Algorithms returns the registered algorithm hooks.
func Algorithms() AlgorithmHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return algorithmHooks
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	algorithmHooks = NoopAlgorithmHooks{}
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
