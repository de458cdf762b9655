// Package prom implements the observability hook interfaces with
// Prometheus collectors.
//
// Collectors are registered on a caller-supplied registerer so that tests
// and embedded servers can keep their metrics isolated from the default
// registry.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/parallax/pkg/observability"
)

const namespace = "parallax"

// Metrics holds every collector. It satisfies all hook interfaces in
// package observability.
type Metrics struct {
	Conversions         *prometheus.CounterVec
	ConversionSeconds   *prometheus.HistogramVec
	PageRankIterations  prometheus.Histogram
	PageRankResidual    prometheus.Gauge
	PageRankRuns        *prometheus.CounterVec
	BFSFrontier         prometheus.Gauge
	BFSRuns             *prometheus.CounterVec
	BFSReached          prometheus.Gauge
	GeneratedEdges      prometheus.Counter
	AlgorithmSeconds    *prometheus.HistogramVec
	PipelineStages      *prometheus.CounterVec
	CacheRequests       *prometheus.CounterVec
	CacheBytes          *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestSeconds  *prometheus.HistogramVec
	HTTPInFlightRequest *prometheus.GaugeVec
}

var (
	_ observability.AlgorithmHooks = (*Metrics)(nil)
	_ observability.PipelineHooks  = (*Metrics)(nil)
	_ observability.CacheHooks     = (*Metrics)(nil)
	_ observability.HTTPHooks      = (*Metrics)(nil)
)

// New creates the collectors and registers them on reg.
// It panics if a collector is already registered, like prometheus.MustRegister.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_conversions_total",
			Help:      "View derivations by source view, target view and outcome",
		}, []string{"from", "to", "result"}),
		ConversionSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_conversion_seconds",
			Help:      "Time spent deriving a view",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"from", "to"}),
		PageRankIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pagerank_iterations",
			Help:      "Power iterations per PageRank run",
			Buckets:   []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
		}),
		PageRankResidual: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pagerank_residual",
			Help:      "L1 residual of the most recent PageRank iteration",
		}),
		PageRankRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pagerank_runs_total",
			Help:      "PageRank runs by final status",
		}, []string{"status"}),
		BFSFrontier: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bfs_frontier_vertices",
			Help:      "Size of the most recently expanded BFS frontier",
		}),
		BFSRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bfs_runs_total",
			Help:      "BFS runs by outcome",
		}, []string{"result"}),
		BFSReached: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bfs_reached_vertices",
			Help:      "Vertices reached by the most recent BFS",
		}),
		GeneratedEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rmat_generated_edges_total",
			Help:      "Edges emitted by the RMAT generator",
		}),
		AlgorithmSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "algorithm_seconds",
			Help:      "Wall time per algorithm run",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"algorithm"}),
		PipelineStages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_stages_total",
			Help:      "Pipeline stages by stage name and outcome",
		}, []string{"stage", "result"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by key type and outcome",
		}, []string{"key_type", "result"}),
		CacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"key_type"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by method, route and status code",
		}, []string{"method", "route", "code"}),
		HTTPRequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPInFlightRequest: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served",
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.Conversions,
		m.ConversionSeconds,
		m.PageRankIterations,
		m.PageRankResidual,
		m.PageRankRuns,
		m.BFSFrontier,
		m.BFSRuns,
		m.BFSReached,
		m.GeneratedEdges,
		m.AlgorithmSeconds,
		m.PipelineStages,
		m.CacheRequests,
		m.CacheBytes,
		m.HTTPRequests,
		m.HTTPRequestSeconds,
		m.HTTPInFlightRequest,
	)
	return m
}

// Install registers m as the global hooks for every category.
func (m *Metrics) Install() {
	observability.SetAlgorithmHooks(m)
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnConvert(_ context.Context, from, to string, _ int, _ int64, d time.Duration, err error) {
	m.Conversions.WithLabelValues(from, to, result(err)).Inc()
	if err == nil {
		m.ConversionSeconds.WithLabelValues(from, to).Observe(d.Seconds())
	}
}

func (m *Metrics) OnPageRankIteration(_ context.Context, _ int, residual float64) {
	m.PageRankResidual.Set(residual)
}

func (m *Metrics) OnPageRankComplete(_ context.Context, _, iterations int, converged bool, d time.Duration, err error) {
	status := "converged"
	switch {
	case err != nil:
		status = "error"
	case !converged:
		status = "max_iterations_exceeded"
	}
	m.PageRankRuns.WithLabelValues(status).Inc()
	if err != nil {
		return
	}
	m.PageRankIterations.Observe(float64(iterations))
	m.AlgorithmSeconds.WithLabelValues("pagerank").Observe(d.Seconds())
}

func (m *Metrics) OnBFSLevel(_ context.Context, _, frontier int) {
	m.BFSFrontier.Set(float64(frontier))
}

func (m *Metrics) OnBFSComplete(_ context.Context, _, reached, _ int, d time.Duration, err error) {
	m.BFSRuns.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	m.BFSReached.Set(float64(reached))
	m.AlgorithmSeconds.WithLabelValues("bfs").Observe(d.Seconds())
}

func (m *Metrics) OnGenerate(_ context.Context, _ int, edges int64, d time.Duration, err error) {
	if err != nil {
		return
	}
	m.GeneratedEdges.Add(float64(edges))
	m.AlgorithmSeconds.WithLabelValues("rmat").Observe(d.Seconds())
}

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, _ int, _ int64, _ time.Duration, err error) {
	m.PipelineStages.WithLabelValues("load", result(err)).Inc()
}

func (m *Metrics) OnAnalyzeStart(context.Context, string, int) {}

func (m *Metrics) OnAnalyzeComplete(_ context.Context, algorithm string, _ time.Duration, err error) {
	m.PipelineStages.WithLabelValues(algorithm, result(err)).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(_ context.Context, method, route string) {
	m.HTTPInFlightRequest.WithLabelValues(method, route).Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.HTTPInFlightRequest.WithLabelValues(method, route).Dec()
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPRequestSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}
