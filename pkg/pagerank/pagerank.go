package pagerank

import (
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/graph"
	"github.com/matzehuels/parallax/pkg/observability"
	"github.com/matzehuels/parallax/pkg/par"
)

// Status reports how a run terminated.
type Status int

const (
	// Converged means the residual dropped below the threshold.
	Converged Status = iota
	// MaxIterationsExceeded means the iteration cap was reached first.
	// The ranks are still the best available estimate.
	MaxIterationsExceeded
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case MaxIterationsExceeded:
		return "max_iterations_exceeded"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "converged":
		*s = Converged
	case "max_iterations_exceeded":
		*s = MaxIterationsExceeded
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown status %q", b)
	}
	return nil
}

// State is a step of the solver's life cycle:
// Init -> Iterating -> (Converged | MaxIterReached) -> Done.
type State int

const (
	StateInit State = iota
	StateIterating
	StateConverged
	StateMaxIterReached
	StateDone
)

func (s State) String() string {
	return [...]string{"init", "iterating", "converged", "max_iter_reached", "done"}[s]
}

// Result is the outcome of a run.
type Result struct {
	Ranks      []float64 `json:"ranks"`
	Iterations int       `json:"iterations"`
	Residual   float64   `json:"residual"`
	Status     Status    `json:"status"`
}

// Converged reports whether the run converged.
func (r *Result) Converged() bool { return r.Status == Converged }

// Solver runs PageRank and records its state. A Solver is not safe for
// concurrent use; create one per run or use [Run].
type Solver struct {
	opts  Options
	state State
	trace []State
}

// NewSolver validates opts and returns a solver in StateInit.
func NewSolver(opts Options) (*Solver, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Solver{opts: opts, trace: []State{StateInit}}, nil
}

// State returns the current state.
func (s *Solver) State() State { return s.state }

// Transitions returns every state the solver has been in, in order.
func (s *Solver) Transitions() []State { return slices.Clone(s.trace) }

func (s *Solver) enter(st State) {
	s.state = st
	s.trace = append(s.trace, st)
}

// Run validates opts and computes PageRank on h. See [Solver.Run].
func Run(ctx context.Context, h *graph.Handle, opts Options) (*Result, error) {
	s, err := NewSolver(opts)
	if err != nil {
		observability.Algorithms().OnPageRankComplete(ctx, h.Vertices(), 0, false, 0, err)
		return nil, err
	}
	return s.Run(ctx, h)
}

// Run computes PageRank on h. The transpose view is derived if missing;
// out-degrees come from the forward view when present and are otherwise
// counted from the transpose, so no forward view is built.
//
// ctx is passed to the observability hooks. The run is bounded by MaxIter
// and is not cancelled through ctx.
func (s *Solver) Run(ctx context.Context, h *graph.Handle) (res *Result, err error) {
	start := time.Now()
	defer func() {
		vertices := h.Vertices()
		iters, converged := 0, false
		if res != nil {
			iters, converged = res.Iterations, res.Converged()
		}
		observability.Algorithms().OnPageRankComplete(ctx, vertices, iters, converged, time.Since(start), err)
	}()

	if s.state != StateInit {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "solver already used (state %s)", s.state)
	}

	// A bad guess must fail before the transpose is derived.
	var guess []float64
	if s.opts.Guess != nil && h.Edges() >= 0 {
		if guess, err = normalizeGuess(s.opts.Guess, h.Vertices()); err != nil {
			return nil, err
		}
	}

	if err := h.EnsureTranspose(); err != nil {
		return nil, err
	}
	tr, ok := h.Transpose()
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingView, "transpose dropped during pagerank")
	}
	deg, err := h.OutDegrees()
	if err != nil {
		return nil, err
	}
	n := tr.Vertices()
	if len(deg) != n {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "out-degree length %d does not match %d vertices", len(deg), n)
	}

	rank := guess
	if rank == nil {
		rank = make([]float64, n)
		par.For(n, func(lo, hi int) {
			for v := lo; v < hi; v++ {
				rank[v] = 1 / float64(n)
			}
		})
	}

	if n == 0 {
		s.enter(StateConverged)
		s.enter(StateDone)
		return &Result{Ranks: rank, Status: Converged}, nil
	}

	res = s.iterate(ctx, tr, deg, rank)
	s.enter(StateDone)
	return res, nil
}

func (s *Solver) iterate(ctx context.Context, tr *graph.CSR, deg []int64, rank []float64) *Result {
	n := len(rank)
	alpha := s.opts.Alpha
	threshold := s.opts.Tolerance * float64(n)
	logger := s.opts.Logger
	hooks := observability.Algorithms()

	invDeg := make([]float64, n)
	par.For(n, func(lo, hi int) {
		for v := lo; v < hi; v++ {
			if deg[v] > 0 {
				invDeg[v] = 1 / float64(deg[v])
			}
		}
	})

	next := make([]float64, n)
	contrib := make([]float64, n)
	res := &Result{Status: MaxIterationsExceeded, Residual: math.Inf(1)}

	s.enter(StateIterating)
	for iter := 1; iter <= s.opts.MaxIter; iter++ {
		dangling := par.Sum(n, func(lo, hi int) float64 {
			var m float64
			for u := lo; u < hi; u++ {
				if deg[u] == 0 {
					m += rank[u]
				}
				contrib[u] = rank[u] * invDeg[u]
			}
			return m
		})
		base := (1-alpha)/float64(n) + alpha*dangling/float64(n)

		par.For(n, func(lo, hi int) {
			for v := lo; v < hi; v++ {
				var sum float64
				for _, u := range tr.Neighbors(int32(v)) {
					sum += contrib[u]
				}
				next[v] = alpha*sum + base
			}
		})

		residual := par.Sum(n, func(lo, hi int) float64 {
			var d float64
			for v := lo; v < hi; v++ {
				d += math.Abs(next[v] - rank[v])
			}
			return d
		})
		rank, next = next, rank

		res.Iterations = iter
		res.Residual = residual
		hooks.OnPageRankIteration(ctx, iter, residual)
		logger.Debug("pagerank iteration", "iter", iter, "residual", residual, "dangling", dangling)

		if residual < threshold {
			res.Status = Converged
			break
		}
	}

	res.Ranks = rank
	if res.Status == Converged {
		s.enter(StateConverged)
		logger.Debug("pagerank converged", "iterations", res.Iterations, "residual", res.Residual)
	} else {
		s.enter(StateMaxIterReached)
		logger.Warn("pagerank reached iteration cap", "max_iter", s.opts.MaxIter, "residual", res.Residual)
	}
	return res
}

// Ranked pairs a vertex with its rank.
type Ranked struct {
	Vertex int32   `json:"vertex"`
	Rank   float64 `json:"rank"`
}

// TopK returns the k highest-ranked vertices, ties broken by vertex id.
// k <= 0 or k > len(ranks) returns every vertex.
func TopK(ranks []float64, k int) []Ranked {
	all := make([]Ranked, len(ranks))
	for v, r := range ranks {
		all[v] = Ranked{Vertex: int32(v), Rank: r}
	}
	slices.SortFunc(all, func(a, b Ranked) int {
		if c := cmp.Compare(b.Rank, a.Rank); c != 0 {
			return c
		}
		return cmp.Compare(a.Vertex, b.Vertex)
	})
	if k > 0 && k < len(all) {
		all = all[:k]
	}
	return all
}
