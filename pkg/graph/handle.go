package graph

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/observability"
	"github.com/matzehuels/parallax/pkg/par"
)

// Handle owns up to three views of one logical graph and keeps them
// consistent. It is safe for concurrent use.
//
// The vertex count V is either fixed with [WithVertices] or taken from the
// first installed view: max id + 1 for an edge list, len(offsets) - 1 for
// a CSR. An inferred V is forgotten once every view has been dropped.
type Handle struct {
	id     uuid.UUID
	logger *log.Logger

	mu        sync.RWMutex
	vertices  int // -1 while unknown
	fixed     bool
	edgeList  *EdgeList
	adjacency *CSR
	transpose *CSR
	owned     [3]bool // indexed by View
}

// Option configures a Handle.
type Option func(*Handle)

// WithVertices fixes the vertex count. Installed views must then cover
// exactly n vertices, which allows trailing isolated vertices that no edge
// references.
func WithVertices(n int) Option {
	return func(h *Handle) {
		if n < 0 {
			return
		}
		h.vertices = n
		h.fixed = true
	}
}

// WithLogger sets the logger used for debug output about view changes.
func WithLogger(l *log.Logger) Option {
	return func(h *Handle) { h.logger = l }
}

// WithID overrides the generated handle id.
func WithID(id uuid.UUID) Option {
	return func(h *Handle) { h.id = id }
}

// New creates an empty handle.
func New(opts ...Option) *Handle {
	h := &Handle{id: uuid.New(), vertices: -1}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = log.Default()
	}
	return h
}

// ID returns the handle's unique id.
func (h *Handle) ID() uuid.UUID { return h.id }

// Vertices returns V, or 0 while no view is installed and V is not fixed.
func (h *Handle) Vertices() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return max(h.vertices, 0)
}

// Edges returns E, or -1 when no view is installed.
func (h *Handle) Edges() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.edgesLocked()
}

func (h *Handle) edgesLocked() int64 {
	switch {
	case h.edgeList != nil:
		return int64(h.edgeList.Len())
	case h.adjacency != nil:
		return h.adjacency.Edges()
	case h.transpose != nil:
		return h.transpose.Edges()
	}
	return -1
}

// Has reports whether view v is installed.
func (h *Handle) Has(v View) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	switch v {
	case ViewEdgeList:
		return h.edgeList != nil
	case ViewAdjacency:
		return h.adjacency != nil
	case ViewTranspose:
		return h.transpose != nil
	}
	return false
}

// EdgeList returns the edge list view, if installed.
func (h *Handle) EdgeList() (*EdgeList, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.edgeList, h.edgeList != nil
}

// Adjacency returns the forward CSR view, if installed.
func (h *Handle) Adjacency() (*CSR, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.adjacency, h.adjacency != nil
}

// Transpose returns the in-edge CSR view, if installed.
func (h *Handle) Transpose() (*CSR, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.transpose, h.transpose != nil
}

// =============================================================================
// Installation
// =============================================================================

// SetEdgeList installs a caller-owned edge list. It fails with
// ErrCodeAlreadyPresent if an edge list is installed and with
// ErrCodeInvalidArgument if the arrays are inconsistent with each other
// or with the views already on the handle.
func (h *Handle) SetEdgeList(src, dst []int32, w Weights) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.edgeList != nil {
		return errors.New(errors.ErrCodeAlreadyPresent, "edge list already installed")
	}
	el := &EdgeList{Src: src, Dst: dst, Weights: w}
	if err := errors.ValidateLength("dst", len(dst), len(src)); err != nil {
		return err
	}

	vertices := h.vertices
	if vertices < 0 {
		vertices = int(el.MaxVertex()) + 1
		if vertices > MaxVertices {
			return errors.New(errors.ErrCodeInvalidArgument, "vertex count %d exceeds %d", vertices, MaxVertices)
		}
	}
	if err := el.Validate(vertices); err != nil {
		return err
	}
	if err := h.checkEdges(int64(el.Len())); err != nil {
		return err
	}

	h.edgeList = el
	h.vertices = vertices
	h.owned[ViewEdgeList] = false
	h.logger.Debug("installed view", "view", ViewEdgeList, "vertices", vertices, "edges", el.Len(), "weighted", w.Present())
	return nil
}

// SetAdjacency installs a caller-owned forward CSR.
func (h *Handle) SetAdjacency(offsets []int64, indices []int32, w Weights) error {
	return h.setCSR(ViewAdjacency, &CSR{Offsets: offsets, Indices: indices, Weights: w})
}

// SetTranspose installs a caller-owned in-edge CSR.
func (h *Handle) SetTranspose(offsets []int64, indices []int32, w Weights) error {
	return h.setCSR(ViewTranspose, &CSR{Offsets: offsets, Indices: indices, Weights: w})
}

func (h *Handle) setCSR(view View, csr *CSR) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.slot(view) != nil {
		return errors.New(errors.ErrCodeAlreadyPresent, "%s already installed", view)
	}
	if len(csr.Offsets) == 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "%s: offsets must have V+1 entries", view)
	}
	vertices := h.vertices
	if vertices < 0 {
		vertices = csr.Vertices()
		if vertices > MaxVertices {
			return errors.New(errors.ErrCodeInvalidArgument, "vertex count %d exceeds %d", vertices, MaxVertices)
		}
	}
	if err := csr.Validate(vertices); err != nil {
		return err
	}
	if err := h.checkEdges(csr.Edges()); err != nil {
		return err
	}

	h.setSlot(view, csr)
	h.vertices = vertices
	h.owned[view] = false
	h.logger.Debug("installed view", "view", view, "vertices", vertices, "edges", csr.Edges(), "weighted", csr.Weights.Present())
	return nil
}

// checkEdges verifies that a new view agrees with the installed ones on E.
func (h *Handle) checkEdges(edges int64) error {
	if have := h.edgesLocked(); have >= 0 && have != edges {
		return errors.New(errors.ErrCodeInvalidArgument, "view has %d edges, handle has %d", edges, have)
	}
	return nil
}

func (h *Handle) slot(view View) *CSR {
	if view == ViewAdjacency {
		return h.adjacency
	}
	return h.transpose
}

func (h *Handle) setSlot(view View, csr *CSR) {
	if view == ViewAdjacency {
		h.adjacency = csr
	} else {
		h.transpose = csr
	}
}

// =============================================================================
// Derivation
// =============================================================================

// EnsureAdjacency derives the forward CSR if it is missing: from the edge
// list when present, else by transposing the transpose. It fails with
// ErrCodeMissingView when the handle has no view at all.
func (h *Handle) EnsureAdjacency() error {
	return h.ensureCSR(ViewAdjacency)
}

// EnsureTranspose derives the in-edge CSR if it is missing, from the edge
// list or the forward CSR.
func (h *Handle) EnsureTranspose() error {
	return h.ensureCSR(ViewTranspose)
}

func (h *Handle) ensureCSR(view View) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.slot(view) != nil {
		return nil
	}

	other := ViewTranspose
	if view == ViewTranspose {
		other = ViewAdjacency
	}

	var (
		from  View
		build func() (*CSR, error)
	)
	switch {
	case h.edgeList != nil:
		from = ViewEdgeList
		build = func() (*CSR, error) {
			if view == ViewAdjacency {
				return EdgeListToCSR(h.edgeList, h.vertices)
			}
			return Transpose(h.edgeList, h.vertices)
		}
	case h.slot(other) != nil:
		from = other
		build = func() (*CSR, error) { return TransposeCSR(h.slot(other)) }
	default:
		return errors.New(errors.ErrCodeMissingView, "cannot derive %s: no view installed", view)
	}

	csr, err := derive(h, from, view, build)
	if err != nil {
		return err
	}
	h.setSlot(view, csr)
	h.owned[view] = true
	return nil
}

// EnsureEdgeList derives the edge list from whichever CSR view is present.
func (h *Handle) EnsureEdgeList() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.edgeList != nil {
		return nil
	}

	var from View
	var el *EdgeList
	var err error
	switch {
	case h.adjacency != nil:
		from = ViewAdjacency
		el, err = derive(h, from, ViewEdgeList, func() (*EdgeList, error) {
			return CSRToEdgeList(h.adjacency)
		})
	case h.transpose != nil:
		from = ViewTranspose
		el, err = derive(h, from, ViewEdgeList, func() (*EdgeList, error) {
			rev, err := CSRToEdgeList(h.transpose)
			if err != nil {
				return nil, err
			}
			return &EdgeList{Src: rev.Dst, Dst: rev.Src, Weights: rev.Weights}, nil
		})
	default:
		return errors.New(errors.ErrCodeMissingView, "cannot derive %s: no adjacency view installed", ViewEdgeList)
	}
	if err != nil {
		return err
	}
	h.edgeList = el
	h.owned[ViewEdgeList] = true
	return nil
}

// derive times build and reports the conversion to the logger and hooks.
func derive[T any](h *Handle, from, to View, build func() (T, error)) (T, error) {
	start := time.Now()
	out, err := build()
	elapsed := time.Since(start)
	edges := h.edgesLocked()
	observability.Algorithms().OnConvert(context.Background(), from.String(), to.String(), h.vertices, edges, elapsed, err)
	if err != nil {
		h.logger.Debug("derive view failed", "from", from, "to", to, "err", err)
		return out, err
	}
	h.logger.Debug("derived view", "from", from, "to", to, "vertices", h.vertices, "edges", edges, "duration", elapsed)
	return out, nil
}

// =============================================================================
// Drop
// =============================================================================

// DropEdgeList removes the edge list view. It is a no-op when absent.
func (h *Handle) DropEdgeList() { h.drop(ViewEdgeList) }

// DropAdjacency removes the forward CSR view. It is a no-op when absent.
func (h *Handle) DropAdjacency() { h.drop(ViewAdjacency) }

// DropTranspose removes the in-edge CSR view. It is a no-op when absent.
func (h *Handle) DropTranspose() { h.drop(ViewTranspose) }

// Close drops every view.
func (h *Handle) Close() error {
	for _, v := range Views {
		h.drop(v)
	}
	return nil
}

func (h *Handle) drop(view View) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch view {
	case ViewEdgeList:
		if h.edgeList == nil {
			return
		}
		h.edgeList = nil
	case ViewAdjacency, ViewTranspose:
		if h.slot(view) == nil {
			return
		}
		h.setSlot(view, nil)
	}
	h.owned[view] = false
	if !h.fixed && h.edgeList == nil && h.adjacency == nil && h.transpose == nil {
		h.vertices = -1
	}
	h.logger.Debug("dropped view", "view", view)
}

// =============================================================================
// Queries
// =============================================================================

// OutDegrees returns the out-degree of every vertex. It reads the forward
// CSR when present, and otherwise counts occurrences in the transpose's
// indices or the edge list's sources, without deriving a new view.
func (h *Handle) OutDegrees() ([]int64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := max(h.vertices, 0)
	deg, err := makeSlice[int64]("degrees", int64(n))
	if err != nil {
		return nil, err
	}

	var sources []int32
	switch {
	case h.adjacency != nil:
		offsets := h.adjacency.Offsets
		par.For(n, func(lo, hi int) {
			for v := lo; v < hi; v++ {
				deg[v] = offsets[v+1] - offsets[v]
			}
		})
		return deg, nil
	case h.transpose != nil:
		sources = h.transpose.Indices
	case h.edgeList != nil:
		sources = h.edgeList.Src
	default:
		return nil, errors.New(errors.ErrCodeMissingView, "cannot compute out-degrees: no view installed")
	}

	par.For(len(sources), func(lo, hi int) {
		for _, u := range sources[lo:hi] {
			atomic.AddInt64(&deg[u], 1)
		}
	})
	return deg, nil
}

// Info describes the state of a handle.
type Info struct {
	ID       string     `json:"id"`
	Vertices int        `json:"vertices"`
	Edges    int64      `json:"edges"`
	Views    []ViewInfo `json:"views"`
}

// ViewInfo describes one installed view.
type ViewInfo struct {
	View     string `json:"view"`
	Owned    bool   `json:"owned"`
	Weighted bool   `json:"weighted"`
}

// Info returns a snapshot of the handle's view set.
func (h *Handle) Info() Info {
	h.mu.RLock()
	defer h.mu.RUnlock()

	info := Info{
		ID:       h.id.String(),
		Vertices: max(h.vertices, 0),
		Edges:    max(h.edgesLocked(), 0),
		Views:    []ViewInfo{},
	}
	if h.edgeList != nil {
		info.Views = append(info.Views, ViewInfo{View: ViewEdgeList.String(), Owned: h.owned[ViewEdgeList], Weighted: h.edgeList.Weights.Present()})
	}
	if h.adjacency != nil {
		info.Views = append(info.Views, ViewInfo{View: ViewAdjacency.String(), Owned: h.owned[ViewAdjacency], Weighted: h.adjacency.Weights.Present()})
	}
	if h.transpose != nil {
		info.Views = append(info.Views, ViewInfo{View: ViewTranspose.String(), Owned: h.owned[ViewTranspose], Weighted: h.transpose.Weights.Present()})
	}
	return info
}
