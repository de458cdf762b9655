package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/parallax/pkg/bfs"
	"github.com/matzehuels/parallax/pkg/column"
	"github.com/matzehuels/parallax/pkg/engine"
	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/graph"
	"github.com/matzehuels/parallax/pkg/pagerank"
	"github.com/matzehuels/parallax/pkg/rmat"
)

// createRequest describes a new graph. Exactly one of the edge list
// (src/dst), CSR (offsets/indices) or RMAT (rmat/rmat_args) forms is set.
type createRequest struct {
	Vertices int       `json:"vertices,omitempty"`
	Src      []int64   `json:"src,omitempty"`
	Dst      []int64   `json:"dst,omitempty"`
	Weights  []float64 `json:"weights,omitempty"`

	View    string  `json:"view,omitempty"`
	Offsets []int64 `json:"offsets,omitempty"`
	Indices []int64 `json:"indices,omitempty"`

	RMAT     json.RawMessage `json:"rmat,omitempty"`
	RMATArgs string          `json:"rmat_args,omitempty"`
}

func (req *createRequest) forms() int {
	n := 0
	if req.Src != nil || req.Dst != nil {
		n++
	}
	if req.Offsets != nil || req.Indices != nil {
		n++
	}
	if req.RMAT != nil || req.RMATArgs != "" {
		n++
	}
	return n
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.forms() != 1 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidArgument,
			"exactly one of src/dst, offsets/indices or rmat/rmat_args is required"))
		return
	}

	var (
		h   *graph.Handle
		err error
	)
	switch {
	case req.RMAT != nil || req.RMATArgs != "":
		h, err = s.createRMAT(r, &req)
	default:
		h, err = s.createFromArrays(&req)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.registry.Add(h)
	s.logger.Info("graph created", "id", h.ID(), "vertices", h.Vertices(), "edges", h.Edges())
	writeJSON(w, http.StatusCreated, h.Info())
}

func (s *Server) createFromArrays(req *createRequest) (*graph.Handle, error) {
	if req.Vertices < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "vertices must be >= 0, got %d", req.Vertices)
	}
	if err := s.checkSize(int64(req.Vertices), int64(max(len(req.Src), len(req.Indices)))); err != nil {
		return nil, err
	}
	opts := []graph.Option{graph.WithLogger(s.logger)}
	if req.Vertices > 0 {
		opts = append(opts, graph.WithVertices(req.Vertices))
	}
	h := graph.New(opts...)

	var weights *column.Column
	if req.Weights != nil {
		c := column.FromFloat64(req.Weights)
		weights = &c
	}

	if req.Src != nil || req.Dst != nil {
		if err := engine.BuildEdgeList(h, column.FromInt64(req.Src), column.FromInt64(req.Dst), weights); err != nil {
			return nil, err
		}
		// V is inferred from the largest id when not given.
		if err := s.checkSize(int64(h.Vertices()), h.Edges()); err != nil {
			_ = h.Close()
			return nil, err
		}
		return h, nil
	}

	view := graph.ViewAdjacency
	if req.View != "" {
		v, err := graph.ParseView(req.View)
		if err != nil {
			return nil, err
		}
		view = v
	}
	offsets, indices := column.FromInt64(req.Offsets), column.FromInt64(req.Indices)
	switch view {
	case graph.ViewAdjacency:
		return h, engine.BuildAdjacency(h, offsets, indices, weights)
	case graph.ViewTranspose:
		return h, engine.BuildTranspose(h, offsets, indices, weights)
	default:
		return nil, errors.New(errors.ErrCodeInvalidArgument, "offsets/indices describe a CSR view, not %s", view)
	}
}

func (s *Server) createRMAT(r *http.Request, req *createRequest) (*graph.Handle, error) {
	d := rmat.Default()
	if req.RMAT != nil && req.RMATArgs != "" {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "rmat and rmat_args are mutually exclusive")
	}
	if req.RMATArgs != "" {
		parsed, err := rmat.ParseArgs(req.RMATArgs)
		if err != nil {
			return nil, err
		}
		d = parsed
	} else if err := json.Unmarshal(req.RMAT, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode rmat descriptor")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if d.Scale > s.maxScale {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "rmat scale %d exceeds the server limit %d", d.Scale, s.maxScale)
	}
	if int64(d.EdgeFactor) > s.maxEdges {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "rmat edge factor %d exceeds the server edge limit %d", d.EdgeFactor, s.maxEdges)
	}
	if err := s.checkSize(int64(d.Vertices()), d.Edges()); err != nil {
		return nil, err
	}

	el, vertices, err := engine.GenerateRMAT(r.Context(), d)
	if err != nil {
		return nil, err
	}
	h := graph.New(graph.WithVertices(vertices), graph.WithLogger(s.logger))
	if err := h.SetEdgeList(el.Src, el.Dst, el.Weights); err != nil {
		return nil, err
	}
	return h, nil
}

// checkSize rejects graphs larger than the configured limits.
func (s *Server) checkSize(vertices, edges int64) error {
	if vertices > int64(s.maxVertices) {
		return errors.New(errors.ErrCodeInvalidArgument, "%d vertices exceed the server limit %d", vertices, s.maxVertices)
	}
	if edges > s.maxEdges {
		return errors.New(errors.ErrCodeInvalidArgument, "%d edges exceed the server limit %d", edges, s.maxEdges)
	}
	return nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	handles := s.registry.List()
	infos := make([]graph.Info, len(handles))
	for i, h := range handles {
		infos[i] = h.Info()
	}
	writeJSON(w, http.StatusOK, map[string]any{"graphs": infos})
}

// lookup resolves the {id} route parameter.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*graph.Handle, bool) {
	h, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return h, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Info())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Remove(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDerive(w http.ResponseWriter, r *http.Request) {
	s.viewOp(w, r, map[graph.View]func(*graph.Handle) error{
		graph.ViewEdgeList:  engine.DeriveEdgeList,
		graph.ViewAdjacency: engine.DeriveAdjacency,
		graph.ViewTranspose: engine.DeriveTranspose,
	})
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	s.viewOp(w, r, map[graph.View]func(*graph.Handle) error{
		graph.ViewEdgeList:  engine.DropEdgeList,
		graph.ViewAdjacency: engine.DropAdjacency,
		graph.ViewTranspose: engine.DropTranspose,
	})
}

func (s *Server) viewOp(w http.ResponseWriter, r *http.Request, ops map[graph.View]func(*graph.Handle) error) {
	h, ok := s.lookup(w, r)
	if !ok {
		return
	}
	view, err := graph.ParseView(chi.URLParam(r, "view"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := ops[view](h); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Info())
}

type pageRankRequest struct {
	Alpha     *float64  `json:"alpha,omitempty"`
	Tolerance float64   `json:"tolerance,omitempty"`
	MaxIter   int       `json:"max_iter,omitempty"`
	Guess     []float64 `json:"guess,omitempty"`
	Top       int       `json:"top,omitempty"`
	Ranks     bool      `json:"ranks,omitempty"`
}

type pageRankResponse struct {
	Iterations int               `json:"iterations"`
	Residual   float64           `json:"residual"`
	Status     pagerank.Status   `json:"status"`
	Top        []pagerank.Ranked `json:"top"`
	Ranks      []float64         `json:"ranks,omitempty"`
}

func (s *Server) handlePageRank(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req pageRankRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	alpha := pagerank.DefaultAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}
	var guess *column.Column
	if req.Guess != nil {
		c := column.FromFloat64(req.Guess)
		guess = &c
	}
	top := req.Top
	if top <= 0 {
		top = 10
	}

	res, err := engine.PageRank(r.Context(), h, alpha, req.Tolerance, req.MaxIter, guess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := pageRankResponse{
		Iterations: res.Iterations,
		Residual:   res.Residual,
		Status:     res.Status,
		Top:        pagerank.TopK(res.Ranks, top),
	}
	if req.Ranks {
		resp.Ranks = res.Ranks
	}
	writeJSON(w, http.StatusOK, resp)
}

type bfsRequest struct {
	Start     int64  `json:"start"`
	Directed  *bool  `json:"directed,omitempty"`
	Target    *int64 `json:"target,omitempty"`
	Distances bool   `json:"distances,omitempty"`
}

type bfsResponse struct {
	Start        int32   `json:"start"`
	Levels       int     `json:"levels"`
	Reached      int     `json:"reached"`
	Path         []int32 `json:"path,omitempty"`
	Distances    []int64 `json:"distances,omitempty"`
	Predecessors []int32 `json:"predecessors,omitempty"`
}

func (s *Server) handleBFS(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req bfsRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	directed := true
	if req.Directed != nil {
		directed = *req.Directed
	}

	res, err := engine.BFS(r.Context(), h, req.Start, directed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := bfsResponse{Start: res.Start, Levels: res.Levels, Reached: res.Reached}
	if req.Target != nil {
		if err := errors.ValidateVertex("target", *req.Target, int64(h.Vertices())); err != nil {
			s.writeError(w, r, err)
			return
		}
		path, err := res.PathTo(int32(*req.Target))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Path = path
	}
	if req.Distances {
		resp.Distances = make([]int64, len(res.Distances))
		for v, d := range res.Distances {
			if d == bfs.Infinity {
				resp.Distances[v] = -1
			} else {
				resp.Distances[v] = int64(d)
			}
		}
		resp.Predecessors = res.Predecessors
	}
	writeJSON(w, http.StatusOK, resp)
}
