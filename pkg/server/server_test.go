package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/graph"
	"github.com/matzehuels/parallax/pkg/observability"
	"github.com/matzehuels/parallax/pkg/observability/prom"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := New(Config{Logger: log.New(io.Discard), Gatherer: prometheus.NewRegistry()})
	t.Cleanup(func() { _ = s.Registry().Close() })
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func create(t *testing.T, s *Server, body string) graph.Info {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/v1/graphs", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[graph.Info](t, rec)
}

const pathGraph = `{"src": [0, 1, 2], "dst": [1, 2, 3]}`

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateEdgeList(t *testing.T) {
	s := newTestServer(t)
	info := create(t, s, pathGraph)

	assert.Equal(t, 4, info.Vertices)
	assert.EqualValues(t, 4-1, info.Edges)
	require.Len(t, info.Views, 1)
	assert.Equal(t, "edgelist", info.Views[0].View)
	assert.Equal(t, 1, s.Registry().Len())

	rec := do(t, s, http.MethodGet, "/v1/graphs/"+info.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, info.ID, decodeBody[graph.Info](t, rec).ID)
}

func TestCreateWithVerticesAndWeights(t *testing.T) {
	info := create(t, newTestServer(t), `{"vertices": 10, "src": [0], "dst": [1], "weights": [0.5]}`)
	assert.Equal(t, 10, info.Vertices)
	assert.True(t, info.Views[0].Weighted)
}

func TestCreateCSR(t *testing.T) {
	s := newTestServer(t)
	info := create(t, s, `{"view": "transpose", "offsets": [0, 0, 1, 2], "indices": [0, 1]}`)
	assert.Equal(t, 3, info.Vertices)
	require.Len(t, info.Views, 1)
	assert.Equal(t, "transpose", info.Views[0].View)
	assert.False(t, info.Views[0].Owned)
}

func TestCreateRMAT(t *testing.T) {
	s := newTestServer(t)
	info := create(t, s, `{"rmat": {"scale": 6, "edge_factor": 4}}`)
	assert.Equal(t, 64, info.Vertices)
	assert.EqualValues(t, 256, info.Edges)

	info = create(t, s, `{"rmat_args": "--rmat_scale=5 --rmat_edgefactor=2"}`)
	assert.Equal(t, 32, info.Vertices)
	assert.EqualValues(t, 64, info.Edges)
}

func TestCreateErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"empty", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"two forms", `{"src": [0], "dst": [1], "rmat_args": "--rmat_scale=3"}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"bad json", `{"src": [0`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"unknown field", `{"edges": []}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"length mismatch", `{"src": [0, 1], "dst": [1]}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"id out of range", `{"vertices": 2, "src": [0], "dst": [5]}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"id beyond int32", `{"src": [0], "dst": [3000000000]}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"bad offsets", `{"offsets": [0, 2, 1], "indices": [0]}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"csr as edgelist", `{"view": "edgelist", "offsets": [0, 0], "indices": []}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"scale over limit", `{"rmat": {"scale": 30}}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"vertices over limit", `{"vertices": 2000000000, "src": [0], "dst": [1]}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"inferred vertices over limit", `{"src": [0], "dst": [2000000000]}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"rmat edges over limit", `{"rmat": {"scale": 22, "edge_factor": 1000000}}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"rmat edge factor over limit", `{"rmat_args": "--rmat_scale=4 --rmat_edgefactor=1000000000000"}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"negative rmat scale", `{"rmat": {"scale": -1}}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"bad rmat", `{"rmat": {"a": 0.9}}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
		{"bad rmat args", `{"rmat_args": "--rmat_scale=zero"}`, http.StatusBadRequest, errors.ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := do(t, s, http.MethodPost, "/v1/graphs", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decodeBody[errorBody](t, rec)
			assert.Equal(t, tt.code, body.Code, body.Message)
			assert.Equal(t, 0, s.Registry().Len())
		})
	}
}

func TestGetUnknownGraph(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/v1/graphs/00000000-0000-0000-0000-000000000000", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errors.ErrCodeNotFound, decodeBody[errorBody](t, rec).Code)

	rec = do(t, s, http.MethodGet, "/v1/graphs/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAndDelete(t *testing.T) {
	s := newTestServer(t)
	a := create(t, s, pathGraph)
	create(t, s, pathGraph)

	rec := do(t, s, http.MethodGet, "/v1/graphs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[struct {
		Graphs []graph.Info `json:"graphs"`
	}](t, rec)
	assert.Len(t, list.Graphs, 2)

	rec = do(t, s, http.MethodDelete, "/v1/graphs/"+a.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, s.Registry().Len())

	rec = do(t, s, http.MethodDelete, "/v1/graphs/"+a.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeriveAndDropViews(t *testing.T) {
	s := newTestServer(t)
	info := create(t, s, pathGraph)
	base := "/v1/graphs/" + info.ID + "/views/"

	rec := do(t, s, http.MethodPost, base+"transpose", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[graph.Info](t, rec)
	require.Len(t, got.Views, 2)
	assert.Equal(t, "transpose", got.Views[1].View)
	assert.True(t, got.Views[1].Owned)

	rec = do(t, s, http.MethodDelete, base+"edgelist", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[graph.Info](t, rec).Views, 1)

	// The adjacency is still derivable from the transpose
	rec = do(t, s, http.MethodPost, base+"csr", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeBody[graph.Info](t, rec).Views, 2)

	rec = do(t, s, http.MethodPost, base+"sideways", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Dropping everything leaves nothing to derive from
	do(t, s, http.MethodDelete, base+"adjacency", "")
	do(t, s, http.MethodDelete, base+"transpose", "")
	rec = do(t, s, http.MethodPost, base+"edgelist", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errors.ErrCodeMissingView, decodeBody[errorBody](t, rec).Code)
}

func TestPageRank(t *testing.T) {
	s := newTestServer(t)
	info := create(t, s, `{"src": [0, 1, 2, 3], "dst": [1, 2, 3, 0]}`)
	url := "/v1/graphs/" + info.ID + "/pagerank"

	rec := do(t, s, http.MethodPost, url, `{"top": 2, "ranks": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[struct {
		Status string    `json:"status"`
		Top    []any     `json:"top"`
		Ranks  []float64 `json:"ranks"`
	}](t, rec)
	assert.Equal(t, "converged", resp.Status)
	assert.Len(t, resp.Top, 2)
	require.Len(t, resp.Ranks, 4)
	for _, r := range resp.Ranks {
		assert.InDelta(t, 0.25, r, 1e-6)
	}

	// Empty body uses defaults
	rec = do(t, s, http.MethodPost, url, "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPost, url, `{"alpha": 1.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, url, `{"guess": [1, 1]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, url, `{"max_iter": 1, "alpha": 0.85, "guess": [1, 0, 0, 0]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "max_iterations_exceeded", decodeBody[struct {
		Status string `json:"status"`
	}](t, rec).Status)
}

func TestBFS(t *testing.T) {
	s := newTestServer(t)
	info := create(t, s, `{"vertices": 5, "src": [0, 1, 2], "dst": [1, 2, 3]}`)
	url := "/v1/graphs/" + info.ID + "/bfs"

	rec := do(t, s, http.MethodPost, url, `{"start": 0, "target": 3, "distances": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[bfsResponse](t, rec)
	assert.Equal(t, 4, resp.Reached)
	assert.Equal(t, 4, resp.Levels)
	assert.Equal(t, []int32{0, 1, 2, 3}, resp.Path)
	assert.Equal(t, []int64{0, 1, 2, 3, -1}, resp.Distances)

	// Directed search from the end of the path reaches nothing else
	rec = do(t, s, http.MethodPost, url, `{"start": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[bfsResponse](t, rec).Reached)

	// Undirected search walks back
	rec = do(t, s, http.MethodPost, url, `{"start": 3, "directed": false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decodeBody[bfsResponse](t, rec).Reached)

	rec = do(t, s, http.MethodPost, url, `{"start": 7}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, url, `{"start": 0, "target": 4}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsAndHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom.New(reg).Install()
	t.Cleanup(observability.Reset)

	s := New(Config{Logger: log.New(io.Discard), Gatherer: reg})
	info := create(t, s, pathGraph)
	do(t, s, http.MethodGet, "/v1/graphs/"+info.ID, "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `parallax_http_requests_total{code="201",method="POST",route="/v1/graphs"} 1`)
	assert.Contains(t, body, `route="/v1/graphs/{id}"`)
	assert.NotContains(t, body, info.ID)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	h := graph.New()
	r.Add(h)

	got, err := r.Get(h.ID().String())
	require.NoError(t, err)
	assert.Same(t, h, got)
	assert.Len(t, r.List(), 1)

	require.NoError(t, r.Remove(h.ID().String()))
	_, err = r.Get(h.ID().String())
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	for range 8 {
		r.Add(graph.New())
	}
	list := r.List()
	require.Len(t, list, 8)
	for i := 1; i < len(list); i++ {
		prev, cur := list[i-1].ID(), list[i].ID()
		assert.Negative(t, bytes.Compare(prev[:], cur[:]), "list must be ordered by id")
	}
	require.NoError(t, r.Close())
	assert.Equal(t, 0, r.Len())
}

func TestSizeLimits(t *testing.T) {
	s := New(Config{Logger: log.New(io.Discard), Gatherer: prometheus.NewRegistry(), MaxVertices: 8, MaxEdges: 4})
	t.Cleanup(func() { _ = s.Registry().Close() })

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"within limits", `{"src": [0, 1, 2], "dst": [1, 2, 7]}`, http.StatusCreated},
		{"too many vertices", `{"vertices": 9, "src": [0], "dst": [1]}`, http.StatusBadRequest},
		{"inferred vertices", `{"src": [0], "dst": [8]}`, http.StatusBadRequest},
		{"too many edges", `{"src": [0, 0, 0, 0, 0], "dst": [1, 2, 3, 4, 5]}`, http.StatusBadRequest},
		{"csr too many edges", `{"offsets": [0, 5, 5], "indices": [1, 1, 1, 1, 1]}`, http.StatusBadRequest},
		{"rmat too large", `{"rmat_args": "--rmat_scale=3 --rmat_edgefactor=2"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/graphs", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
	assert.Equal(t, 1, s.Registry().Len())
}

func TestBodyLimit(t *testing.T) {
	s := New(Config{Logger: log.New(io.Discard), Gatherer: prometheus.NewRegistry(), MaxBodyBytes: 16})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/graphs", bytes.NewReader([]byte(pathGraph))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
