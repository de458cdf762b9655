package server

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/graph"
)

// Registry holds the graph handles created through the API, keyed by the
// handle's id. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	handles map[uuid.UUID]*graph.Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[uuid.UUID]*graph.Handle)}
}

// Add registers h under h.ID().
func (r *Registry) Add(h *graph.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[h.ID()] = h
}

// Get returns the handle registered under id.
func (r *Registry) Get(id string) (*graph.Handle, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "invalid graph id %q", id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[key]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "graph %s not found", id)
	}
	return h, nil
}

// Remove unregisters and closes the handle registered under id.
func (r *Registry) Remove(id string) error {
	h, err := r.Get(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.handles, h.ID())
	r.mu.Unlock()
	return h.Close()
}

// List returns the registered handles ordered by id.
func (r *Registry) List() []*graph.Handle {
	r.mu.RLock()
	out := make([]*graph.Handle, 0, len(r.handles))
	for _, h := range r.handles {
		out = append(out, h)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *graph.Handle) int {
		ai, bi := a.ID(), b.ID()
		return slices.Compare(ai[:], bi[:])
	})
	return out
}

// Len returns the number of registered handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Close closes and unregisters every handle.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, h := range r.handles {
		_ = h.Close()
		delete(r.handles, id)
	}
	return nil
}
