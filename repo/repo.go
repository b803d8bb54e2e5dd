// Package repo is the polygon registry: a concurrency-safe id->polygon
// map guarded by a single RWMutex. Per-vertex locking happens a layer
// down, inside vertex.Vertex, so many readers / one writer applies at
// the registry level without serializing per-vertex access.
package repo

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/deltapolygon/deltapolygon/polygon"
)

// ErrNotFound is returned for an unknown polygon id.
var ErrNotFound = errors.New("repo: polygon not found")

// Repo holds every live TemporalPolygon, keyed by id.
type Repo struct {
	mu       sync.RWMutex
	polygons map[uuid.UUID]*polygon.TemporalPolygon
}

// New returns an empty Repo.
func New() *Repo {
	return &Repo{polygons: make(map[uuid.UUID]*polygon.TemporalPolygon)}
}

// Put inserts or replaces p under its id.
func (r *Repo) Put(p *polygon.TemporalPolygon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polygons[p.ID] = p
}

// Get returns the polygon with the given id, or ErrNotFound.
func (r *Repo) Get(id uuid.UUID) (*polygon.TemporalPolygon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.polygons[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// Remove deletes the polygon with the given id. It is a no-op if the id
// is not present.
func (r *Repo) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.polygons, id)
}

// All returns a snapshot slice of every polygon currently registered.
func (r *Repo) All() []*polygon.TemporalPolygon {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*polygon.TemporalPolygon, 0, len(r.polygons))
	for _, p := range r.polygons {
		out = append(out, p)
	}
	return out
}
