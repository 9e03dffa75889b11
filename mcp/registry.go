package mcp

import (
	"sync"

	"github.com/ieg-tools/projcodes/domain"
)

// DefaultRegistrySize is the number of results a session keeps addressable
const DefaultRegistrySize = 32

// ResultRegistry keeps the most recent query results of a session by id.
// The oldest result is evicted once the registry is full.
type ResultRegistry struct {
	mu      sync.Mutex
	size    int
	order   []string
	results map[string]domain.Tabular
}

// NewResultRegistry creates a registry holding at most size results
func NewResultRegistry(size int) *ResultRegistry {
	if size <= 0 {
		size = DefaultRegistrySize
	}
	return &ResultRegistry{
		size:    size,
		results: make(map[string]domain.Tabular, size),
	}
}

// Put stores a result under its id and returns the id; results without an
// id are not stored
func (r *ResultRegistry) Put(result domain.Tabular) string {
	id := resultID(result)
	if id == "" {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.results[id]; !ok {
		r.order = append(r.order, id)
	}
	r.results[id] = result
	for len(r.order) > r.size {
		delete(r.results, r.order[0])
		r.order = r.order[1:]
	}
	return id
}

// Get returns the result stored under id
func (r *ResultRegistry) Get(id string) (domain.Tabular, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[id]
	return res, ok
}

// Len returns the number of stored results
func (r *ResultRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

func resultID(result domain.Tabular) string {
	switch r := result.(type) {
	case *domain.QueryResult:
		if r != nil {
			return r.ID
		}
	case *domain.CountResult:
		if r != nil {
			return r.ID
		}
	case *domain.DominantResult:
		if r != nil {
			return r.ID
		}
	}
	return ""
}
