package projects

import (
	"context"
	"sort"
	"sync"
)

// Repository lists portfolio projects. There is no pagination.
type Repository interface {
	List(ctx context.Context, order Order) ([]Project, error)
}

// InMemoryRepository serves a fixed set of projects.
type InMemoryRepository struct {
	mu       sync.RWMutex
	projects []Project
}

// NewInMemoryRepository copies the given projects.
func NewInMemoryRepository(seed ...Project) *InMemoryRepository {
	r := &InMemoryRepository{}
	r.projects = append(r.projects, seed...)
	return r
}

// Add appends a project.
func (r *InMemoryRepository) Add(p Project) {
	r.mu.Lock()
	r.projects = append(r.projects, p)
	r.mu.Unlock()
}

// List implements Repository.
func (r *InMemoryRepository) List(ctx context.Context, order Order) ([]Project, error) {
	r.mu.RLock()
	out := make([]Project, len(r.projects))
	copy(out, r.projects)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if order == OrderUpdatedDesc {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
