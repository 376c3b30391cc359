package cache

import (
	"context"
	"sync"
)

// HasProjectsLoader answers whether an employee has any project assignments.
type HasProjectsLoader func(ctx context.Context, employeeID string) (bool, error)

// ProjectsCache memoizes per-employee project-assignment lookups. Entries are
// populated on first use and dropped explicitly when the employee logs out.
type ProjectsCache struct {
	loader HasProjectsLoader

	mu      sync.RWMutex
	entries map[string]bool
}

func NewProjectsCache(loader HasProjectsLoader) *ProjectsCache {
	return &ProjectsCache{
		loader:  loader,
		entries: make(map[string]bool),
	}
}

// HasProjects returns the cached answer for the employee, loading it on the
// first call. Load errors are returned and never cached.
func (c *ProjectsCache) HasProjects(ctx context.Context, employeeID string) (bool, error) {
	c.mu.RLock()
	has, ok := c.entries[employeeID]
	c.mu.RUnlock()
	if ok {
		return has, nil
	}

	has, err := c.loader(ctx, employeeID)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.entries[employeeID] = has
	c.mu.Unlock()

	return has, nil
}

// Invalidate drops the cached entry for the employee.
func (c *ProjectsCache) Invalidate(employeeID string) {
	c.mu.Lock()
	delete(c.entries, employeeID)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *ProjectsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
