// Package catalog fronts a storage.Store with operation accounting. It is
// the single store instance the HTTP handlers are wired to at startup.
package catalog

import (
	"errors"
	"sync/atomic"

	"github.com/dreamware/reel/internal/movie"
	"github.com/dreamware/reel/internal/storage"
)

// Catalog represents the movie collection served by one process
// Every operation is forwarded to Store exactly once and counted
type Catalog struct {
	Store storage.Store // The storage backend for this catalog
	ops   counters      // Operation counts
}

// counters tracks operation counts with atomic updates
type counters struct {
	lists   atomic.Uint64
	gets    atomic.Uint64
	creates atomic.Uint64
	updates atomic.Uint64
	deletes atomic.Uint64
	misses  atomic.Uint64
}

// OperationStats is a point-in-time copy of the operation counters
type OperationStats struct {
	Lists   uint64 `json:"lists"`   // Number of list operations
	Gets    uint64 `json:"gets"`    // Number of get operations
	Creates uint64 `json:"creates"` // Number of create operations
	Updates uint64 `json:"updates"` // Number of update operations
	Deletes uint64 `json:"deletes"` // Number of delete operations
	Misses  uint64 `json:"misses"`  // Operations that ended in NotFound
}

// Info contains a summary of the catalog for monitoring
type Info struct {
	Movies     int            `json:"movies"`     // Number of stored movies
	Operations OperationStats `json:"operations"` // Cumulative operation counts
}

// New creates a catalog backed by store
func New(store storage.Store) *Catalog {
	return &Catalog{Store: store}
}

// NewInMemory creates a catalog with a fresh in-memory store
func NewInMemory() *Catalog {
	return New(storage.NewMemoryStore())
}

// List returns a snapshot of all movies
func (c *Catalog) List() []movie.Movie {
	c.ops.lists.Add(1)
	return c.Store.List()
}

// Get retrieves one movie
func (c *Catalog) Get(id string) (movie.Movie, error) {
	c.ops.gets.Add(1)
	return c.miss(c.Store.Get(id))
}

// Create upserts a movie
func (c *Catalog) Create(m movie.Movie) movie.Movie {
	c.ops.creates.Add(1)
	return c.Store.Create(m)
}

// Update replaces an existing movie
func (c *Catalog) Update(id string, m movie.Movie) (movie.Movie, error) {
	c.ops.updates.Add(1)
	return c.miss(c.Store.Update(id, m))
}

// Delete removes a movie
func (c *Catalog) Delete(id string) error {
	c.ops.deletes.Add(1)
	err := c.Store.Delete(id)
	c.countMiss(err)
	return err
}

// Seed creates every movie in movies and returns how many were stored
func (c *Catalog) Seed(movies []movie.Movie) int {
	for _, m := range movies {
		c.Create(m)
	}
	return len(movies)
}

// Info returns the current movie count and operation counters
func (c *Catalog) Info() Info {
	return Info{
		Movies: c.Store.Stats().Movies,
		Operations: OperationStats{
			Lists:   c.ops.lists.Load(),
			Gets:    c.ops.gets.Load(),
			Creates: c.ops.creates.Load(),
			Updates: c.ops.updates.Load(),
			Deletes: c.ops.deletes.Load(),
			Misses:  c.ops.misses.Load(),
		},
	}
}

func (c *Catalog) miss(m movie.Movie, err error) (movie.Movie, error) {
	c.countMiss(err)
	return m, err
}

func (c *Catalog) countMiss(err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.ops.misses.Add(1)
	}
}
