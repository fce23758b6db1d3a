package storage

import (
	"errors"
	"sync"

	"github.com/dreamware/reel/internal/movie"
)

// ErrNotFound is returned when no movie exists for the requested id
var ErrNotFound = errors.New("movie not found")

// Store defines the interface for movie storage
// All implementations must be thread-safe for concurrent access
type Store interface {
	// List returns a snapshot of every stored movie
	// Order is not guaranteed
	List() []movie.Movie

	// Get retrieves a movie by id
	// Returns ErrNotFound if the id doesn't exist
	Get(id string) (movie.Movie, error)

	// Create stores m under m.ID
	// Overwrites any existing movie with the same id
	Create(m movie.Movie) movie.Movie

	// Update replaces the movie stored under id with m, forcing the stored
	// id to equal the addressing id
	// Returns ErrNotFound without mutating anything if the id doesn't exist
	Update(id string, m movie.Movie) (movie.Movie, error)

	// Delete removes the movie stored under id
	// Returns ErrNotFound if the id doesn't exist
	Delete(id string) error

	// Stats returns storage statistics
	Stats() StoreStats
}

// StoreStats contains statistics about the store
type StoreStats struct {
	Movies int // Number of stored movies
}

// MemoryStore implements Store with an in-memory map
// Uses sync.RWMutex so readers share access and writers are exclusive
type MemoryStore struct {
	mu   sync.RWMutex           // Protects concurrent access
	data map[string]movie.Movie // Movies keyed by id
}

// NewMemoryStore creates a new, empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]movie.Movie),
	}
}

// List returns a copy of all stored movies
// The returned slice is never nil so it encodes as an empty JSON array
func (m *MemoryStore) List() []movie.Movie {
	m.mu.RLock()
	defer m.mu.RUnlock()

	movies := make([]movie.Movie, 0, len(m.data))
	for _, mv := range m.data {
		movies = append(movies, mv)
	}
	return movies
}

// Get retrieves a movie by id
// Movie holds no references, so the returned value is already a copy
func (m *MemoryStore) Get(id string) (movie.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mv, exists := m.data[id]
	if !exists {
		return movie.Movie{}, ErrNotFound
	}
	return mv, nil
}

// Create inserts or replaces the movie stored under mv.ID
func (m *MemoryStore) Create(mv movie.Movie) movie.Movie {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[mv.ID] = mv
	return mv
}

// Update replaces an existing movie wholesale
// The payload's own id is ignored in favour of the addressing id
func (m *MemoryStore) Update(id string, mv movie.Movie) (movie.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[id]; !exists {
		return movie.Movie{}, ErrNotFound
	}

	mv.ID = id
	m.data[id] = mv
	return mv, nil
}

// Delete removes a movie by id
func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[id]; !exists {
		return ErrNotFound
	}
	delete(m.data, id)
	return nil
}

// Stats returns storage statistics
func (m *MemoryStore) Stats() StoreStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return StoreStats{
		Movies: len(m.data),
	}
}
