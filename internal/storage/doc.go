// Package storage holds the authoritative set of movies served by reel and
// defines the Store contract every backend must honour.
//
// # Overview
//
// The package provides a single interface, Store, and one implementation,
// MemoryStore. The store is volatile: its contents live for the lifetime of
// the process and are gone after a restart.
//
//	┌─────────────────────────────────────┐
//	│        HTTP handlers (api)          │
//	└─────────────────────────────────────┘
//	                 │
//	                 ▼
//	┌─────────────────────────────────────┐
//	│     Catalog (operation counters)    │
//	└─────────────────────────────────────┘
//	                 │
//	                 ▼
//	┌─────────────────────────────────────┐
//	│   Store interface / MemoryStore     │
//	└─────────────────────────────────────┘
//
// # Operations
//
//   - List() - Snapshot of all movies, unordered, never nil
//   - Get(id) - One movie, or ErrNotFound
//   - Create(m) - Upsert under m.ID; an existing movie is replaced
//   - Update(id, m) - Replace an existing movie; the stored id is forced to id
//   - Delete(id) - Remove a movie, or ErrNotFound
//
// Create never fails. Creating the same payload twice leaves the store in
// the same state as creating it once.
//
// # Concurrency and Thread Safety
//
// MemoryStore guards one map with a sync.RWMutex:
//   - List, Get and Stats take the shared lock and may run together
//   - Create, Update and Delete take the exclusive lock
//   - Every operation is exactly one critical section
//
// Movies cross the package boundary by value only. Readers receive copies,
// so callers may encode a result after the lock is released without racing
// a later writer. Two concurrent writes to the same id leave exactly one of
// the two payloads in place, never a mix of their fields.
//
// A panic inside a critical section still releases the lock through defer.
// The critical sections only assign or delete whole map entries, so there
// is no half-written movie for a later reader to observe.
//
// # Error Handling
//
// ErrNotFound: No movie exists for the id
//   - Returned by Get, Update and Delete
//   - Update and Delete perform no mutation when it is returned
//
// # Usage Examples
//
//	store := storage.NewMemoryStore()
//	store.Create(movie.Movie{ID: "1", Name: "The Matrix", Year: 1999, WasGood: true})
//
//	m, err := store.Get("1")
//	if errors.Is(err, storage.ErrNotFound) {
//	    log.Println("movie not found")
//	}
package storage
