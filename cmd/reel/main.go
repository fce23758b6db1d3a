// Package main implements the reel server, a network-accessible store for
// movie records.
//
// The server holds every movie in memory for the lifetime of the process
// and exposes create, read, update, delete and list over HTTP with JSON
// bodies.
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│                 reel                     │
//	├─────────────────────────────────────────┤
//	│  HTTP API:                              │
//	│    /movie        - List / create        │
//	│    /movie/{id}   - Get / update / delete│
//	│    /health       - Health check         │
//	│    /stats        - Operation counters   │
//	├─────────────────────────────────────────┤
//	│  Components:                            │
//	│    Catalog       - Counted store access │
//	│    MemoryStore   - RWMutex-guarded map  │
//	└─────────────────────────────────────────┘
//
// Configuration (see internal/config):
//   - REEL_LISTEN: Listen address (default: ":3000")
//   - REEL_SEED_FILE: YAML/JSON movies loaded at startup (optional)
//   - REEL_CONFIG: Config file path (optional)
//
// Example usage:
//
//	REEL_LISTEN=:3000 ./reel
//
//	curl -X POST localhost:3000/movie \
//	  -H 'Content-Type: application/json' \
//	  -d '{"id":"1","name":"The Matrix","year":1999,"was_good":true}'
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dreamware/reel/internal/api"
	"github.com/dreamware/reel/internal/catalog"
	"github.com/dreamware/reel/internal/config"
	"github.com/dreamware/reel/internal/movie"
)

// logFatal is a variable to allow mocking log.Fatal in tests.
var logFatal = log.Fatalf

func main() {
	cfg, err := config.Load()
	if err != nil {
		logFatal("config: %v", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Default(), nil); err != nil {
		logFatal("%v", err)
	}
	log.Println("reel stopped")
}

// newServer builds the catalog, loads the optional seed file and returns an
// http.Server wired to the API handler. The catalog is the only movie
// collection in the process; every request shares it.
func newServer(cfg config.Config, logger *log.Logger) (*http.Server, *catalog.Catalog, error) {
	c := catalog.NewInMemory()

	if cfg.SeedFile != "" {
		movies, err := movie.LoadFile(cfg.SeedFile)
		if err != nil {
			return nil, nil, fmt.Errorf("seed: %w", err)
		}
		logger.Printf("seeded %d movies from %s", c.Seed(movies), cfg.SeedFile)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.New(c, logger).Routes(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ErrorLog:          logger,
	}
	return srv, c, nil
}

// run serves until ctx is cancelled, then shuts down gracefully. When ready
// is non-nil it receives the bound listener address once the server is
// accepting connections.
func run(ctx context.Context, cfg config.Config, logger *log.Logger, ready chan<- string) error {
	srv, _, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	logger.Printf("reel listening on %s", ln.Addr())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Initiate graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
