package api

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/dreamware/reel/internal/catalog"
	"github.com/dreamware/reel/internal/movie"
	"github.com/dreamware/reel/internal/storage"
)

// maxBodyBytes caps create and update request bodies.
const maxBodyBytes = 2 << 20

// Error bodies returned to clients as JSON strings.
const (
	msgNotFound     = "movie not found"
	msgContentType  = "expected request with Content-Type: application/json"
	msgBodyTooLarge = "request body too large"
	msgInternal     = "internal server error"
)

// Handler serves the movie API on top of a single Catalog instance.
// The catalog is constructed once at startup and shared by every request.
type Handler struct {
	catalog *catalog.Catalog
	logger  *log.Logger
}

// New creates a Handler. A nil logger falls back to the standard logger.
func New(c *catalog.Catalog, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{catalog: c, logger: logger}
}

// Routes returns the complete HTTP surface wrapped in request logging and
// panic recovery.
//
//	GET    /health       liveness probe
//	GET    /stats        movie count and operation counters
//	GET    /movie        list all movies
//	POST   /movie        create (upsert) a movie
//	GET    /movie/{id}   fetch one movie
//	PUT    /movie/{id}   replace one movie
//	DELETE /movie/{id}   remove one movie
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /stats", h.handleStats)

	mux.HandleFunc("GET /movie", h.handleList)
	mux.HandleFunc("POST /movie", h.handleCreate)
	mux.HandleFunc("GET /movie/{id}", h.handleGet)
	mux.HandleFunc("PUT /movie/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /movie/{id}", h.handleDelete)

	return h.logRequests(h.recoverPanics(mux))
}

// handleHealth answers the liveness probe with an empty 200.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handleStats reports the movie count and cumulative operation counters.
func (h *Handler) handleStats(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.catalog.Info())
}

// handleList returns every stored movie as a JSON array. An empty
// catalog yields [].
func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.catalog.List())
}

// handleGet returns the movie addressed by the path, or 404 with
// "movie not found".
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.catalog.Get(r.PathValue("id"))
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, m)
	case errors.Is(err, storage.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, msgNotFound)
	default:
		h.internalError(w, r, err)
	}
}

// handleCreate stores the decoded body under its own id, replacing any
// movie already stored there, and echoes the stored value.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	m, ok := h.decodeMovie(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusCreated, h.catalog.Create(m))
}

// handleUpdate replaces the movie addressed by the path. The id in the
// body is overwritten with the path id.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	m, ok := h.decodeMovie(w, r)
	if !ok {
		return
	}

	updated, err := h.catalog.Update(r.PathValue("id"), m)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, updated)
	case errors.Is(err, storage.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, msgNotFound)
	default:
		h.internalError(w, r, err)
	}
}

// handleDelete removes the movie addressed by the path. A missing movie
// gets a bare 404 with no body.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.catalog.Delete(r.PathValue("id"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, storage.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	default:
		h.internalError(w, r, err)
	}
}

// decodeMovie validates the content type and decodes the request body.
// On failure it writes the client error response and returns false; the
// catalog is never touched in that case.
func (h *Handler) decodeMovie(w http.ResponseWriter, r *http.Request) (movie.Movie, bool) {
	if !isJSON(r.Header.Get("Content-Type")) {
		h.writeJSON(w, http.StatusUnsupportedMediaType, msgContentType)
		return movie.Movie{}, false
	}

	m, err := movie.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeJSON(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return movie.Movie{}, false
		}
		h.writeJSON(w, http.StatusBadRequest, err.Error())
		return movie.Movie{}, false
	}
	return m, true
}

// isJSON reports whether a Content-Type header names application/json or
// a +json structured syntax suffix.
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if mediaType == "application/json" {
		return true
	}
	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	h.writeJSON(w, http.StatusInternalServerError, msgInternal)
}

// writeJSON encodes v as the response body. The value is already a copy
// taken from the catalog, so no lock is held while writing.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Printf("Error writing response: %v", err)
	}
}
