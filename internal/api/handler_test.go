package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dreamware/reel/internal/catalog"
	"github.com/dreamware/reel/internal/movie"
	"github.com/dreamware/reel/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHandler returns routes backed by a fresh catalog and a logger
// writing into buf.
func newTestHandler(t *testing.T) (http.Handler, *catalog.Catalog, *bytes.Buffer) {
	t.Helper()
	c := catalog.NewInMemory()
	var buf bytes.Buffer
	return New(c, log.New(&buf, "", 0)).Routes(), c, &buf
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMovie(t *testing.T, rec *httptest.ResponseRecorder) movie.Movie {
	t.Helper()
	var m movie.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m
}

func decodeString(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s), "body: %s", rec.Body.String())
	return s
}

const matrixJSON = `{"id":"1","name":"The Matrix","year":1999,"was_good":true}`

func TestListMovies(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		h, _, _ := newTestHandler(t)

		rec := do(t, h, http.MethodGet, "/movie", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("with data", func(t *testing.T) {
		h, _, _ := newTestHandler(t)
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/movie", `{"id":"1","name":"Test Movie","year":2024,"was_good":true}`).Code)
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/movie", `{"id":"2","name":"Other","year":2000,"was_good":false}`).Code)

		rec := do(t, h, http.MethodGet, "/movie", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var movies []movie.Movie
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movies))
		assert.ElementsMatch(t, []movie.Movie{
			{ID: "1", Name: "Test Movie", Year: 2024, WasGood: true},
			{ID: "2", Name: "Other", Year: 2000},
		}, movies)
	})
}

func TestCreateMovie(t *testing.T) {
	t.Run("returns created with stored body", func(t *testing.T) {
		h, _, _ := newTestHandler(t)

		rec := do(t, h, http.MethodPost, "/movie", matrixJSON)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, matrixJSON, rec.Body.String())
	})

	t.Run("create then get round trip", func(t *testing.T) {
		h, _, _ := newTestHandler(t)
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/movie", matrixJSON).Code)

		rec := do(t, h, http.MethodGet, "/movie/1", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, matrixJSON, rec.Body.String())
	})

	t.Run("duplicate id overwrites", func(t *testing.T) {
		h, c, _ := newTestHandler(t)
		do(t, h, http.MethodPost, "/movie", matrixJSON)

		rec := do(t, h, http.MethodPost, "/movie", `{"id":"1","name":"Remake","year":2030,"was_good":false}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Remake", decodeMovie(t, rec).Name)
		assert.Len(t, c.List(), 1)
	})

	t.Run("identical create is idempotent", func(t *testing.T) {
		h, c, _ := newTestHandler(t)
		do(t, h, http.MethodPost, "/movie", matrixJSON)
		before := c.List()

		do(t, h, http.MethodPost, "/movie", matrixJSON)

		assert.Equal(t, before, c.List())
	})
}

func TestGetMovie(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/movie/999", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "movie not found", decodeString(t, rec))
}

func TestUpdateMovie(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h, _, _ := newTestHandler(t)
		do(t, h, http.MethodPost, "/movie", `{"id":"1","name":"Old Name","year":2020,"was_good":false}`)

		rec := do(t, h, http.MethodPut, "/movie/1", `{"id":"1","name":"New Name","year":2024,"was_good":true}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, movie.Movie{ID: "1", Name: "New Name", Year: 2024, WasGood: true}, decodeMovie(t, rec))

		get := do(t, h, http.MethodGet, "/movie/1", "")
		assert.Equal(t, "New Name", decodeMovie(t, get).Name)
	})

	t.Run("path id wins over body id", func(t *testing.T) {
		h, c, _ := newTestHandler(t)
		do(t, h, http.MethodPost, "/movie", matrixJSON)

		rec := do(t, h, http.MethodPut, "/movie/1", `{"id":"42","name":"Renamed","year":1999,"was_good":true}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1", decodeMovie(t, rec).ID)
		_, err := c.Get("42")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		h, c, _ := newTestHandler(t)

		rec := do(t, h, http.MethodPut, "/movie/999", `{"id":"999","name":"Test","year":2024,"was_good":true}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "movie not found", decodeString(t, rec))
		assert.Empty(t, c.List())
	})
}

func TestDeleteMovie(t *testing.T) {
	h, _, _ := newTestHandler(t)
	do(t, h, http.MethodPost, "/movie", `{"id":"1","name":"Test","year":2024,"was_good":true}`)

	rec := do(t, h, http.MethodDelete, "/movie/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/movie/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/movie/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedBodies(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		path        string
		body        string
		contentType string
		wantStatus  int
	}{
		{"create missing field", http.MethodPost, "/movie", `{"id":"1","name":"a","year":1}`, "application/json", http.StatusBadRequest},
		{"create wrong type", http.MethodPost, "/movie", `{"id":"1","name":"a","year":"1999","was_good":true}`, "application/json", http.StatusBadRequest},
		{"create year overflow", http.MethodPost, "/movie", `{"id":"1","name":"a","year":70000,"was_good":true}`, "application/json", http.StatusBadRequest},
		{"create unknown field", http.MethodPost, "/movie", `{"id":"1","name":"a","year":1,"was_good":true,"x":1}`, "application/json", http.StatusBadRequest},
		{"create upper-case keys", http.MethodPost, "/movie", `{"ID":"1","NAME":"a","YEAR":1,"WAS_GOOD":true}`, "application/json", http.StatusBadRequest},
		{"update duplicate id key", http.MethodPut, "/movie/1", `{"id":"1","id":"2","name":"a","year":1,"was_good":true}`, "application/json", http.StatusBadRequest},
		{"create not json", http.MethodPost, "/movie", `hello`, "application/json", http.StatusBadRequest},
		{"create empty body", http.MethodPost, "/movie", ``, "application/json", http.StatusBadRequest},
		{"create missing content type", http.MethodPost, "/movie", matrixJSON, "", http.StatusUnsupportedMediaType},
		{"create text content type", http.MethodPost, "/movie", matrixJSON, "text/plain", http.StatusUnsupportedMediaType},
		{"update missing field", http.MethodPut, "/movie/1", `{"id":"1"}`, "application/json", http.StatusBadRequest},
		{"update missing content type", http.MethodPut, "/movie/1", matrixJSON, "", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, c, _ := newTestHandler(t)
			// Seed a movie so update failures cannot be confused with NotFound
			c.Create(movie.Movie{ID: "1", Name: "Seed", Year: 1, WasGood: true})
			before := c.Info().Operations

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, decodeString(t, rec))

			// The catalog is never consulted for a rejected body
			after := c.Info().Operations
			assert.Equal(t, before, after)
			got, err := c.Get("1")
			require.NoError(t, err)
			assert.Equal(t, "Seed", got.Name)
		})
	}
}

func TestContentTypeVariants(t *testing.T) {
	for _, ct := range []string{"application/json", "application/json; charset=utf-8", "application/merge+json"} {
		t.Run(ct, func(t *testing.T) {
			h, _, _ := newTestHandler(t)
			req := httptest.NewRequest(http.MethodPost, "/movie", strings.NewReader(matrixJSON))
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusCreated, rec.Code)
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	h, c, _ := newTestHandler(t)
	body := `{"id":"1","name":"` + strings.Repeat("a", maxBodyBytes) + `","year":1,"was_good":true}`

	rec := do(t, h, http.MethodPost, "/movie", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, msgBodyTooLarge, decodeString(t, rec))
	assert.Empty(t, c.List())
}

func TestRouting(t *testing.T) {
	h, _, _ := newTestHandler(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodPatch, "/movie/1", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/movie", http.StatusMethodNotAllowed},
		{http.MethodPost, "/movie/1", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestStats(t *testing.T) {
	h, _, _ := newTestHandler(t)
	do(t, h, http.MethodPost, "/movie", matrixJSON)
	do(t, h, http.MethodGet, "/movie/1", "")
	do(t, h, http.MethodGet, "/movie/2", "")
	do(t, h, http.MethodGet, "/movie", "")

	rec := do(t, h, http.MethodGet, "/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"movies": 1,
		"operations": {"lists":1,"gets":2,"creates":1,"updates":0,"deletes":0,"misses":1}
	}`, rec.Body.String())
}

func TestRequestLogging(t *testing.T) {
	h, _, buf := newTestHandler(t)

	do(t, h, http.MethodGet, "/movie/999", "")

	assert.Contains(t, buf.String(), "GET /movie/999 404")
}

// panicStore blows up inside Get to exercise recovery.
type panicStore struct {
	*storage.MemoryStore
}

func (panicStore) Get(string) (movie.Movie, error) {
	panic("boom")
}

func TestPanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	store := panicStore{MemoryStore: storage.NewMemoryStore()}
	h := New(catalog.New(store), log.New(&buf, "", 0)).Routes()

	rec := do(t, h, http.MethodGet, "/movie/1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgInternal, decodeString(t, rec))
	assert.Contains(t, buf.String(), "panic serving GET /movie/1: boom")

	// The service keeps working after the panic
	rec = do(t, h, http.MethodPost, "/movie", matrixJSON)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, h, http.MethodGet, "/movie", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPanicAfterResponseStarted(t *testing.T) {
	var buf bytes.Buffer
	h := New(catalog.NewInMemory(), log.New(&buf, "", 0))
	routes := h.logRequests(h.recoverPanics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `[{"id":"1"`)
		panic("late")
	})))

	rec := do(t, routes, http.MethodGet, "/movie", "")

	// The partial response is not followed by an error body
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[{"id":"1"`, rec.Body.String())
	assert.Contains(t, buf.String(), "panic serving GET /movie: late")
	assert.Contains(t, buf.String(), "GET /movie 200")
}

func TestPanicAfterBodyWriteWithoutHeader(t *testing.T) {
	h := New(catalog.NewInMemory(), log.New(io.Discard, "", 0))
	routes := h.recoverPanics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "partial")
		panic("late")
	}))

	rec := do(t, routes, http.MethodGet, "/movie", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestConcurrentRequests(t *testing.T) {
	h, c, _ := newTestHandler(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			rec := do(t, h, http.MethodPost, "/movie", matrixJSON)
			assert.Equal(t, http.StatusCreated, rec.Code)
		}()
		go func() {
			defer wg.Done()
			rec := do(t, h, http.MethodGet, "/movie", "")
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	assert.Len(t, c.List(), 1)
}
