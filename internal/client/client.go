// Package client is a Go client for the reel movie API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dreamware/reel/internal/catalog"
	"github.com/dreamware/reel/internal/movie"
)

// ErrNotFound is returned when the server answers 404 for a movie.
var ErrNotFound = errors.New("movie not found")

// StatusError reports a response status the client did not expect.
type StatusError struct {
	Method  string
	URL     string
	Code    int
	Message string // decoded JSON string body, or raw body text
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %s %s: %d", e.Method, e.URL, e.Code)
	}
	return fmt.Sprintf("http %s %s: %d: %s", e.Method, e.URL, e.Code, e.Message)
}

// Client talks to one reel server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL. A nil httpClient gets a
// default client with a 5 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// List returns every movie on the server.
func (c *Client) List(ctx context.Context) ([]movie.Movie, error) {
	var movies []movie.Movie
	if err := c.do(ctx, http.MethodGet, "/movie", nil, http.StatusOK, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// Get fetches one movie.
func (c *Client) Get(ctx context.Context, id string) (movie.Movie, error) {
	var m movie.Movie
	err := c.do(ctx, http.MethodGet, moviePath(id), nil, http.StatusOK, &m)
	return m, err
}

// Create stores m, replacing any movie with the same id, and returns the
// stored value.
func (c *Client) Create(ctx context.Context, m movie.Movie) (movie.Movie, error) {
	var out movie.Movie
	err := c.do(ctx, http.MethodPost, "/movie", m, http.StatusCreated, &out)
	return out, err
}

// Update replaces the movie stored under id and returns the stored value.
func (c *Client) Update(ctx context.Context, id string, m movie.Movie) (movie.Movie, error) {
	var out movie.Movie
	err := c.do(ctx, http.MethodPut, moviePath(id), m, http.StatusOK, &out)
	return out, err
}

// Delete removes the movie stored under id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, moviePath(id), nil, http.StatusNoContent, nil)
}

// Health returns nil if the server answers its health probe.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, http.StatusOK, nil)
}

// Stats returns the server's movie count and operation counters.
func (c *Client) Stats(ctx context.Context) (catalog.Info, error) {
	var info catalog.Info
	err := c.do(ctx, http.MethodGet, "/stats", nil, http.StatusOK, &info)
	return info, err
}

func moviePath(id string) string {
	return "/movie/" + url.PathEscape(id)
}

// do sends one request. body, when non-nil, is sent as JSON. out, when
// non-nil, receives the decoded response body.
func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	target := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/movie/") {
		return ErrNotFound
	}
	if resp.StatusCode != want {
		return &StatusError{
			Method:  method,
			URL:     target,
			Code:    resp.StatusCode,
			Message: readMessage(resp.Body),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, target, err)
	}
	return nil
}

// readMessage extracts an error message from a response body. The server
// sends JSON strings; anything else is returned as trimmed text.
func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var msg string
	if json.Unmarshal(data, &msg) == nil {
		return msg
	}
	return strings.TrimSpace(string(data))
}
