package api

import (
	"net/http"
	"runtime/debug"
	"time"
)

// statusRecorder captures the status code written by a handler and
// whether anything has been sent to the client yet.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}

// recorder returns w as a statusRecorder, wrapping it if needed.
func recorder(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// logRequests writes one line per request once the handler returns.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := recorder(w)

		next.ServeHTTP(rec, r)

		h.logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// recoverPanics turns a handler panic into a 500 response so one bad
// request cannot take the process down. Store locks are released by their
// deferred unlocks before the panic reaches this point. If the handler
// already started its response, the panic is logged and the partial
// response is left as is.
func (h *Handler) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorder(w)
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				h.logger.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, v, debug.Stack())
				if !rec.wroteHeader {
					h.writeJSON(rec, http.StatusInternalServerError, msgInternal)
				}
			}
		}()
		next.ServeHTTP(rec, r)
	})
}
