// shared/api/middleware.go
package api

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// requestIDHeader carries the per-request id assigned (or propagated) by
// RequestIDMiddleware.
const requestIDHeader = "X-Request-Id"

// RequestIDMiddleware tags every request with an id so log lines from the
// detached action goroutines can be correlated with their inbound webhook.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs method, path, status and duration of each request.
func LoggingMiddleware(logger *log.Logger) mux.MiddlewareFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{w: w, statusCode: http.StatusOK}
			next.ServeHTTP(lrw, r)

			logger.Printf("INFO: %s %s [%s] - Status: %d, Duration: %v",
				r.Method, r.URL.Path, r.Header.Get(requestIDHeader), lrw.statusCode, time.Since(start))
		})
	}
}

// loggingResponseWriter wraps a ResponseWriter to capture the status code.
type loggingResponseWriter struct {
	w          http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) Header() http.Header {
	return lrw.w.Header()
}

func (lrw *loggingResponseWriter) Write(buf []byte) (int, error) {
	return lrw.w.Write(buf)
}

func (lrw *loggingResponseWriter) WriteHeader(statusCode int) {
	lrw.statusCode = statusCode
	lrw.w.WriteHeader(statusCode)
}
