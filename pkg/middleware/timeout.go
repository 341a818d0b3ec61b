package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Un3xpecteed/Search-Engine/pkg/logger"
)

// Timeout returns middleware that bounds each request's context and answers
// 504 with the service's JSON error shape when the deadline passes first.
// Search and upload handlers observe the cancellation through their
// context; if one keeps running anyway, its writes after the deadline are
// discarded rather than raced against the timeout response.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{w: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				logger.FromContext(ctx).Warn("request deadline exceeded",
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout,
				)
				tw.abort()
			}
		})
	}
}

// timeoutWriter serialises access to the underlying ResponseWriter. Once
// abort fires, handler writes are swallowed so nothing touches the
// connection after the 504 has gone out.
type timeoutWriter struct {
	mu       sync.Mutex
	w        http.ResponseWriter
	written  bool
	timedOut bool
}

func (tw *timeoutWriter) Header() http.Header {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return make(http.Header)
	}
	return tw.w.Header()
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return
	}
	tw.written = true
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return len(b), nil
	}
	tw.written = true
	return tw.w.Write(b)
}

// abort marks the request timed out and, unless the handler already
// started a response, writes the 504 body.
func (tw *timeoutWriter) abort() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.timedOut = true
	if tw.written {
		return
	}
	tw.w.Header().Set("Content-Type", "application/json")
	tw.w.WriteHeader(http.StatusGatewayTimeout)
	tw.w.Write([]byte(`{"error":"request timed out"}`))
}
