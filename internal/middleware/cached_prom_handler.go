package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// CachedPromHandler serves a precomputed Prometheus exposition instead of
// gathering metrics on every scrape. The cache is refreshed on a fixed
// interval by a background goroutine; ttl should be at most the scrape
// interval.
type CachedPromHandler struct {
	mu    sync.RWMutex
	cache []byte
	ttl   time.Duration
	h     http.Handler
}

// NewCachedPromHandler creates the handler and starts its refresh loop. The
// loop stops when ctx is cancelled.
func NewCachedPromHandler(ctx context.Context, gatherer prometheus.Gatherer, ttl time.Duration) *CachedPromHandler {
	c := &CachedPromHandler{
		ttl: ttl,
		h:   promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}

	go c.refreshLoop(ctx)
	return c
}

func (c *CachedPromHandler) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var buf bytes.Buffer
			rec := &responseRecorder{buf: &buf}
			c.h.ServeHTTP(rec, nil)

			c.mu.Lock()
			c.cache = buf.Bytes()
			c.mu.Unlock()
		}
	}
}

// ServeHTTP serves the cached exposition. Right after startup, before the
// first refresh, it falls back to the live promhttp handler.
func (c *CachedPromHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.cache) == 0 {
		c.h.ServeHTTP(w, r)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	_, _ = w.Write(c.cache)
}

// responseRecorder captures promhttp output into a buffer. Only the methods
// promhttp actually calls are implemented; the exposition is always 200 when
// gathering succeeds, so the status code is ignored.
type responseRecorder struct {
	buf *bytes.Buffer
}

func (rr *responseRecorder) Write(b []byte) (int, error) { return rr.buf.Write(b) }
func (rr *responseRecorder) Header() http.Header         { return http.Header{} }
func (rr *responseRecorder) WriteHeader(statusCode int)  {}
