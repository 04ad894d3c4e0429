package app

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"busmonitor.luzern.ch/internal/metrics"
)

// latencyTrackingRoundTripper wraps another RoundTripper to record the
// latency of each outgoing request in the OutgoingLatency histogram, labeled
// by URL, method, and response status.
type latencyTrackingRoundTripper struct {
	next http.RoundTripper
}

func (rt *latencyTrackingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)
	duration := time.Since(start).Seconds()

	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	// Scheme + host + path only; query params would explode label cardinality.
	safeURL := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path

	metrics.OutgoingLatency.WithLabelValues(
		safeURL,
		req.Method,
		status,
	).Observe(duration)

	return resp, err
}

// NewPooledClient returns an HTTP client tuned for polling the same upstream
// endpoints every scan interval: connections are kept alive between cycles,
// dials and TLS handshakes fail fast, and the overall timeout bounds a full
// request. The transport is instrumented for outgoing-latency metrics.
func NewPooledClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &http.Client{
		Transport: &latencyTrackingRoundTripper{next: transport},
		Timeout:   timeout,
	}
}
