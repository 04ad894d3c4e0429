package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"busmonitor.luzern.ch/internal/models"
)

var (
	// FetchCyclesTotal counts fetch cycles by outcome (success, failure, skipped).
	FetchCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "busmonitor_fetch_cycles_total",
			Help: "Number of departure fetch cycles by result",
		},
		[]string{"result"},
	)

	// FetchDurationSeconds observes how long a full fetch cycle takes.
	FetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "busmonitor_fetch_duration_seconds",
		Help:    "Duration of departure fetch cycles in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

var (
	SnapshotDepartures = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "busmonitor_snapshot_departures",
		Help: "Number of departures in the current snapshot",
	})

	SnapshotStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "busmonitor_snapshot_status",
		Help: "Current snapshot status (1 for the active status, 0 otherwise)",
	}, []string{"status"})

	LastSuccessTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "busmonitor_last_successful_fetch_timestamp_seconds",
		Help: "Unix timestamp of the last successful fetch cycle",
	})
)

// OutgoingLatency observes the latency of outbound upstream HTTP requests,
// labeled by URL (scheme + host + path), method, and response status.
var OutgoingLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "busmonitor_outgoing_request_duration_seconds",
		Help:    "Duration of outgoing HTTP requests to upstream providers",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"url", "method", "status"},
)

// SetSnapshotStatus marks the given status as active on the SnapshotStatus
// gauge and clears the other two.
func SetSnapshotStatus(status models.Status) {
	for _, s := range []models.Status{models.StatusOK, models.StatusStale, models.StatusError} {
		value := 0.0
		if s == status {
			value = 1.0
		}
		SnapshotStatus.WithLabelValues(string(s)).Set(value)
	}
}
