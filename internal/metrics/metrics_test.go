package metrics

import (
	"testing"

	"busmonitor.luzern.ch/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// getGaugeValue reads the current value of one labeled gauge.
func getGaugeValue(t *testing.T, metric *prometheus.GaugeVec, labels map[string]string) float64 {
	t.Helper()

	c := make(chan prometheus.Metric, 1)
	metric.With(labels).Collect(c)
	m := <-c

	pb := &dto.Metric{}
	if err := m.Write(pb); err != nil {
		t.Fatalf("failed to read metric: %v", err)
	}
	if pb.Gauge == nil {
		t.Fatal("expected a gauge metric")
	}
	return pb.Gauge.GetValue()
}

func TestSetSnapshotStatus(t *testing.T) {
	tests := []struct {
		name   string
		status models.Status
	}{
		{"ok", models.StatusOK},
		{"stale", models.StatusStale},
		{"error", models.StatusError},
	}

	all := []models.Status{models.StatusOK, models.StatusStale, models.StatusError}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetSnapshotStatus(tt.status)

			for _, s := range all {
				got := getGaugeValue(t, SnapshotStatus, map[string]string{"status": string(s)})
				want := 0.0
				if s == tt.status {
					want = 1.0
				}
				if got != want {
					t.Errorf("status %s: expected %v, got %v", s, want, got)
				}
			}
		})
	}
}
