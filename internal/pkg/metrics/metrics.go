package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	handshakes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_handshakes_total",
		Help: "Total number of login handshakes against the IPTV backend by result",
	}, []string{"result"})

	sessionReuses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_session_reuses_total",
		Help: "Total number of requests served with a cached session",
	})

	guideFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_guide_fetches_total",
		Help: "Total number of per-channel guide requests by mode and result",
	}, []string{"mode", "result"})

	catalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_catalog_channels",
		Help: "Number of channels in the last fetched catalog",
	})

	artifacts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_artifacts_total",
		Help: "Total number of published artifacts by kind and state (fresh, stale, unavailable)",
	}, []string{"kind", "state"})
)

// RecordHandshake result: success | failure
func RecordHandshake(success bool) {
	handshakes.WithLabelValues(result(success)).Inc()
}

func RecordSessionReuse() {
	sessionReuses.Inc()
}

// RecordGuideFetch mode: bulk | targeted
func RecordGuideFetch(mode string, success bool) {
	guideFetches.WithLabelValues(mode, result(success)).Inc()
}

func SetCatalogSize(n int) {
	catalogSize.Set(float64(n))
}

func RecordArtifact(kind, state string) {
	artifacts.WithLabelValues(kind, state).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
