package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worktime_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worktime_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	snapshotsSyncedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worktime_snapshots_synced_total",
			Help: "Snapshot sync attempts by outcome",
		},
		[]string{"outcome"},
	)

	snapshotBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "worktime_snapshot_bytes",
			Help:    "Size of accepted canonical snapshots",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
	)

	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worktime_snapshot_cache_lookups_total",
			Help: "Snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	usersByMode = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worktime_users_by_mode",
			Help: "Number of stored users by current activity mode",
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(snapshotsSyncedTotal)
	prometheus.MustRegister(snapshotBytes)
	prometheus.MustRegister(cacheLookupsTotal)
	prometheus.MustRegister(usersByMode)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordHTTPRequest(method, path string, status int, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordSync counts one sync attempt; outcome is "ok", "rejected" or "failed".
func RecordSync(outcome string, size int) {
	snapshotsSyncedTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		snapshotBytes.Observe(float64(size))
	}
}

func RecordCacheLookup(hit bool) {
	if hit {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	cacheLookupsTotal.WithLabelValues("miss").Inc()
}

// SetUsersByMode replaces the gauge with a fresh count per mode.
func SetUsersByMode(counts map[string]int) {
	usersByMode.Reset()
	for mode, n := range counts {
		usersByMode.WithLabelValues(mode).Set(float64(n))
	}
}
