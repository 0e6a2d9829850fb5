package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	decodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bits",
			Subsystem: "decode",
			Name:      "total",
			Help:      "Decode attempts by source and result.",
		},
		[]string{"source", "result"},
	)
	decodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bits",
			Subsystem: "decode",
			Name:      "duration_seconds",
			Help:      "Decode duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"source"},
	)
	decodeInputBits = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bits",
			Subsystem: "decode",
			Name:      "input_bits",
			Help:      "Input size in bits.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		},
		[]string{"source"},
	)
	packetsDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bits",
			Subsystem: "decode",
			Name:      "packets_total",
			Help:      "Decoded packets by kind.",
		},
		[]string{"kind"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bits",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bits",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(decodeTotal, decodeDuration, decodeInputBits, packetsDecoded, httpRequests, httpDuration)
	})
}

// RecordDecode counts one decode attempt. result is "ok" or an error kind.
func RecordDecode(source, result string, inputBits int, duration time.Duration) {
	RegisterMetrics()
	decodeTotal.WithLabelValues(source, result).Inc()
	decodeDuration.WithLabelValues(source).Observe(duration.Seconds())
	decodeInputBits.WithLabelValues(source).Observe(float64(inputBits))
}

func RecordPackets(kind string, n int) {
	RegisterMetrics()
	packetsDecoded.WithLabelValues(kind).Add(float64(n))
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
