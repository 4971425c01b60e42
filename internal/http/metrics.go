package http

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cfstream_client",
			Name:      "requests_total",
			Help:      "HTTP requests sent to the Cloudflare API, by method and status code (0 when no response).",
		},
		[]string{"method", "code"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cfstream_client",
			Name:      "request_duration_seconds",
			Help:      "Time spent waiting for the Cloudflare API.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func observeRequest(method string, statusCode int, duration time.Duration) {
	requestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}
