// Package observability holds the Prometheus collectors of the board.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for Activities API calls.
const (
	OutcomeOK        = "ok"
	OutcomeHTTPError = "http_error"
	OutcomeTransport = "transport_error"
	OutcomeDecode    = "decode_error"
)

var (
	apiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_board",
		Subsystem: "activities_api",
		Name:      "requests_total",
		Help:      "Activities API calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	apiLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activity_board",
		Subsystem: "activities_api",
		Name:      "request_duration_seconds",
		Help:      "Latency of Activities API calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_board",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Board HTTP requests by method and status code.",
	}, []string{"method", "code"})
	httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activity_board",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of board HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
	boardEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_board",
		Subsystem: "board",
		Name:      "events_total",
		Help:      "Board events such as sign-ups, removals and stale fetches.",
	}, []string{"event"})
	queryLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activity_board",
		Subsystem: "storage",
		Name:      "query_duration_seconds",
		Help:      "Latency of SQL operations in the reference Activities API.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"op"})
	activeBoards = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activity_board",
		Subsystem: "board",
		Name:      "active",
		Help:      "Visitor boards currently held in memory.",
	})
)

func init() {
	prometheus.MustRegister(apiRequests, apiLatency, httpRequests, httpLatency, queryLatency, boardEvents, activeBoards)
}

// ObserveAPICall records one Activities API call.
func ObserveAPICall(operation, outcome string, d time.Duration) {
	apiRequests.WithLabelValues(operation, outcome).Inc()
	apiLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveHTTPRequest records one board HTTP request.
func ObserveHTTPRequest(method string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(method).Observe(d.Seconds())
}

// RecordBoardEvent counts a board event.
func RecordBoardEvent(event string) {
	boardEvents.WithLabelValues(event).Inc()
}

// SetActiveBoards updates the visitor board gauge.
func SetActiveBoards(n int) {
	activeBoards.Set(float64(n))
}

// ObserveQuery records one SQL operation.
func ObserveQuery(op string, d time.Duration) {
	queryLatency.WithLabelValues(op).Observe(d.Seconds())
}
