package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RecordsStreamed counts telemetry records that passed through the pipeline
	RecordsStreamed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intelliguard",
			Name:      "records_streamed_total",
			Help:      "Total number of telemetry records processed by the stream pipeline",
		},
		[]string{"source", "label"},
	)

	// RecordsDropped counts records discarded before aggregation
	RecordsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intelliguard",
			Name:      "records_dropped_total",
			Help:      "Total number of telemetry records dropped",
		},
		[]string{"reason"},
	)

	// ReportsGenerated counts report requests by period and format
	ReportsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intelliguard",
			Name:      "reports_generated_total",
			Help:      "Total number of traffic reports generated",
		},
		[]string{"period", "format"},
	)

	// ExportsServed counts live-table export downloads by format
	ExportsServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intelliguard",
			Name:      "exports_served_total",
			Help:      "Total number of live export downloads served",
		},
		[]string{"format"},
	)

	// StreamClients tracks currently connected SSE subscribers
	StreamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "intelliguard",
			Name:      "stream_clients",
			Help:      "Number of currently connected SSE stream clients",
		},
	)

	// WebsocketClients tracks currently connected dashboard websockets
	WebsocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "intelliguard",
			Name:      "websocket_clients",
			Help:      "Number of currently connected websocket clients",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		// Register metrics, ignoring errors if already registered
		// This prevents panics when metrics are already in the registry
		prometheus.DefaultRegisterer.Register(RecordsStreamed)
		prometheus.DefaultRegisterer.Register(RecordsDropped)
		prometheus.DefaultRegisterer.Register(ReportsGenerated)
		prometheus.DefaultRegisterer.Register(ExportsServed)
		prometheus.DefaultRegisterer.Register(StreamClients)
		prometheus.DefaultRegisterer.Register(WebsocketClients)
	})
}
