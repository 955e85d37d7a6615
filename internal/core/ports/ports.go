package ports

import (
	"context"
	"time"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
)

// PacketSource produces telemetry records until its context is canceled.
// Run blocks until then. The Records channel stays open across activations so
// the source can be restarted; forwarders exit on context cancellation, not
// channel close.
type PacketSource interface {
	Run(ctx context.Context) error
	Records() <-chan domain.TelemetryRecord
	// Name identifies the source in logs and status payloads ("simulation", "live").
	Name() string
}

// Aggregator is the single mutator of dashboard state. Apply is invoked
// serially by the stream pipeline; Snapshot may be called concurrently.
type Aggregator interface {
	Apply(record domain.TelemetryRecord)
	Reset()
	Snapshot() domain.Snapshot
}

// History retains epoch-stamped records for windowed reports.
type History interface {
	Append(record domain.TelemetryRecord)
	Within(window time.Duration) []domain.TelemetryRecord
	Reset()
}

// RecordSink consumes every record that passes through the stream pipeline
// (SSE fanout, live dashboards). Publish must not block.
type RecordSink interface {
	Publish(record domain.TelemetryRecord)
}

// Notifier receives transient status notifications for display surfaces.
type Notifier interface {
	Notify(event domain.StatusEvent)
}

// Resetter is implemented by components that participate in the atomic
// dashboard reset alongside the aggregation store.
type Resetter interface {
	Reset()
}
