package simulation

import (
	"context"
	"log"
	"time"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/telemetry"
)

// Source drives a Generator on a jittered timer and exposes the produced
// records as a channel. It implements ports.PacketSource.
type Source struct {
	gen *Generator
	out chan domain.TelemetryRecord
}

// NewSource creates a simulation source backed by the given generator.
func NewSource(gen *Generator) *Source {
	if gen == nil {
		gen = NewGenerator()
	}
	return &Source{
		gen: gen,
		out: make(chan domain.TelemetryRecord, 64),
	}
}

// Name identifies this source in logs and status events.
func (s *Source) Name() string {
	return "simulation"
}

// Records returns the channel the source emits on. The channel stays open
// across activations so consumers can keep a single receive loop.
func (s *Source) Records() <-chan domain.TelemetryRecord {
	return s.out
}

// Run generates one record per tick until the context is cancelled. The tick
// period is drawn once per activation, not per tick. Stopping is a normal
// transition, so Run returns nil on cancellation.
func (s *Source) Run(ctx context.Context) error {
	period := s.gen.TickPeriod()
	log.Printf("[SIM] generator active, period=%s", period)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[SIM] generator stopped")
			return nil
		case <-ticker.C:
			select {
			case s.out <- s.gen.Generate():
			default:
				telemetry.RecordsDropped.WithLabelValues("backpressure").Inc()
			}
		}
	}
}
