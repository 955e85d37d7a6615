package domain

import "time"

// TrafficSeries holds the three parallel rolling chart sequences. The store
// appends and truncates all three together; their lengths are always equal.
type TrafficSeries struct {
	Labels      []string  `json:"labels"`
	PacketRates []float64 `json:"packet_rates"`
	ByteRates   []float64 `json:"byte_rates"`
}

// Len returns the current sample count.
func (s TrafficSeries) Len() int {
	return len(s.Labels)
}

// Snapshot is a deep-copied, read-only view of the aggregation state. Handlers
// and projections work exclusively on snapshots, never on live store internals.
type Snapshot struct {
	Recent          []TelemetryRecord          `json:"recent"`
	Series          TrafficSeries              `json:"series"`
	ProtocolCounts  map[Protocol]int           `json:"protocol_counts"`
	Devices         map[string]DeviceAggregate `json:"devices"`
	Timeline        []TimelineEntry            `json:"timeline"`
	NormalCount     int                        `json:"normal_count"`
	AttackCount     int                        `json:"attack_count"`
	QuarantineCount int                        `json:"quarantine_count"`
	StartedAt       time.Time                  `json:"started_at"` // creation or last reset
	TakenAt         time.Time                  `json:"taken_at"`
}

// TotalPackets is the number of records folded in since the last reset.
func (s Snapshot) TotalPackets() int {
	return s.NormalCount + s.AttackCount
}
