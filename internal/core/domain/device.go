package domain

import "time"

// DeviceAggregate is the latest-snapshot-plus-cumulative-counters view of one
// observed device. Created on the first record for its id, updated in place on
// every later record, removed only by a full reset.
//
// Invariant: AttackCount <= TotalPackets after every update.
type DeviceAggregate struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Protocol     Protocol  `json:"protocol"`
	TotalPackets int       `json:"total_packets"`
	AttackCount  int       `json:"attack_count"`
	LastStatus   string    `json:"last_status"` // label of the most recent record
	Quarantined  bool      `json:"quarantined"`
	ThreatScore  float64   `json:"threat_score"`
	LastSeen     time.Time `json:"last_seen"`
}

// TimelineEntry is a copy of an attack record retained for the threat
// timeline, tagged with a derived unique id.
type TimelineEntry struct {
	ID string `json:"id"`
	TelemetryRecord
}
