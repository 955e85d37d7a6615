package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Protocol identifies the transport observed for one telemetry record.
// The set is closed: anything outside it folds into ProtocolUnknown.
type Protocol string

const (
	ProtocolMQTT    Protocol = "mqtt"
	ProtocolCoAP    Protocol = "coap"
	ProtocolHTTP    Protocol = "http"
	ProtocolUDP     Protocol = "udp"
	ProtocolTCP     Protocol = "tcp"
	ProtocolUnknown Protocol = "unknown"
)

var knownProtocols = map[string]Protocol{
	"mqtt": ProtocolMQTT,
	"coap": ProtocolCoAP,
	"http": ProtocolHTTP,
	"udp":  ProtocolUDP,
	"tcp":  ProtocolTCP,
}

// Protocols lists the enumerated variants in display order, fallback last.
func Protocols() []Protocol {
	return []Protocol{ProtocolMQTT, ProtocolCoAP, ProtocolHTTP, ProtocolUDP, ProtocolTCP, ProtocolUnknown}
}

// ParseProtocol maps free-form wire input onto the enumerated set.
// Matching is case-insensitive; empty or unrecognized input becomes ProtocolUnknown.
func ParseProtocol(s string) Protocol {
	if p, ok := knownProtocols[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p
	}
	return ProtocolUnknown
}

// UnmarshalJSON folds arbitrary wire strings into the enum so every ingress
// path (SSE, HTTP intake) gets the same fallback behavior.
func (p *Protocol) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*p = ParseProtocol(s)
	return nil
}

// Record labels.
const (
	LabelNormal = "Normal"
	LabelAttack = "Attack"
)

// Attack annotations carried through from the simulator. Display-only; they
// never change how a record is aggregated.
const (
	AttackNone         = "Normal"
	AttackDoS          = "DoS"
	AttackExfiltration = "Exfiltration"
	AttackSpoofing     = "Spoofing"
	AttackScanning     = "Scanning"
)

// TimestampLayout renders wall-clock time with millisecond precision so chart
// labels stay unique under sub-second tick rates.
const TimestampLayout = "15:04:05.000"

// TelemetryRecord is one simulated IoT traffic observation. Records are
// immutable once created; aggregation copies values out, never mutates.
type TelemetryRecord struct {
	Timestamp   string   `json:"timestamp"`
	Epoch       float64  `json:"epoch"` // unix seconds, used for window filtering
	DeviceID    string   `json:"device_id"`
	DeviceType  string   `json:"device_type"`
	Protocol    Protocol `json:"protocol"`
	PacketRate  float64  `json:"packet_rate"`
	ByteRate    float64  `json:"byte_rate"`
	Label       string   `json:"label"`
	Anomaly     bool     `json:"anomaly"`
	ThreatScore float64  `json:"threat_score"`
	Quarantined bool     `json:"quarantined"`
	AttackType  string   `json:"sim_attack_type"`
}

// IsAttack reports whether the record was labeled an attack.
func (r TelemetryRecord) IsAttack() bool {
	return r.Label == LabelAttack
}

// Time converts the record's epoch back to wall-clock time.
func (r TelemetryRecord) Time() time.Time {
	sec := int64(r.Epoch)
	nsec := int64((r.Epoch - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// EpochOf is the inverse of Time; generators and scorers stamp records with it.
func EpochOf(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// IngestPacket is the wire payload external simulators POST to /api/packet.
// Fields mirror the device-side packet shape; the detection pipeline turns it
// into a TelemetryRecord.
type IngestPacket struct {
	DeviceID           string  `json:"device_id"`
	DeviceType         string  `json:"device_type"`
	Protocol           string  `json:"protocol"`
	PacketRate         float64 `json:"packet_rate"`
	ByteRate           float64 `json:"byte_rate"`
	PacketSize         float64 `json:"packet_size"`
	ConnectionDuration float64 `json:"connection_duration"`
	SourcePort         int     `json:"source_port"`
	DestinationPort    int     `json:"destination_port"`
	AttackType         string  `json:"attack_type"`
}
