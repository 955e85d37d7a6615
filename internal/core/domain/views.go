package domain

import "time"

// Overview is the presentation-ready dashboard summary derived from a
// snapshot. All fields are recomputed on every request.
type Overview struct {
	TotalPackets     int               `json:"total_packets"`
	NormalPackets    int               `json:"normal_packets"`
	AttackPackets    int               `json:"attack_packets"`
	QuarantineCount  int               `json:"quarantine_count"`
	DevicesMonitored int               `json:"devices_monitored"`
	RiskPercent      int               `json:"risk_percent"`
	HighRiskDevices  int               `json:"high_risk_devices"`
	TopDevices       []DeviceAggregate `json:"top_devices"`
	UptimeSeconds    float64           `json:"uptime_seconds"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// ChartData reshapes the rolling series and protocol counters for the
// traffic charts.
type ChartData struct {
	Series         TrafficSeries    `json:"series"`
	ProtocolCounts map[Protocol]int `json:"protocol_counts"`
}
