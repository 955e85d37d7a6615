package domain

import (
	"fmt"
	"time"
)

// ReportPeriod selects the trailing window a traffic report covers.
type ReportPeriod string

const (
	PeriodDaily   ReportPeriod = "daily"
	PeriodWeekly  ReportPeriod = "weekly"
	PeriodMonthly ReportPeriod = "monthly"
)

// ErrUnknownPeriod is returned for periods outside daily/weekly/monthly.
var ErrUnknownPeriod = fmt.Errorf("unknown report period")

// ParsePeriod validates a wire-level period string.
func ParsePeriod(s string) (ReportPeriod, error) {
	switch ReportPeriod(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return ReportPeriod(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// Window returns the trailing duration the period covers.
func (p ReportPeriod) Window() time.Duration {
	switch p {
	case PeriodWeekly:
		return 7 * 24 * time.Hour
	case PeriodMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// AttackerCount ranks one device by the attacks attributed to it.
type AttackerCount struct {
	DeviceID string `json:"device_id"`
	Attacks  int    `json:"attacks"`
}

// WindowReport summarizes streamed traffic over a trailing time window.
type WindowReport struct {
	GeneratedAt          string           `json:"generated_at"`
	WindowSeconds        int              `json:"window_seconds"`
	TotalPackets         int              `json:"total_packets"`
	Normal               int              `json:"normal"`
	Attacks              int              `json:"attacks"`
	AttackRatio          float64          `json:"attack_ratio"` // percent, 2 decimals
	QuarantinedDevices   []string         `json:"quarantined_devices"`
	ProtocolDistribution map[Protocol]int `json:"protocol_distribution"`
	TopAttackDevices     []AttackerCount  `json:"top_attack_devices"`
}

// SessionSummary is the compact summary of the current dashboard session,
// logged whenever a report is generated and served at /api/summary.
type SessionSummary struct {
	Date             string            `json:"date"`
	TotalPackets     int               `json:"total_packets"`
	NormalPackets    int               `json:"normal_packets"`
	AttackPackets    int               `json:"attack_packets"`
	DevicesMonitored int               `json:"devices_monitored"`
	Protocols        map[Protocol]int  `json:"protocols"`
	TopThreats       []DeviceAggregate `json:"top_threats"`
}

// ThreatIntel is the mocked threat-intelligence summary: randomized and
// derived display data, not a real analysis.
type ThreatIntel struct {
	GeneratedAt        string           `json:"generated_at"`
	WindowSeconds      int              `json:"window_seconds"`
	RiskScore          int              `json:"risk_score"`
	TotalPackets       int              `json:"total_packets"`
	TotalAttacks       int              `json:"total_attacks"`
	CategoryBreakdown  map[string]int   `json:"category_breakdown"`
	HighRiskDevices    []string         `json:"high_risk_devices"`
	QuarantinedDevices []string         `json:"quarantined_devices"`
	AttackPatterns     map[string]int   `json:"attack_patterns"`
	ProtocolAnomalies  map[Protocol]int `json:"high_rate_protocol_anomalies"`
}
