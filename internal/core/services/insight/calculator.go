package insight

import (
	"math"
	"sort"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/core/ports"
)

// Risk thresholds for the dashboard projections
const (
	highRiskScore   = 7.0
	highRiskAttacks = 3
	topDeviceLimit  = 6
)

// Calculator derives presentation-ready views from aggregation snapshots.
// It holds no state of its own; every view is recomputed per call.
type Calculator struct {
	store ports.Aggregator
}

// NewCalculator creates a calculator reading from the given store.
func NewCalculator(store ports.Aggregator) *Calculator {
	return &Calculator{store: store}
}

// Overview returns the dashboard summary for the current snapshot.
func (c *Calculator) Overview() domain.Overview {
	return OverviewFrom(c.store.Snapshot())
}

// Charts returns the chart datasets for the current snapshot.
func (c *Calculator) Charts() domain.ChartData {
	return ChartsFrom(c.store.Snapshot())
}

// TopDevices returns the current top-risk device list.
func (c *Calculator) TopDevices() []domain.DeviceAggregate {
	return TopDevices(c.store.Snapshot().Devices)
}

// RiskPercent is the share of attack records over everything processed,
// rounded to the nearest integer. Zero when nothing has been processed.
func RiskPercent(normal, attack int) int {
	total := normal + attack
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(attack) / float64(total)))
}

// TopDevices sorts device aggregates by descending threat score, breaking
// ties by descending attack count and then by id, and keeps the first six.
func TopDevices(devices map[string]domain.DeviceAggregate) []domain.DeviceAggregate {
	ranked := make([]domain.DeviceAggregate, 0, len(devices))
	for _, dev := range devices {
		ranked = append(ranked, dev)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ThreatScore != ranked[j].ThreatScore {
			return ranked[i].ThreatScore > ranked[j].ThreatScore
		}
		if ranked[i].AttackCount != ranked[j].AttackCount {
			return ranked[i].AttackCount > ranked[j].AttackCount
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > topDeviceLimit {
		ranked = ranked[:topDeviceLimit]
	}
	return ranked
}

// IsHighRisk reports whether a device crosses either the score or the
// repeat-attacker threshold.
func IsHighRisk(dev domain.DeviceAggregate) bool {
	return dev.ThreatScore >= highRiskScore || dev.AttackCount >= highRiskAttacks
}

// HighRiskCount counts the high-risk devices in a top-risk list.
func HighRiskCount(devices []domain.DeviceAggregate) int {
	count := 0
	for _, dev := range devices {
		if IsHighRisk(dev) {
			count++
		}
	}
	return count
}

// OverviewFrom computes the dashboard summary for one snapshot.
func OverviewFrom(snap domain.Snapshot) domain.Overview {
	top := TopDevices(snap.Devices)
	return domain.Overview{
		TotalPackets:     snap.TotalPackets(),
		NormalPackets:    snap.NormalCount,
		AttackPackets:    snap.AttackCount,
		QuarantineCount:  snap.QuarantineCount,
		DevicesMonitored: len(snap.Devices),
		RiskPercent:      RiskPercent(snap.NormalCount, snap.AttackCount),
		HighRiskDevices:  HighRiskCount(top),
		TopDevices:       top,
		UptimeSeconds:    snap.TakenAt.Sub(snap.StartedAt).Seconds(),
		GeneratedAt:      snap.TakenAt,
	}
}

// ChartsFrom reshapes one snapshot for the traffic charts.
func ChartsFrom(snap domain.Snapshot) domain.ChartData {
	return domain.ChartData{
		Series:         snap.Series,
		ProtocolCounts: snap.ProtocolCounts,
	}
}
