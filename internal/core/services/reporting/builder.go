package reporting

import (
	"encoding/json"
	"log"
	"math"
	"sort"
	"time"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/core/ports"
	"github.com/intelliguard-io/intelliguard/internal/core/services/insight"
)

// Timestamp layout for generated_at fields, second precision
const generatedAtLayout = "2006-01-02T15:04:05"

const topAttackerLimit = 5

// Builder derives traffic reports from the record history and session
// summaries from the aggregation store.
type Builder struct {
	store   ports.Aggregator
	history ports.History

	now func() time.Time
}

// NewBuilder creates a report builder over the given store and history.
func NewBuilder(store ports.Aggregator, history ports.History) *Builder {
	return &Builder{
		store:   store,
		history: history,
		now:     time.Now,
	}
}

// WindowReport summarizes the traffic seen during the period's trailing
// window. An empty window produces a zeroed report, not an error.
func (b *Builder) WindowReport(period domain.ReportPeriod) domain.WindowReport {
	window := period.Window()
	packets := b.history.Within(window)

	total := len(packets)
	attacks := 0
	quarantined := make(map[string]bool)
	protocols := make(map[domain.Protocol]int)
	attackers := make(map[string]int)

	for _, pkt := range packets {
		proto := pkt.Protocol
		if proto == "" {
			proto = domain.ProtocolUnknown
		}
		protocols[proto]++

		if pkt.IsAttack() {
			attacks++
			attackers[pkt.DeviceID]++
		}
		if pkt.Quarantined {
			quarantined[pkt.DeviceID] = true
		}
	}

	ratio := 0.0
	if total > 0 {
		ratio = math.Round(float64(attacks)/float64(total)*100*100) / 100
	}

	return domain.WindowReport{
		GeneratedAt:          b.now().Format(generatedAtLayout),
		WindowSeconds:        int(window.Seconds()),
		TotalPackets:         total,
		Normal:               total - attacks,
		Attacks:              attacks,
		AttackRatio:          ratio,
		QuarantinedDevices:   sortedKeys(quarantined),
		ProtocolDistribution: protocols,
		TopAttackDevices:     rankAttackers(attackers, topAttackerLimit),
	}
}

// SessionSummary condenses the current session counters into the compact
// summary shape. The summary is also written to the server log as one JSON
// line so sessions leave an audit trail.
func (b *Builder) SessionSummary() domain.SessionSummary {
	snap := b.store.Snapshot()

	summary := domain.SessionSummary{
		Date:             b.now().Format("2006-01-02"),
		TotalPackets:     snap.TotalPackets(),
		NormalPackets:    snap.NormalCount,
		AttackPackets:    snap.AttackCount,
		DevicesMonitored: len(snap.Devices),
		Protocols:        snap.ProtocolCounts,
		TopThreats:       insight.TopDevices(snap.Devices),
	}

	if data, err := json.Marshal(summary); err == nil {
		log.Printf("[REPORT] session summary: %s", data)
	}
	return summary
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// rankAttackers orders devices by attack count descending, ties by id, and
// keeps the first limit entries.
func rankAttackers(counts map[string]int, limit int) []domain.AttackerCount {
	ranked := make([]domain.AttackerCount, 0, len(counts))
	for id, n := range counts {
		ranked = append(ranked, domain.AttackerCount{DeviceID: id, Attacks: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Attacks != ranked[j].Attacks {
			return ranked[i].Attacks > ranked[j].Attacks
		}
		return ranked[i].DeviceID < ranked[j].DeviceID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
