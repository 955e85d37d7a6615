package reporting

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/core/ports"
	"github.com/intelliguard-io/intelliguard/internal/core/services/insight"
)

// DefaultIntelWindow is the trailing window analyzed when the caller does
// not request one.
const DefaultIntelWindow = time.Hour

// Bounds of the synthesized risk score
const (
	riskFloor      = 15
	riskCeiling    = 95
	riskPerAttack  = 8
	riskJitterSpan = 20
)

// Fixed proportions used to split the attack count into synthetic categories
var intelCategories = []struct {
	name    string
	percent int
}{
	{domain.AttackDoS, 40},
	{domain.AttackExfiltration, 30},
	{domain.AttackSpoofing, 20},
	{domain.AttackScanning, 10},
}

var intelAnalyses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "intelliguard_intel_analyses_total",
	Help: "The total number of threat intelligence analyses served",
})

// IntelAnalyzer produces the mocked threat-intelligence summary. The headline
// fields (risk score, category breakdown, device lists) derive from the live
// session state; the traffic totals and pattern counts come from the trailing
// history window. Randomized display data, not a real analysis.
type IntelAnalyzer struct {
	store   ports.Aggregator
	history ports.History

	mu   sync.Mutex
	rand *rand.Rand
	now  func() time.Time
}

// NewIntelAnalyzer creates an analyzer over the given store and history.
func NewIntelAnalyzer(store ports.Aggregator, history ports.History) *IntelAnalyzer {
	return &IntelAnalyzer{
		store:   store,
		history: history,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
}

// Analyze builds the intel summary. The risk score is synthetic: proportional
// to the session attack counter with random jitter, clamped to [15, 95].
func (a *IntelAnalyzer) Analyze(window time.Duration) domain.ThreatIntel {
	if window <= 0 {
		window = DefaultIntelWindow
	}

	snap := a.store.Snapshot()

	breakdown := make(map[string]int, len(intelCategories))
	for _, cat := range intelCategories {
		breakdown[cat.name] = snap.AttackCount * cat.percent / 100
	}

	var highRisk, quarantined []string
	for id, dev := range snap.Devices {
		if insight.IsHighRisk(dev) {
			highRisk = append(highRisk, id)
		}
		if dev.Quarantined {
			quarantined = append(quarantined, id)
		}
	}
	sort.Strings(highRisk)
	sort.Strings(quarantined)
	if highRisk == nil {
		highRisk = []string{}
	}
	if quarantined == nil {
		quarantined = []string{}
	}

	packets := a.history.Within(window)
	attacks := 0
	patterns := make(map[string]int)
	anomalies := make(map[domain.Protocol]int)

	for _, pkt := range packets {
		if pkt.IsAttack() {
			attacks++
			if pkt.AttackType != "" {
				patterns[pkt.AttackType]++
			}
		}
		if pkt.PacketRate > 1000 {
			proto := pkt.Protocol
			if proto == "" {
				proto = domain.ProtocolUnknown
			}
			anomalies[proto]++
		}
	}

	intelAnalyses.Inc()
	return domain.ThreatIntel{
		GeneratedAt:        a.now().Format(generatedAtLayout),
		WindowSeconds:      int(window.Seconds()),
		RiskScore:          a.riskScore(snap.AttackCount),
		TotalPackets:       len(packets),
		TotalAttacks:       attacks,
		CategoryBreakdown:  breakdown,
		HighRiskDevices:    highRisk,
		QuarantinedDevices: quarantined,
		AttackPatterns:     patterns,
		ProtocolAnomalies:  anomalies,
	}
}

func (a *IntelAnalyzer) riskScore(attacks int) int {
	a.mu.Lock()
	jitter := a.rand.Intn(riskJitterSpan)
	a.mu.Unlock()

	score := attacks*riskPerAttack + jitter
	if score < riskFloor {
		score = riskFloor
	}
	if score > riskCeiling {
		score = riskCeiling
	}
	return score
}
