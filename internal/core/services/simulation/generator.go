package simulation

import (
	"math"
	"math/rand"
	"time"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
)

const (
	// Probability that a generated record is an attack
	attackProbability = 0.12
	// Probability that an attack record is additionally quarantined
	quarantineProbability = 0.3
)

// Tick period bounds; one period is drawn per stream activation
const (
	minTickPeriod  = 800 * time.Millisecond
	tickPeriodSpan = 1500 // milliseconds, so periods land in [800ms, 2300ms)
)

var attackTypes = []string{
	domain.AttackDoS,
	domain.AttackExfiltration,
	domain.AttackSpoofing,
	domain.AttackScanning,
}

// Generator produces synthetic telemetry records drawn from the device
// catalog. Not safe for concurrent use; each Source owns its own Generator.
type Generator struct {
	rand *rand.Rand
}

// NewGenerator creates a generator seeded from the wall clock.
func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator creates a generator with a fixed seed for reproducible
// output.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rand: rand.New(rand.NewSource(seed))}
}

// TickPeriod draws the interval between generated records for one stream
// activation. The period stays fixed until the stream is restarted.
func (g *Generator) TickPeriod() time.Duration {
	return minTickPeriod + time.Duration(g.rand.Intn(tickPeriodSpan))*time.Millisecond
}

// Generate produces one telemetry record. It reads only the static catalog
// and internal randomness and cannot fail.
func (g *Generator) Generate() domain.TelemetryRecord {
	dev := catalog[g.rand.Intn(len(catalog))]
	proto := dev.Protocols[g.rand.Intn(len(dev.Protocols))]

	// Base traffic depends on the device's bandwidth tier
	var rate, bytes float64
	switch {
	case highBandwidth[dev.Type]:
		rate = float64(120 + g.rand.Intn(230))
		bytes = float64(2000 + g.rand.Intn(7000))
	case lowBandwidth[dev.Type]:
		rate = float64(20 + g.rand.Intn(80))
		bytes = float64(300 + g.rand.Intn(1200))
	default:
		rate = float64(30 + g.rand.Intn(150))
		bytes = float64(400 + g.rand.Intn(1600))
	}

	label := domain.LabelNormal
	attackType := domain.AttackNone
	score := g.rand.Float64() * 3
	quarantined := false

	if g.rand.Float64() < attackProbability {
		label = domain.LabelAttack
		attackType = attackTypes[g.rand.Intn(len(attackTypes))]
		score = 6 + g.rand.Float64()*4
		rate *= float64(2 + g.rand.Intn(3))
		bytes *= float64(2 + g.rand.Intn(5))
		quarantined = g.rand.Float64() < quarantineProbability
	}

	now := time.Now()
	return domain.TelemetryRecord{
		Timestamp:   now.Format(domain.TimestampLayout),
		Epoch:       domain.EpochOf(now),
		DeviceID:    dev.ID,
		DeviceType:  dev.Type,
		Protocol:    proto,
		PacketRate:  rate,
		ByteRate:    bytes,
		Label:       label,
		Anomaly:     label == domain.LabelAttack,
		ThreatScore: math.Round(score*10) / 10,
		Quarantined: quarantined,
		AttackType:  attackType,
	}
}
