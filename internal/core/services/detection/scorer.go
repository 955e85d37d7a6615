package detection

import (
	"errors"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
)

// Scoring parameters for the rule-based detector
const (
	threatThreshold = 7.0
	scoreDecay      = 0.90
	recoveryWindow  = 60 * time.Second

	attackRateLimit = 800.0
	attackByteLimit = 10000.0
	burstRateLimit  = 900.0
	burstByteLimit  = 12000.0
)

var (
	// ErrDeviceBlocked is returned while a quarantined device is still
	// inside its recovery window; the packet is dropped unprocessed.
	ErrDeviceBlocked = errors.New("device quarantined")

	// ErrUnknownDevice is returned when releasing a device that was never
	// scored.
	ErrUnknownDevice = errors.New("device not found")
)

var (
	packetsBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intelliguard_packets_blocked_total",
		Help: "The total number of packets dropped from quarantined devices",
	})
	devicesQuarantined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intelliguard_quarantines_total",
		Help: "The total number of quarantine activations",
	})
	devicesReleased = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intelliguard_quarantine_releases_total",
		Help: "The total number of quarantine releases by reason",
	}, []string{"reason"})
)

type deviceState struct {
	score       float64
	quarantined bool
	lastSeen    time.Time
	lastAlert   time.Time
}

// Scorer keeps a decaying threat score per device and quarantines devices
// that cross the threshold. Quarantined devices have their packets blocked
// until the recovery window elapses or they are released manually.
type Scorer struct {
	mu     sync.Mutex
	states map[string]*deviceState

	now func() time.Time
}

// NewScorer creates an empty scorer.
func NewScorer() *Scorer {
	return &Scorer{
		states: make(map[string]*deviceState),
		now:    time.Now,
	}
}

// Process scores one inbound packet and turns it into a telemetry record.
// It returns ErrDeviceBlocked when the device is quarantined and still
// inside its recovery window.
func (s *Scorer) Process(pkt domain.IngestPacket) (domain.TelemetryRecord, error) {
	deviceID := pkt.DeviceID
	if deviceID == "" {
		deviceID = "unknown"
	}
	deviceType := pkt.DeviceType
	if deviceType == "" {
		deviceType = "UnknownDevice"
	}
	// Absent protocol defaults to mqtt, the dominant transport in the fleet
	proto := domain.ProtocolMQTT
	if strings.TrimSpace(pkt.Protocol) != "" {
		proto = domain.ParseProtocol(pkt.Protocol)
	}
	attackType := pkt.AttackType
	if attackType == "" {
		attackType = domain.AttackNone
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	st, ok := s.states[deviceID]
	if !ok {
		st = &deviceState{}
		s.states[deviceID] = st
	}
	st.lastSeen = now

	if st.quarantined {
		if now.Sub(st.lastAlert) > recoveryWindow {
			st.quarantined = false
			st.score = 0
			devicesReleased.WithLabelValues("auto").Inc()
			log.Printf("[DETECT] auto-recovered %s", deviceID)
		} else {
			packetsBlocked.Inc()
			log.Printf("[DETECT] %s blocked (quarantined)", deviceID)
			return domain.TelemetryRecord{}, ErrDeviceBlocked
		}
	}

	// Rule-based labeling; an ML model is out of scope for this build
	label := domain.LabelNormal
	if pkt.PacketRate > attackRateLimit || pkt.ByteRate > attackByteLimit {
		label = domain.LabelAttack
	}
	anomaly := false

	inc := 0.0
	if label == domain.LabelAttack {
		inc += 3.0
	}
	if pkt.PacketRate > burstRateLimit || pkt.ByteRate > burstByteLimit {
		inc += 1.0
	}
	st.score = st.score*scoreDecay + inc

	if st.score >= threatThreshold {
		st.quarantined = true
		st.lastAlert = now
		devicesQuarantined.Inc()
		log.Printf("[DETECT] quarantined %s (score %.2f)", deviceID, st.score)
	}

	return domain.TelemetryRecord{
		Timestamp:   now.Format(domain.TimestampLayout),
		Epoch:       domain.EpochOf(now),
		DeviceID:    deviceID,
		DeviceType:  deviceType,
		Protocol:    proto,
		PacketRate:  pkt.PacketRate,
		ByteRate:    pkt.ByteRate,
		Label:       label,
		Anomaly:     anomaly,
		ThreatScore: math.Round(st.score*100) / 100,
		Quarantined: st.quarantined,
		AttackType:  attackType,
	}, nil
}

// Unquarantine releases a device manually and clears its score.
func (s *Scorer) Unquarantine(deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[deviceID]
	if !ok {
		return ErrUnknownDevice
	}
	st.quarantined = false
	st.score = 0
	st.lastAlert = time.Time{}
	devicesReleased.WithLabelValues("manual").Inc()
	log.Printf("[DETECT] manually unquarantined %s", deviceID)
	return nil
}

// Reset drops all per-device scoring state.
func (s *Scorer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = make(map[string]*deviceState)
}
