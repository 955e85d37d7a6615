package aggregation

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
)

// Capacities of the bounded aggregate tables
const (
	recentCap   = 60
	seriesCap   = 30
	timelineCap = 12
)

var (
	recordsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intelliguard_records_applied_total",
		Help: "The total number of telemetry records folded into the store",
	})
	attacksObserved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intelliguard_attacks_observed_total",
		Help: "The total number of attack records folded into the store",
	})
	devicesTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intelliguard_devices_tracked",
		Help: "The number of devices currently present in the registry",
	})
)

// Store folds telemetry records into bounded in-memory aggregate state:
// the recent-packets table, the rolling chart series, protocol counters,
// the device registry, the attack timeline and the running totals.
//
// Apply and Reset are the only mutators and are expected to be called from
// a single dispatch goroutine. The lock exists so snapshots can be taken
// concurrently from handler goroutines.
type Store struct {
	mu sync.RWMutex

	recent    []domain.TelemetryRecord
	series    domain.TrafficSeries
	protocols map[domain.Protocol]int
	devices   map[string]*domain.DeviceAggregate
	timeline  []domain.TimelineEntry

	normalCount     int
	attackCount     int
	quarantineCount int

	startedAt time.Time
}

// NewStore creates an empty aggregation store.
func NewStore() *Store {
	return &Store{
		recent:    make([]domain.TelemetryRecord, 0, recentCap),
		protocols: make(map[domain.Protocol]int),
		devices:   make(map[string]*domain.DeviceAggregate),
		timeline:  make([]domain.TimelineEntry, 0, timelineCap),
		startedAt: time.Now(),
	}
}

// Apply folds one record into every aggregate table in a single critical
// section, so readers never observe a partially applied record.
func (s *Store) Apply(rec domain.TelemetryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Recent-packets table, newest first
	s.recent = append(s.recent, domain.TelemetryRecord{})
	copy(s.recent[1:], s.recent)
	s.recent[0] = rec
	if len(s.recent) > recentCap {
		s.recent = s.recent[:recentCap]
	}

	// Rolling chart series. All three are truncated together so their
	// lengths can never desynchronize.
	s.series.Labels = append(s.series.Labels, rec.Timestamp)
	s.series.PacketRates = append(s.series.PacketRates, rec.PacketRate)
	s.series.ByteRates = append(s.series.ByteRates, rec.ByteRate)
	if n := len(s.series.Labels); n > seriesCap {
		s.series.Labels = s.series.Labels[n-seriesCap:]
		s.series.PacketRates = s.series.PacketRates[n-seriesCap:]
		s.series.ByteRates = s.series.ByteRates[n-seriesCap:]
	}

	proto := rec.Protocol
	if proto == "" {
		proto = domain.ProtocolUnknown
	}
	s.protocols[proto]++

	if rec.IsAttack() {
		s.attackCount++
		attacksObserved.Inc()

		entry := domain.TimelineEntry{ID: uuid.NewString(), TelemetryRecord: rec}
		s.timeline = append(s.timeline, domain.TimelineEntry{})
		copy(s.timeline[1:], s.timeline)
		s.timeline[0] = entry
		if len(s.timeline) > timelineCap {
			s.timeline = s.timeline[:timelineCap]
		}
	} else {
		s.normalCount++
	}

	if rec.Quarantined {
		s.quarantineCount++
	}

	// Device registry upsert, last write wins for the snapshot fields
	dev, ok := s.devices[rec.DeviceID]
	if !ok {
		dev = &domain.DeviceAggregate{ID: rec.DeviceID}
		s.devices[rec.DeviceID] = dev
		devicesTracked.Set(float64(len(s.devices)))
	}
	dev.Type = rec.DeviceType
	dev.Protocol = proto
	dev.TotalPackets++
	if rec.IsAttack() {
		dev.AttackCount++
	}
	dev.LastStatus = rec.Label
	dev.Quarantined = rec.Quarantined
	dev.ThreatScore = rec.ThreatScore
	dev.LastSeen = rec.Time()

	recordsApplied.Inc()
}

// Reset clears every table, counter and the device registry in one atomic
// step and restarts the session clock.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = make([]domain.TelemetryRecord, 0, recentCap)
	s.series = domain.TrafficSeries{}
	s.protocols = make(map[domain.Protocol]int)
	s.devices = make(map[string]*domain.DeviceAggregate)
	s.timeline = make([]domain.TimelineEntry, 0, timelineCap)
	s.normalCount = 0
	s.attackCount = 0
	s.quarantineCount = 0
	s.startedAt = time.Now()

	devicesTracked.Set(0)
	log.Printf("[STORE] aggregate state reset")
}

// Snapshot returns a deep copy of the current aggregate state. Mutating the
// returned value never affects the store.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.Snapshot{
		Recent:          make([]domain.TelemetryRecord, len(s.recent)),
		Timeline:        make([]domain.TimelineEntry, len(s.timeline)),
		ProtocolCounts:  make(map[domain.Protocol]int, len(s.protocols)),
		Devices:         make(map[string]domain.DeviceAggregate, len(s.devices)),
		NormalCount:     s.normalCount,
		AttackCount:     s.attackCount,
		QuarantineCount: s.quarantineCount,
		StartedAt:       s.startedAt,
		TakenAt:         time.Now(),
	}
	copy(snap.Recent, s.recent)
	copy(snap.Timeline, s.timeline)
	snap.Series = domain.TrafficSeries{
		Labels:      append([]string(nil), s.series.Labels...),
		PacketRates: append([]float64(nil), s.series.PacketRates...),
		ByteRates:   append([]float64(nil), s.series.ByteRates...),
	}
	for proto, count := range s.protocols {
		snap.ProtocolCounts[proto] = count
	}
	for id, dev := range s.devices {
		snap.Devices[id] = *dev
	}
	return snap
}
