package aggregation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/core/services/simulation"
)

func testRecord(seq int, deviceID, label string) domain.TelemetryRecord {
	return domain.TelemetryRecord{
		Timestamp:   fmt.Sprintf("00:00:%02d.%03d", seq/1000, seq%1000),
		Epoch:       domain.EpochOf(time.Now()),
		DeviceID:    deviceID,
		DeviceType:  "SmartCam",
		Protocol:    domain.ProtocolMQTT,
		PacketRate:  float64(100 + seq),
		ByteRate:    float64(5000 + seq),
		Label:       label,
		ThreatScore: 1.5,
		AttackType:  domain.AttackNone,
	}
}

func TestStore_Apply_RecentTableCapAndOrder(t *testing.T) {
	s := NewStore()

	for i := 0; i < 61; i++ {
		s.Apply(testRecord(i, "cam_01", domain.LabelNormal))
	}

	snap := s.Snapshot()
	require.Len(t, snap.Recent, 60)
	// Newest first; record 0 was evicted
	assert.Equal(t, float64(100+60), snap.Recent[0].PacketRate)
	assert.Equal(t, float64(100+1), snap.Recent[59].PacketRate)
}

func TestStore_Apply_SeriesStayInSync(t *testing.T) {
	s := NewStore()

	for i := 0; i < 45; i++ {
		s.Apply(testRecord(i, "cam_01", domain.LabelNormal))
		snap := s.Snapshot()
		want := i + 1
		if want > 30 {
			want = 30
		}
		require.Len(t, snap.Series.Labels, want)
		require.Len(t, snap.Series.PacketRates, want)
		require.Len(t, snap.Series.ByteRates, want)
	}

	// Oldest dropped first: after 45 records the window holds 15..44
	snap := s.Snapshot()
	assert.Equal(t, float64(100+15), snap.Series.PacketRates[0])
	assert.Equal(t, float64(100+44), snap.Series.PacketRates[29])
}

func TestStore_Apply_CountersSumToTotal(t *testing.T) {
	s := NewStore()
	gen := simulation.NewSeededGenerator(42)

	const n = 500
	for i := 0; i < n; i++ {
		s.Apply(gen.Generate())
	}

	snap := s.Snapshot()
	assert.Equal(t, n, snap.NormalCount+snap.AttackCount)
	assert.Equal(t, n, snap.TotalPackets())

	deviceTotal := 0
	for _, dev := range snap.Devices {
		assert.LessOrEqual(t, dev.AttackCount, dev.TotalPackets)
		deviceTotal += dev.TotalPackets
	}
	assert.Equal(t, n, deviceTotal)
}

func TestStore_Apply_TimelineOnlyAttacks(t *testing.T) {
	s := NewStore()

	for i := 0; i < 100; i++ {
		label := domain.LabelNormal
		if i%3 == 0 {
			label = domain.LabelAttack
		}
		s.Apply(testRecord(i, "ind_01", label))
	}

	snap := s.Snapshot()
	require.Len(t, snap.Timeline, 12)

	seen := make(map[string]bool)
	for _, entry := range snap.Timeline {
		assert.Equal(t, domain.LabelAttack, entry.Label)
		assert.NotEmpty(t, entry.ID)
		assert.False(t, seen[entry.ID], "timeline ids must be unique")
		seen[entry.ID] = true
	}

	// Newest first: the last applied attack was record 99
	assert.Equal(t, float64(100+99), snap.Timeline[0].PacketRate)
}

func TestStore_Apply_SingleAttackScenario(t *testing.T) {
	s := NewStore()

	rec := testRecord(1, "cam_01", domain.LabelAttack)
	rec.ThreatScore = 8.2
	rec.Quarantined = true
	s.Apply(rec)

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.AttackCount)
	assert.Equal(t, 0, snap.NormalCount)
	assert.Equal(t, 1, snap.QuarantineCount)

	dev, ok := snap.Devices["cam_01"]
	require.True(t, ok)
	assert.Equal(t, 1, dev.TotalPackets)
	assert.Equal(t, 1, dev.AttackCount)
	assert.True(t, dev.Quarantined)
	assert.Equal(t, 8.2, dev.ThreatScore)

	require.Len(t, snap.Timeline, 1)
	assert.Equal(t, "cam_01", snap.Timeline[0].DeviceID)
}

func TestStore_Apply_DeviceLastWriteWins(t *testing.T) {
	s := NewStore()

	attack := testRecord(1, "lock_01", domain.LabelAttack)
	attack.ThreatScore = 9.1
	attack.Quarantined = true
	attack.Protocol = domain.ProtocolCoAP
	s.Apply(attack)

	normal := testRecord(2, "lock_01", domain.LabelNormal)
	normal.ThreatScore = 0.4
	normal.Protocol = domain.ProtocolHTTP
	s.Apply(normal)

	dev := s.Snapshot().Devices["lock_01"]
	assert.Equal(t, 2, dev.TotalPackets)
	assert.Equal(t, 1, dev.AttackCount)
	assert.Equal(t, domain.LabelNormal, dev.LastStatus)
	assert.Equal(t, 0.4, dev.ThreatScore)
	assert.Equal(t, domain.ProtocolHTTP, dev.Protocol)
	assert.False(t, dev.Quarantined)
}

func TestStore_Apply_UnknownProtocolFallback(t *testing.T) {
	s := NewStore()

	rec := testRecord(1, "mystery_01", domain.LabelNormal)
	rec.Protocol = ""
	s.Apply(rec)

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.ProtocolCounts[domain.ProtocolUnknown])
	assert.Equal(t, domain.ProtocolUnknown, snap.Devices["mystery_01"].Protocol)
}

func TestStore_Reset_ClearsEverything(t *testing.T) {
	s := NewStore()
	gen := simulation.NewSeededGenerator(7)

	for i := 0; i < 200; i++ {
		s.Apply(gen.Generate())
	}
	require.NotZero(t, s.Snapshot().TotalPackets())

	s.Reset()

	snap := s.Snapshot()
	assert.Empty(t, snap.Recent)
	assert.Zero(t, snap.Series.Len())
	assert.Empty(t, snap.ProtocolCounts)
	assert.Empty(t, snap.Devices)
	assert.Empty(t, snap.Timeline)
	assert.Zero(t, snap.NormalCount)
	assert.Zero(t, snap.AttackCount)
	assert.Zero(t, snap.QuarantineCount)
}

func TestStore_Snapshot_DeepCopy(t *testing.T) {
	s := NewStore()
	s.Apply(testRecord(1, "cam_01", domain.LabelAttack))

	snap := s.Snapshot()
	snap.Recent[0].DeviceID = "tampered"
	snap.Series.Labels[0] = "tampered"
	snap.ProtocolCounts[domain.ProtocolMQTT] = 999
	dev := snap.Devices["cam_01"]
	dev.TotalPackets = 999
	snap.Devices["cam_01"] = dev
	snap.Timeline[0].DeviceID = "tampered"

	fresh := s.Snapshot()
	assert.Equal(t, "cam_01", fresh.Recent[0].DeviceID)
	assert.NotEqual(t, "tampered", fresh.Series.Labels[0])
	assert.Equal(t, 1, fresh.ProtocolCounts[domain.ProtocolMQTT])
	assert.Equal(t, 1, fresh.Devices["cam_01"].TotalPackets)
	assert.Equal(t, "cam_01", fresh.Timeline[0].DeviceID)
}

func TestStore_Snapshot_ConcurrentWithApply(t *testing.T) {
	s := NewStore()
	gen := simulation.NewSeededGenerator(11)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 300; i++ {
			s.Apply(gen.Generate())
		}
	}()

	for i := 0; i < 100; i++ {
		snap := s.Snapshot()
		n := snap.Series.Len()
		assert.Len(t, snap.Series.PacketRates, n)
		assert.Len(t, snap.Series.ByteRates, n)
		assert.LessOrEqual(t, len(snap.Recent), 60)
		assert.LessOrEqual(t, len(snap.Timeline), 12)
	}
	wg.Wait()
}
