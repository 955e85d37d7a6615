package detection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
)

// fakeClock lets tests move time forward past the recovery window.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestScorer() (*Scorer, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := NewScorer()
	s.now = clock.now
	return s, clock
}

func TestScorer_Process_NormalPacket(t *testing.T) {
	s, _ := newTestScorer()

	rec, err := s.Process(domain.IngestPacket{
		DeviceID: "plug_01", DeviceType: "SmartPlug", Protocol: "mqtt",
		PacketRate: 50, ByteRate: 800,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.LabelNormal, rec.Label)
	assert.Zero(t, rec.ThreatScore)
	assert.False(t, rec.Quarantined)
	assert.False(t, rec.Anomaly)
	assert.Equal(t, domain.ProtocolMQTT, rec.Protocol)
}

func TestScorer_Process_LabelThresholdsAreStrict(t *testing.T) {
	s, _ := newTestScorer()

	rec, err := s.Process(domain.IngestPacket{DeviceID: "a", PacketRate: 800, ByteRate: 10000})
	require.NoError(t, err)
	assert.Equal(t, domain.LabelNormal, rec.Label)

	rec, err = s.Process(domain.IngestPacket{DeviceID: "b", PacketRate: 801})
	require.NoError(t, err)
	assert.Equal(t, domain.LabelAttack, rec.Label)

	rec, err = s.Process(domain.IngestPacket{DeviceID: "c", ByteRate: 10001})
	require.NoError(t, err)
	assert.Equal(t, domain.LabelAttack, rec.Label)
}

func TestScorer_Process_ScoreAccumulatesAndQuarantines(t *testing.T) {
	s, _ := newTestScorer()
	burst := domain.IngestPacket{DeviceID: "cam_01", DeviceType: "SmartCam", PacketRate: 1000, ByteRate: 15000}

	// Attack over both burst limits scores 3+1 per packet
	rec, err := s.Process(burst)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelAttack, rec.Label)
	assert.InDelta(t, 4.0, rec.ThreatScore, 0.001)
	assert.False(t, rec.Quarantined)

	// 4*0.9+4 = 7.6 crosses the threshold
	rec, err = s.Process(burst)
	require.NoError(t, err)
	assert.InDelta(t, 7.6, rec.ThreatScore, 0.001)
	assert.True(t, rec.Quarantined)
}

func TestScorer_Process_BlockedWhileQuarantined(t *testing.T) {
	s, clock := newTestScorer()
	burst := domain.IngestPacket{DeviceID: "cam_01", PacketRate: 1000, ByteRate: 15000}

	s.Process(burst)
	s.Process(burst)

	// Inside the recovery window every packet is rejected
	clock.advance(30 * time.Second)
	_, err := s.Process(burst)
	assert.ErrorIs(t, err, ErrDeviceBlocked)

	clock.advance(29 * time.Second)
	_, err = s.Process(domain.IngestPacket{DeviceID: "cam_01", PacketRate: 10})
	assert.ErrorIs(t, err, ErrDeviceBlocked)
}

func TestScorer_Process_AutoRecovery(t *testing.T) {
	s, clock := newTestScorer()
	burst := domain.IngestPacket{DeviceID: "cam_01", PacketRate: 1000, ByteRate: 15000}

	s.Process(burst)
	s.Process(burst)

	clock.advance(61 * time.Second)
	rec, err := s.Process(domain.IngestPacket{DeviceID: "cam_01", PacketRate: 10})
	require.NoError(t, err)
	assert.False(t, rec.Quarantined)
	assert.Zero(t, rec.ThreatScore)
	assert.Equal(t, domain.LabelNormal, rec.Label)
}

func TestScorer_Process_ScoreDecays(t *testing.T) {
	s, _ := newTestScorer()

	s.Process(domain.IngestPacket{DeviceID: "ind_01", PacketRate: 850})
	rec, err := s.Process(domain.IngestPacket{DeviceID: "ind_01", PacketRate: 10})
	require.NoError(t, err)

	// 3*0.9+0 = 2.7
	assert.InDelta(t, 2.7, rec.ThreatScore, 0.001)
	assert.Equal(t, domain.LabelNormal, rec.Label)
}

func TestScorer_Process_Defaults(t *testing.T) {
	s, _ := newTestScorer()

	rec, err := s.Process(domain.IngestPacket{PacketRate: 10})
	require.NoError(t, err)
	assert.Equal(t, "unknown", rec.DeviceID)
	assert.Equal(t, "UnknownDevice", rec.DeviceType)
	assert.Equal(t, domain.ProtocolMQTT, rec.Protocol)
	assert.Equal(t, domain.AttackNone, rec.AttackType)

	rec, err = s.Process(domain.IngestPacket{DeviceID: "x", Protocol: "zigbee"})
	require.NoError(t, err)
	assert.Equal(t, domain.ProtocolUnknown, rec.Protocol)
}

func TestScorer_Unquarantine(t *testing.T) {
	s, _ := newTestScorer()
	burst := domain.IngestPacket{DeviceID: "cam_01", PacketRate: 1000, ByteRate: 15000}

	s.Process(burst)
	s.Process(burst)
	_, err := s.Process(burst)
	require.ErrorIs(t, err, ErrDeviceBlocked)

	require.NoError(t, s.Unquarantine("cam_01"))

	rec, err := s.Process(domain.IngestPacket{DeviceID: "cam_01", PacketRate: 10})
	require.NoError(t, err)
	assert.False(t, rec.Quarantined)
	assert.Zero(t, rec.ThreatScore)
}

func TestScorer_Unquarantine_UnknownDevice(t *testing.T) {
	s, _ := newTestScorer()
	assert.ErrorIs(t, s.Unquarantine("ghost"), ErrUnknownDevice)
}

func TestScorer_Reset(t *testing.T) {
	s, _ := newTestScorer()
	burst := domain.IngestPacket{DeviceID: "cam_01", PacketRate: 1000, ByteRate: 15000}
	s.Process(burst)
	s.Process(burst)

	s.Reset()

	assert.ErrorIs(t, s.Unquarantine("cam_01"), ErrUnknownDevice)
	rec, err := s.Process(burst)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, rec.ThreatScore, 0.001)
	assert.False(t, rec.Quarantined)
}
