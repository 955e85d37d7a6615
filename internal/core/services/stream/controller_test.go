package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/core/services/aggregation"
	"github.com/intelliguard-io/intelliguard/internal/core/services/reporting"
)

type fakeSource struct {
	out    chan domain.TelemetryRecord
	active atomic.Int32
}

func newFakeSource() *fakeSource {
	return &fakeSource{out: make(chan domain.TelemetryRecord, 16)}
}

func (f *fakeSource) Run(ctx context.Context) error {
	f.active.Add(1)
	defer f.active.Add(-1)
	<-ctx.Done()
	return nil
}

func (f *fakeSource) Records() <-chan domain.TelemetryRecord { return f.out }

func (f *fakeSource) Name() string { return "fake" }

type captureSink struct {
	mu   sync.Mutex
	recs []domain.TelemetryRecord
}

func (s *captureSink) Publish(rec domain.TelemetryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

type captureNotifier struct {
	mu     sync.Mutex
	events []domain.StatusEvent
}

func (n *captureNotifier) Notify(evt domain.StatusEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
}

func (n *captureNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, evt := range n.events {
		out[i] = evt.Message
	}
	return out
}

type flagResetter struct {
	called atomic.Bool
}

func (r *flagResetter) Reset() { r.called.Store(true) }

func newTestController(src *fakeSource) (*Controller, *aggregation.Store, *reporting.History, *captureNotifier) {
	store := aggregation.NewStore()
	history := reporting.NewHistory(0)
	c := NewController(domain.ModeSimulation, src, store, history)
	notifier := &captureNotifier{}
	c.AddNotifier(notifier)
	return c, store, history, notifier
}

func TestController_StartStop_Idempotent(t *testing.T) {
	src := newFakeSource()
	c, _, _, notifier := newTestController(src)

	c.StartStream()
	c.StartStream()
	assert.Equal(t, domain.StreamRunning, c.State())
	assert.Equal(t, []string{"connected"}, notifier.messages())

	c.StopStream()
	c.StopStream()
	assert.Equal(t, domain.StreamStopped, c.State())
	assert.Equal(t, []string{"connected", "stopped"}, notifier.messages())
}

func TestController_StopStream_WaitsForSource(t *testing.T) {
	src := newFakeSource()
	c, _, _, _ := newTestController(src)

	c.StartStream()
	require.Eventually(t, func() bool { return src.active.Load() == 1 }, time.Second, 5*time.Millisecond)

	c.StopStream()
	assert.Zero(t, src.active.Load(), "source must be fully wound down when StopStream returns")
}

func TestController_PipelineDelivery(t *testing.T) {
	src := newFakeSource()
	c, store, history, _ := newTestController(src)
	sink := &captureSink{}
	c.AddSink(sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	c.StartStream()
	src.out <- domain.TelemetryRecord{
		Timestamp: "12:00:00.000", Epoch: domain.EpochOf(time.Now()),
		DeviceID: "cam_01", Label: domain.LabelAttack, Protocol: domain.ProtocolMQTT,
	}

	require.Eventually(t, func() bool {
		return store.Snapshot().TotalPackets() == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return sink.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, history.Len())
	assert.Equal(t, 1, store.Snapshot().AttackCount)
}

func TestController_Submit_DropsWhenSaturated(t *testing.T) {
	c, _, _, _ := newTestController(newFakeSource())
	c.records = make(chan sourcedRecord, 1)

	rec := domain.TelemetryRecord{DeviceID: "cam_01", Label: domain.LabelNormal}
	assert.True(t, c.Submit("intake", rec))
	assert.False(t, c.Submit("intake", rec), "saturated pipeline must drop, not block")
}

func TestController_ResetAll(t *testing.T) {
	c, store, history, notifier := newTestController(newFakeSource())
	extra := &flagResetter{}
	c.AddResetter(extra)

	rec := domain.TelemetryRecord{
		DeviceID: "cam_01", Label: domain.LabelAttack,
		Epoch: domain.EpochOf(time.Now()),
	}
	store.Apply(rec)
	history.Append(rec)

	c.ResetAll()

	assert.Zero(t, store.Snapshot().TotalPackets())
	assert.Zero(t, history.Len())
	assert.True(t, extra.called.Load())
	assert.Contains(t, notifier.messages(), "all data cleared")
}

func TestController_Status(t *testing.T) {
	src := newFakeSource()
	c, _, _, _ := newTestController(src)

	status := c.Status()
	assert.Equal(t, domain.StreamStopped, status.State)
	assert.Equal(t, domain.ModeSimulation, status.Mode)
	assert.Equal(t, "fake", status.Source)
	assert.Equal(t, domain.ConnIdle, status.Connection)

	c.StartStream()
	defer c.StopStream()

	status = c.Status()
	assert.Equal(t, domain.StreamRunning, status.State)
	assert.Equal(t, domain.ConnConnected, status.Connection)
}

func TestController_SetConnState_Notifications(t *testing.T) {
	src := newFakeSource()
	store := aggregation.NewStore()
	c := NewController(domain.ModeLive, src, store, reporting.NewHistory(0))
	notifier := &captureNotifier{}
	c.AddNotifier(notifier)

	c.SetConnState(domain.ConnError, "upstream unreachable")
	c.SetConnState(domain.ConnError, "upstream unreachable")
	c.SetConnState(domain.ConnConnected, "")

	require.Len(t, notifier.events, 2)
	assert.Equal(t, domain.StatusWarning, notifier.events[0].Level)
	assert.Equal(t, "upstream unreachable", notifier.events[0].Message)
	assert.Equal(t, "connected", notifier.events[1].Message)
}
