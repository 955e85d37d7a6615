package stream

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/core/ports"
	"github.com/intelliguard-io/intelliguard/internal/telemetry"
)

type sourcedRecord struct {
	source string
	rec    domain.TelemetryRecord
}

// Controller owns the streaming lifecycle. It funnels every ingress path
// (the active packet source and direct submissions) through one channel
// consumed by a single dispatch goroutine, which is the only caller of the
// store's Apply. Start and stop transitions are serialized; starting while
// running and stopping while stopped are no-ops.
type Controller struct {
	mode   string
	source ports.PacketSource

	store   ports.Aggregator
	history ports.History

	sinks     []ports.RecordSink
	notifiers []ports.Notifier
	resetters []ports.Resetter

	records chan sourcedRecord

	// mu serializes lifecycle transitions and may block while the source
	// winds down. stateMu only guards the status fields and is never held
	// across anything blocking.
	mu      sync.Mutex
	stateMu sync.RWMutex
	state   string
	conn    string
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewController creates a stopped controller for the given source. Sinks,
// notifiers and resetters must be registered before Run is called.
func NewController(mode string, source ports.PacketSource, store ports.Aggregator, history ports.History) *Controller {
	return &Controller{
		mode:    mode,
		source:  source,
		store:   store,
		history: history,
		records: make(chan sourcedRecord, 256),
		state:   domain.StreamStopped,
		conn:    domain.ConnIdle,
	}
}

// AddSink registers a fan-out target for processed records.
func (c *Controller) AddSink(sink ports.RecordSink) {
	c.sinks = append(c.sinks, sink)
}

// AddNotifier registers a receiver for status events.
func (c *Controller) AddNotifier(n ports.Notifier) {
	c.notifiers = append(c.notifiers, n)
}

// AddResetter registers auxiliary state cleared by ResetAll.
func (c *Controller) AddResetter(r ports.Resetter) {
	c.resetters = append(c.resetters, r)
}

// Run consumes the record pipeline until the context is cancelled. Every
// record is folded into the store, appended to the report history and
// fanned out to the registered sinks, in that order.
func (c *Controller) Run(ctx context.Context) error {
	log.Printf("[STREAM] dispatch loop started (mode=%s, source=%s)", c.mode, c.source.Name())
	defer c.StopStream()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[STREAM] dispatch loop stopped")
			return nil
		case sr := <-c.records:
			c.store.Apply(sr.rec)
			c.history.Append(sr.rec)
			telemetry.RecordsStreamed.WithLabelValues(sr.source, sr.rec.Label).Inc()
			for _, sink := range c.sinks {
				sink.Publish(sr.rec)
			}
		}
	}
}

// StartStream activates the packet source. Starting an already running
// stream is a no-op.
func (c *Controller) StartStream() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() == domain.StreamRunning {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.pump(ctx)
		}()

		if err := c.source.Run(ctx); err != nil {
			log.Printf("[STREAM] source %s failed: %v", c.source.Name(), err)
			c.notify(domain.StatusError, "stream source failed")
		}
		cancel()
		wg.Wait()
	}()

	conn := domain.ConnConnected
	if c.mode == domain.ModeLive {
		conn = domain.ConnConnecting
	}
	c.setState(domain.StreamRunning, conn)
	c.notify(domain.StatusInfo, "connected")
	log.Printf("[STREAM] started source %s", c.source.Name())
}

// StopStream halts the packet source and waits until it has fully wound
// down, so at most one activation ever exists. Stopping an already stopped
// stream is a no-op.
func (c *Controller) StopStream() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() == domain.StreamStopped {
		return
	}

	c.cancel()
	<-c.done

	c.setState(domain.StreamStopped, domain.ConnIdle)
	c.notify(domain.StatusInfo, "stopped")
	log.Printf("[STREAM] stopped source %s", c.source.Name())
}

// Submit feeds one record into the pipeline without blocking. It reports
// whether the record was accepted; saturated pipelines drop instead of
// stalling the caller.
func (c *Controller) Submit(source string, rec domain.TelemetryRecord) bool {
	select {
	case c.records <- sourcedRecord{source: source, rec: rec}:
		return true
	default:
		telemetry.RecordsDropped.WithLabelValues("pipeline_full").Inc()
		return false
	}
}

// ResetAll clears the store, the report history and all registered auxiliary
// state.
func (c *Controller) ResetAll() {
	c.store.Reset()
	c.history.Reset()
	for _, r := range c.resetters {
		r.Reset()
	}
	c.notify(domain.StatusInfo, "all data cleared")
	log.Printf("[STREAM] full reset")
}

// State returns the current lifecycle state.
func (c *Controller) State() string {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Status reports the controller state for the status endpoint.
func (c *Controller) Status() domain.StreamStatus {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return domain.StreamStatus{
		State:      c.state,
		Mode:       c.mode,
		Source:     c.source.Name(),
		Connection: c.conn,
	}
}

// SetConnState records a connection-state change reported by the source and
// notifies on meaningful transitions.
func (c *Controller) SetConnState(state, detail string) {
	c.stateMu.Lock()
	prev := c.conn
	c.conn = state
	c.stateMu.Unlock()

	if state == prev {
		return
	}
	switch state {
	case domain.ConnConnected:
		c.notify(domain.StatusInfo, "connected")
	case domain.ConnError:
		if detail == "" {
			detail = "stream connection lost"
		}
		c.notify(domain.StatusWarning, detail)
	}
}

func (c *Controller) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-c.source.Records():
			if !ok {
				return
			}
			c.Submit(c.source.Name(), rec)
		}
	}
}

func (c *Controller) setState(state, conn string) {
	c.stateMu.Lock()
	c.state = state
	c.conn = conn
	c.stateMu.Unlock()
}

func (c *Controller) notify(level, message string) {
	evt := domain.StatusEvent{Level: level, Message: message, Time: time.Now()}
	for _, n := range c.notifiers {
		n.Notify(evt)
	}
}
