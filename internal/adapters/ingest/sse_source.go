package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/telemetry"
)

// Reconnect backoff parameters
const (
	backoffBase       = 500 * time.Millisecond
	backoffMultiplier = 1.5
	backoffMax        = 30 * time.Second
)

var errStreamClosed = errors.New("event stream closed")

// SSESource subscribes to a remote server-sent-event stream of telemetry
// records and implements ports.PacketSource. Connection loss triggers
// reconnects with exponential backoff; the attempt counter resets once a
// connection succeeds. Malformed events are dropped, never fatal.
type SSESource struct {
	url    string
	client *http.Client
	out    chan domain.TelemetryRecord

	// OnState, when set, receives connection-state transitions
	// (domain.ConnConnecting, ConnConnected, ConnError, ConnIdle).
	OnState func(state, detail string)
}

// NewSSESource creates a source reading from baseURL's /stream endpoint.
func NewSSESource(baseURL string) *SSESource {
	return &SSESource{
		url: strings.TrimRight(baseURL, "/") + "/stream",
		// No client timeout: the stream is long-lived by design
		client: &http.Client{},
		out:    make(chan domain.TelemetryRecord, 64),
	}
}

// Name identifies this source in logs and status events.
func (s *SSESource) Name() string {
	return "sse"
}

// Records returns the channel parsed events are emitted on.
func (s *SSESource) Records() <-chan domain.TelemetryRecord {
	return s.out
}

// Run subscribes to the upstream and keeps the subscription alive until the
// context is cancelled. The previous connection is fully closed before any
// reconnect attempt is scheduled, so at most one subscription exists.
func (s *SSESource) Run(ctx context.Context) error {
	attempt := 0
	for {
		if ctx.Err() != nil {
			s.setState(domain.ConnIdle, "")
			return nil
		}

		s.setState(domain.ConnConnecting, "")
		connected, err := s.consume(ctx)
		if ctx.Err() != nil {
			s.setState(domain.ConnIdle, "")
			return nil
		}
		if connected {
			attempt = 0
		}
		attempt++

		delay := BackoffDelay(attempt)
		log.Printf("[SSE] stream lost (%v), reconnect attempt %d in %s", err, attempt, delay)
		s.setState(domain.ConnError, fmt.Sprintf("stream lost, retrying in %s", delay))

		select {
		case <-ctx.Done():
			s.setState(domain.ConnIdle, "")
			return nil
		case <-time.After(delay):
		}
	}
}

// consume opens one subscription and reads it to exhaustion. The first
// return value reports whether the connection was established at all.
func (s *SSESource) consume(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %s", resp.Status)
	}

	log.Printf("[SSE] connected to %s", s.url)
	s.setState(domain.ConnConnected, "")

	if err := s.readEvents(ctx, resp.Body); err != nil {
		return true, err
	}
	return true, errStreamClosed
}

// readEvents parses the event stream line protocol: payloads arrive as
// "data: <json>" lines. Anything that does not decode into a telemetry
// record is dropped and logged.
func (s *SSESource) readEvents(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" {
			continue
		}

		var rec domain.TelemetryRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			telemetry.RecordsDropped.WithLabelValues("malformed").Inc()
			log.Printf("[SSE] dropping malformed event: %v", err)
			continue
		}

		select {
		case s.out <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}

func (s *SSESource) setState(state, detail string) {
	if s.OnState != nil {
		s.OnState(state, detail)
	}
}

// BackoffDelay returns the wait before the given reconnect attempt: the
// base delay grown by half per consecutive failure, capped at 30 seconds.
func BackoffDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return backoffBase
	}
	delay := float64(backoffBase) * math.Pow(backoffMultiplier, float64(attempt-1))
	if delay > float64(backoffMax) {
		return backoffMax
	}
	return time.Duration(delay)
}
