package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
)

func TestBackoffDelay_GrowthAndCap(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, BackoffDelay(0))
	assert.Equal(t, 500*time.Millisecond, BackoffDelay(1))
	assert.Equal(t, 750*time.Millisecond, BackoffDelay(2))
	assert.Equal(t, 1125*time.Millisecond, BackoffDelay(3))

	// Monotonic until the cap
	for attempt := 2; attempt < 20; attempt++ {
		assert.GreaterOrEqual(t, BackoffDelay(attempt), BackoffDelay(attempt-1))
	}
	assert.Equal(t, 30*time.Second, BackoffDelay(12))
	assert.Equal(t, 30*time.Second, BackoffDelay(100))
}

func TestSSESource_ReadEvents_ParsesAndDropsMalformed(t *testing.T) {
	src := NewSSESource("http://example.invalid")

	stream := strings.Join([]string{
		": keepalive comment",
		"event: message",
		`data: {"device_id":"cam_01","label":"Attack","threat_score":8.1,"protocol":"mqtt"}`,
		"",
		"data: {broken json",
		"",
		"data:",
		`data: {"device_id":"plug_01","label":"Normal","protocol":"HTTP"}`,
		"",
	}, "\n")

	err := src.readEvents(context.Background(), strings.NewReader(stream))
	require.NoError(t, err)

	require.Len(t, src.out, 2)
	first := <-src.out
	assert.Equal(t, "cam_01", first.DeviceID)
	assert.Equal(t, domain.ProtocolMQTT, first.Protocol)
	assert.Equal(t, 8.1, first.ThreatScore)

	second := <-src.out
	assert.Equal(t, "plug_01", second.DeviceID)
	// Wire protocol strings fold case-insensitively into the enum
	assert.Equal(t, domain.ProtocolHTTP, second.Protocol)
}

func TestSSESource_Run_ReceivesAndReconnects(t *testing.T) {
	var mu sync.Mutex
	connections := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		connections++
		n := connections
		mu.Unlock()

		assert.Equal(t, "/stream", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		// One event per connection, then the handler returns and the
		// stream closes, forcing a reconnect
		_, _ = w.Write([]byte(`data: {"device_id":"cam_0` + string(rune('0'+n)) + `","label":"Normal"}` + "\n\n"))
		flusher.Flush()
	}))
	defer server.Close()

	src := NewSSESource(server.URL)
	var states []string
	var stateMu sync.Mutex
	src.OnState = func(state, detail string) {
		stateMu.Lock()
		states = append(states, state)
		stateMu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()

	var got []domain.TelemetryRecord
	for len(got) < 2 {
		select {
		case rec := <-src.Records():
			got = append(got, rec)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for reconnected stream records")
		}
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("source did not stop after cancel")
	}

	mu.Lock()
	assert.GreaterOrEqual(t, connections, 2, "server close must trigger a reconnect")
	mu.Unlock()

	stateMu.Lock()
	defer stateMu.Unlock()
	assert.Contains(t, states, domain.ConnConnecting)
	assert.Contains(t, states, domain.ConnConnected)
	assert.Contains(t, states, domain.ConnError)
	assert.Equal(t, domain.ConnIdle, states[len(states)-1])
}

func TestSSESource_Run_StopsDuringBackoff(t *testing.T) {
	// A server that is immediately closed leaves a refused port behind
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	src := NewSSESource(url)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("source did not abandon the scheduled reconnect")
	}
}

func TestSSESource_Run_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	src := NewSSESource(server.URL)

	var once sync.Once
	errored := make(chan struct{})
	src.OnState = func(state, detail string) {
		if state == domain.ConnError {
			once.Do(func() { close(errored) })
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go src.Run(ctx)

	select {
	case <-errored:
	case <-time.After(2 * time.Second):
		t.Fatal("non-200 response must surface as a connection error")
	}
}
