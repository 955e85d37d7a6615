package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/telemetry"
)

const (
	sseClientBuffer = 32
	keepaliveEvery  = 15 * time.Second
)

// SSEHub fans stream records out to Server-Sent-Events subscribers. It
// implements ports.RecordSink; Publish never blocks the stream pipeline.
type SSEHub struct {
	mu      sync.Mutex
	clients map[chan []byte]bool
}

// NewSSEHub creates an empty hub.
func NewSSEHub() *SSEHub {
	return &SSEHub{clients: make(map[chan []byte]bool)}
}

// Publish marshals the record once and offers it to every subscriber.
// A subscriber with a full buffer loses the record instead of stalling
// the pipeline.
func (h *SSEHub) Publish(rec domain.TelemetryRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		log.Printf("[SSE] marshal error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
			telemetry.RecordsDropped.WithLabelValues("slow_client").Inc()
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (h *SSEHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *SSEHub) subscribe() chan []byte {
	ch := make(chan []byte, sseClientBuffer)
	h.mu.Lock()
	h.clients[ch] = true
	h.mu.Unlock()
	telemetry.StreamClients.Inc()
	return ch
}

func (h *SSEHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	telemetry.StreamClients.Dec()
}

// ServeHTTP streams records as SSE frames until the client disconnects.
// Nothing is replayed; subscribers see only records published after they
// connect.
func (h *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	log.Printf("[SSE] client connected (%s)", r.RemoteAddr)
	defer log.Printf("[SSE] client disconnected (%s)", r.RemoteAddr)

	keepalive := time.NewTicker(keepaliveEvery)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}
