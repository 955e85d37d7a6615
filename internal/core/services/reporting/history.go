package reporting

import (
	"sync"
	"time"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
)

// DefaultHistoryCap bounds the report history so long sessions cannot grow
// memory without limit.
const DefaultHistoryCap = 100000

// historyHorizon is the longest window any report covers. Older records can
// never be selected again and are dropped on append.
const historyHorizon = 30 * 24 * time.Hour

// History retains processed telemetry records for windowed reports and intel
// analysis. It is a bounded FIFO: once the cap is exceeded the oldest records
// are dropped.
type History struct {
	mu      sync.Mutex
	records []domain.TelemetryRecord
	cap     int

	now func() time.Time
}

// NewHistory creates a history buffer holding at most capacity records.
// A non-positive capacity selects DefaultHistoryCap.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &History{
		cap: capacity,
		now: time.Now,
	}
}

// Append adds one record to the history, evicting records that fell out of
// the report horizon and then the oldest ones past the cap.
func (h *History) Append(rec domain.TelemetryRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, rec)

	cutoff := domain.EpochOf(h.now().Add(-historyHorizon))
	drop := 0
	for drop < len(h.records) && h.records[drop].Epoch < cutoff {
		drop++
	}
	if drop > 0 {
		n := copy(h.records, h.records[drop:])
		h.records = h.records[:n]
	}

	if len(h.records) > h.cap {
		n := copy(h.records, h.records[len(h.records)-h.cap:])
		h.records = h.records[:n]
	}
}

// Within returns the records whose epoch falls inside the trailing window,
// oldest first.
func (h *History) Within(window time.Duration) []domain.TelemetryRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := domain.EpochOf(h.now().Add(-window))
	out := make([]domain.TelemetryRecord, 0, len(h.records))
	for _, rec := range h.records {
		if rec.Epoch >= cutoff {
			out = append(out, rec)
		}
	}
	return out
}

// Len reports how many records are currently retained.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

// Reset drops all retained records.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
}
