package web

import (
	"net/http"
	"sort"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/core/services/insight"
)

// handleOverview serves the dashboard summary projection.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Calculator.Overview())
}

// handleCharts serves the rolling traffic series and protocol distribution.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Calculator.Charts())
}

// handleDevices serves every tracked device plus the derived risk views.
func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	snap := s.Store.Snapshot()

	devices := make([]domain.DeviceAggregate, 0, len(snap.Devices))
	for _, dev := range snap.Devices {
		devices = append(devices, dev)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })

	// The risk count is scoped to the ranked list, not the full registry.
	top := insight.TopDevices(snap.Devices)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"devices":         devices,
		"top_devices":     top,
		"high_risk_count": insight.HighRiskCount(top),
	})
}

// handleTimeline serves the attack timeline, newest first.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	timeline := s.Store.Snapshot().Timeline
	if timeline == nil {
		timeline = []domain.TimelineEntry{}
	}
	writeJSON(w, http.StatusOK, timeline)
}

// handlePackets serves the recent-packets table, newest first.
func (s *Server) handlePackets(w http.ResponseWriter, r *http.Request) {
	records := s.Store.Snapshot().Recent
	if records == nil {
		records = []domain.TelemetryRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleSummary serves the session summary and logs it.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Reports.SessionSummary())
}
