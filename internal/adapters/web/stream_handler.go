package web

import (
	"net/http"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
)

// handleIndex serves the service banner.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "IntelliGuard IoT Security API",
		"mode":    s.Controller.Status().Mode,
		"state":   s.Controller.State(),
	})
}

// handleStreamStart activates the configured packet source. Starting an
// already-running stream is a no-op.
func (s *Server) handleStreamStart(w http.ResponseWriter, r *http.Request) {
	s.Controller.StartStream()
	writeJSON(w, http.StatusOK, s.Controller.Status())
}

// handleStreamStop winds the packet source down. Stopping an already-stopped
// stream is a no-op.
func (s *Server) handleStreamStop(w http.ResponseWriter, r *http.Request) {
	s.Controller.StopStream()
	writeJSON(w, http.StatusOK, s.Controller.Status())
}

// handleStreamReset clears all aggregated state in one shot.
func (s *Server) handleStreamReset(w http.ResponseWriter, r *http.Request) {
	s.Controller.ResetAll()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// handleStreamStatus reports the controller state alongside the session's
// record counts.
func (s *Server) handleStreamStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Store.Snapshot()
	writeJSON(w, http.StatusOK, struct {
		domain.StreamStatus
		TotalPackets int `json:"total_packets"`
		NormalCount  int `json:"normal_count"`
		AttackCount  int `json:"attack_count"`
	}{
		StreamStatus: s.Controller.Status(),
		TotalPackets: snap.TotalPackets(),
		NormalCount:  snap.NormalCount,
		AttackCount:  snap.AttackCount,
	})
}
