package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/core/services/detection"
)

// handlePacketIntake scores one externally submitted packet and feeds the
// result through the stream pipeline.
func (s *Server) handlePacketIntake(w http.ResponseWriter, r *http.Request) {
	var pkt domain.IngestPacket
	if err := json.NewDecoder(r.Body).Decode(&pkt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.Scorer.Process(pkt)
	if err != nil {
		if errors.Is(err, detection.ErrDeviceBlocked) {
			device := pkt.DeviceID
			if device == "" {
				device = "unknown"
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "blocked", "device": device})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.Controller.Submit("intake", rec)
	writeJSON(w, http.StatusOK, rec)
}

// handleUnquarantine manually releases a quarantined device.
func (s *Server) handleUnquarantine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID string `json:"device_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.Scorer.Unquarantine(req.DeviceID); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Device not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("%s unquarantined", req.DeviceID)})
}
