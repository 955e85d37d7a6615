package web

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/core/services/export"
	"github.com/intelliguard-io/intelliguard/internal/telemetry"
)

// handleExportLive downloads the recent-packets table as CSV (default) or
// JSON. An empty table answers with a notice rather than an error status.
func (s *Server) handleExportLive(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}

	records := s.Store.Snapshot().Recent
	if len(records) == 0 {
		s.WSManager.Notify(domain.StatusEvent{
			Level:   domain.StatusInfo,
			Message: "nothing to export",
			Time:    time.Now(),
		})
		writeJSON(w, http.StatusOK, map[string]string{"status": "empty", "message": "nothing to export"})
		return
	}

	filename := export.LiveFilename(time.Now())

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", strings.TrimSuffix(filename, ".csv")+".json"))
		if err := export.RecordsJSON(w, records); err != nil {
			log.Printf("[EXPORT] json export error: %v", err)
		}
		telemetry.ExportsServed.WithLabelValues("json").Inc()
	default:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		if err := export.RecordsCSV(w, records); err != nil {
			log.Printf("[EXPORT] csv export error: %v", err)
		}
		telemetry.ExportsServed.WithLabelValues("csv").Inc()
	}
}
