package web

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/core/services/export"
	"github.com/intelliguard-io/intelliguard/internal/core/services/reporting"
	"github.com/intelliguard-io/intelliguard/internal/telemetry"
)

// handleReport serves a windowed traffic report as JSON, CSV or PDF.
// Unknown formats fall back to JSON.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	period, err := domain.ParsePeriod(strings.ToLower(mux.Vars(r)["period"]))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period")
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	report := s.Reports.WindowReport(period)
	s.Reports.SessionSummary() // each generated report leaves a session log line
	now := time.Now()

	switch format {
	case "csv":
		filename := export.ReportFilename(period, now)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		if err := export.ReportCSV(w, report); err != nil {
			log.Printf("[REPORT] csv export error: %v", err)
		}
		telemetry.ReportsGenerated.WithLabelValues(string(period), "csv").Inc()
	case "pdf":
		data, err := s.PDF.ExportWindowReport(report, period)
		if err != nil {
			log.Printf("[REPORT] pdf export error: %v", err)
			writeError(w, http.StatusInternalServerError, "report generation failed")
			return
		}
		filename := strings.TrimSuffix(export.ReportFilename(period, now), ".csv") + ".pdf"
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		w.Write(data)
		telemetry.ReportsGenerated.WithLabelValues(string(period), "pdf").Inc()
	default:
		writeJSON(w, http.StatusOK, report)
		telemetry.ReportsGenerated.WithLabelValues(string(period), "json").Inc()
	}
}

// handleIntelAnalyze serves the mocked threat-intelligence summary for the
// trailing window (seconds, default one hour).
func (s *Server) handleIntelAnalyze(w http.ResponseWriter, r *http.Request) {
	window := reporting.DefaultIntelWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			writeError(w, http.StatusBadRequest, "invalid window")
			return
		}
		window = time.Duration(secs) * time.Second
	}

	writeJSON(w, http.StatusOK, s.Intel.Analyze(window))
}
