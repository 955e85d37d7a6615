package web

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/intelliguard-io/intelliguard/internal/adapters/web/middleware"
)

// SetupRoutes builds the full HTTP surface: dashboard API, packet intake,
// SSE stream, websocket and metrics.
func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	// Intake is the only externally-driven write path
	intakeLimiter := middleware.NewRateLimiter(1200, time.Minute)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.Handle("/stream", s.SSEHub).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.WSManager.HandleWebSocket).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/packet", middleware.RateLimit(intakeLimiter)(http.HandlerFunc(s.handlePacketIntake))).Methods(http.MethodPost)
	api.HandleFunc("/unquarantine", s.handleUnquarantine).Methods(http.MethodPost)
	api.HandleFunc("/report/{period}", s.handleReport).Methods(http.MethodGet)
	api.HandleFunc("/intel/analyze", s.handleIntelAnalyze).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/overview", s.handleOverview).Methods(http.MethodGet)
	api.HandleFunc("/devices", s.handleDevices).Methods(http.MethodGet)
	api.HandleFunc("/timeline", s.handleTimeline).Methods(http.MethodGet)
	api.HandleFunc("/charts", s.handleCharts).Methods(http.MethodGet)
	api.HandleFunc("/packets", s.handlePackets).Methods(http.MethodGet)
	api.HandleFunc("/export/live", s.handleExportLive).Methods(http.MethodGet)

	streamAPI := api.PathPrefix("/stream").Subrouter()
	streamAPI.HandleFunc("/start", s.handleStreamStart).Methods(http.MethodPost)
	streamAPI.HandleFunc("/stop", s.handleStreamStop).Methods(http.MethodPost)
	streamAPI.HandleFunc("/reset", s.handleStreamReset).Methods(http.MethodPost)
	streamAPI.HandleFunc("/status", s.handleStreamStatus).Methods(http.MethodGet)

	// Wrap outermost-first: recovery, then logging, then CORS so preflight
	// requests short-circuit after being logged.
	var handler http.Handler = r
	handler = middleware.CORS(s.AllowedOrigin)(handler)
	handler = middleware.RequestLogger(handler)
	handler = middleware.Recovery(handler)
	return handler
}
