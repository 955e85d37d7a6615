package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/intelliguard-io/intelliguard/internal/adapters/reporting"
	"github.com/intelliguard-io/intelliguard/internal/adapters/web/websocket"
	"github.com/intelliguard-io/intelliguard/internal/core/ports"
	"github.com/intelliguard-io/intelliguard/internal/core/services/detection"
	"github.com/intelliguard-io/intelliguard/internal/core/services/insight"
	reportingService "github.com/intelliguard-io/intelliguard/internal/core/services/reporting"
	"github.com/intelliguard-io/intelliguard/internal/core/services/stream"
)

// Server handles HTTP, SSE and WebSocket connections.
type Server struct {
	Addr          string
	AllowedOrigin string

	Controller *stream.Controller
	Scorer     *detection.Scorer
	Calculator *insight.Calculator
	Reports    *reportingService.Builder
	Intel      *reportingService.IntelAnalyzer
	PDF        *reporting.PDFExporter
	Store      ports.Aggregator

	SSEHub    *SSEHub
	WSManager *websocket.WSManager

	srv *http.Server
}

// NewServer creates a new web server. The SSE hub and websocket manager are
// created here; the caller wires them into the stream pipeline.
func NewServer(addr, allowedOrigin string, controller *stream.Controller, scorer *detection.Scorer, calculator *insight.Calculator, reports *reportingService.Builder, intel *reportingService.IntelAnalyzer, pdf *reporting.PDFExporter, store ports.Aggregator) *Server {
	return &Server{
		Addr:          addr,
		AllowedOrigin: allowedOrigin,
		Controller:    controller,
		Scorer:        scorer,
		Calculator:    calculator,
		Reports:       reports,
		Intel:         intel,
		PDF:           pdf,
		Store:         store,
		SSEHub:        NewSSEHub(),
		WSManager:     websocket.NewWSManager(calculator, allowedOrigin),
	}
}

// Run starts the server and the websocket broadcaster, and blocks until the
// context is canceled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.WSManager.Start(ctx)

	handler := SetupRoutes(s)

	// Instrument with OpenTelemetry
	instrumentedHandler := otelhttp.NewHandler(handler, "intelliguard-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		log.Println("Web server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
