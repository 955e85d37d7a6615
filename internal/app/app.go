package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/intelliguard-io/intelliguard/internal/adapters/ingest"
	"github.com/intelliguard-io/intelliguard/internal/adapters/reporting"
	"github.com/intelliguard-io/intelliguard/internal/adapters/web"
	"github.com/intelliguard-io/intelliguard/internal/config"
	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/core/ports"
	"github.com/intelliguard-io/intelliguard/internal/core/services/aggregation"
	"github.com/intelliguard-io/intelliguard/internal/core/services/detection"
	"github.com/intelliguard-io/intelliguard/internal/core/services/insight"
	reportingService "github.com/intelliguard-io/intelliguard/internal/core/services/reporting"
	"github.com/intelliguard-io/intelliguard/internal/core/services/simulation"
	"github.com/intelliguard-io/intelliguard/internal/core/services/stream"
	"github.com/intelliguard-io/intelliguard/internal/telemetry"
)

// Application holds the core components of the service. It acts as the
// Facade for the entire system, orchestrating the stream pipeline, the
// analysis services and the web server.
type Application struct {
	Config     *config.Config
	Store      *aggregation.Store
	History    *reportingService.History
	Scorer     *detection.Scorer
	Controller *stream.Controller
	WebServer  *web.Server

	source ports.PacketSource
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()

	app.Store = aggregation.NewStore()
	app.History = reportingService.NewHistory(app.Config.HistoryCap)
	app.Scorer = detection.NewScorer()

	// 2. Packet Source
	if err := app.initSource(); err != nil {
		return err
	}

	// 3. Pipeline & Domain Services
	app.Controller = stream.NewController(app.Config.Mode, app.source, app.Store, app.History)

	calculator := insight.NewCalculator(app.Store)
	builder := reportingService.NewBuilder(app.Store, app.History)
	intel := reportingService.NewIntelAnalyzer(app.Store, app.History)

	// 4. Servers & Integration
	app.WebServer = web.NewServer(
		app.Config.Addr,
		app.Config.AllowedOrigin,
		app.Controller,
		app.Scorer,
		calculator,
		builder,
		intel,
		reporting.NewPDFExporter(),
		app.Store,
	)

	app.Controller.AddSink(app.WebServer.SSEHub)
	app.Controller.AddNotifier(app.WebServer.WSManager)
	app.Controller.AddResetter(app.Scorer)

	// Live sources report connection transitions back to the controller so
	// the status endpoint and the dashboards track reconnect attempts.
	if src, ok := app.source.(*ingest.SSESource); ok {
		src.OnState = app.Controller.SetConnState
	}

	return nil
}

// initSource selects the packet source for the configured mode.
func (app *Application) initSource() error {
	switch app.Config.Mode {
	case domain.ModeLive:
		if app.Config.UpstreamURL == "" {
			return fmt.Errorf("live mode requires an upstream URL")
		}
		app.source = ingest.NewSSESource(app.Config.UpstreamURL)
		log.Printf("Live mode: consuming upstream stream at %s", app.Config.UpstreamURL)

	case domain.ModeSimulation:
		gen := simulation.NewGenerator()
		if app.Config.Seed != 0 {
			gen = simulation.NewSeededGenerator(app.Config.Seed)
		}
		app.source = simulation.NewSource(gen)

	default:
		return fmt.Errorf("unknown mode %q", app.Config.Mode)
	}
	return nil
}

// Run starts the application components and manages their execution
// lifecycle. It blocks until the context is canceled or a component fails.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting IntelliGuard components...")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 2)

	go func() {
		if err := app.Controller.Run(runCtx); err != nil {
			errChan <- fmt.Errorf("stream dispatch error: %w", err)
		}
	}()

	go func() {
		log.Printf("Web Server listening on %s", app.Config.Addr)
		if err := app.WebServer.Run(runCtx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	if app.Config.AutoStart {
		app.Controller.StartStream()
	}

	slog.Info("IntelliGuard Ready. Press Ctrl+C to terminate.")

	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
	case err := <-errChan:
		app.cleanup()
		return err
	}

	return app.cleanup()
}

func (app *Application) cleanup() error {
	slog.Info("Cleaning up resources...")
	app.Controller.StopStream()
	return nil
}
