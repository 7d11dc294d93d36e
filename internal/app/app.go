package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/mpgamer75/code-altice/internal/config"
	"github.com/mpgamer75/code-altice/internal/dataprocessing"
	apperrors "github.com/mpgamer75/code-altice/internal/errors"
	"github.com/mpgamer75/code-altice/internal/events"
	"github.com/mpgamer75/code-altice/internal/exporter"
	"github.com/mpgamer75/code-altice/internal/files"
	"github.com/mpgamer75/code-altice/internal/infrastructure"
	"github.com/mpgamer75/code-altice/internal/middleware"
	"github.com/mpgamer75/code-altice/internal/operations"
	handlers "github.com/mpgamer75/code-altice/internal/transport/http"
	ws "github.com/mpgamer75/code-altice/internal/websocket"
)

const (
	// VERSION of the secreport binary
	VERSION = "1.0.0"
	AppName = "secreport"

	jobRetention     = 24 * time.Hour
	jobCleanupPeriod = time.Hour
	jobQueueCapacity = 16
)

// Options tunes how an Application is assembled
type Options struct {
	// Logger replaces the logger built from the logging config.
	Logger *slog.Logger
	// Emitter also receives every pipeline event, next to the log and the
	// websocket hub. The CLI uses it to print progress.
	Emitter events.Emitter
}

// Application is the dependency container shared by the CLI commands and
// the HTTP server.
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BatchMetrics
	WebSocketHub  *ws.Hub
	Orchestrator  *operations.Orchestrator
	Files         *files.Manager
	JobStore      *operations.MemoryJobStore
	JobQueue      *operations.JobQueue
	Router        *chi.Mux
	Server        *http.Server

	ownsLogFile bool
}

// New assembles an application from cfg. On failure it releases the log
// file and telemetry providers it opened.
func New(cfg *config.Config, opts Options) (_ *Application, err error) {
	if cfg == nil {
		cfg = config.Default()
	}

	logger := opts.Logger
	ownsLogFile := false
	if logger == nil {
		logger, err = infrastructure.NewLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		ownsLogFile = true
		defer func() {
			if err != nil {
				_ = infrastructure.CloseLogFile()
			}
		}()
	}

	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		if err != nil {
			_ = providers.Shutdown(context.Background())
		}
	}()

	metrics, err := infrastructure.CreateBatchMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch metrics: %w", err)
	}

	templates, err := exporter.LoadTemplates(cfg.Templates)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load templates", err)
	}

	hub := ws.NewHub(logger)
	emitter := events.Multi(events.NewSlogEmitter(infrastructure.WithComponent(logger, "pipeline")), hub, opts.Emitter)

	dispatcher := dataprocessing.NewDefaultDispatcher(
		dataprocessing.ParseMatchPolicy(cfg.Policy.HeaderMatch),
		dataprocessing.DispatcherOptions{
			Emitter:         emitter,
			Tracer:          providers.Tracer,
			FailUnsupported: cfg.Policy.FailUnsupported,
		},
	)

	lister := files.NewDiscovery()
	orch := operations.NewOrchestrator(operations.Options{
		TempDir:                 paths.TempDir,
		Extractor:               dispatcher,
		Lister:                  lister,
		Templates:               templates,
		Emitter:                 emitter,
		Metrics:                 metrics,
		Tracer:                  providers.Tracer,
		Logger:                  logger,
		KeepFailedIntermediates: cfg.Policy.KeepFailedIntermediates,
	})

	store := operations.NewMemoryJobStore()

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		WebSocketHub:  hub,
		Orchestrator:  orch,
		Files:         files.NewManager(paths, lister, logger),
		JobStore:      store,
		JobQueue:      operations.NewJobQueue(orch, paths, store, emitter, logger, jobQueueCapacity),
		ownsLogFile:   ownsLogFile,
	}
	a.setupRouter()
	a.createServer()
	return a, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.TraceID)

	// The websocket route stays outside the group: its handler must see the
	// raw ResponseWriter to hijack the connection.
	r.Get("/ws", ws.ServeWS(a.WebSocketHub, a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Tracing(a.OTelProviders.Tracer))
		r.Use(middleware.StructuredLogger(a.Logger))
		r.Use(middleware.Recoverer(a.Logger))
		r.Use(middleware.NewRateLimiter(a.Config.Server.RateLimitRPS, a.Config.Server.RateLimitBurst, a.Logger).Handler)

		r.Get("/healthz", handlers.NewHealthHandler(VERSION, a.WebSocketHub).HealthCheck)

		errorHandler := apperrors.NewErrorHandler(a.Logger)
		jobs := handlers.NewJobsHandler(a.JobQueue, errorHandler, a.Logger)

		r.Route("/api", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Mount("/files", handlers.NewFilesHandler(a.Files, errorHandler, a.Config.Server.MaxUploadBytes, a.Logger).Routes())
			r.Mount("/phases", jobs.PhaseRoutes())
			r.Mount("/jobs", jobs.Routes())
		})
	})

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// Serve runs the HTTP server, the job queue, the websocket hub and the job
// janitor until ctx is done or one of them fails, then shuts down.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.Paths.EnsureDirectories(); err != nil {
		return apperrors.NewConfigError("failed to create working directories", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.WebSocketHub.RunContext(gctx) })
	g.Go(func() error { return a.JobQueue.Run(gctx) })
	g.Go(func() error { return a.cleanupJobs(gctx) })

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("input_dir", a.Paths.InputDir),
			slog.String("temp_dir", a.Paths.TempDir),
			slog.String("output_dir", a.Paths.OutputDir))
		if err := a.Server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *Application) cleanupJobs(ctx context.Context) error {
	ticker := time.NewTicker(jobCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := a.JobStore.CleanupOldJobs(jobRetention); n > 0 {
				a.Logger.Info("Old jobs removed", slog.Int("count", n))
			}
		}
	}
}

// Close flushes telemetry and releases the log file
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.OTelProviders != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.ownsLogFile {
		if err := infrastructure.CloseLogFile(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
