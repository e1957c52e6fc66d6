package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mlisboa17/assistente-pessoal/internal/api"
	"github.com/mlisboa17/assistente-pessoal/internal/api/handlers"
	"github.com/mlisboa17/assistente-pessoal/internal/api/middleware"
	"github.com/mlisboa17/assistente-pessoal/internal/app"
	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"github.com/mlisboa17/assistente-pessoal/internal/jobs/inmemory"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (or set DOCX_CONFIG)")
		port       = flag.Int("port", 0, "HTTP server port (overrides server.port)")
		offline    = flag.Bool("offline", false, "Do not connect to GCS, BigQuery or Notion")
	)
	flag.Parse()

	bootLog := logger.New()
	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.NewWithLevel(cfg.Log.Level)
	ctx := logger.WithContext(context.Background(), log)

	a, err := app.New(ctx, cfg, app.Options{Offline: *offline})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	defer a.Close()

	if cfg.GCP.Bucket == "" {
		log.Warn().Msg("No GCS bucket configured - document uploads will be disabled")
	}

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Jobs, jobStore, inmemory.WithMetrics(a.Metrics))

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Int("workers", cfg.Jobs.Workers).Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, app.ExtractJobHandler(a.Processor)); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	routes := api.Routes{
		Confirmations: handlers.NewConfirmationsHandler(a.Processor, a.Pending),
		Jobs:          handlers.NewJobsHandler(jobStore),
		Tools:         handlers.NewToolsHandler(a.Categorizer),
		Metrics:       promhttp.Handler(),
	}
	// Assigned only when set so a nil pointer never becomes a non-nil interface.
	var docs handlers.DocumentReader
	if a.Repo != nil {
		docs = a.Repo
	}
	var uploader handlers.Uploader
	if a.Storage != nil {
		uploader = a.Storage
	}
	routes.Documents = handlers.NewDocumentsHandler(a.Processor, docs, uploader, jobQueue, cfg.GCP.Bucket)

	handler := middleware.Chain(api.NewMux(routes),
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.Metrics(a.Metrics),
		middleware.CORS,
	)

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Extraction.OverallTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
