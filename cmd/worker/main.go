// Command worker extracts a batch of documents already stored in GCS. URIs
// come from the arguments or, one per line, from stdin. Each URI becomes a
// queued job so failures are retried with backoff.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mlisboa17/assistente-pessoal/internal/app"
	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"github.com/mlisboa17/assistente-pessoal/internal/gcsuploader"
	"github.com/mlisboa17/assistente-pessoal/internal/jobs"
	"github.com/mlisboa17/assistente-pessoal/internal/jobs/inmemory"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
)

const pollInterval = 500 * time.Millisecond

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (or set DOCX_CONFIG)")
		kindHint   = flag.String("kind", "", "Document kind hint applied to every job")
	)
	flag.Parse()

	bootLog := logger.New()
	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.NewWithLevel(cfg.Log.Level)

	uris, err := readURIs(flag.Args())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read URIs")
	}
	if len(uris) == 0 {
		log.Fatal().Msg("No gs:// URIs given")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	defer a.Close()

	// In production, this would be replaced with Cloud Tasks or Pub/Sub
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Jobs, jobStore, inmemory.WithMetrics(a.Metrics))

	if err := jobQueue.Start(ctx, app.ExtractJobHandler(a.Processor)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}
	log.Info().Int("jobs", len(uris)).Int("workers", cfg.Jobs.Workers).Msg("Worker service started")

	published := 0
	for _, uri := range uris {
		job := &jobs.ExtractDocumentJob{SourceURI: uri, KindHint: *kindHint}
		if err := jobQueue.Publish(ctx, job); err != nil {
			log.Error().Err(err).Str("gcs_uri", uri).Msg("Failed to enqueue job")
			continue
		}
		published++
	}

	results := waitForJobs(ctx, jobStore, published)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	failed := 0
	for _, job := range results {
		switch job.Status {
		case jobs.JobStatusCompleted:
			fmt.Printf("%s\t%s\t%s\n", job.SourceURI, job.State, job.DocumentID)
		default:
			failed++
			fmt.Printf("%s\t%s\t%s\n", job.SourceURI, job.Status, job.Error)
		}
	}
	failed += len(uris) - published
	log.Info().Int("jobs", len(results)).Int("failed", failed).Msg("Worker service exited")
	if failed > 0 {
		os.Exit(1)
	}
}

// readURIs validates the URIs from args, falling back to stdin.
func readURIs(args []string) ([]string, error) {
	lines := args
	if len(lines) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
	}

	var uris []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, _, err := gcsuploader.ParseURI(line); err != nil {
			return nil, fmt.Errorf("%q: %w", line, err)
		}
		uris = append(uris, line)
	}
	return uris, nil
}

// waitForJobs polls until every job reached a final state or ctx ends.
func waitForJobs(ctx context.Context, store jobs.JobStore, total int) []*jobs.ExtractDocumentJob {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		all, err := store.ListJobs(ctx, jobs.JobFilter{})
		if err == nil && finished(all) == total {
			return all
		}
		select {
		case <-ctx.Done():
			all, _ = store.ListJobs(context.WithoutCancel(ctx), jobs.JobFilter{})
			return all
		case <-ticker.C:
		}
	}
}

func finished(all []*jobs.ExtractDocumentJob) int {
	n := 0
	for _, job := range all {
		if job.Status == jobs.JobStatusCompleted || job.Status == jobs.JobStatusFailed {
			n++
		}
	}
	return n
}
