package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"github.com/mlisboa17/assistente-pessoal/internal/infra/bigquery"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
	"github.com/mlisboa17/assistente-pessoal/internal/notionsync"
)

func main() {
	log := logger.New()

	configPath := flag.String("config", "", "Path to YAML config (or set DOCX_CONFIG)")
	sinceStr := flag.String("since", "", "Export documents created on or after YYYY-MM-DD (required)")
	notionToken := flag.String("notion-token", "", "Notion API token (overrides notion.token)")
	notionDBID := flag.String("notion-db-id", "", "Notion database ID (overrides notion.database_id)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.NewWithLevel(cfg.Log.Level)

	token := cfg.Notion.Token.Value()
	if *notionToken != "" {
		token = *notionToken
	}
	databaseID := cfg.Notion.DatabaseID
	if *notionDBID != "" {
		databaseID = *notionDBID
	}

	if *sinceStr == "" {
		log.Fatal().Msg("Error: --since is required")
	}
	if token == "" {
		log.Fatal().Msg("Error: --notion-token or notion.token is required")
	}
	if databaseID == "" {
		log.Fatal().Msg("Error: --notion-db-id or notion.database_id is required")
	}

	since, err := time.Parse("2006-01-02", *sinceStr)
	if err != nil {
		log.Fatal().Err(err).Str("since", *sinceStr).Msg("Error: invalid since format, expected YYYY-MM-DD")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("since", *sinceStr).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	repo, err := bigquery.NewRepository(ctx, cfg.GCP)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	notionClient := notionsync.NewNotionClient(token, databaseID)

	stats, err := notionsync.SyncDocuments(ctx, repo, notionClient, since, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Sync completed: %d created, %d skipped, %d failed.\n", stats.Created, stats.Skipped, stats.Failed)
}
