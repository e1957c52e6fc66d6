// Package main implements docx, the command-line front end of the document
// extraction pipeline.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mlisboa17/assistente-pessoal/internal/app"
	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	offline    bool
	outputJSON bool
	logLevel   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docx",
	Short: "Extract Brazilian payment documents",
	Long: `docx extracts bank slips, Pix receipts, transfers and tax guides from PDFs,
images and pasted text, validates them and suggests a spending category.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (or set DOCX_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Do not connect to GCS, BigQuery or Notion")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level")
}

// setup loads the config and returns a context carrying the logger.
func setup(cmd *cobra.Command) (context.Context, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log := logger.NewWithLevel(cfg.Log.Level)
	return logger.WithContext(cmd.Context(), log), cfg, nil
}

func newApp(cmd *cobra.Command, forceOffline bool) (context.Context, *app.App, error) {
	ctx, cfg, err := setup(cmd)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg, app.Options{Offline: offline || forceOffline})
	if err != nil {
		return nil, nil, err
	}
	return ctx, a, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
