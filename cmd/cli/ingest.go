package main

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"

	"github.com/mlisboa17/assistente-pessoal/internal/gcsuploader"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
	"github.com/mlisboa17/assistente-pessoal/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	ingestURI    string
	uploadBucket string
	uploadPrefix string
	uploadIngest bool
)

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(uploadCmd)

	ingestCmd.Flags().StringVar(&ingestURI, "gcs-uri", "", "gs:// URI of the document (required)")
	ingestCmd.Flags().StringVar(&extractKind, "kind", "", "Document kind hint")
	_ = ingestCmd.MarkFlagRequired("gcs-uri")

	uploadCmd.Flags().StringVar(&uploadBucket, "bucket", "", "GCS bucket (defaults to gcp.bucket)")
	uploadCmd.Flags().StringVar(&uploadPrefix, "prefix", "uploads", "Object name prefix")
	uploadCmd.Flags().BoolVar(&uploadIngest, "ingest", false, "Extract the document after uploading")
	uploadCmd.Flags().StringVar(&extractKind, "kind", "", "Document kind hint used with --ingest")
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Extract a document stored in GCS",
	Long: `Fetch a document from GCS, extract it and store the record in BigQuery.

Examples:
  docx ingest --gcs-uri gs://my-bucket/uploads/2025/03/01/boleto.pdf`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a local file to GCS",
	Long: `Upload a local file to GCS under prefix/YYYY/MM/DD and print its URI.

Examples:
  docx upload --ingest boleto.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func runIngest(cmd *cobra.Command, args []string) error {
	if _, _, err := gcsuploader.ParseURI(ingestURI); err != nil {
		return err
	}
	hint, err := kindHint()
	if err != nil {
		return err
	}
	if offline {
		return errors.New("ingest needs GCS; drop --offline")
	}

	ctx, a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.FromContext(ctx).Info().Str("gcs_uri", ingestURI).Msg("Starting ingestion")

	res, err := a.Processor.Process(ctx, pipeline.Request{SourceURI: ingestURI, KindHint: hint})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	return printResult(cmd.OutOrStdout(), ingestURI, res)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if offline {
		return errors.New("upload needs GCS; drop --offline")
	}
	hint, err := kindHint()
	if err != nil {
		return err
	}

	ctx, a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	bucket := uploadBucket
	if bucket == "" {
		bucket = a.Config.GCP.Bucket
	}
	if bucket == "" {
		return errors.New("no bucket: pass --bucket or set gcp.bucket")
	}

	path := args[0]
	contentType := mime.TypeByExtension(filepath.Ext(path))
	uri, err := a.Storage.UploadFile(ctx, bucket, uploadPrefix, path, contentType)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), uri)

	if !uploadIngest {
		return nil
	}
	res, err := a.Processor.Process(ctx, pipeline.Request{SourceURI: uri, KindHint: hint})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	return printResult(cmd.OutOrStdout(), uri, res)
}
