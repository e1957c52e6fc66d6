package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
	"github.com/mlisboa17/assistente-pessoal/internal/normalize"
	"github.com/mlisboa17/assistente-pessoal/internal/pipeline"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	extractKind     string
	extractParallel int
)

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(extractTextCmd)

	extractCmd.Flags().StringVar(&extractKind, "kind", "", "Document kind hint (boleto, pix, ted, darf, recibo)")
	extractCmd.Flags().IntVar(&extractParallel, "parallel", 4, "Files processed concurrently")
	extractTextCmd.Flags().StringVar(&extractKind, "kind", "", "Document kind hint (boleto, pix, ted, darf, recibo)")
}

var extractCmd = &cobra.Command{
	Use:   "extract <file...>",
	Short: "Extract documents from local PDF or image files",
	Long: `Extract one or more local files through the backend cascade.

Examples:
  # Extract a slip, printing a summary line
  docx extract boleto.pdf

  # Extract a folder of receipts without touching GCP
  docx extract --offline --json comprovantes/*.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

var extractTextCmd = &cobra.Command{
	Use:   "extract-text [file|-]",
	Short: "Extract a document from pasted text",
	Long: `Extract a document from text read from a file or stdin.

Examples:
  pbpaste | docx extract-text --kind pix`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtractText,
}

func kindHint() (*domain.DocumentKind, error) {
	if extractKind == "" {
		return nil, nil
	}
	k, ok := domain.ParseKind(extractKind)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", extractKind)
	}
	return &k, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	hint, err := kindHint()
	if err != nil {
		return err
	}
	ctx, a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	log := logger.FromContext(ctx)

	results := make([]domain.ProcessResult, len(args))
	errs := make([]error, len(args))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(extractParallel, 1))
	for i, path := range args {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				errs[i] = err
				return nil
			}
			fileCtx := logger.WithContext(gctx, log.With().Str("file", filepath.Base(path)).Logger())
			results[i], errs[i] = a.Processor.Process(fileCtx, pipeline.Request{
				SourceURI: "file://" + path,
				Data:      data,
				KindHint:  hint,
			})
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	out := cmd.OutOrStdout()
	for i, path := range args {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, errs[i])
			continue
		}
		if err := printResult(out, path, results[i]); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func runExtractText(cmd *cobra.Command, args []string) error {
	hint, err := kindHint()
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	name := "stdin"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r, name = f, args[0]
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if strings.TrimSpace(string(text)) == "" {
		return fmt.Errorf("%s is empty", name)
	}

	ctx, a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Processor.Process(ctx, pipeline.Request{Text: string(text), KindHint: hint})
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), name, res)
}

func printResult(w io.Writer, name string, res domain.ProcessResult) error {
	if outputJSON {
		return writeJSON(w, res)
	}

	doc := res.Extraction.Document
	status := "stored"
	switch {
	case res.Duplicate:
		status = "duplicate of " + res.ExistingDocumentID
	case res.AwaitingConfirm:
		status = "awaiting confirmation"
	}
	category := string(domain.CategoryOther)
	if res.Category != nil {
		category = string(res.Category.Category)
	}

	fmt.Fprintf(w, "%s: %s %s via %s (%s, confidence %.2f) category=%s id=%s [%s]\n",
		name, doc.Kind, normalize.FormatBRL(doc.Amount), doc.Method,
		res.Extraction.State, doc.Confidence, category, doc.ID, status)
	for _, v := range res.Validation.Violations {
		fmt.Fprintf(w, "  %s %s: %s\n", v.Severity, v.Field, v.Message)
	}
	return nil
}
