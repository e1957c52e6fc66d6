package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	infra "github.com/mlisboa17/assistente-pessoal/internal/infra/bigquery"
	"github.com/mlisboa17/assistente-pessoal/internal/normalize"
	"github.com/spf13/cobra"
)

var (
	listKind  string
	listSince string
	listLimit int
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listKind, "kind", "", "Only documents of this kind")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only documents created on or after YYYY-MM-DD")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of documents")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	filter := infra.DocumentFilter{Limit: listLimit}
	if listKind != "" {
		k, ok := domain.ParseKind(listKind)
		if !ok {
			return fmt.Errorf("unknown kind %q", listKind)
		}
		filter.Kind = string(k)
	}
	if listSince != "" {
		t, err := time.Parse("2006-01-02", listSince)
		if err != nil {
			return fmt.Errorf("--since must be YYYY-MM-DD: %w", err)
		}
		filter.Since = t
	}

	ctx, a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.Repo == nil {
		return errors.New("list needs BigQuery: set gcp.project_id and drop --offline")
	}

	rows, err := a.Repo.ListDocuments(ctx, filter)
	if err != nil {
		return err
	}

	if outputJSON {
		docs := make([]domain.ExtractedDocument, 0, len(rows))
		for _, row := range rows {
			doc, _ := row.ToDomain()
			docs = append(docs, doc)
		}
		return writeJSON(cmd.OutOrStdout(), docs)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tAMOUNT\tDATE\tBENEFICIARY\tCATEGORY\tCREATED")
	for _, row := range rows {
		doc, cat := row.ToDomain()
		date := "-"
		if doc.Date != nil {
			date = doc.Date.String()
		}
		category := "-"
		if cat != nil {
			category = string(cat.Category)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			doc.ID, doc.Kind, normalize.FormatBRL(doc.Amount), date, doc.BeneficiaryName, category,
			row.CreatedTS.Format(time.RFC3339))
	}
	return w.Flush()
}
