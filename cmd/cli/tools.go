package main

import (
	"fmt"
	"strings"

	"github.com/mlisboa17/assistente-pessoal/internal/categorizer"
	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"github.com/mlisboa17/assistente-pessoal/internal/taxid"
	"github.com/spf13/cobra"
)

var categorizeRecipient string

func init() {
	rootCmd.AddCommand(categorizeCmd)
	rootCmd.AddCommand(checkTaxIDCmd)

	categorizeCmd.Flags().StringVar(&categorizeRecipient, "recipient", "", "Recipient or merchant name")
}

var categorizeCmd = &cobra.Command{
	Use:   "categorize <text...>",
	Short: "Suggest a spending category",
	Long: `Suggest a spending category from a description and recipient name.

Examples:
  docx categorize "almoço" --recipient "Restaurante Sabor"`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if strings.TrimSpace(text) == "" && strings.TrimSpace(categorizeRecipient) == "" {
			return fmt.Errorf("give a description or --recipient")
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		s := categorizer.New(cfg.Categorizer, categorizer.DefaultKeywords()).Suggest(text, categorizeRecipient)
		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), s)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (confidence %.2f)\n", s.Category, s.Confidence)
		return nil
	},
}

var checkTaxIDCmd = &cobra.Command{
	Use:   "check-taxid <cpf|cnpj...>",
	Short: "Check CPF and CNPJ check digits",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invalid := 0
		for _, id := range args {
			kind := taxid.KindOf(id)
			valid := taxid.Valid(id)
			if !valid {
				invalid++
			}
			if kind == taxid.KindUnknown {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tunknown\tinvalid\n", id)
				continue
			}
			status := "valid"
			if !valid {
				status = "invalid"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", taxid.Mask(id), kind, status)
		}
		if invalid > 0 {
			return fmt.Errorf("%d invalid tax id(s)", invalid)
		}
		return nil
	},
}
