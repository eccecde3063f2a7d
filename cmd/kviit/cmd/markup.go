package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/kviit/internal/pipeline"
)

// markupCmd parses an HTML e-receipt.
var markupCmd = &cobra.Command{
	Use:   "markup [file]",
	Short: "Reconstruct line items from an HTML e-receipt",
	Long: `Parse an e-mailed HTML receipt into structured line items using its
table structure, including the fuzzy join of the discount summary against
the product list.

Examples:
  kviit markup receipt.html
  kviit markup receipt.html --format text`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		pl, err := pipeline.NewBuilder().
			WithConfig(cfg.PipelineConfig()).
			Build()
		if err != nil {
			return err
		}

		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open markup: %w", err)
		}
		defer func() { _ = file.Close() }()

		rec, err := pl.ParseMarkup(file)
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		return writeReceipt(cmd.OutOrStdout(), rec, cfg.Output.Format)
	},
}

func init() {
	rootCmd.AddCommand(markupCmd)
}
