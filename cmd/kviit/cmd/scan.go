package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/kviit/internal/pipeline"
	"github.com/MeKo-Tech/kviit/internal/receipt"
	"github.com/MeKo-Tech/kviit/internal/tesseract"
)

// scanCmd parses a scanned receipt image or PDF.
var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Reconstruct line items from a scanned receipt",
	Long: `Parse a scanned receipt (PNG, JPEG or single-page PDF) into structured
line items using OCR word geometry.

Examples:
  kviit scan receipt.png
  kviit scan receipt.pdf --format yaml
  kviit scan receipt.jpg --tesseract-binary /usr/local/bin/tesseract`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		tessCfg := cfg.TesseractClientConfig()
		if cmd.Flags().Changed("tesseract-binary") {
			tessCfg.Binary, _ = cmd.Flags().GetString("tesseract-binary")
		}
		if cmd.Flags().Changed("language") {
			tessCfg.Language, _ = cmd.Flags().GetString("language")
		}
		ocr, err := tesseract.New(tessCfg)
		if err != nil {
			return err
		}

		pl, err := pipeline.NewBuilder().
			WithConfig(cfg.PipelineConfig()).
			WithOCR(ocr).
			Build()
		if err != nil {
			return err
		}

		path := args[0]
		var rec receipt.Receipt
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			rec, err = pl.ParsePDF(path)
		} else {
			rec, err = pl.ParseImageFile(path)
		}
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		return writeReceipt(cmd.OutOrStdout(), rec, cfg.Output.Format)
	},
}

func init() {
	scanCmd.Flags().String("tesseract-binary", "", "path to the tesseract executable")
	scanCmd.Flags().StringP("language", "l", "", "OCR language (tesseract traineddata name)")
	rootCmd.AddCommand(scanCmd)
}
