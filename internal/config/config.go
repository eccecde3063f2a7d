// Package config loads and validates the kviit application configuration
// from files, environment variables and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/MeKo-Tech/kviit/internal/markup"
	"github.com/MeKo-Tech/kviit/internal/pipeline"
	"github.com/MeKo-Tech/kviit/internal/scan"
	"github.com/MeKo-Tech/kviit/internal/separator"
	"github.com/MeKo-Tech/kviit/internal/tesseract"
)

// Config represents the complete configuration for the kviit application.
// Every reconstruction tunable lives here so call sites never hard-code
// thresholds.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Scan      ScanConfig      `mapstructure:"scan" yaml:"scan" json:"scan"`
	Separator SeparatorConfig `mapstructure:"separator" yaml:"separator" json:"separator"`
	Markup    MarkupConfig    `mapstructure:"markup" yaml:"markup" json:"markup"`
	Tesseract TesseractConfig `mapstructure:"tesseract" yaml:"tesseract" json:"tesseract"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output" json:"output"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server" json:"server"`
}

// ScanConfig tunes the OCR reconstruction front-end.
type ScanConfig struct {
	PriceColumnRatio float64 `mapstructure:"price_column_ratio" yaml:"price_column_ratio" json:"price_column_ratio"`
	NameLineEpsilon  int     `mapstructure:"name_line_epsilon" yaml:"name_line_epsilon" json:"name_line_epsilon"`
	PriceLineEpsilon int     `mapstructure:"price_line_epsilon" yaml:"price_line_epsilon" json:"price_line_epsilon"`
	OutlierThreshold float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold" json:"outlier_threshold"`
	DiscountMarker   string  `mapstructure:"discount_marker" yaml:"discount_marker" json:"discount_marker"`
	StoreInfoStart   string  `mapstructure:"store_info_start" yaml:"store_info_start" json:"store_info_start"`
	StoreInfoEnd     string  `mapstructure:"store_info_end" yaml:"store_info_end" json:"store_info_end"`
}

// SeparatorConfig tunes horizontal ruling detection.
type SeparatorConfig struct {
	InkThreshold   uint8   `mapstructure:"ink_threshold" yaml:"ink_threshold" json:"ink_threshold"`
	MinRowCoverage float64 `mapstructure:"min_row_coverage" yaml:"min_row_coverage" json:"min_row_coverage"`
	MergeGap       int     `mapstructure:"merge_gap" yaml:"merge_gap" json:"merge_gap"`
}

// MarkupConfig tunes the HTML front-end.
type MarkupConfig struct {
	DiscountCutoff float64 `mapstructure:"discount_cutoff" yaml:"discount_cutoff" json:"discount_cutoff"`
}

// TesseractConfig locates the OCR binary.
type TesseractConfig struct {
	Binary         string `mapstructure:"binary" yaml:"binary" json:"binary"`
	Language       string `mapstructure:"language" yaml:"language" json:"language"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host        string `mapstructure:"host" yaml:"host" json:"host"`
	Port        int    `mapstructure:"port" yaml:"port" json:"port"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	CORSOrigin  string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
}

// Default returns the configuration defaults.
func Default() *Config {
	scanDef := scan.DefaultConfig()
	sepDef := separator.DefaultConfig()
	tessDef := tesseract.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Scan: ScanConfig{
			PriceColumnRatio: scanDef.PriceColumnRatio,
			NameLineEpsilon:  scanDef.NameLineEpsilon,
			PriceLineEpsilon: scanDef.PriceLineEpsilon,
			OutlierThreshold: scanDef.OutlierThreshold,
			DiscountMarker:   scanDef.DiscountMarker,
			StoreInfoStart:   scanDef.StoreInfoStart,
			StoreInfoEnd:     scanDef.StoreInfoEnd,
		},
		Separator: SeparatorConfig{
			InkThreshold:   sepDef.InkThreshold,
			MinRowCoverage: sepDef.MinRowCoverage,
			MergeGap:       sepDef.MergeGap,
		},
		Markup: MarkupConfig{
			DiscountCutoff: markup.DefaultConfig().DiscountCutoff,
		},
		Tesseract: TesseractConfig{
			Binary:         tessDef.Binary,
			Language:       tessDef.Language,
			TimeoutSeconds: int(tessDef.Timeout / time.Second),
		},
		Output: OutputConfig{Format: "json"},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			MaxUploadMB: 20,
			CORSOrigin:  "*",
		},
	}
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.Scan.PriceColumnRatio <= 0 || c.Scan.PriceColumnRatio >= 1 {
		return fmt.Errorf("scan.price_column_ratio %v outside (0,1)", c.Scan.PriceColumnRatio)
	}
	if c.Scan.NameLineEpsilon < 0 || c.Scan.PriceLineEpsilon < 0 {
		return fmt.Errorf("line epsilons must be non-negative")
	}
	if c.Scan.OutlierThreshold <= 0 {
		return fmt.Errorf("scan.outlier_threshold must be positive")
	}
	if c.Markup.DiscountCutoff < 0 || c.Markup.DiscountCutoff > 1 {
		return fmt.Errorf("markup.discount_cutoff %v outside [0,1]", c.Markup.DiscountCutoff)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Output.Format {
	case "json", "yaml", "text":
	default:
		return fmt.Errorf("invalid output format %q", c.Output.Format)
	}
	return nil
}

// PipelineConfig converts to the pipeline component configuration.
func (c *Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		Scan: scan.Config{
			PriceColumnRatio: c.Scan.PriceColumnRatio,
			NameLineEpsilon:  c.Scan.NameLineEpsilon,
			PriceLineEpsilon: c.Scan.PriceLineEpsilon,
			OutlierThreshold: c.Scan.OutlierThreshold,
			DiscountMarker:   c.Scan.DiscountMarker,
			StoreInfoStart:   c.Scan.StoreInfoStart,
			StoreInfoEnd:     c.Scan.StoreInfoEnd,
		},
		Separator: separator.Config{
			InkThreshold:   c.Separator.InkThreshold,
			MinRowCoverage: c.Separator.MinRowCoverage,
			MergeGap:       c.Separator.MergeGap,
		},
		Markup: markup.Config{
			DiscountCutoff: c.Markup.DiscountCutoff,
		},
	}
}

// TesseractClientConfig converts to the OCR client configuration.
func (c *Config) TesseractClientConfig() tesseract.Config {
	return tesseract.Config{
		Binary:   c.Tesseract.Binary,
		Language: c.Tesseract.Language,
		Timeout:  time.Duration(c.Tesseract.TimeoutSeconds) * time.Second,
	}
}
