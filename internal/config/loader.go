package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files.
	ConfigFileName = "kviit"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "KVIIT"
)

// Loader handles loading configuration from the layered sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance so cobra flag
// bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load reads configuration from file, environment and defaults, then
// validates it.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
		l.v.AddConfigPath(filepath.Join(home, ".config", "kviit"))
	}
	l.v.AddConfigPath("/etc/kviit")
}

func (l *Loader) setupEnvironment() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

func (l *Loader) setDefaults() {
	def := Default()

	l.v.SetDefault("log_level", def.LogLevel)
	l.v.SetDefault("verbose", def.Verbose)

	l.v.SetDefault("scan.price_column_ratio", def.Scan.PriceColumnRatio)
	l.v.SetDefault("scan.name_line_epsilon", def.Scan.NameLineEpsilon)
	l.v.SetDefault("scan.price_line_epsilon", def.Scan.PriceLineEpsilon)
	l.v.SetDefault("scan.outlier_threshold", def.Scan.OutlierThreshold)
	l.v.SetDefault("scan.discount_marker", def.Scan.DiscountMarker)
	l.v.SetDefault("scan.store_info_start", def.Scan.StoreInfoStart)
	l.v.SetDefault("scan.store_info_end", def.Scan.StoreInfoEnd)

	l.v.SetDefault("separator.ink_threshold", def.Separator.InkThreshold)
	l.v.SetDefault("separator.min_row_coverage", def.Separator.MinRowCoverage)
	l.v.SetDefault("separator.merge_gap", def.Separator.MergeGap)

	l.v.SetDefault("markup.discount_cutoff", def.Markup.DiscountCutoff)

	l.v.SetDefault("tesseract.binary", def.Tesseract.Binary)
	l.v.SetDefault("tesseract.language", def.Tesseract.Language)
	l.v.SetDefault("tesseract.timeout_seconds", def.Tesseract.TimeoutSeconds)

	l.v.SetDefault("output.format", def.Output.Format)

	l.v.SetDefault("server.host", def.Server.Host)
	l.v.SetDefault("server.port", def.Server.Port)
	l.v.SetDefault("server.max_upload_mb", def.Server.MaxUploadMB)
	l.v.SetDefault("server.cors_origin", def.Server.CORSOrigin)
}
