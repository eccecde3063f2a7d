package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 0.75, cfg.Scan.PriceColumnRatio)
	assert.Equal(t, "Allah.", cfg.Scan.DiscountMarker)
	assert.Equal(t, "est", cfg.Tesseract.Language)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
		{"ratio at one", func(c *Config) { c.Scan.PriceColumnRatio = 1 }},
		{"negative epsilon", func(c *Config) { c.Scan.NameLineEpsilon = -1 }},
		{"zero outlier threshold", func(c *Config) { c.Scan.OutlierThreshold = 0 }},
		{"cutoff above one", func(c *Config) { c.Markup.DiscountCutoff = 1.5 }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPipelineConfig_CarriesTunables(t *testing.T) {
	cfg := Default()
	cfg.Scan.DiscountMarker = "Nuolaida"
	cfg.Separator.MergeGap = 7
	cfg.Markup.DiscountCutoff = 0.25

	pc := cfg.PipelineConfig()
	assert.Equal(t, "Nuolaida", pc.Scan.DiscountMarker)
	assert.Equal(t, 7, pc.Separator.MergeGap)
	assert.Equal(t, 0.25, pc.Markup.DiscountCutoff)
}

func TestTesseractClientConfig(t *testing.T) {
	cfg := Default()
	cfg.Tesseract.TimeoutSeconds = 30

	tc := cfg.TesseractClientConfig()
	assert.Equal(t, "tesseract", tc.Binary)
	assert.Equal(t, 30*time.Second, tc.Timeout)
}
