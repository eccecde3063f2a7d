// Package pipeline composes the front-ends and the reconstruction core
// into one entry point for the CLI and the server.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/kviit/internal/markup"
	"github.com/MeKo-Tech/kviit/internal/pdf"
	"github.com/MeKo-Tech/kviit/internal/receipt"
	"github.com/MeKo-Tech/kviit/internal/scan"
	"github.com/MeKo-Tech/kviit/internal/separator"
)

// ErrNoOCRBackend reports a scan parse attempted on a pipeline built
// without an OCR backend.
var ErrNoOCRBackend = errors.New("pipeline has no OCR backend")

// Config aggregates the component configurations.
type Config struct {
	Scan      scan.Config
	Separator separator.Config
	Markup    markup.Config
}

// DefaultConfig returns a pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Scan:      scan.DefaultConfig(),
		Separator: separator.DefaultConfig(),
		Markup:    markup.DefaultConfig(),
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg    Config
	ocr    scan.OCR
	logger *slog.Logger
}

// NewBuilder creates a pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithOCR sets the OCR backend used for scanned receipts. Without one the
// pipeline still parses markup receipts.
func (b *Builder) WithOCR(ocr scan.OCR) *Builder {
	b.ocr = ocr
	return b
}

// WithLogger sets the logger for pipeline components.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build wires the configured components into a pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	p := &Pipeline{
		markup: markup.NewParser(b.cfg.Markup),
		logger: b.logger,
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if b.ocr != nil {
		det, err := separator.New(b.cfg.Separator)
		if err != nil {
			return nil, fmt.Errorf("build ruling detector: %w", err)
		}
		engine, err := scan.NewEngine(b.cfg.Scan, b.ocr, det, p.logger)
		if err != nil {
			return nil, fmt.Errorf("build scan engine: %w", err)
		}
		p.engine = engine
	}
	return p, nil
}

// Pipeline parses receipts from rasters, PDFs and markup. Parses are
// independent; a pipeline may serve them concurrently.
type Pipeline struct {
	engine *scan.Engine
	markup *markup.Parser
	logger *slog.Logger
}

// ParseImage reconstructs a receipt from a raster scan.
func (p *Pipeline) ParseImage(img image.Image) (receipt.Receipt, error) {
	if p.engine == nil {
		return receipt.Receipt{}, ErrNoOCRBackend
	}
	return p.engine.Parse(img)
}

// ParseImageFile reconstructs a receipt from an image file.
func (p *Pipeline) ParseImageFile(path string) (receipt.Receipt, error) {
	file, err := os.Open(path) //nolint:gosec // user-provided input path
	if err != nil {
		return receipt.Receipt{}, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return receipt.Receipt{}, fmt.Errorf("decode image %s: %w", path, err)
	}
	return p.ParseImage(img)
}

// ParsePDF rasterizes the first page of a PDF receipt and scans it.
func (p *Pipeline) ParsePDF(path string) (receipt.Receipt, error) {
	if p.engine == nil {
		return receipt.Receipt{}, ErrNoOCRBackend
	}
	img, err := pdf.FirstPageImage(path)
	if err != nil {
		return receipt.Receipt{}, fmt.Errorf("rasterize %s: %w", path, err)
	}
	return p.ParseImage(img)
}

// ParseMarkup reconstructs a receipt from e-receipt HTML.
func (p *Pipeline) ParseMarkup(r io.Reader) (receipt.Receipt, error) {
	return p.markup.Parse(r)
}
