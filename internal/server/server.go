// Package server exposes receipt parsing over HTTP: one route per
// front-end plus health and metrics endpoints.
package server

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/kviit/internal/receipt"
)

// ReceiptParser is the slice of the pipeline the server needs.
type ReceiptParser interface {
	ParseImage(img image.Image) (receipt.Receipt, error)
	ParseMarkup(r io.Reader) (receipt.Receipt, error)
}

// Config holds HTTP server settings.
type Config struct {
	Host        string
	Port        int
	MaxUploadMB int64
	CORSOrigin  string
}

// Server serves receipt parsing requests.
type Server struct {
	cfg    Config
	parser ReceiptParser
	logger *slog.Logger
	http   *http.Server
}

// New creates a server around the given parser.
func New(cfg Config, parser ReceiptParser, logger *slog.Logger) (*Server, error) {
	if parser == nil {
		return nil, fmt.Errorf("no parser configured")
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, parser: parser, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/v1/receipts/image", s.corsMiddleware(s.imageHandler))
	mux.HandleFunc("/v1/receipts/markup", s.corsMiddleware(s.markupHandler))
	mux.Handle("/metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }
