package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/kviit/internal/pipeline"
	"github.com/MeKo-Tech/kviit/internal/server"
	"github.com/MeKo-Tech/kviit/internal/tesseract"
)

// serveCmd starts the HTTP parsing API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP receipt parsing API",
	Long: `Start an HTTP server exposing receipt parsing.

Endpoints:
  POST /v1/receipts/image  - parse an uploaded receipt scan
  POST /v1/receipts/markup - parse an uploaded HTML e-receipt
  GET  /health             - health check
  GET  /metrics            - prometheus metrics

Examples:
  kviit serve
  kviit serve --host 0.0.0.0 --port 3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		host := cfg.Server.Host
		if cmd.Flags().Changed("host") {
			host, _ = cmd.Flags().GetString("host")
		}
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		ocr, err := tesseract.New(cfg.TesseractClientConfig())
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

		srv, err := server.New(server.Config{
			Host:        host,
			Port:        port,
			MaxUploadMB: cfg.Server.MaxUploadMB,
			CORSOrigin:  cfg.Server.CORSOrigin,
		}, pl, slog.Default())
		if err != nil {
			return err
		}

		// Drain on SIGINT/SIGTERM.
		done := make(chan os.Signal, 1)
		signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-done
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				slog.Error("shutdown failed", "error", err)
			}
		}()

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().String("host", "", "host interface to bind")
	serveCmd.Flags().Int("port", 0, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}
