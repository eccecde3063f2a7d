// Package tesseract shells out to the Tesseract OCR binary and converts
// its TSV word data into receipt tokens. It is the default implementation
// of the scan front-end's OCR capability.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/kviit/internal/receipt"
	"github.com/MeKo-Tech/kviit/internal/scan"
)

// Config locates and configures the Tesseract binary.
type Config struct {
	// Binary is the tesseract executable name or path.
	Binary string
	// Language is the traineddata language passed via -l.
	Language string
	// Timeout bounds a single recognition call.
	Timeout time.Duration
}

// DefaultConfig returns defaults for Estonian retail receipts.
func DefaultConfig() Config {
	return Config{
		Binary:   "tesseract",
		Language: "est",
		Timeout:  60 * time.Second,
	}
}

// Client runs the Tesseract binary per recognition call. It holds no
// per-receipt state.
type Client struct {
	cfg Config
}

// New creates a Tesseract client.
func New(cfg Config) (*Client, error) {
	if cfg.Binary == "" {
		return nil, fmt.Errorf("tesseract binary not configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{cfg: cfg}, nil
}

// Words recognizes word boxes in the image. Sparse mode uses page
// segmentation 11, which suits a price column of scattered figures.
func (c *Client) Words(img image.Image, mode scan.RecognitionMode) ([]receipt.Token, error) {
	args := []string{"stdin", "stdout", "-l", c.cfg.Language}
	if mode == scan.ModeSparse {
		args = append(args, "--psm", "11")
	}
	args = append(args, "tsv")

	out, err := c.run(img, args)
	if err != nil {
		return nil, err
	}
	return ParseTSV(out)
}

// Text recognizes the image as plain text.
func (c *Client) Text(img image.Image) (string, error) {
	out, err := c.run(img, []string{"stdin", "stdout", "-l", c.cfg.Language})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (c *Client) run(img image.Image, args []string) ([]byte, error) {
	var stdin bytes.Buffer
	if err := png.Encode(&stdin, img); err != nil {
		return nil, fmt.Errorf("encode image for tesseract: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.cfg.Binary, args...)
	cmd.Stdin = &stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tesseract %s: %w: %s",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// tsvColumns is the column count of tesseract's TSV data output.
const tsvColumns = 12

// ParseTSV converts tesseract TSV output into tokens. Structural rows
// (page/block/line markers) carry the reject confidence and are kept so
// downstream filters see the same stream the recognizer produced; rows
// with degenerate geometry are dropped row-locally.
func ParseTSV(data []byte) ([]receipt.Token, error) {
	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty tsv output")
	}

	var tokens []receipt.Token
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" { // header or trailing blank
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < tsvColumns {
			continue
		}
		left, err1 := strconv.Atoi(fields[6])
		top, err2 := strconv.Atoi(fields[7])
		width, err3 := strconv.Atoi(fields[8])
		height, err4 := strconv.Atoi(fields[9])
		conf, err5 := strconv.ParseFloat(fields[10], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}
		tok, err := receipt.NewToken(fields[11], left, top, width, height, conf)
		if err != nil {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
