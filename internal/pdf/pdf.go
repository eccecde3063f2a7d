// Package pdf rasterizes emailed PDF receipts for the scan front-end.
// Only the first page is used; receipts are single-page documents.
package pdf

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrNoPageImage reports a PDF whose first page carries no raster image.
var ErrNoPageImage = errors.New("no raster image on first page")

// FirstPageImage extracts the scanned raster from the first page of a PDF
// receipt. Scanned receipts embed the page as a single full-page image,
// which pdfcpu extracts as page_1_*.
func FirstPageImage(filename string) (image.Image, error) {
	tempDir, err := os.MkdirTemp("", "kviit-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	if err := api.ExtractImagesFile(filename, tempDir, []string{"1"}, nil); err != nil {
		return nil, fmt.Errorf("extract images from %s: %w", filename, err)
	}

	path, err := firstPageImagePath(tempDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return loadImageFile(path)
}

// firstPageImagePath picks the first extracted image of page 1, by name
// for determinism when a page carries several images.
func firstPageImagePath(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), "page_1_") {
			candidates = append(candidates, entry.Name())
		}
	}
	if len(candidates) == 0 {
		return "", ErrNoPageImage
	}
	sort.Strings(candidates)
	return filepath.Join(dir, candidates[0]), nil
}

func loadImageFile(path string) (image.Image, error) {
	file, err := os.Open(path) //nolint:gosec // path comes from our own temp dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode extracted page image: %w", err)
	}
	return img, nil
}
