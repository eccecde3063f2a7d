// Package separator finds the horizontal ruling lines a receipt printer
// uses to divide the header, product list and totals sections.
package separator

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/kviit/internal/layout"
)

// Config tunes ruling detection on binarized rasters.
type Config struct {
	// InkThreshold is the luminance below which a pixel counts as ink.
	InkThreshold uint8
	// MinRowCoverage is the fraction of a row's width that must be ink
	// for the row to belong to a ruling. Dashed rulings cover roughly
	// half the width, so this sits well below 1.
	MinRowCoverage float64
	// MergeGap collapses qualifying rows closer than this many pixels
	// into a single ruling.
	MergeGap int
}

// DefaultConfig returns detection defaults tuned for 200dpi receipt scans.
func DefaultConfig() Config {
	return Config{
		InkThreshold:   150,
		MinRowCoverage: 0.4,
		MergeGap:       15,
	}
}

// Detector locates horizontal rulings in receipt images.
type Detector struct {
	cfg Config
}

// New creates a detector with the given configuration.
func New(cfg Config) (*Detector, error) {
	if cfg.MinRowCoverage <= 0 || cfg.MinRowCoverage > 1 {
		return nil, fmt.Errorf("invalid row coverage %v", cfg.MinRowCoverage)
	}
	if cfg.MergeGap < 0 {
		return nil, fmt.Errorf("invalid merge gap %d", cfg.MergeGap)
	}
	return &Detector{cfg: cfg}, nil
}

// HorizontalLines returns the y midpoints of detected rulings in ascending
// order. Finding none is fatal for scan parsing, since without rulings the
// document cannot be zoned.
func (d *Detector) HorizontalLines(img image.Image) ([]int, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	gray := imaging.Grayscale(img)
	w := gray.Bounds().Dx()
	h := gray.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty image: %w", layout.ErrNoSeparators)
	}

	minInk := int(d.cfg.MinRowCoverage * float64(w))
	var bands [][2]int // [startY, endY] of consecutive qualifying rows
	for y := range h {
		ink := 0
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w*4]
		for x := 0; x < w; x++ {
			if row[x*4] < d.cfg.InkThreshold {
				ink++
			}
		}
		if ink < minInk {
			continue
		}
		if n := len(bands); n > 0 && y-bands[n-1][1] <= d.cfg.MergeGap {
			bands[n-1][1] = y
		} else {
			bands = append(bands, [2]int{y, y})
		}
	}

	if len(bands) == 0 {
		return nil, fmt.Errorf("%dx%d image: %w", w, h, layout.ErrNoSeparators)
	}
	lines := make([]int, len(bands))
	for i, b := range bands {
		lines[i] = (b[0] + b[1]) / 2
	}
	return lines, nil
}
