// Package lineparse extracts structured quantity, unit and price-marker
// fields from a concatenated receipt text line.
package lineparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/kviit/internal/receipt"
)

// The three patterns run independently against the original line; spans
// are only removed from the name in the final strip step.
var (
	weightPattern    = regexp.MustCompile(`(\d+(?:,\d+)?)\s*(kg|g)`)
	piecePattern     = regexp.MustCompile(`(\d+(?:,\d+)?)\s*tk`)
	unitPricePattern = regexp.MustCompile(`X\s*\d+,\d+(?:\s|$)`)
)

// Result holds the structured fields recovered from one line. Quantity and
// Unit stay nil/empty when the line carries no quantity markers.
type Result struct {
	Name     string
	Quantity *float64
	Unit     receipt.Unit
}

// Parse extracts quantity and unit from a reading-order joined line and
// strips the matched spans from the product name. A weight is normalized
// to grams; a piece count combined with a weight multiplies it (the count
// repeats the printed weight), a piece count alone stands on its own. The
// per-unit price marker ("X 1,50") is discarded from the name without
// being returned. Lines with no markers yield nil fields, never an error.
func Parse(line string) Result {
	res := Result{Name: line}

	if m := weightPattern.FindStringSubmatch(line); m != nil {
		grams := parseDecimal(m[1])
		if m[2] == "kg" {
			grams *= 1000
		}
		res.Quantity = receipt.Float(grams)
		res.Unit = receipt.UnitGram
	}

	if m := piecePattern.FindStringSubmatch(line); m != nil {
		count := parseDecimal(m[1])
		if res.Unit == receipt.UnitGram {
			res.Quantity = receipt.Float(*res.Quantity * count)
		} else {
			res.Quantity = receipt.Float(count)
			res.Unit = receipt.UnitPieces
		}
	}

	name := weightPattern.ReplaceAllString(res.Name, "")
	name = piecePattern.ReplaceAllString(name, "")
	name = unitPricePattern.ReplaceAllString(name, "")
	res.Name = CollapseSpaces(name)
	return res
}

// CollapseSpaces trims a string and squeezes runs of whitespace into
// single spaces.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseDecimal reads a comma-decimal number as printed on Baltic receipts.
func parseDecimal(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return v
}
