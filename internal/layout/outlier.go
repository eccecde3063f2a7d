package layout

import (
	"math"

	"github.com/MeKo-Tech/kviit/internal/receipt"
)

// DefaultOutlierThreshold is the absolute z-score above which a price
// token's box area counts as an OCR false positive. Receipts with few
// products make the statistic weak, so the threshold is injected
// configuration rather than a fixed law.
const DefaultOutlierThreshold = 0.4

// FilterPriceOutliers drops price tokens whose bounding-box area deviates
// abnormally from the sample, then drops rejected-confidence tokens. Stray
// marks misread as digits diverge sharply in box size from the dominant
// price glyphs. With fewer than two tokens the z-score is undefined and
// the area test is skipped, so single-item receipts still parse.
func FilterPriceOutliers(tokens []receipt.Token, zThreshold float64) []receipt.Token {
	if len(tokens) < 2 {
		return DropRejected(tokens)
	}

	areas := make([]float64, len(tokens))
	var sum float64
	for i, tok := range tokens {
		areas[i] = tok.Area()
		sum += areas[i]
	}
	mean := sum / float64(len(areas))

	var variance float64
	for _, a := range areas {
		d := a - mean
		variance += d * d
	}
	// Population variance, matching the z-score convention.
	variance /= float64(len(areas))
	std := math.Sqrt(variance)

	kept := make([]receipt.Token, 0, len(tokens))
	for i, tok := range tokens {
		if std > 0 && math.Abs((areas[i]-mean)/std) >= zThreshold {
			continue
		}
		if tok.Rejected() {
			continue
		}
		kept = append(kept, tok)
	}
	return kept
}
