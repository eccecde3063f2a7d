// Package layout recovers structure from positioned receipt tokens:
// grouping words into text lines, zoning a document by its horizontal
// separators, inferring per-item borders inside the product zone, and
// rejecting geometric outliers among price detections.
package layout

import (
	"sort"
	"strings"

	"github.com/MeKo-Tech/kviit/internal/receipt"
)

// GroupLines clusters tokens into reading-order text lines. Tokens are
// sorted by top; a token within epsilon pixels of the current line's
// reference top joins that line, otherwise it opens a new line and becomes
// the new reference. Within each line tokens are ordered by left.
//
// Epsilon must exceed intra-line baseline jitter but stay below inter-line
// spacing; receipts are only roughly uniform in row height, so it is a
// tunable constant rather than an adaptive one.
func GroupLines(tokens []receipt.Token, epsilon int) [][]receipt.Token {
	if len(tokens) == 0 {
		return nil
	}

	sorted := make([]receipt.Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Top < sorted[j].Top })

	var lines [][]receipt.Token
	current := []receipt.Token{sorted[0]}
	refTop := sorted[0].Top

	for _, tok := range sorted[1:] {
		if abs(tok.Top-refTop) <= epsilon {
			current = append(current, tok)
			continue
		}
		lines = append(lines, current)
		current = []receipt.Token{tok}
		refTop = tok.Top
	}
	lines = append(lines, current)

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].Left < line[j].Left })
	}
	return lines
}

// ConcatenateLines joins grouped tokens into a single text blob: words
// joined by spaces within a line, lines joined by spaces top to bottom.
func ConcatenateLines(tokens []receipt.Token, epsilon int) string {
	lines := GroupLines(tokens, epsilon)
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		words := make([]string, 0, len(line))
		for _, tok := range line {
			words = append(words, tok.Text)
		}
		parts = append(parts, strings.Join(words, " "))
	}
	return strings.Join(parts, " ")
}

// DropRejected removes tokens the recognizer marked with the reject
// confidence sentinel.
func DropRejected(tokens []receipt.Token) []receipt.Token {
	kept := make([]receipt.Token, 0, len(tokens))
	for _, tok := range tokens {
		if !tok.Rejected() {
			kept = append(kept, tok)
		}
	}
	return kept
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
