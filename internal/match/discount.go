// Package match links discount annotations to the products they reduce
// via approximate string similarity.
package match

import (
	"github.com/pmezard/go-difflib/difflib"

	"github.com/MeKo-Tech/kviit/internal/receipt"
)

// DefaultCutoff is the minimum similarity ratio for a discount row to be
// linked to a product name.
const DefaultCutoff = 0.1

// DiscountRow is a (name, amount) pair from a receipt's discount summary.
type DiscountRow struct {
	Name   string
	Amount float64
}

// Ratio returns the similarity of two strings in [0, 1], computed over
// their character sequences.
func Ratio(a, b string) float64 {
	m := difflib.NewMatcher(chars(a), chars(b))
	return m.Ratio()
}

// BestMatch returns the candidate most similar to name, or false when no
// candidate reaches the cutoff. Matching is case-sensitive and returns at
// most one result. Ties resolve to the earliest candidate, so identical
// inputs always produce identical matches.
func BestMatch(name string, candidates []string, cutoff float64) (int, bool) {
	best := -1
	bestScore := 0.0
	for i, c := range candidates {
		score := Ratio(name, c)
		if score >= cutoff && score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best, best >= 0
}

// ApplyDiscounts joins a discount summary against reconstructed items.
// Each row is matched by name similarity among items whose discount is
// either unset or already equals the row's printed amount; a match sets
// the item's discount. Rows that match nothing are ignored, and items
// without a matching row keep a nil discount: partial output is preferred
// over a failed parse, so no ambiguity ever raises an error.
func ApplyDiscounts(items []receipt.LineItem, rows []DiscountRow, cutoff float64) {
	for _, row := range rows {
		var idx []int
		var names []string
		for i, item := range items {
			if item.Discount == nil || *item.Discount == row.Amount {
				idx = append(idx, i)
				names = append(names, item.Name)
			}
		}
		best, ok := BestMatch(row.Name, names, cutoff)
		if !ok {
			continue
		}
		items[idx[best]].Discount = receipt.Float(row.Amount)
	}
}

func chars(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}
