package layout

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/MeKo-Tech/kviit/internal/receipt"
)

// genTokens generates tokens with random positions on a receipt-sized
// canvas.
func genTokens() gopter.Gen {
	genToken := gopter.CombineGens(
		gen.IntRange(0, 400),
		gen.IntRange(0, 1200),
	).Map(func(vals []interface{}) receipt.Token {
		left, ok := vals[0].(int)
		if !ok {
			panic("expected int")
		}
		top, ok := vals[1].(int)
		if !ok {
			panic("expected int")
		}
		return receipt.Token{Text: "w", Left: left, Top: top, Width: 20, Height: 12, Confidence: 90}
	})
	return gen.SliceOf(genToken)
}

// TestGroupLines_Partition verifies every input token lands in exactly one
// output line.
func TestGroupLines_Partition(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("line grouping partitions the input", prop.ForAll(
		func(tokens []receipt.Token, epsilon int) bool {
			lines := GroupLines(tokens, epsilon)
			if len(lines) > len(tokens) {
				return false
			}
			total := 0
			for _, line := range lines {
				total += len(line)
			}
			return total == len(tokens)
		},
		genTokens(),
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}

// TestGroupLines_EpsilonMonotonicity verifies a larger tolerance never
// produces more lines: each greedy line start under the larger epsilon is
// at or beyond the corresponding start under the smaller one.
func TestGroupLines_EpsilonMonotonicity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("larger epsilon yields at most as many lines", prop.ForAll(
		func(tokens []receipt.Token, epsilon, extra int) bool {
			narrow := GroupLines(tokens, epsilon)
			wide := GroupLines(tokens, epsilon+extra)
			return len(wide) <= len(narrow)
		},
		genTokens(),
		gen.IntRange(0, 40),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}
