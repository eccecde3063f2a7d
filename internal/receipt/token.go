package receipt

import (
	"errors"
	"fmt"
)

// RejectedConfidence marks tokens the recognizer refused to score.
// Such tokens are always dropped before any clustering step.
const RejectedConfidence = -1

// ErrMalformedToken reports a token with non-positive box dimensions.
var ErrMalformedToken = errors.New("malformed token geometry")

// Token is a single recognized text fragment with its bounding box in
// pixel coordinates (origin top-left).
type Token struct {
	Text       string
	Left       int
	Top        int
	Width      int
	Height     int
	Confidence float64

	// RegionIndex is the per-item bucket the token was binned into.
	// It is assigned during reconstruction, not supplied by recognizers.
	RegionIndex int
}

// NewToken validates box dimensions and builds a token. Geometric and
// confidence filtering beyond this check happens in later stages.
func NewToken(text string, left, top, width, height int, confidence float64) (Token, error) {
	if width <= 0 || height <= 0 {
		return Token{}, fmt.Errorf("%w: %dx%d box for %q", ErrMalformedToken, width, height, text)
	}
	return Token{
		Text:       text,
		Left:       left,
		Top:        top,
		Width:      width,
		Height:     height,
		Confidence: confidence,
	}, nil
}

// Bottom returns the y coordinate of the token's lower edge.
func (t Token) Bottom() int { return t.Top + t.Height }

// MidY returns the vertical midpoint of the token's box.
func (t Token) MidY() float64 { return float64(t.Top) + float64(t.Height)/2 }

// Area returns the bounding-box area in square pixels.
func (t Token) Area() float64 { return float64(t.Width) * float64(t.Height) }

// Rejected reports whether the recognizer marked the token as unusable.
func (t Token) Rejected() bool { return t.Confidence == RejectedConfidence }
