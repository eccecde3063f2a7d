// Package testutil provides fixture builders shared by the engine tests.
package testutil

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/kviit/internal/receipt"
)

// Token builds a valid token with full recognition confidence.
func Token(text string, left, top, width, height int) receipt.Token {
	return receipt.Token{
		Text:       text,
		Left:       left,
		Top:        top,
		Width:      width,
		Height:     height,
		Confidence: 95,
	}
}

// RejectedToken builds a token carrying the recognizer's reject sentinel.
func RejectedToken(text string, left, top, width, height int) receipt.Token {
	tok := Token(text, left, top, width, height)
	tok.Confidence = receipt.RejectedConfidence
	return tok
}

// RuledImage builds a white raster with full-width black ruling lines at
// the given y positions.
func RuledImage(width, height int, ruleYs ...int) *image.NRGBA {
	img := imaging.New(width, height, color.White)
	for _, y := range ruleYs {
		for x := range width {
			img.Set(x, y, color.Black)
		}
	}
	return img
}
