package lineparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/kviit/internal/receipt"
)

func TestParse_WeightWithUnitPriceMarker(t *testing.T) {
	res := Parse("Bananas 1,2 kg X 1,50")
	assert.Equal(t, "Bananas", res.Name)
	require.NotNil(t, res.Quantity)
	assert.InDelta(t, 1200, *res.Quantity, 1e-9)
	assert.Equal(t, receipt.UnitGram, res.Unit)
}

func TestParse_Pieces(t *testing.T) {
	res := Parse("Yoghurt 4 tk")
	assert.Equal(t, "Yoghurt", res.Name)
	require.NotNil(t, res.Quantity)
	assert.InDelta(t, 4, *res.Quantity, 1e-9)
	assert.Equal(t, receipt.UnitPieces, res.Unit)
}

func TestParse_NoMarkers(t *testing.T) {
	res := Parse("Bread")
	assert.Equal(t, "Bread", res.Name)
	assert.Nil(t, res.Quantity)
	assert.Equal(t, receipt.Unit(""), res.Unit)
}

func TestParse_WeightTimesPieces(t *testing.T) {
	// A piece count next to a weight repeats the printed weight.
	res := Parse("Juust 200 g 2 tk")
	assert.Equal(t, "Juust", res.Name)
	require.NotNil(t, res.Quantity)
	assert.InDelta(t, 400, *res.Quantity, 1e-9)
	assert.Equal(t, receipt.UnitGram, res.Unit)
}

func TestParse_GramsStayGrams(t *testing.T) {
	res := Parse("Sink 300 g")
	require.NotNil(t, res.Quantity)
	assert.InDelta(t, 300, *res.Quantity, 1e-9)
	assert.Equal(t, receipt.UnitGram, res.Unit)
}

func TestParse_CollapsesWhitespace(t *testing.T) {
	res := Parse("  Piim   2,5%   1 tk ")
	assert.Equal(t, "Piim 2,5%", res.Name)
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpaces("  a\t b \n c "))
	assert.Equal(t, "", CollapseSpaces("   "))
}
