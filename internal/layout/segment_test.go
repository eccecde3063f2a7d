package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/kviit/internal/receipt"
	"github.com/MeKo-Tech/kviit/internal/testutil"
)

func TestSplitZones_NoSeparators(t *testing.T) {
	_, err := SplitZones(nil, 400)
	assert.ErrorIs(t, err, ErrNoSeparators)
}

func TestSplitZones_ThreeZones(t *testing.T) {
	zones, err := SplitZones([]int{50, 60, 300, 310}, 400)
	require.NoError(t, err)
	require.Len(t, zones, 3)

	assert.Equal(t, Zone{ZoneStoreInfo, 0, 50}, zones[0])
	assert.Equal(t, Zone{ZoneProductList, 60, 310}, zones[1])
	assert.Equal(t, Zone{ZoneTotalInfo, 310, 400}, zones[2])

	// Boundaries are strictly increasing and end at the document edge.
	for _, z := range zones {
		assert.Less(t, z.StartY, z.EndY, z.Name)
	}
	assert.Equal(t, 400, zones[2].EndY)
}

func TestSplitZones_UnsortedInput(t *testing.T) {
	zones, err := SplitZones([]int{310, 50, 300, 60}, 400)
	require.NoError(t, err)
	assert.Equal(t, 50, zones[0].EndY)
	assert.Equal(t, 310, zones[2].StartY)
}

func TestInferBorders_PriceRunMergesWrappedDescription(t *testing.T) {
	// Two price detections on the same row and a discount label below:
	// one discounted item spanning several text lines, closed by the
	// label, not by its price.
	anchors := []Anchor{
		{Kind: AnchorPrice, Y: 120},
		{Kind: AnchorPrice, Y: 120},
		{Kind: AnchorName, Y: 150},
	}
	assert.Equal(t, []int{0, 150, 250}, InferBorders(anchors, 250))
}

func TestInferBorders_PriceBeforeLabelDoesNotSplit(t *testing.T) {
	anchors := []Anchor{
		{Kind: AnchorPrice, Y: 100},
		{Kind: AnchorName, Y: 140},
		{Kind: AnchorPrice, Y: 200},
	}
	assert.Equal(t, []int{0, 140, 200, 250}, InferBorders(anchors, 250))
}

func TestInferBorders_ConsecutivePricesEachClose(t *testing.T) {
	anchors := []Anchor{
		{Kind: AnchorPrice, Y: 80},
		{Kind: AnchorPrice, Y: 160},
	}
	assert.Equal(t, []int{0, 80, 160, 240}, InferBorders(anchors, 240))
}

func TestInferBorders_LastAnchorAlwaysFinalizes(t *testing.T) {
	anchors := []Anchor{{Kind: AnchorPrice, Y: 90}}
	assert.Equal(t, []int{0, 90, 200}, InferBorders(anchors, 200))
}

func TestInferBorders_Empty(t *testing.T) {
	assert.Equal(t, []int{0, 100}, InferBorders(nil, 100))
}

func TestInferBorders_BordersSortedUnique(t *testing.T) {
	anchors := []Anchor{
		{Kind: AnchorName, Y: 200},
		{Kind: AnchorPrice, Y: 200},
		{Kind: AnchorPrice, Y: 50},
	}
	borders := InferBorders(anchors, 200)
	for i := 1; i < len(borders); i++ {
		assert.Greater(t, borders[i], borders[i-1])
	}
}

func TestAssignRegions_BinsByMidpoint(t *testing.T) {
	borders := []int{0, 150, 250}
	tokens := []receipt.Token{
		testutil.Token("first", 0, 70, 20, 10),   // mid 75
		testutil.Token("edge", 0, 145, 20, 10),   // mid 150, right-closed
		testutil.Token("second", 0, 151, 20, 10), // mid 156
	}
	assigned := AssignRegions(tokens, borders)
	require.Len(t, assigned, 3)
	assert.Equal(t, 0, assigned[0].RegionIndex)
	assert.Equal(t, 0, assigned[1].RegionIndex)
	assert.Equal(t, 1, assigned[2].RegionIndex)
}

func TestAssignRegions_LowerEdgeInclusive(t *testing.T) {
	// Midpoint exactly on the lowest border still lands in bucket 0.
	tokens := []receipt.Token{{Text: "zero", Left: 0, Top: 0, Width: 10, Height: 0, Confidence: 90}}
	assigned := AssignRegions(tokens, []int{0, 100})
	require.Len(t, assigned, 1)
	assert.Equal(t, 0, assigned[0].RegionIndex)
}

func TestAssignRegions_DropsOutOfRange(t *testing.T) {
	tokens := []receipt.Token{testutil.Token("far", 0, 500, 20, 10)}
	assert.Empty(t, AssignRegions(tokens, []int{0, 100}))
}
