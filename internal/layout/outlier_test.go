package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/kviit/internal/receipt"
	"github.com/MeKo-Tech/kviit/internal/testutil"
)

func TestFilterPriceOutliers_RejectsOversizedBox(t *testing.T) {
	tokens := []receipt.Token{
		testutil.Token("1,19", 0, 10, 10, 10),
		testutil.Token("2,49", 0, 40, 10, 10),
		testutil.Token("0,89", 0, 70, 10, 10),
		testutil.Token("3,19", 0, 100, 10, 10),
		testutil.Token("0,45", 0, 130, 10, 10),
		testutil.Token("1,05", 0, 160, 10, 10),
		testutil.Token("2,15", 0, 190, 10, 10),
		testutil.Token("||||", 0, 220, 10, 100), // 10x the others' area
	}
	kept := FilterPriceOutliers(tokens, DefaultOutlierThreshold)
	require.Len(t, kept, 7)
	for _, tok := range kept {
		assert.NotEqual(t, "||||", tok.Text)
	}
}

func TestFilterPriceOutliers_FewerThanTwoIsNoOp(t *testing.T) {
	single := []receipt.Token{testutil.Token("9,99", 0, 0, 10, 10)}
	assert.Equal(t, single, FilterPriceOutliers(single, DefaultOutlierThreshold))
	assert.Empty(t, FilterPriceOutliers(nil, DefaultOutlierThreshold))
}

func TestFilterPriceOutliers_UniformAreasKept(t *testing.T) {
	tokens := []receipt.Token{
		testutil.Token("1,00", 0, 0, 10, 10),
		testutil.Token("2,00", 0, 30, 10, 10),
		testutil.Token("3,00", 0, 60, 10, 10),
	}
	assert.Len(t, FilterPriceOutliers(tokens, DefaultOutlierThreshold), 3)
}

func TestFilterPriceOutliers_DropsRejectedConfidence(t *testing.T) {
	tokens := []receipt.Token{
		testutil.Token("1,00", 0, 0, 10, 10),
		testutil.Token("2,00", 0, 30, 10, 10),
		testutil.RejectedToken("", 0, 60, 10, 10),
	}
	kept := FilterPriceOutliers(tokens, DefaultOutlierThreshold)
	require.Len(t, kept, 2)
	for _, tok := range kept {
		assert.False(t, tok.Rejected())
	}
}
