package tesseract

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Binary: ""})
	assert.Error(t, err)

	c, err := New(Config{Binary: "tesseract", Language: "est"})
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, c.cfg.Timeout)
}

const tsvFixture = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t400\t600\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t12\t34\t60\t22\t96.5\tPiim\n" +
	"5\t1\t1\t1\t1\t2\t80\t34\t50\t22\t91.0\t2,5%\n" +
	"5\t1\t1\t1\t2\t1\t12\t70\t0\t22\t88.0\tbad\n" +
	"5\t1\t1\t1\t2\t2\t12\t70\t40\t22\tNaN?\toops\n"

func TestParseTSV(t *testing.T) {
	tokens, err := ParseTSV([]byte(tsvFixture))
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	// The page marker keeps its reject sentinel for downstream filters.
	assert.True(t, tokens[0].Rejected())

	piim := tokens[1]
	assert.Equal(t, "Piim", piim.Text)
	assert.Equal(t, 12, piim.Left)
	assert.Equal(t, 34, piim.Top)
	assert.Equal(t, 60, piim.Width)
	assert.Equal(t, 22, piim.Height)
	assert.InDelta(t, 96.5, piim.Confidence, 1e-9)

	assert.Equal(t, "2,5%", tokens[2].Text)
}

func TestParseTSV_SkipsMalformedRows(t *testing.T) {
	tokens, err := ParseTSV([]byte(tsvFixture))
	require.NoError(t, err)
	for _, tok := range tokens {
		assert.NotEqual(t, "bad", tok.Text)
		assert.NotEqual(t, "oops", tok.Text)
	}
}

func TestParseTSV_HeaderOnly(t *testing.T) {
	header := strings.SplitN(tsvFixture, "\n", 2)[0] + "\n"
	tokens, err := ParseTSV([]byte(header))
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestParseTSV_ShortRowsIgnored(t *testing.T) {
	tokens, err := ParseTSV([]byte("header\ntoo\tfew\tfields\n"))
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "tesseract", cfg.Binary)
	assert.Equal(t, "est", cfg.Language)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
}
