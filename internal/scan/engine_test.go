package scan

import (
	"fmt"
	"image"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/kviit/internal/receipt"
	"github.com/MeKo-Tech/kviit/internal/testutil"
)

// fakeOCR serves canned recognition results keyed by crop size. The test
// image is 400x400 with rulings at 50, 60, 300 and 310, so every zone and
// column crop has a distinct size.
type fakeOCR struct{}

func (f *fakeOCR) Words(img image.Image, mode RecognitionMode) ([]receipt.Token, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	switch {
	case w == 300 && h == 250:
		if mode != ModeBlock {
			return nil, fmt.Errorf("name column wants block mode")
		}
		return []receipt.Token{
			testutil.Token("Piim", 10, 10, 60, 20),
			testutil.Token("2,5%", 80, 40, 50, 20),
			testutil.Token("Allah.", 10, 130, 70, 20),
			testutil.Token("Leib", 10, 180, 55, 20),
		}, nil
	case w == 100 && h == 250:
		if mode != ModeSparse {
			return nil, fmt.Errorf("price column wants sparse mode")
		}
		return []receipt.Token{
			testutil.Token("3,19", 10, 100, 40, 20),
			testutil.Token("0,40", 55, 100, 40, 20),
			testutil.Token("1,29", 10, 200, 40, 20),
		}, nil
	}
	return nil, fmt.Errorf("unexpected %dx%d word crop", w, h)
}

func (f *fakeOCR) Text(img image.Image) (string, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	switch {
	case w == 400 && h == 50:
		return "RIMI Eesti Food AS\nKMKNR EE101228345\nPohja-Tallinna\nKopli 48\nwww.rimi.ee", nil
	case w == 400 && h == 90:
		return "KUUPAEV: 27.08.2026 AEG: 18:45:12\nKOKKU: 4,48", nil
	}
	return "", fmt.Errorf("unexpected %dx%d text crop", w, h)
}

type fakeRulings struct {
	lines []int
	err   error
}

func (f *fakeRulings) HorizontalLines(image.Image) ([]int, error) {
	return f.lines, f.err
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), &fakeOCR{},
		&fakeRulings{lines: []int{50, 60, 300, 310}}, slog.Default())
	require.NoError(t, err)
	return e
}

func TestParse_ReconstructsReceipt(t *testing.T) {
	e := newTestEngine(t)
	img := testutil.RuledImage(400, 400, 50, 60, 300, 310)

	rec, err := e.Parse(img)
	require.NoError(t, err)

	assert.Equal(t, "Pohja-Tallinna, Kopli 48", rec.Location)
	assert.Equal(t, "27.08.2026 18:45:12", rec.Datetime)
	require.NotNil(t, rec.Total)
	assert.InDelta(t, 4.48, *rec.Total, 1e-9)

	require.Len(t, rec.Items, 2)

	// The discounted item keeps its wrapped description; the marker and
	// its tail do not leak into the name.
	piim := rec.Items[0]
	assert.Equal(t, "Piim 2,5%", piim.Name)
	require.NotNil(t, piim.Price)
	assert.InDelta(t, 3.19, *piim.Price, 1e-9)

	leib := rec.Items[1]
	assert.Equal(t, "Leib", leib.Name)
	require.NotNil(t, leib.Price)
	assert.InDelta(t, 1.29, *leib.Price, 1e-9)
}

func TestParse_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	img := testutil.RuledImage(400, 400, 50, 60, 300, 310)

	first, err := e.Parse(img)
	require.NoError(t, err)
	second, err := e.Parse(img)
	require.NoError(t, err)

	a, err := first.ToJSON()
	require.NoError(t, err)
	b, err := second.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParse_RulingFailureIsFatal(t *testing.T) {
	e, err := NewEngine(DefaultConfig(), &fakeOCR{},
		&fakeRulings{err: fmt.Errorf("no rulings found")}, slog.Default())
	require.NoError(t, err)

	_, err = e.Parse(testutil.RuledImage(400, 400))
	assert.Error(t, err)
}

func TestNewEngine_Validation(t *testing.T) {
	cfg := DefaultConfig()

	_, err := NewEngine(cfg, nil, &fakeRulings{}, nil)
	assert.Error(t, err)

	_, err = NewEngine(cfg, &fakeOCR{}, nil, nil)
	assert.Error(t, err)

	bad := cfg
	bad.PriceColumnRatio = 1.2
	_, err = NewEngine(bad, &fakeOCR{}, &fakeRulings{}, nil)
	assert.Error(t, err)

	bad = cfg
	bad.DiscountMarker = ""
	_, err = NewEngine(bad, &fakeOCR{}, &fakeRulings{}, nil)
	assert.Error(t, err)
}

func TestParseStoreInfo(t *testing.T) {
	e := newTestEngine(t)

	got := e.parseStoreInfo("header\nKMKNR EE123\nStreet 1\nCity\nwww.example.ee\ntrailer")
	assert.Equal(t, "Street 1, City", got)

	// Without the end marker the remaining lines all count as address.
	got = e.parseStoreInfo("KMKNR EE123\nStreet 1")
	assert.Equal(t, "Street 1", got)

	assert.Equal(t, "", e.parseStoreInfo("no markers here"))
}

func TestParseDatetime(t *testing.T) {
	assert.Equal(t, "27.08.2026 18:45:12",
		parseDatetime("KUUPAEV: 27.08.2026 AEG: 18:45:12"))
	assert.Equal(t, "", parseDatetime("KOKKU: 4,48"))
}

func TestParseTotal(t *testing.T) {
	got := parseTotal("vahesumma 3,19\nKOKKU: 4,48")
	require.NotNil(t, got)
	assert.InDelta(t, 4.48, *got, 1e-9)

	assert.Nil(t, parseTotal("no amounts"))
}
