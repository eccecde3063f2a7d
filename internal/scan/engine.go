// Package scan reconstructs structured line items from OCR word boxes.
// The OCR engine and the ruling detector are collaborators behind
// capability interfaces; the reconstruction itself is source-agnostic.
package scan

import (
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/kviit/internal/layout"
	"github.com/MeKo-Tech/kviit/internal/lineparse"
	"github.com/MeKo-Tech/kviit/internal/receipt"
)

// RecognitionMode selects the OCR segmentation strategy for a crop.
type RecognitionMode int

const (
	// ModeBlock treats the crop as a uniform block of text.
	ModeBlock RecognitionMode = iota
	// ModeSparse looks for scattered fragments, suiting a price column
	// where figures float far apart.
	ModeSparse
)

// OCR recognizes text in an image region. Implementations are external;
// calls are synchronous and return complete token sets.
type OCR interface {
	// Words returns one token per recognized word with its bounding box
	// in the crop's coordinate space.
	Words(img image.Image, mode RecognitionMode) ([]receipt.Token, error)
	// Text returns the plain recognized text of the crop.
	Text(img image.Image) (string, error)
}

// LineDetector finds horizontal ruling y positions in a raster.
type LineDetector interface {
	HorizontalLines(img image.Image) ([]int, error)
}

// Config holds the scan front-end tunables.
type Config struct {
	// PriceColumnRatio is the horizontal split between product names
	// (left) and prices (right), as a fraction of the zone width.
	PriceColumnRatio float64
	// NameLineEpsilon and PriceLineEpsilon are the vertical tolerances
	// for grouping words into lines in each column. Name lines wrap and
	// drift more than the tightly set price figures.
	NameLineEpsilon  int
	PriceLineEpsilon int
	// OutlierThreshold is the absolute area z-score above which a price
	// token is discarded as recognition noise.
	OutlierThreshold float64
	// DiscountMarker is the lexical prefix of a discount line
	// ("Allah." on Rimi receipts, short for allahindlus).
	DiscountMarker string
	// StoreInfoStart and StoreInfoEnd bracket the address lines in the
	// store header text.
	StoreInfoStart string
	StoreInfoEnd   string
}

// DefaultConfig returns scan defaults tuned on Rimi e-receipts.
func DefaultConfig() Config {
	return Config{
		PriceColumnRatio: 0.75,
		NameLineEpsilon:  30,
		PriceLineEpsilon: 10,
		OutlierThreshold: layout.DefaultOutlierThreshold,
		DiscountMarker:   "Allah.",
		StoreInfoStart:   "KMKNR",
		StoreInfoEnd:     "www",
	}
}

var (
	datetimePattern = regexp.MustCompile(`KUUPAEV:\s*(\d{2}\.\d{2}\.\d{4})\s+AEG:\s*(\d{2}:\d{2}:\d{2})`)
	amountPattern   = regexp.MustCompile(`\d+[.,]\d{2}`)
)

// Engine parses a scanned receipt raster into a Receipt. It keeps no state
// across parses; concurrent use on distinct receipts needs no locking.
type Engine struct {
	cfg      Config
	ocr      OCR
	rulings  LineDetector
	markerRe *regexp.Regexp
	logger   *slog.Logger
}

// NewEngine validates the configuration and wires the collaborators.
func NewEngine(cfg Config, ocr OCR, rulings LineDetector, logger *slog.Logger) (*Engine, error) {
	if ocr == nil {
		return nil, fmt.Errorf("no OCR backend configured")
	}
	if rulings == nil {
		return nil, fmt.Errorf("no ruling detector configured")
	}
	if cfg.PriceColumnRatio <= 0 || cfg.PriceColumnRatio >= 1 {
		return nil, fmt.Errorf("price column ratio %v outside (0,1)", cfg.PriceColumnRatio)
	}
	if cfg.DiscountMarker == "" {
		return nil, fmt.Errorf("discount marker must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:     cfg,
		ocr:     ocr,
		rulings: rulings,
		// The marker and everything after it on the line is noise in a
		// product name.
		markerRe: regexp.MustCompile(regexp.QuoteMeta(cfg.DiscountMarker) + `.*`),
		logger:   logger,
	}, nil
}

// Parse reconstructs a receipt from a raster image. Zoning failures abort
// the parse; token-level noise degrades output quality instead.
func (e *Engine) Parse(img image.Image) (receipt.Receipt, error) {
	seps, err := e.rulings.HorizontalLines(img)
	if err != nil {
		return receipt.Receipt{}, fmt.Errorf("detect rulings: %w", err)
	}
	height := img.Bounds().Dy()
	zones, err := layout.SplitZones(seps, height)
	if err != nil {
		return receipt.Receipt{}, fmt.Errorf("zone %dx%d scan: %w", img.Bounds().Dx(), height, err)
	}

	var rec receipt.Receipt
	for _, zone := range zones {
		crop := cropZone(img, zone)
		switch zone.Name {
		case layout.ZoneStoreInfo:
			text, err := e.ocr.Text(crop)
			if err != nil {
				return receipt.Receipt{}, fmt.Errorf("recognize store info: %w", err)
			}
			rec.Location = e.parseStoreInfo(text)
		case layout.ZoneProductList:
			items, err := e.reconstructItems(crop)
			if err != nil {
				return receipt.Receipt{}, fmt.Errorf("reconstruct products: %w", err)
			}
			rec.Items = items
		case layout.ZoneTotalInfo:
			text, err := e.ocr.Text(crop)
			if err != nil {
				return receipt.Receipt{}, fmt.Errorf("recognize totals: %w", err)
			}
			rec.Datetime = parseDatetime(text)
			rec.Total = parseTotal(text)
		}
	}

	e.logger.Debug("scan parse complete",
		"separators", len(seps), "items", len(rec.Items), "location", rec.Location)
	return rec, nil
}

// reconstructItems runs the geometric pipeline over the product zone:
// column split, outlier filtering, border inference, region binning, line
// grouping and field extraction.
func (e *Engine) reconstructItems(zone image.Image) ([]receipt.LineItem, error) {
	b := zone.Bounds()
	split := int(e.cfg.PriceColumnRatio * float64(b.Dx()))
	nameCrop := imaging.Crop(zone, image.Rect(b.Min.X, b.Min.Y, b.Min.X+split, b.Max.Y))
	priceCrop := imaging.Crop(zone, image.Rect(b.Min.X+split, b.Min.Y, b.Max.X, b.Max.Y))

	priceTokens, err := e.ocr.Words(priceCrop, ModeSparse)
	if err != nil {
		return nil, fmt.Errorf("recognize price column: %w", err)
	}
	priceTokens = layout.FilterPriceOutliers(priceTokens, e.cfg.OutlierThreshold)

	nameTokens, err := e.ocr.Words(nameCrop, ModeBlock)
	if err != nil {
		return nil, fmt.Errorf("recognize name column: %w", err)
	}
	nameTokens = layout.DropRejected(nameTokens)

	anchors := e.collectAnchors(nameTokens, priceTokens)
	borders := layout.InferBorders(anchors, b.Dy())

	nameTokens = layout.AssignRegions(nameTokens, borders)
	priceTokens = layout.AssignRegions(priceTokens, borders)
	nameRegions := groupByRegion(nameTokens)
	priceRegions := groupByRegion(priceTokens)

	items := make([]receipt.LineItem, 0, len(nameRegions))
	for _, idx := range sortedRegionIndexes(nameRegions) {
		// Discount labels mark presence only; the amount is not printed
		// on the label line, so the marker and its tail are dropped.
		name := layout.ConcatenateLines(nameRegions[idx], e.cfg.NameLineEpsilon)
		name = lineparse.CollapseSpaces(e.markerRe.ReplaceAllString(name, ""))
		if name == "" {
			continue
		}

		parsed := lineparse.Parse(name)
		item := receipt.LineItem{
			Name:     parsed.Name,
			Quantity: parsed.Quantity,
			Unit:     parsed.Unit,
		}
		if toks, ok := priceRegions[idx]; ok {
			priceText := layout.ConcatenateLines(toks, e.cfg.PriceLineEpsilon)
			item.Price = firstAmount(priceText)
		}
		items = append(items, item)
	}
	return items, nil
}

// collectAnchors derives border evidence from discount labels on the name
// side and price detections on the price side. Bottom edges are used so a
// border lands under the row that closes an item.
func (e *Engine) collectAnchors(nameTokens, priceTokens []receipt.Token) []layout.Anchor {
	var anchors []layout.Anchor
	for _, tok := range nameTokens {
		if strings.Contains(tok.Text, e.cfg.DiscountMarker) {
			anchors = append(anchors, layout.Anchor{Kind: layout.AnchorName, Y: tok.Bottom()})
		}
	}
	for _, tok := range priceTokens {
		anchors = append(anchors, layout.Anchor{Kind: layout.AnchorPrice, Y: tok.Bottom()})
	}
	return anchors
}

// parseStoreInfo joins the address lines printed between the registration
// number and the web address in the store header.
func (e *Engine) parseStoreInfo(text string) string {
	var address []string
	collecting := false
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.Contains(line, e.cfg.StoreInfoStart):
			collecting = true
		case collecting && strings.Contains(line, e.cfg.StoreInfoEnd):
			return strings.Join(address, ", ")
		case collecting && strings.TrimSpace(line) != "":
			address = append(address, strings.TrimSpace(line))
		}
	}
	return strings.Join(address, ", ")
}

// parseDatetime extracts the printed purchase date and time, empty when
// the totals text does not carry the expected markers.
func parseDatetime(text string) string {
	m := datetimePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1] + " " + m[2]
}

// parseTotal takes the last price-like figure in the totals section as the
// receipt total.
func parseTotal(text string) *float64 {
	all := amountPattern.FindAllString(text, -1)
	if len(all) == 0 {
		return nil
	}
	return parseAmount(all[len(all)-1])
}

// firstAmount extracts the first price-like figure from a price column
// line.
func firstAmount(text string) *float64 {
	m := amountPattern.FindString(text)
	if m == "" {
		return nil
	}
	return parseAmount(m)
}

func parseAmount(s string) *float64 {
	var v float64
	if _, err := fmt.Sscanf(strings.ReplaceAll(s, ",", "."), "%f", &v); err != nil {
		return nil
	}
	return receipt.Float(v)
}

func cropZone(img image.Image, zone layout.Zone) image.Image {
	b := img.Bounds()
	return imaging.Crop(img, image.Rect(b.Min.X, b.Min.Y+zone.StartY, b.Max.X, b.Min.Y+zone.EndY))
}

func groupByRegion(tokens []receipt.Token) map[int][]receipt.Token {
	regions := make(map[int][]receipt.Token)
	for _, tok := range tokens {
		regions[tok.RegionIndex] = append(regions[tok.RegionIndex], tok)
	}
	return regions
}

func sortedRegionIndexes(regions map[int][]receipt.Token) []int {
	idx := make([]int, 0, len(regions))
	for i := range regions {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}
