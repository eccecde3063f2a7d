package layout

import (
	"errors"
	"fmt"
	"sort"

	"github.com/MeKo-Tech/kviit/internal/receipt"
)

// ErrNoSeparators reports that no horizontal separators were found, which
// makes zoning, and therefore the whole scan parse, impossible.
var ErrNoSeparators = errors.New("no horizontal separators found")

// Names of the three top-level receipt zones.
const (
	ZoneStoreInfo   = "store_info"
	ZoneProductList = "product_list"
	ZoneTotalInfo   = "total_info"
)

// Zone is a named contiguous vertical slice of the document.
type Zone struct {
	Name   string
	StartY int
	EndY   int
}

// Height returns the vertical extent of the zone.
func (z Zone) Height() int { return z.EndY - z.StartY }

// SplitZones partitions a document of the given height into the three
// top-level zones using the sorted separator y positions: store info above
// the first separator, the product list between the second and the last,
// and totals from the last separator to the document end. The slice
// between the first and second separator is a header gap and is skipped.
func SplitZones(separators []int, docHeight int) ([]Zone, error) {
	if len(separators) == 0 {
		return nil, ErrNoSeparators
	}
	if docHeight <= 0 {
		return nil, fmt.Errorf("invalid document height %d", docHeight)
	}

	ys := make([]int, len(separators))
	copy(ys, separators)
	sort.Ints(ys)

	productStart := ys[0]
	if len(ys) > 1 {
		productStart = ys[1]
	}
	last := ys[len(ys)-1]

	zones := []Zone{
		{Name: ZoneStoreInfo, StartY: 0, EndY: ys[0]},
		{Name: ZoneProductList, StartY: productStart, EndY: last},
		{Name: ZoneTotalInfo, StartY: last, EndY: docHeight},
	}
	return zones, nil
}

// AnchorKind distinguishes the two independent border evidence sources.
type AnchorKind string

const (
	// AnchorName marks the bottom edge of a discount-label token.
	AnchorName AnchorKind = "name"
	// AnchorPrice marks the bottom edge of a detected price token.
	AnchorPrice AnchorKind = "price"
)

// Anchor is one piece of border evidence inside the product zone.
type Anchor struct {
	Kind AnchorKind
	Y    int
}

// InferBorders derives the y coordinates separating consecutive line items
// inside the product zone. Anchors are deduplicated by (kind, y) and walked
// in ascending y order. A price anchor directly followed by a discount
// label is skipped: the label, printed on its own line below the price,
// closes that item. Every other anchor, and always the last one, emits a
// border. The result is framed by 0 and the region height, deduplicated
// and sorted, so consecutive entries bound one item's bucket.
func InferBorders(anchors []Anchor, regionHeight int) []int {
	unique := dedupeAnchors(anchors)

	borders := []int{0}
	for i, a := range unique {
		if i < len(unique)-1 && a.Kind == AnchorPrice && unique[i+1].Kind == AnchorName {
			continue
		}
		borders = append(borders, a.Y)
	}
	borders = append(borders, regionHeight)

	return dedupeInts(borders)
}

func dedupeAnchors(anchors []Anchor) []Anchor {
	sorted := make([]Anchor, len(anchors))
	copy(sorted, anchors)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].Kind < sorted[j].Kind
	})

	unique := sorted[:0]
	for _, a := range sorted {
		if len(unique) > 0 && unique[len(unique)-1] == a {
			continue
		}
		unique = append(unique, a)
	}
	return unique
}

func dedupeInts(vals []int) []int {
	sort.Ints(vals)
	unique := vals[:0]
	for _, v := range vals {
		if len(unique) > 0 && unique[len(unique)-1] == v {
			continue
		}
		unique = append(unique, v)
	}
	return unique
}

// AssignRegions bins tokens into per-item buckets by their vertical
// midpoint against the border list: bucket i covers (borders[i],
// borders[i+1]], with the lowest bucket inclusive at its lower edge.
// Tokens falling outside the border range are dropped.
func AssignRegions(tokens []receipt.Token, borders []int) []receipt.Token {
	if len(borders) < 2 {
		return nil
	}
	assigned := make([]receipt.Token, 0, len(tokens))
	for _, tok := range tokens {
		idx, ok := bucketIndex(tok.MidY(), borders)
		if !ok {
			continue
		}
		tok.RegionIndex = idx
		assigned = append(assigned, tok)
	}
	return assigned
}

func bucketIndex(mid float64, borders []int) (int, bool) {
	lo := float64(borders[0])
	hi := float64(borders[len(borders)-1])
	if mid < lo || mid > hi {
		return 0, false
	}
	if mid == lo {
		return 0, true
	}
	// First border >= mid closes the containing half-open interval.
	idx := sort.Search(len(borders), func(i int) bool { return float64(borders[i]) >= mid })
	return idx - 1, true
}
