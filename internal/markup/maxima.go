// Package markup parses Maxima e-receipt HTML into a Receipt. The table
// structure gives exact rows, so the geometric reconstruction stages are
// bypassed; only the fuzzy discount join is shared with the scan path.
package markup

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/MeKo-Tech/kviit/internal/match"
	"github.com/MeKo-Tech/kviit/internal/receipt"
)

// Config holds markup front-end tunables.
type Config struct {
	// DiscountCutoff is the minimum name similarity for joining a row of
	// the discount summary to a product.
	DiscountCutoff float64
}

// DefaultConfig returns markup parsing defaults.
func DefaultConfig() Config {
	return Config{DiscountCutoff: match.DefaultCutoff}
}

// Loyalty-program rows inside the payments block that look like discount
// rows but are not.
var loyaltyRowIDs = map[string]bool{
	"aitahCard":           true,
	"receivedMaximaMoney": true,
	"MaximaMoneyBalance":  true,
}

// Parser extracts a Receipt from e-receipt HTML.
type Parser struct {
	cfg Config
}

// NewParser creates a markup parser.
func NewParser(cfg Config) *Parser {
	return &Parser{cfg: cfg}
}

// Parse reads an HTML document and reconstructs the receipt. Bodies in the
// legacy Baltic encodings are transcoded before parsing.
func (p *Parser) Parse(r io.Reader) (receipt.Receipt, error) {
	decoded, err := DecodeCharset(r)
	if err != nil {
		return receipt.Receipt{}, fmt.Errorf("decode markup charset: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return receipt.Receipt{}, fmt.Errorf("parse markup: %w", err)
	}

	rec := receipt.Receipt{
		Location: location(doc),
		Datetime: datetime(doc),
		Total:    totalPrice(doc),
		Items:    products(doc),
	}

	match.ApplyDiscounts(rec.Items, discountRows(doc), p.cfg.DiscountCutoff)
	return rec, nil
}

// location reads the store address from the fifth row of the receipt
// header table.
func location(doc *goquery.Document) string {
	block := doc.Find("table.receipt_table").First().Find("tr").Eq(4).Text()
	lines := strings.Split(strings.TrimSpace(block), "\n")
	if len(lines) < 2 {
		return strings.TrimSpace(block)
	}
	return strings.TrimSpace(lines[1])
}

// datetime reads the purchase timestamp from the last footer row.
func datetime(doc *goquery.Document) string {
	cell := doc.Find("div#Footer tr").Last().Find("td").Last()
	return strings.TrimSpace(cell.Text())
}

func totalPrice(doc *goquery.Document) *float64 {
	cell := doc.Find("tr.totalPrice td").Eq(1)
	return parseEuro(cell.Text())
}

// products walks every table row: three cells make a product line, a
// two-cell "Discount" row attaches to the product right above it.
func products(doc *goquery.Document) []receipt.LineItem {
	var items []receipt.LineItem
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		switch cells.Length() {
		case 3:
			item := receipt.LineItem{
				Name:  strings.TrimSpace(cells.Eq(0).Text()),
				Price: parseEuro(cells.Eq(2).Text()),
			}
			item.Quantity, item.Unit = parseQuantityCell(cells.Eq(1).Text())
			items = append(items, item)
		case 2:
			if len(items) == 0 || !strings.Contains(cells.Eq(0).Text(), "Discount") {
				return
			}
			if d := parseEuro(cells.Eq(1).Text()); d != nil {
				items[len(items)-1].Discount = d
			}
		}
	})
	return items
}

// parseQuantityCell reads the "price × quantity" cell. A bare price means
// a single piece; a "× N kg" suffix is a weighed item.
func parseQuantityCell(text string) (*float64, receipt.Unit) {
	parts := strings.Split(strings.TrimSpace(text), " × ")
	if len(parts) < 2 {
		return receipt.Float(1), receipt.UnitPiece
	}
	q := strings.TrimSpace(parts[1])
	if strings.Contains(q, "kg") {
		w := strings.TrimSpace(strings.ReplaceAll(q, "kg", ""))
		v, err := strconv.ParseFloat(strings.ReplaceAll(w, ",", "."), 64)
		if err != nil {
			return receipt.Float(1), receipt.UnitPiece
		}
		return receipt.Float(v), receipt.UnitKilo
	}
	n, err := strconv.Atoi(q)
	if err != nil {
		return receipt.Float(1), receipt.UnitPiece
	}
	return receipt.Float(float64(n)), receipt.UnitPiece
}

// discountRows collects the discount summary under the totalDiscounts
// marker of the payments block, skipping loyalty-program rows.
func discountRows(doc *goquery.Document) []match.DiscountRow {
	payments := doc.Find("div#payments")
	marker := payments.Find("tr#totalDiscounts")
	if marker.Length() == 0 {
		return nil
	}

	var rows []match.DiscountRow
	collecting := false
	payments.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.Is("#totalDiscounts") {
			collecting = true
			return
		}
		if !collecting {
			return
		}
		if id, ok := row.Attr("id"); ok && loyaltyRowIDs[id] {
			return
		}
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		amount := parseEuro(cells.Eq(1).Text())
		if amount == nil {
			return
		}
		rows = append(rows, match.DiscountRow{
			Name:   strings.TrimSpace(cells.Eq(0).Text()),
			Amount: *amount,
		})
	})
	return rows
}

// parseEuro reads a printed euro amount: currency sign and minus stripped,
// comma decimals accepted. Discounts are stored as positive amounts.
func parseEuro(text string) *float64 {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return receipt.Float(v)
}
