package receipt

import "encoding/json"

// Unit is the quantity unit printed next to a line item.
type Unit string

const (
	UnitPiece  Unit = "pc"
	UnitPieces Unit = "pieces"
	UnitGram   Unit = "g"
	UnitKilo   Unit = "kg"
)

// LineItem is one reconstructed purchase row.
//
// Price, when present, is the pre-discount figure as printed; Discount is
// the non-negative amount subtracted, stored separately and never folded
// into Price by the engine.
type LineItem struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     Unit     `json:"quantity_unit,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Discount *float64 `json:"discount,omitempty"`
}

// Receipt is the result of a single parse. It is constructed once per
// invocation and not mutated afterwards; persistence and presentation
// belong to callers.
type Receipt struct {
	Location string     `json:"location"`
	Datetime string     `json:"datetime,omitempty"`
	Total    *float64   `json:"total,omitempty"`
	Items    []LineItem `json:"items"`
}

// ToJSON renders the receipt as indented JSON.
func (r Receipt) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 { return &v }
