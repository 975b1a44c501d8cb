// Package quote defines the vendor price-quote records shared by the loader,
// normalizer and query stages.
package quote

// Canonical column names, in display order.
const (
	ColVendor    = "vendor"
	ColItem      = "item"
	ColQuantity  = "quantity"
	ColAmount    = "amount"
	ColUnitPrice = "unit_price"
)

// Columns lists the canonical columns in their fixed order.
var Columns = []string{ColVendor, ColItem, ColQuantity, ColAmount, ColUnitPrice}

// Record is one row of the canonical table.
type Record struct {
	Vendor    string  `json:"vendor" yaml:"vendor"`
	Item      string  `json:"item" yaml:"item"`
	Quantity  float64 `json:"quantity" yaml:"quantity"`
	Amount    float64 `json:"amount" yaml:"amount"`
	UnitPrice float64 `json:"unit_price" yaml:"unit_price"` // derived, never read from the source
}

// Table is the canonical five-column quote table.
type Table []Record

// UnitPrice returns amount/quantity, or 0 when quantity is 0.
func UnitPrice(amount, quantity float64) float64 {
	if quantity == 0 {
		return 0
	}
	return amount / quantity
}

// NewRecord builds a record with its unit price derived.
func NewRecord(vendor, item string, quantity, amount float64) Record {
	return Record{
		Vendor:    vendor,
		Item:      item,
		Quantity:  quantity,
		Amount:    amount,
		UnitPrice: UnitPrice(amount, quantity),
	}
}

// RawTable is an untrusted table as read from a source: a header row and
// string cells. Rows are padded to the header width by the loaders.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Cell returns the value at row r, column c, or "" when out of range.
func (t *RawTable) Cell(r, c int) string {
	if r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return ""
	}
	return t.Rows[r][c]
}
