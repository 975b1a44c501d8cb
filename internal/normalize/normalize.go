// Package normalize turns an untrusted RawTable into the canonical quote table.
//
// Every malformed value degrades to 0 rather than failing the load: header
// whitespace is trimmed, thousands separators are stripped from numeric
// cells, absent columns are synthesized, and unit price is recomputed.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"quoteboard/internal/logging"
	"quoteboard/internal/quote"
)

// Schema maps canonical columns to source header names.
type Schema struct {
	Vendor    string `yaml:"vendor"`
	Item      string `yaml:"item"`
	Quantity  string `yaml:"quantity"`
	Amount    string `yaml:"amount"`
	UnitPrice string `yaml:"unit_price"`
}

// DefaultSchema returns the headers used by the quote spreadsheets.
func DefaultSchema() Schema {
	return Schema{
		Vendor:    "廠商",
		Item:      "項目",
		Quantity:  "數量",
		Amount:    "金額",
		UnitPrice: "單價",
	}
}

// Headers returns the source header names in canonical column order.
func (s Schema) Headers() []string {
	return []string{s.Vendor, s.Item, s.Quantity, s.Amount, s.UnitPrice}
}

// Report summarizes what the normalizer had to repair.
type Report struct {
	Rows        int
	Coerced     int      // numeric cells that failed to parse and became 0
	Synthesized []string // canonical columns absent from the source
	Dropped     []string // source columns not in the schema
}

// ParseNumber parses a numeric cell. Commas and surrounding whitespace are
// stripped. It returns (0, false) for anything that is not a finite number.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Normalize converts raw into the canonical table. It never fails.
func Normalize(raw *quote.RawTable, schema Schema) (quote.Table, Report) {
	log := logging.Get(logging.CategoryNormalize)
	var report Report
	if raw == nil {
		report.Synthesized = append([]string(nil), quote.Columns...)
		return quote.Table{}, report
	}

	// First occurrence wins when a header repeats.
	index := make(map[string]int, len(raw.Header))
	for i, h := range raw.Header {
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	wanted := map[string]string{
		schema.Vendor:   quote.ColVendor,
		schema.Item:     quote.ColItem,
		schema.Quantity: quote.ColQuantity,
		schema.Amount:   quote.ColAmount,
	}
	for _, h := range raw.Header {
		h = strings.TrimSpace(h)
		if _, ok := wanted[h]; !ok && h != schema.UnitPrice {
			report.Dropped = append(report.Dropped, h)
		}
	}

	col := func(name, canonical string) int {
		if i, ok := index[name]; ok {
			return i
		}
		report.Synthesized = append(report.Synthesized, canonical)
		return -1
	}
	vendorCol := col(schema.Vendor, quote.ColVendor)
	itemCol := col(schema.Item, quote.ColItem)
	qtyCol := col(schema.Quantity, quote.ColQuantity)
	amountCol := col(schema.Amount, quote.ColAmount)

	number := func(r, c int, name string) float64 {
		if c < 0 {
			return 0
		}
		cell := raw.Cell(r, c)
		f, ok := ParseNumber(cell)
		if !ok {
			report.Coerced++
			log.Debug("row %d: %s=%q coerced to 0", r, name, cell)
		}
		return f
	}
	text := func(r, c int) string {
		if c < 0 {
			return ""
		}
		return raw.Cell(r, c)
	}

	table := make(quote.Table, 0, len(raw.Rows))
	for r := range raw.Rows {
		table = append(table, quote.NewRecord(
			text(r, vendorCol),
			text(r, itemCol),
			number(r, qtyCol, quote.ColQuantity),
			number(r, amountCol, quote.ColAmount),
		))
	}
	report.Rows = len(table)

	if len(report.Synthesized) > 0 {
		log.Warn("synthesized missing columns: %v", report.Synthesized)
	}
	return table, report
}

// Denormalize renders a canonical table back into a RawTable using the
// schema's headers. Normalize(Denormalize(t)) reproduces t.
func Denormalize(t quote.Table, schema Schema) *quote.RawTable {
	raw := &quote.RawTable{
		Header: schema.Headers(),
		Rows:   make([][]string, 0, len(t)),
	}
	for _, rec := range t {
		raw.Rows = append(raw.Rows, []string{
			rec.Vendor,
			rec.Item,
			formatFloat(rec.Quantity),
			formatFloat(rec.Amount),
			formatFloat(rec.UnitPrice),
		})
	}
	return raw
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
