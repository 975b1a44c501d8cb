package ui

import (
	"quoteboard/internal/normalize"
	"quoteboard/internal/query"

	"github.com/shopspring/decimal"
)

// LowestMark flags rows carrying the minimum unit price.
const LowestMark = "★"

// FormatQuantity renders a quantity as an integer.
func FormatQuantity(q float64) string {
	return decimal.NewFromFloat(q).Truncate(0).String()
}

// FormatAmount renders a total price as whole currency units.
func FormatAmount(a float64) string {
	return "$ " + decimal.NewFromFloat(a).Truncate(0).String()
}

// FormatUnitPrice renders a unit price with two decimals.
func FormatUnitPrice(p float64) string {
	return "$ " + decimal.NewFromFloat(p).StringFixed(2)
}

// VendorLabel is how a vendor appears in selectors.
func VendorLabel(v, allLabel string) string {
	switch v {
	case query.AllVendors:
		return allLabel
	case "":
		return "(空白)"
	default:
		return v
	}
}

// ResultHeaders returns the display headers for result rows, named after
// the configured source columns.
func ResultHeaders(s normalize.Schema) []string {
	return []string{s.Vendor, s.Item, s.Quantity, s.Amount, s.UnitPrice + " (低至高)"}
}

// RowCells formats one result row in ResultHeaders order.
func RowCells(r query.Row) []string {
	return []string{
		r.Vendor,
		r.Item,
		FormatQuantity(r.Quantity),
		FormatAmount(r.Amount),
		FormatUnitPrice(r.UnitPrice),
	}
}
