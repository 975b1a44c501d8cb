package normalize

import (
	"math"
	"testing"

	"quoteboard/internal/quote"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(header []string, rows ...[]string) *quote.RawTable {
	return &quote.RawTable{Header: header, Rows: rows}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,200", 1200, true},
		{" 42 ", 42, true},
		{"3.5", 3.5, true},
		{"1,234,567.89", 1234567.89, true},
		{"-7", -7, true},
		{"", 0, false},
		{"abc", 0, false},
		{"nan", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
		{"12元", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDerivesUnitPrice(t *testing.T) {
	s := DefaultSchema()
	table, report := Normalize(raw(
		[]string{"廠商", "項目", "數量", "金額"},
		[]string{"V1", "Bolt", "10", "100"},
		[]string{"V2", "Screw", "5", "20"},
	), s)

	want := quote.Table{
		{Vendor: "V1", Item: "Bolt", Quantity: 10, Amount: 100, UnitPrice: 10},
		{Vendor: "V2", Item: "Screw", Quantity: 5, Amount: 20, UnitPrice: 4},
	}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, report.Rows)
	assert.Zero(t, report.Coerced)
	assert.Empty(t, report.Synthesized)
}

func TestNormalizeStripsThousandsSeparator(t *testing.T) {
	table, _ := Normalize(raw(
		[]string{"廠商", "項目", "數量", "金額"},
		[]string{"V1", "Panel", "3", "1,200"},
	), DefaultSchema())
	require.Len(t, table, 1)
	assert.Equal(t, 1200.0, table[0].Amount)
	assert.Equal(t, 400.0, table[0].UnitPrice)
}

func TestNormalizeTrimsHeaderWhitespace(t *testing.T) {
	table, report := Normalize(raw(
		[]string{" 廠商", "項目 ", "數量\t", " 金額 "},
		[]string{"V1", "Nut", "2", "8"},
	), DefaultSchema())
	require.Len(t, table, 1)
	assert.Equal(t, "V1", table[0].Vendor)
	assert.Equal(t, 4.0, table[0].UnitPrice)
	assert.Empty(t, report.Synthesized)
}

func TestNormalizeMissingAmountColumn(t *testing.T) {
	table, report := Normalize(raw(
		[]string{"廠商", "項目", "數量"},
		[]string{"V1", "Bolt", "10"},
		[]string{"V2", "Screw", "5"},
	), DefaultSchema())
	require.Len(t, table, 2)
	for _, rec := range table {
		assert.Zero(t, rec.Amount)
		assert.Zero(t, rec.UnitPrice)
	}
	assert.Equal(t, []string{quote.ColAmount}, report.Synthesized)
}

func TestNormalizeMissingTextColumns(t *testing.T) {
	table, report := Normalize(raw(
		[]string{"數量", "金額"},
		[]string{"2", "10"},
	), DefaultSchema())
	require.Len(t, table, 1)
	assert.Equal(t, "", table[0].Vendor)
	assert.Equal(t, "", table[0].Item)
	assert.Equal(t, 5.0, table[0].UnitPrice)
	assert.ElementsMatch(t, []string{quote.ColVendor, quote.ColItem}, report.Synthesized)
}

func TestNormalizeCoercesGarbage(t *testing.T) {
	table, report := Normalize(raw(
		[]string{"廠商", "項目", "數量", "金額"},
		[]string{"V1", "Bolt", "n/a", "100"},
		[]string{"V2", "Screw", "5", "call us"},
		[]string{"V3", "Washer", "", ""},
	), DefaultSchema())
	require.Len(t, table, 3)
	assert.Zero(t, table[0].Quantity)
	assert.Zero(t, table[0].UnitPrice)
	assert.Zero(t, table[1].Amount)
	assert.Zero(t, table[1].UnitPrice)
	assert.Equal(t, 4, report.Coerced)
}

func TestNormalizeIgnoresSourceUnitPriceAndExtras(t *testing.T) {
	table, report := Normalize(raw(
		[]string{"廠商", "備註", "項目", "數量", "金額", "單價"},
		[]string{"V1", "rush", "Bolt", "4", "10", "999"},
	), DefaultSchema())
	require.Len(t, table, 1)
	assert.Equal(t, 2.5, table[0].UnitPrice)
	assert.Equal(t, []string{"備註"}, report.Dropped)
}

func TestNormalizeShortRows(t *testing.T) {
	table, _ := Normalize(raw(
		[]string{"廠商", "項目", "數量", "金額"},
		[]string{"V1"},
	), DefaultSchema())
	require.Len(t, table, 1)
	assert.Equal(t, quote.Record{Vendor: "V1"}, table[0])
}

func TestNormalizeNil(t *testing.T) {
	table, report := Normalize(nil, DefaultSchema())
	assert.Empty(t, table)
	assert.Len(t, report.Synthesized, len(quote.Columns))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	s := DefaultSchema()
	first, _ := Normalize(raw(
		[]string{"廠商", "項目", "數量", "金額", "extra"},
		[]string{"V1", "Bolt", "3", "1,000", "x"},
		[]string{"V2", "Screw", "0", "20", "y"},
		[]string{"", "Rivet", "7", "0.7", "z"},
	), s)

	second, report := Normalize(Denormalize(first, s), s)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("normalize not idempotent (-first +second):\n%s", diff)
	}
	assert.Zero(t, report.Coerced)
}

func TestUnitPriceProperties(t *testing.T) {
	table, _ := Normalize(raw(
		[]string{"廠商", "項目", "數量", "金額"},
		[]string{"A", "a", "0", "50"},
		[]string{"B", "b", "3", "10"},
		[]string{"C", "c", "0.5", "7"},
		[]string{"D", "d", "x", "7"},
	), DefaultSchema())

	for _, rec := range table {
		if rec.Quantity == 0 {
			assert.Zero(t, rec.UnitPrice, "quantity 0 must give unit price 0")
			continue
		}
		assert.InDelta(t, rec.Amount/rec.Quantity, rec.UnitPrice, 1e-12)
		assert.False(t, math.IsInf(rec.UnitPrice, 0))
	}
}

func TestCustomSchema(t *testing.T) {
	s := Schema{Vendor: "vendor", Item: "item", Quantity: "qty", Amount: "total", UnitPrice: "unit"}
	table, report := Normalize(raw(
		[]string{"vendor", "item", "qty", "total"},
		[]string{"Acme", "AWS Support", "2", "300"},
	), s)
	require.Len(t, table, 1)
	assert.Equal(t, 150.0, table[0].UnitPrice)
	assert.Empty(t, report.Synthesized)
}
