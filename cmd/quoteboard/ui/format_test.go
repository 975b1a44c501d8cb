package ui

import (
	"strings"
	"testing"

	"quoteboard/internal/normalize"
	"quoteboard/internal/query"
	"quoteboard/internal/quote"
)

func TestFormatNumbers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"quantity", FormatQuantity(10), "10"},
		{"fractional quantity", FormatQuantity(2.7), "2"},
		{"amount", FormatAmount(1200), "$ 1200"},
		{"unit price", FormatUnitPrice(4), "$ 4.00"},
		{"unit price rounds", FormatUnitPrice(10.0 / 3.0), "$ 3.33"},
		{"zero", FormatUnitPrice(0), "$ 0.00"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestVendorLabel(t *testing.T) {
	if got := VendorLabel(query.AllVendors, "全部"); got != "全部" {
		t.Errorf("got %q", got)
	}
	if got := VendorLabel("", "全部"); got != "(空白)" {
		t.Errorf("got %q", got)
	}
	if got := VendorLabel("V1", "全部"); got != "V1" {
		t.Errorf("got %q", got)
	}
}

func TestResultHeadersAndCells(t *testing.T) {
	headers := ResultHeaders(normalize.DefaultSchema())
	if len(headers) != 5 || !strings.HasPrefix(headers[4], "單價") {
		t.Fatalf("unexpected headers %v", headers)
	}

	cells := RowCells(query.Row{Record: quote.NewRecord("V1", "Bolt", 10, 100)})
	want := []string{"V1", "Bolt", "10", "$ 100", "$ 10.00"}
	for i := range want {
		if cells[i] != want[i] {
			t.Errorf("cell %d: got %q, want %q", i, cells[i], want[i])
		}
	}
}
