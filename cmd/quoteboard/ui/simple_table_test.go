package ui

import (
	"strings"
	"testing"

	"quoteboard/internal/normalize"
	"quoteboard/internal/query"
	"quoteboard/internal/quote"
)

func TestSimpleTable(t *testing.T) {
	table := NewSimpleTable("Test Table", []string{"Col1", "Col2"})
	table.AddRow("Row1Col1", "Row1Col2")

	styles := NewStyles(LightTheme())
	view := table.View(styles)

	t.Logf("View:\n%q", view)

	if !strings.Contains(view, "Test Table") {
		t.Error("View missing title")
	}
	if !strings.Contains(view, "Row1Col1") {
		t.Error("View missing cell content")
	}
}

func TestSimpleTableEmpty(t *testing.T) {
	table := NewSimpleTable("Empty", []string{"A"})
	if view := table.View(NewStyles(LightTheme())); view != "" {
		t.Errorf("expected empty view, got %q", view)
	}
}

func TestResultTableMarksLowest(t *testing.T) {
	tbl := quote.Table{
		quote.NewRecord("V1", "Bolt", 10, 100),
		quote.NewRecord("V2", "Screw", 5, 20),
	}
	res := query.Run(tbl, query.Unfiltered(), query.DefaultPolicy())

	table := ResultTable("", ResultHeaders(normalize.DefaultSchema()), res)
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0][0] != LowestMark || !table.IsHighlighted(0) {
		t.Errorf("expected first row marked lowest, got %v", table.Rows[0])
	}
	if table.Rows[1][0] != "" || table.IsHighlighted(1) {
		t.Errorf("expected second row unmarked, got %v", table.Rows[1])
	}
	if !strings.Contains(table.View(NewStyles(LightTheme())), "Screw") {
		t.Error("View missing Screw")
	}
}
