package ui

import (
	"strings"

	"quoteboard/internal/query"

	"github.com/charmbracelet/lipgloss"
)

// SimpleTable renders static rows, used for non-interactive output.
type SimpleTable struct {
	Title   string
	Headers []string
	Rows    [][]string

	// highlighted rows render with the Lowest style
	highlighted map[int]bool
}

// NewSimpleTable creates a new SimpleTable with the given title and headers.
func NewSimpleTable(title string, headers []string) *SimpleTable {
	return &SimpleTable{
		Title:       title,
		Headers:     headers,
		Rows:        make([][]string, 0),
		highlighted: make(map[int]bool),
	}
}

// AddRow adds a row to the table.
func (t *SimpleTable) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// AddHighlightedRow adds a row that stands out from the others.
func (t *SimpleTable) AddHighlightedRow(row ...string) {
	t.highlighted[len(t.Rows)] = true
	t.AddRow(row...)
}

// IsHighlighted reports whether row i was added highlighted.
func (t *SimpleTable) IsHighlighted(i int) bool {
	return t.highlighted[i]
}

// ResultTable builds a table of query results with the cheapest rows
// marked and highlighted.
func ResultTable(title string, headers []string, res query.Result) *SimpleTable {
	t := NewSimpleTable(title, append([]string{""}, headers...))
	for _, row := range res.Rows {
		cells := RowCells(row)
		if row.Lowest {
			t.AddHighlightedRow(append([]string{LowestMark}, cells...)...)
			continue
		}
		t.AddRow(append([]string{""}, cells...)...)
	}
	return t
}

// View renders the table using the provided styles.
func (t *SimpleTable) View(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	// Calculate column widths
	colWidths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		colWidths[i] = lipgloss.Width(h)
	}

	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(colWidths) {
				w := lipgloss.Width(cell)
				if w > colWidths[i] {
					colWidths[i] = w
				}
			}
		}
	}

	// lipgloss Width includes padding
	for i := range colWidths {
		colWidths[i] += 2
	}

	headerStyle := styles.Bold.Padding(0, 1)
	rowStyle := styles.Body.Padding(0, 1)
	lowStyle := styles.Lowest.Padding(0, 1)
	sepStyle := styles.Muted

	for i, h := range t.Headers {
		sb.WriteString(headerStyle.Width(colWidths[i]).Render(h))
		if i < len(t.Headers)-1 {
			sb.WriteString(sepStyle.Render("|"))
		}
	}
	sb.WriteString("\n")

	totalWidth := 0
	for _, w := range colWidths {
		totalWidth += w
	}
	totalWidth += len(t.Headers) - 1 // Separators

	sb.WriteString(sepStyle.Render(strings.Repeat("-", totalWidth)) + "\n")

	for r, row := range t.Rows {
		style := rowStyle
		if t.highlighted[r] {
			style = lowStyle
		}
		for i, cell := range row {
			if i < len(colWidths) {
				sb.WriteString(style.Width(colWidths[i]).Render(cell))
				if i < len(row)-1 {
					sb.WriteString(sepStyle.Render("|"))
				}
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
