package ui

import (
	"fmt"
	"strings"

	"quoteboard/internal/board"
	"quoteboard/internal/normalize"
	"quoteboard/internal/query"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	pageTitle      = "📋 廠商報價查詢系統"
	noMatchWarning = "查無符合條件的報價，請嘗試調整搜尋字眼。"
	lowestHint     = "💡 提示：系統已自動將「單價」最低的廠商排在最上方。"
)

// QuotePageModel is the interactive quote query page: a vendor selector,
// a keyword box and the ranked result table.
type QuotePageModel struct {
	width  int
	height int
	table  table.Model

	// Data
	snapshot *board.Snapshot
	view     *board.View
	errMsg   string

	// Filter state
	keywordInput   textinput.Model
	keywordFocused bool
	vendors        []string
	vendorIdx      int

	schema      normalize.Schema
	policy      query.Policy
	allLabel    string
	tableHeight int // fixed row count, 0 fits the terminal

	styles Styles
}

// NewQuotePageModel creates the quote page.
func NewQuotePageModel(styles Styles, schema normalize.Schema, policy query.Policy, allLabel string) QuotePageModel {
	headers := ResultHeaders(schema)
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "", Width: 2},
			{Title: headers[0], Width: 18},
			{Title: headers[1], Width: 30},
			{Title: headers[2], Width: 8},
			{Title: headers[3], Width: 12},
			{Title: headers[4], Width: 16},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	ki := textinput.New()
	ki.Placeholder = "輸入品項關鍵字（例如：AWS、螺絲）"
	ki.CharLimit = 64
	ki.Width = 40

	if allLabel == "" {
		allLabel = query.AllVendors
	}

	return QuotePageModel{
		table:        t,
		keywordInput: ki,
		vendors:      []string{query.AllVendors},
		schema:       schema,
		policy:       policy,
		allLabel:     allLabel,
		styles:       styles,
	}
}

// Init initializes the model.
func (m QuotePageModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m QuotePageModel) Update(msg tea.Msg) (QuotePageModel, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.keywordFocused {
			switch msg.String() {
			case "esc", "enter":
				m.keywordFocused = false
				m.keywordInput.Blur()
				return m, nil
			}
		} else {
			switch msg.String() {
			case "/":
				m.keywordFocused = true
				return m, m.keywordInput.Focus()
			case "tab":
				m.cycleVendor(1)
				return m, nil
			case "shift+tab":
				m.cycleVendor(-1)
				return m, nil
			case "c":
				m.ClearFilter()
				return m, nil
			}
		}
	}

	if m.keywordFocused {
		before := m.keywordInput.Value()
		m.keywordInput, cmd = m.keywordInput.Update(msg)
		// Live filtering on each keystroke
		if m.keywordInput.Value() != before {
			m.applyFilter()
		}
		return m, cmd
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *QuotePageModel) cycleVendor(step int) {
	n := len(m.vendors)
	if n == 0 {
		return
	}
	m.vendorIdx = ((m.vendorIdx+step)%n + n) % n
	m.applyFilter()
}

// Filter returns the filter the page currently applies.
func (m QuotePageModel) Filter() query.Filter {
	vendor := query.AllVendors
	if m.vendorIdx < len(m.vendors) {
		vendor = m.vendors[m.vendorIdx]
	}
	return query.Filter{Vendor: vendor, Keyword: m.keywordInput.Value()}
}

// Result returns the current query result, or nil before the first load.
func (m QuotePageModel) Result() *query.Result {
	if m.view == nil {
		return nil
	}
	return &m.view.Result
}

// KeywordFocused reports whether key presses go to the keyword box.
func (m QuotePageModel) KeywordFocused() bool {
	return m.keywordFocused
}

// ErrorMessage returns the load error being shown, if any.
func (m QuotePageModel) ErrorMessage() string {
	return m.errMsg
}

// SetKeyword replaces the keyword and re-runs the query.
func (m *QuotePageModel) SetKeyword(k string) {
	m.keywordInput.SetValue(k)
	m.applyFilter()
}

// SelectVendor selects v when it is one of the listed vendors.
func (m *QuotePageModel) SelectVendor(v string) bool {
	for i, cand := range m.vendors {
		if cand == v {
			m.vendorIdx = i
			m.applyFilter()
			return true
		}
	}
	return false
}

// ClearFilter resets the vendor to all and empties the keyword.
func (m *QuotePageModel) ClearFilter() {
	m.vendorIdx = 0
	m.keywordInput.SetValue("")
	m.applyFilter()
}

// applyFilter re-runs the query against the loaded snapshot.
func (m *QuotePageModel) applyFilter() {
	if m.snapshot == nil {
		return
	}
	m.view = board.Apply(m.snapshot, m.Filter(), m.policy)
	m.updateTableRows()
}

func (m *QuotePageModel) updateTableRows() {
	rows := make([]table.Row, 0, len(m.view.Result.Rows))
	for _, r := range m.view.Result.Rows {
		mark := ""
		if r.Lowest {
			mark = LowestMark
		}
		rows = append(rows, append(table.Row{mark}, RowCells(r)...))
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// SetSnapshot installs a freshly loaded snapshot, keeping the selected
// vendor when it still exists.
func (m *QuotePageModel) SetSnapshot(snap *board.Snapshot) {
	selected := m.Filter().Vendor
	m.snapshot = snap
	m.errMsg = ""
	m.vendors = query.Vendors(snap.Table, m.policy)
	m.vendorIdx = 0
	for i, v := range m.vendors {
		if v == selected {
			m.vendorIdx = i
			break
		}
	}
	m.applyFilter()
}

// SetError shows msg in place of the results.
func (m *QuotePageModel) SetError(msg string) {
	m.errMsg = msg
}

// View renders the page.
func (m QuotePageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render(" "+pageTitle+" ") + "\n\n")

	if m.errMsg != "" {
		sb.WriteString(m.styles.Error.Render(m.errMsg))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(m.renderFilterBar())
	sb.WriteString("\n\n")

	if m.view == nil {
		return sb.String()
	}

	res := m.view.Result
	sb.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("📊 查詢結果 (共 %d 筆資料)", res.Count)))
	sb.WriteString("\n\n")

	if res.Empty() {
		sb.WriteString(m.styles.Warning.Render(noMatchWarning))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(m.styles.Content.Render(m.table.View()))
	sb.WriteString("\n")

	if low := res.Lowest(); len(low) > 0 {
		names := make([]string, 0, len(low))
		for _, r := range low {
			names = append(names, r.Vendor+" "+r.Item)
		}
		line := fmt.Sprintf("%s 最低單價 %s：%s", LowestMark, FormatUnitPrice(res.MinUnitPrice), strings.Join(names, "、"))
		sb.WriteString(m.styles.Lowest.Render(line))
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.Info.Render(lowestHint))
	sb.WriteString("\n")

	return sb.String()
}

// renderFilterBar renders the keyword input and the vendor selector.
func (m QuotePageModel) renderFilterBar() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Bold.Render("🏢 廠商："))
	sb.WriteString(m.renderVendors())
	sb.WriteString("\n")

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Border).
		Padding(0, 1)
	if m.keywordFocused {
		inputStyle = inputStyle.BorderForeground(m.styles.Theme.Primary)
	}
	sb.WriteString(m.styles.Bold.Render("🔍 品項："))
	sb.WriteString(inputStyle.Render(m.keywordInput.View()))
	sb.WriteString("  ")
	sb.WriteString(m.styles.Muted.Render("[/] 關鍵字  [Tab] 廠商  [c] 清除  [r] 重新載入  [q] 離開"))

	return sb.String()
}

func (m QuotePageModel) renderVendors() string {
	parts := make([]string, 0, len(m.vendors))
	for i, v := range m.vendors {
		style := m.styles.Muted
		if i == m.vendorIdx {
			style = lipgloss.NewStyle().
				Foreground(m.styles.Theme.Primary).
				Bold(true).
				Underline(true)
		}
		parts = append(parts, style.Render(VendorLabel(v, m.allLabel)))
	}
	return strings.Join(parts, "  ")
}

// SetSize updates the size.
func (m *QuotePageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.table.SetWidth(w - 4)
	switch {
	case m.tableHeight > 0:
		m.table.SetHeight(m.tableHeight)
	case h > 14:
		m.table.SetHeight(h - 14)
	}
}

// SetTableHeight fixes the number of visible result rows. n <= 0 fits the
// table to the terminal.
func (m *QuotePageModel) SetTableHeight(n int) {
	if n < 0 {
		n = 0
	}
	m.tableHeight = n
	if n > 0 {
		m.table.SetHeight(n)
	}
}
