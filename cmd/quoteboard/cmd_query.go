package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"quoteboard/cmd/quoteboard/ui"
	"quoteboard/internal/board"
	"quoteboard/internal/normalize"
	"quoteboard/internal/query"
	"quoteboard/internal/quote"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Output formats accepted by --format.
const (
	formatTable    = "table"
	formatMarkdown = "markdown"
	formatCSV      = "csv"
)

var (
	queryVendor  string
	queryKeyword string
	queryFormat  string
)

// queryCmd runs one query and prints the ranked result
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query quotes by vendor and item keyword",
	Long: `Loads the source, filters by vendor and item keyword, and prints the
matching quotes sorted by unit price (cheapest first).

Examples:
  quoteboard query --keyword aws
  quoteboard query --vendor "V2" --format markdown
  quoteboard query --source quotes.db#quotes --format csv > cheapest.csv`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

// vendorsCmd lists the vendor selector values
var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "List the distinct vendors in the source",
	Args:  cobra.NoArgs,
	RunE:  listVendors,
}

func init() {
	queryCmd.Flags().StringVar(&queryVendor, "vendor", query.AllVendors, "Exact vendor name, or \"all\"")
	queryCmd.Flags().StringVarP(&queryKeyword, "keyword", "k", "", "Item keyword (substring match)")
	queryCmd.Flags().StringVarP(&queryFormat, "format", "f", formatTable, "Output format: table, markdown, csv")
}

func runQuery(cmd *cobra.Command, args []string) error {
	switch queryFormat {
	case formatTable, formatMarkdown, formatCSV:
	default:
		return fmt.Errorf("unknown format %q (valid: table, markdown, csv)", queryFormat)
	}

	b, d, err := openBoard(cfg)
	if err != nil {
		return err
	}
	logger.Info("Querying quotes",
		zap.String("source", d.String()),
		zap.String("vendor", queryVendor),
		zap.String("keyword", queryKeyword))

	ctx, cancel := commandContext(cmd)
	defer cancel()

	view, err := b.Query(ctx, query.Filter{Vendor: queryVendor, Keyword: queryKeyword})
	if err != nil {
		logger.Error("Load failed", zap.String("source", d.String()), zap.Error(err))
		return errors.New(b.Message(err))
	}

	switch queryFormat {
	case formatCSV:
		return writeCSV(os.Stdout, view.Result, cfg.Columns)
	case formatMarkdown:
		md := buildMarkdown(view, cfg.Columns)
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(markdownStyle(ui.ThemeByName(cfg.UI.Theme))),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			fmt.Print(md)
			return nil
		}
		out, err := renderer.Render(md)
		if err != nil {
			fmt.Print(md)
			return nil
		}
		fmt.Print(out)
	default:
		fmt.Print(renderTable(view, cfg.Columns, ui.NewStyles(ui.ThemeByName(cfg.UI.Theme))))
	}
	return nil
}

func listVendors(cmd *cobra.Command, args []string) error {
	b, d, err := openBoard(cfg)
	if err != nil {
		return err
	}
	logger.Debug("Listing vendors", zap.String("source", d.String()))

	ctx, cancel := commandContext(cmd)
	defer cancel()

	vendors, err := b.Vendors(ctx)
	if err != nil {
		logger.Error("Load failed", zap.String("source", d.String()), zap.Error(err))
		return errors.New(b.Message(err))
	}
	for _, v := range vendors {
		fmt.Println(v)
	}
	return nil
}

func statusLine(count int) string {
	return fmt.Sprintf("查詢結果 (共 %d 筆資料)", count)
}

// renderTable renders the result as a styled terminal table.
func renderTable(view *board.View, schema normalize.Schema, styles ui.Styles) string {
	var sb strings.Builder
	sb.WriteString(styles.Subtitle.Render(statusLine(view.Result.Count)))
	sb.WriteString("\n\n")
	if view.Result.Empty() {
		sb.WriteString(styles.Warning.Render("查無符合條件的報價，請嘗試調整搜尋字眼。"))
		sb.WriteString("\n")
		return sb.String()
	}
	sb.WriteString(ui.ResultTable("", ui.ResultHeaders(schema), view.Result).View(styles))
	sb.WriteString(styles.Muted.Render("💡 提示：系統已自動將「單價」最低的廠商排在最上方。"))
	sb.WriteString("\n")
	return sb.String()
}

// buildMarkdown renders the result as a markdown document.
func buildMarkdown(view *board.View, schema normalize.Schema) string {
	var sb strings.Builder
	sb.WriteString("# 廠商報價查詢系統\n\n")
	fmt.Fprintf(&sb, "**%s**", statusLine(view.Result.Count))
	if view.Filter.Vendor != query.AllVendors || view.Filter.Keyword != "" {
		fmt.Fprintf(&sb, " · 廠商 `%s` · 關鍵字 `%s`", ui.VendorLabel(view.Filter.Vendor, cfgAllLabel()), view.Filter.Keyword)
	}
	sb.WriteString("\n\n")

	if view.Result.Empty() {
		sb.WriteString("> 查無符合條件的報價，請嘗試調整搜尋字眼。\n")
		return sb.String()
	}

	headers := append([]string{""}, ui.ResultHeaders(schema)...)
	sb.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, row := range view.Result.Rows {
		cells := ui.RowCells(row)
		mark := ""
		if row.Lowest {
			mark = ui.LowestMark
			for i := range cells {
				cells[i] = "**" + cells[i] + "**"
			}
		}
		for i := range cells {
			cells[i] = escapeMarkdownCell(cells[i])
		}
		sb.WriteString("| " + mark + " | " + strings.Join(cells, " | ") + " |\n")
	}
	sb.WriteString("\n> 💡 提示：系統已自動將「單價」最低的廠商排在最上方。\n")
	return sb.String()
}

// markdownStyle picks the glamour style matching the terminal theme.
func markdownStyle(theme ui.Theme) string {
	if theme.IsDark {
		return glamourstyles.DarkStyle
	}
	return glamourstyles.LightStyle
}

func escapeMarkdownCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func cfgAllLabel() string {
	if cfg == nil || cfg.Query.AllLabel == "" {
		return query.AllVendors
	}
	return cfg.Query.AllLabel
}

// writeCSV writes the result in canonical column order, cheapest first.
func writeCSV(w io.Writer, res query.Result, schema normalize.Schema) error {
	t := make(quote.Table, 0, len(res.Rows))
	for _, row := range res.Rows {
		t = append(t, row.Record)
	}
	raw := normalize.Denormalize(t, schema)

	cw := csv.NewWriter(w)
	if err := cw.Write(raw.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(raw.Rows); err != nil {
		return err
	}
	return cw.Error()
}
