package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quoteboard/cmd/quoteboard/ui"
	"quoteboard/internal/board"
	"quoteboard/internal/config"
	"quoteboard/internal/normalize"
	"quoteboard/internal/query"
	"quoteboard/internal/quote"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const sampleCSV = "廠商 , 項目 ,數量,金額\nV1,Bolt,10,100\nV2,Screw,5,20\nV2,AWS Support,1,\"1,200\"\n"

// setup points the globals at a temp workspace holding data.csv.
func setup(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"QUOTEBOARD_SOURCE", "QUOTEBOARD_SHEET_URL", "QUOTEBOARD_DARK_MODE", "QUOTEBOARD_LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	logger = zap.NewNop()
	configPath = filepath.Join(dir, "config.yaml")
	sourceFlag = csvPath
	timeout = 0
	queryVendor = query.AllVendors
	queryKeyword = ""
	queryFormat = formatTable
	initForce = false
	if err := loadConfig(); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	return dir
}

func TestRunQueryCSV(t *testing.T) {
	setup(t)
	queryFormat = formatCSV

	output := captureOutput(t, func() {
		if err := runQuery(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runQuery returned error: %v", err)
		}
	})

	want := "廠商,項目,數量,金額,單價\nV2,Screw,5,20,4\nV1,Bolt,10,100,10\nV2,AWS Support,1,1200,1200\n"
	if output != want {
		t.Fatalf("unexpected csv output:\n%s\nwant:\n%s", output, want)
	}
}

func TestRunQueryKeywordTable(t *testing.T) {
	setup(t)
	queryKeyword = " aws "

	output := captureOutput(t, func() {
		if err := runQuery(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runQuery returned error: %v", err)
		}
	})

	if !strings.Contains(output, "查詢結果 (共 1 筆資料)") {
		t.Fatalf("expected one result, got: %s", output)
	}
	if !strings.Contains(output, "AWS Support") || strings.Contains(output, "Bolt") {
		t.Fatalf("unexpected rows: %s", output)
	}
}

func TestRunQueryNoMatch(t *testing.T) {
	setup(t)
	queryVendor = "V1"
	queryKeyword = "screw"

	output := captureOutput(t, func() {
		if err := runQuery(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runQuery returned error: %v", err)
		}
	})

	if !strings.Contains(output, "查無符合條件的報價") {
		t.Fatalf("expected no-match warning, got: %s", output)
	}
}

func TestRunQueryMissingFile(t *testing.T) {
	dir := setup(t)
	cfg.Source.Location = filepath.Join(dir, "missing.csv")

	err := runQuery(&cobra.Command{}, nil)
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !strings.Contains(err.Error(), "找不到") || !strings.Contains(err.Error(), "missing.csv") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestRunQueryUnknownFormat(t *testing.T) {
	setup(t)
	queryFormat = "xml"

	if err := runQuery(&cobra.Command{}, nil); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestListVendors(t *testing.T) {
	setup(t)

	output := captureOutput(t, func() {
		if err := listVendors(&cobra.Command{}, nil); err != nil {
			t.Fatalf("listVendors returned error: %v", err)
		}
	})

	if output != "all\nV1\nV2\n" {
		t.Fatalf("unexpected vendors: %q", output)
	}
}

func TestBuildMarkdown(t *testing.T) {
	setup(t)
	tbl := quote.Table{
		quote.NewRecord("V1", "Bolt|Nut", 10, 100),
		quote.NewRecord("V2", "Screw", 5, 20),
	}
	snap := &board.Snapshot{Table: tbl}
	view := board.Apply(snap, query.Filter{Vendor: query.AllVendors, Keyword: ""}, query.DefaultPolicy())

	md := buildMarkdown(view, normalize.DefaultSchema())

	for _, want := range []string{
		"# 廠商報價查詢系統",
		"查詢結果 (共 2 筆資料)",
		"| ★ | **V2** | **Screw** |",
		`Bolt\|Nut`,
		"$ 10.00",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownStyle(t *testing.T) {
	if got := markdownStyle(ui.DarkTheme()); got != "dark" {
		t.Errorf("expected dark, got %q", got)
	}
	if got := markdownStyle(ui.LightTheme()); got != "light" {
		t.Errorf("expected light, got %q", got)
	}
}

func TestRunInit(t *testing.T) {
	dir := setup(t)
	configPath = filepath.Join(dir, "nested", "config.yaml")

	output := captureOutput(t, func() {
		if err := runInit(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runInit returned error: %v", err)
		}
	})
	if !strings.Contains(output, "Wrote") {
		t.Fatalf("expected confirmation, got: %s", output)
	}

	c, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if c.Source.Location != sourceFlag {
		t.Fatalf("expected source %q, got %q", sourceFlag, c.Source.Location)
	}

	if err := runInit(&cobra.Command{}, nil); err == nil {
		t.Fatal("expected init to refuse overwriting without --force")
	}
	initForce = true
	if err := runInit(&cobra.Command{}, nil); err != nil {
		t.Fatalf("runInit --force returned error: %v", err)
	}
}

func TestLoadConfigSourceFlagWins(t *testing.T) {
	dir := setup(t)
	c := config.DefaultConfig()
	c.Source.Location = "from-file.csv"
	if err := c.Save(configPath); err != nil {
		t.Fatalf("save: %v", err)
	}

	sourceFlag = filepath.Join(dir, "data.csv")
	if err := loadConfig(); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Source.Location != sourceFlag {
		t.Fatalf("expected flag to win, got %q", cfg.Source.Location)
	}

	sourceFlag = ""
	if err := loadConfig(); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Source.Location != "from-file.csv" {
		t.Fatalf("expected config source, got %q", cfg.Source.Location)
	}
}

func TestOpenBoardCachePolicy(t *testing.T) {
	setup(t)

	b, d, err := openBoard(cfg)
	if err != nil {
		t.Fatalf("openBoard: %v", err)
	}
	if d.Kind != "file" || b.CacheTTL() != 0 {
		t.Fatalf("expected manual cache for a file, got kind=%s ttl=%s", d.Kind, b.CacheTTL())
	}

	cfg.Source.Location = "https://docs.google.com/spreadsheets/d/abc/edit#gid=0"
	b, d, err = openBoard(cfg)
	if err != nil {
		t.Fatalf("openBoard: %v", err)
	}
	if d.Kind != "sheet" || b.CacheTTL() != cfg.GetCacheTTL() {
		t.Fatalf("expected ttl cache for a sheet, got kind=%s ttl=%s", d.Kind, b.CacheTTL())
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}
