package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quoteboard/internal/logging"
	"quoteboard/internal/quote"

	"golang.org/x/net/html"
)

const (
	exportPath = "/export"
	// DefaultFetchTimeout bounds a sheet fetch when no timeout is configured.
	DefaultFetchTimeout = 30 * time.Second
	maxSheetBytes       = 32 << 20
	slowFetchThreshold  = 5 * time.Second
)

// ExportURL rewrites a spreadsheet share link into its CSV export link by
// replacing everything from "/edit" on. A "gid" in the query or fragment is
// carried over so the shared tab is exported. Links that are already export
// links are returned unchanged.
func ExportURL(shareURL string) string {
	if strings.Contains(shareURL, exportPath+"?") {
		return shareURL
	}

	gid := ""
	if u, err := url.Parse(shareURL); err == nil {
		gid = u.Query().Get("gid")
		if gid == "" {
			if frag, err := url.ParseQuery(u.Fragment); err == nil {
				gid = frag.Get("gid")
			}
		}
	}

	base := shareURL
	if i := strings.Index(base, "/edit"); i >= 0 {
		base = base[:i]
	} else {
		if i := strings.IndexAny(base, "?#"); i >= 0 {
			base = base[:i]
		}
		base = strings.TrimRight(base, "/")
	}

	out := base + exportPath + "?format=csv"
	if gid != "" {
		out += "&gid=" + url.QueryEscape(gid)
	}
	return out
}

// SheetSource fetches a shared spreadsheet through its CSV export link.
type SheetSource struct {
	ShareURL string
	Client   *http.Client
	Timeout  time.Duration
}

// Describe returns the share link.
func (s *SheetSource) Describe() string {
	return s.ShareURL
}

// Load downloads and parses the sheet. Every failure is a *FetchError.
func (s *SheetSource) Load(ctx context.Context) (*quote.RawTable, error) {
	target := ExportURL(s.ShareURL)
	fail := func(err error) error {
		logging.Get(logging.CategoryLoader).Warn("sheet fetch failed: %v", err)
		return &FetchError{URL: target, Err: err}
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	timer := logging.StartTimer(logging.CategoryLoader, "fetch "+target)
	defer timer.StopWithThreshold(slowFetchThreshold)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fail(err)
	}
	req.Header.Set("Accept", "text/csv")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fail(fmt.Errorf("unexpected status %s", resp.Status))
	}
	body, err := readLimited(resp.Body, maxSheetBytes)
	if err != nil {
		return nil, fail(err)
	}
	// Private sheets answer with a sign-in page instead of CSV.
	if isHTML(resp.Header.Get("Content-Type"), body) {
		msg := "received an HTML page instead of CSV; is the sheet shared publicly?"
		if title := htmlTitle(body); title != "" {
			msg = fmt.Sprintf("received an HTML page (%q) instead of CSV; is the sheet shared publicly?", title)
		}
		return nil, fail(errors.New(msg))
	}

	table, enc, err := decodeCSV(body)
	if err != nil {
		return nil, fail(fmt.Errorf("parse csv: %w", err))
	}
	logging.Loader("fetched %s (%s): %d rows, %d columns", target, enc, len(table.Rows), len(table.Header))
	return table, nil
}

// readLimited reads all of r, failing instead of truncating when r holds
// more than limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("sheet exceeds %d bytes", limit)
	}
	return body, nil
}

func isHTML(contentType string, body []byte) bool {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "text/html" {
			return true
		}
	}
	head := bytes.ToLower(bytes.TrimSpace(body[:min(len(body), 512)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

// htmlTitle returns the trimmed <title> text of an HTML page, or "".
func htmlTitle(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	var find func(n *html.Node) string
	find = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "title" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			return strings.TrimSpace(sb.String())
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if t := find(c); t != "" {
				return t
			}
		}
		return ""
	}
	return find(doc)
}
