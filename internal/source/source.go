// Package source loads raw quote tables from external tabular sources: a
// local CSV file, a shared spreadsheet exported as CSV, or a SQLite table.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"quoteboard/internal/quote"
)

var (
	// ErrNotFound means the source does not exist. Callers render a fixed
	// message for it instead of the error text.
	ErrNotFound = errors.New("source not found")

	// ErrUnreadable wraps local read, decode and parse failures.
	ErrUnreadable = errors.New("source unreadable")
)

// FetchError reports a failed remote fetch. Its message carries the
// upstream failure text so it can be shown to the user directly.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Source produces a raw table on demand.
type Source interface {
	Load(ctx context.Context) (*quote.RawTable, error)
	// Describe names the source for status and error messages.
	Describe() string
}

// Kind identifies a source implementation.
type Kind string

const (
	KindFile   Kind = "file"
	KindSheet  Kind = "sheet"
	KindSQLite Kind = "sqlite"
)

// DefaultTable is read when a SQLite descriptor names no table.
const DefaultTable = "quotes"

// Descriptor is a parsed source reference.
type Descriptor struct {
	Kind     Kind
	Location string // file path or URL
	Table    string // sqlite only
}

func (d Descriptor) String() string {
	if d.Kind == KindSQLite && d.Table != "" {
		return d.Location + "#" + d.Table
	}
	return d.Location
}

// Parse classifies a descriptor string.
//
//	https://docs.google.com/spreadsheets/d/<id>/edit  -> sheet
//	quotes.db, quotes.sqlite#table                     -> sqlite
//	anything else                                      -> file
func Parse(s string) (Descriptor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Descriptor{}, fmt.Errorf("empty source descriptor")
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return Descriptor{Kind: KindSheet, Location: s}, nil
	}

	loc, table, _ := strings.Cut(s, "#")
	switch strings.ToLower(filepath.Ext(loc)) {
	case ".db", ".sqlite", ".sqlite3":
		if table == "" {
			table = DefaultTable
		}
		return Descriptor{Kind: KindSQLite, Location: loc, Table: table}, nil
	}
	return Descriptor{Kind: KindFile, Location: s}, nil
}

// Options tune how sources are opened.
type Options struct {
	HTTPClient   *http.Client
	FetchTimeout time.Duration
}

// Open builds the Source for d.
func Open(d Descriptor, opts Options) (Source, error) {
	switch d.Kind {
	case KindFile:
		return &FileSource{Path: d.Location}, nil
	case KindSheet:
		return &SheetSource{ShareURL: d.Location, Client: opts.HTTPClient, Timeout: opts.FetchTimeout}, nil
	case KindSQLite:
		return &SQLiteSource{Path: d.Location, Table: d.Table}, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", d.Kind)
	}
}
