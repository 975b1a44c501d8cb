package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"quoteboard/internal/logging"
	"quoteboard/internal/quote"

	_ "modernc.org/sqlite"
)

// SQLiteSource reads every row of one table from a SQLite database.
// The database is opened read-only.
type SQLiteSource struct {
	Path  string
	Table string
}

// Describe returns "<file>#<table>".
func (s *SQLiteSource) Describe() string {
	return filepath.Base(s.Path) + "#" + s.table()
}

func (s *SQLiteSource) table() string {
	if s.Table == "" {
		return DefaultTable
	}
	return s.Table
}

// Load queries the table. A missing database file yields ErrNotFound.
func (s *SQLiteSource) Load(ctx context.Context) (*quote.RawTable, error) {
	// Opening a missing path would create an empty database.
	if _, err := os.Stat(s.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	timer := logging.StartTimer(logging.CategoryLoader, "sqlite "+s.Describe())
	defer timer.Stop()

	db, err := sql.Open("sqlite", "file:"+s.Path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnreadable, s.Path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(s.table()))
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrUnreadable, s.Describe(), err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	table := &quote.RawTable{Header: cols}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrUnreadable, err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = cellString(v)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	logging.Loader("read %s: %d rows, %d columns", s.Describe(), len(table.Rows), len(cols))
	return table, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
